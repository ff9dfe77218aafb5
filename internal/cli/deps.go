package cli

import (
	"clinical-scribe/internal/awsclient"
	"clinical-scribe/internal/config"
	"clinical-scribe/internal/events"
	"clinical-scribe/internal/service/entities"
	entityaws "clinical-scribe/internal/service/entities/aws"
	entitymock "clinical-scribe/internal/service/entities/mock"
	"clinical-scribe/internal/service/llm"
	"clinical-scribe/internal/service/llm/bedrock"
	llmmock "clinical-scribe/internal/service/llm/mock"
	"clinical-scribe/internal/service/transcription"
	transcribeaws "clinical-scribe/internal/service/transcription/aws"
	transcribemock "clinical-scribe/internal/service/transcription/mock"
)

// mockResponse satisfies every generator: a SOAP object, a prompts list and
// a plain-text fallback in one payload.
const mockResponse = `{
  "subjective": "Patient reports headaches for two weeks.",
  "objective": "Examination not documented",
  "assessment": "Likely tension-type presentation.",
  "plan": "Review in one week, safety-netting discussed.",
  "prompts": ["No red flag symptoms detected (sudden onset, focal neurology, vomiting).", "Consider documenting sleep hygiene advice."],
  "text": "We talked about your headaches today. Rest, drink water, and come back if they get worse."
}`

// providers bundles the cloud adapters a command needs.
type providers struct {
	transcriber transcription.Adapter
	extractor   entities.Adapter
	invoker     llm.Invoker
}

// buildProviders constructs either the AWS-backed adapters or the mock ones
// for credential-free local runs.
func buildProviders(cfg *config.Config, useMock bool) (*providers, error) {
	if useMock {
		return &providers{
			transcriber: transcribemock.New(),
			extractor:   entitymock.New(),
			invoker:     llmmock.New(mockResponse),
		}, nil
	}

	clients, err := awsclient.New(cfg.Region)
	if err != nil {
		return nil, err
	}
	return &providers{
		transcriber: transcribeaws.New(clients, cfg.Transcription),
		extractor:   entityaws.New(clients),
		invoker:     bedrock.New(clients),
	}, nil
}

// newPublisher builds the Kafka publisher from configuration.
func newPublisher(cfg *config.Config) *events.Publisher {
	return events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       cfg.Kafka.Brokers,
		TopicAnalysis: cfg.Kafka.TopicAnalysis,
		TopicArtefact: cfg.Kafka.TopicArtefacts,
		Principal:     cfg.Kafka.Principal,
	})
}
