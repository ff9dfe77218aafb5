// Package notes generates clinical artefacts from encounter data through
// Bedrock model invocations: the SOAP note for GP review, decision support
// prompts, and the patient-facing handout, after-visit summary and follow-up
// checklist.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"clinical-scribe/internal/config"
	"clinical-scribe/internal/models"
	"clinical-scribe/internal/normalize"
	"clinical-scribe/internal/observability/metrics"
	"clinical-scribe/internal/service/llm"
)

// Artefact kind labels used in filenames, metrics and events.
const (
	KindSOAPNote          = "soap_note"
	KindDecisionSupport   = "decision_support"
	KindPatientHandout    = "patient_handout"
	KindAfterVisitSummary = "after_visit_summary"
	KindFollowupChecklist = "followup_checklist"
)

// Generator produces artefacts from encounters using a model invoker.
type Generator struct {
	invoker llm.Invoker
	cfg     *config.Config
	metrics *metrics.Metrics
}

// NewGenerator creates a Generator bound to the given invoker and config.
func NewGenerator(invoker llm.Invoker, cfg *config.Config) *Generator {
	return &Generator{invoker: invoker, cfg: cfg, metrics: metrics.DefaultMetrics}
}

// invoke builds the request body for the resolved model, performs the
// invocation and normalizes the response into a JSON object.
func (g *Generator) invoke(ctx context.Context, artefact, model string, p llm.Params) (map[string]any, error) {
	modelID := g.cfg.ModelID(model)
	body, err := llm.BuildRequestBody(modelID, p)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", artefact, err)
	}

	log.Debug().
		Str("artefact", artefact).
		Str("model", model).
		Str("modelId", modelID).
		Msg("invoking model")

	raw, err := g.invoker.Invoke(ctx, modelID, body)
	g.metrics.RecordBedrockInvocation(model, artefact, err)
	if err != nil {
		return nil, fmt.Errorf("%s invocation: %w", artefact, err)
	}

	result, err := normalize.Normalize(raw)
	g.metrics.RecordNormalizeOutcome(normalizeOutcome(result, err))
	if err != nil {
		return nil, fmt.Errorf("%s response: %w", artefact, err)
	}
	return result, nil
}

// normalizeOutcome classifies a normalization result for metrics.
func normalizeOutcome(result map[string]any, err error) string {
	if err != nil {
		var malformed *normalize.MalformedResponseError
		if errors.As(err, &malformed) {
			return "malformed"
		}
		return "extraction_failure"
	}
	if _, ok := result["text"]; ok && len(result) == 1 {
		return "text"
	}
	return "object"
}

// attachIDs copies correlation identifiers onto an artefact payload.
func attachIDs(result map[string]any, encounterID, correlationID string) {
	if encounterID != "" {
		result["encounter_id"] = encounterID
	}
	if correlationID != "" {
		result["correlation_id"] = correlationID
	}
}

// textPayload pulls the plain-text body out of a normalized response. Models
// asked for prose land in the "text" fallback key; anything else is kept as
// serialized JSON so no content is silently dropped.
func textPayload(result map[string]any) string {
	if s, ok := result["text"].(string); ok {
		return s
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(b)
}

// SOAPNote generates a structured SOAP note from the encounter. The model
// defaults to claude; clinical accuracy matters more than latency here.
func (g *Generator) SOAPNote(ctx context.Context, enc *models.Encounter, model string) (map[string]any, error) {
	if model == "" {
		model = "claude"
	}
	encounter, err := encounterJSON(enc)
	if err != nil {
		return nil, err
	}

	result, err := g.invoke(ctx, KindSOAPNote, model, llm.Params{
		Prompt:      soapUserPrompt(encounter),
		System:      soapSystemPrompt,
		MaxTokens:   800,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}
	attachIDs(result, enc.EncounterID, enc.CorrelationID)
	return result, nil
}

// DecisionSupport generates "Did you consider?" prompts that surface clinical
// context without diagnosing. Defaults to nova for speed and cost.
func (g *Generator) DecisionSupport(ctx context.Context, enc *models.Encounter, model string) (map[string]any, error) {
	if model == "" {
		model = "nova"
	}
	encounter, err := encounterJSON(enc)
	if err != nil {
		return nil, err
	}

	result, err := g.invoke(ctx, KindDecisionSupport, model, llm.Params{
		Prompt:      decisionUserPrompt(encounter),
		System:      decisionSystemPrompt,
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}
	if _, ok := result["prompts"]; !ok {
		result = map[string]any{"prompts": []any{}}
	}
	attachIDs(result, enc.EncounterID, enc.CorrelationID)
	return result, nil
}

// PatientHandout generates plain-English take-home advice for the patient.
func (g *Generator) PatientHandout(ctx context.Context, enc *models.Encounter, model string) (map[string]any, error) {
	return g.textArtefact(ctx, enc, model, KindPatientHandout, handoutUserPrompt)
}

// AfterVisitSummary generates a plain-language summary of the visit.
func (g *Generator) AfterVisitSummary(ctx context.Context, enc *models.Encounter, model string) (map[string]any, error) {
	return g.textArtefact(ctx, enc, model, KindAfterVisitSummary, summaryUserPrompt)
}

// FollowupChecklist generates a printable checklist of at-home actions.
func (g *Generator) FollowupChecklist(ctx context.Context, enc *models.Encounter, model string) (map[string]any, error) {
	return g.textArtefact(ctx, enc, model, KindFollowupChecklist, checklistUserPrompt)
}

// PatientArtefacts generates the handout, summary and checklist as one
// bundle. Artefacts are independent, so a failure in one does not discard
// the others; per-artefact errors are recorded in the bundle.
func (g *Generator) PatientArtefacts(ctx context.Context, enc *models.Encounter, model string) (map[string]any, error) {
	bundle := map[string]any{}
	var firstErr error
	generated := 0

	steps := []struct {
		kind string
		gen  func(context.Context, *models.Encounter, string) (map[string]any, error)
	}{
		{KindPatientHandout, g.PatientHandout},
		{KindAfterVisitSummary, g.AfterVisitSummary},
		{KindFollowupChecklist, g.FollowupChecklist},
	}
	for _, step := range steps {
		result, err := step.gen(ctx, enc, model)
		if err != nil {
			log.Warn().Err(err).Str("artefact", step.kind).Msg("patient artefact generation failed")
			bundle[step.kind+"_error"] = err.Error()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		bundle[step.kind] = result[step.kind]
		generated++
	}
	if generated == 0 {
		return nil, firstErr
	}
	attachIDs(bundle, enc.EncounterID, enc.CorrelationID)
	return bundle, nil
}

func (g *Generator) textArtefact(ctx context.Context, enc *models.Encounter, model, kind string, prompt func(string) string) (map[string]any, error) {
	if model == "" {
		model = "nova"
	}
	encounter, err := encounterJSON(enc)
	if err != nil {
		return nil, err
	}

	result, err := g.invoke(ctx, kind, model, llm.Params{
		Prompt:      prompt(encounter),
		MaxTokens:   300,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}
	out := map[string]any{kind: textPayload(result)}
	attachIDs(out, enc.EncounterID, enc.CorrelationID)
	return out, nil
}
