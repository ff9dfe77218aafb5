package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clinical-scribe/internal/config"
	"clinical-scribe/internal/events"
	"clinical-scribe/internal/notes"
	entitymock "clinical-scribe/internal/service/entities/mock"
	llmmock "clinical-scribe/internal/service/llm/mock"
	transcribemock "clinical-scribe/internal/service/transcription/mock"
	"clinical-scribe/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DefaultModel: "nova",
		ModelMap: map[string]string{
			"claude": "anthropic.claude-3-sonnet-20240229-v1:0",
			"nova":   "apac.amazon.nova-lite-v1:0",
		},
		OutputDir: t.TempDir(),
	}
}

func testPipeline(t *testing.T, cfg *config.Config, transcriber *transcribemock.Adapter, invoker *llmmock.Invoker) *Pipeline {
	t.Helper()
	return New(
		cfg,
		transcriber,
		entitymock.New(),
		notes.NewGenerator(invoker, cfg),
		store.New(cfg.OutputDir),
		events.New(nil),
	)
}

func soapInvoker() *llmmock.Invoker {
	// The SOAP and decision artefacts want JSON objects, the patient
	// artefacts want prose. One response shape satisfies both paths.
	return llmmock.New(`{"subjective": "s", "objective": "o", "assessment": "a", "plan": "p", "prompts": ["Consider follow-up."], "text": "Rest and hydrate."}`)
}

func TestRun_CompletesAndPersists(t *testing.T) {
	cfg := testConfig(t)
	transcriber := transcribemock.New()
	p := testPipeline(t, cfg, transcriber, soapInvoker())

	result, err := p.Run(context.Background(), "/recordings/visit1.m4a", Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.EncounterID == "" || result.CorrelationID == "" {
		t.Errorf("correlation ids missing: %+v", result)
	}
	for name, path := range map[string]string{
		"analysis":  result.AnalysisPath,
		"soap":      result.SOAPPath,
		"decision":  result.DecisionPath,
		"artefacts": result.ArtefactsPath,
	} {
		if path == "" {
			t.Errorf("%s path not set", name)
		}
	}

	if len(transcriber.Uploads()) != 1 {
		t.Errorf("uploads = %d, want 1", len(transcriber.Uploads()))
	}
	if got := transcriber.Transcribed(); len(got) != 1 || !strings.HasPrefix(got[0], "s3://") {
		t.Errorf("transcribed URIs = %v", got)
	}

	records, err := store.New(cfg.OutputDir).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Errorf("persisted records = %d, want 4", len(records))
	}
	for _, rec := range records {
		if rec.EncounterID != result.EncounterID {
			t.Errorf("record %s has encounter id %s, want %s", rec.Name, rec.EncounterID, result.EncounterID)
		}
	}
}

func TestRun_EncounterPayload(t *testing.T) {
	cfg := testConfig(t)
	p := testPipeline(t, cfg, transcribemock.New(), soapInvoker())

	result, err := p.Run(context.Background(), "/recordings/visit1.m4a", Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	enc, err := store.New(cfg.OutputDir).LoadEncounter(result.AnalysisPath)
	if err != nil {
		t.Fatal(err)
	}
	if enc.FullTranscript == "" {
		t.Error("full transcript missing")
	}
	if len(enc.SpeakerSegments) != 3 {
		t.Errorf("speaker segments = %d, want 3", len(enc.SpeakerSegments))
	}
	if len(enc.SpeakerAnalysis) != 3 {
		t.Errorf("speaker analysis = %d, want 3", len(enc.SpeakerAnalysis))
	}
	if len(enc.MedicalEntities.Entities) == 0 {
		t.Error("expected medical entities for a headache transcript")
	}
	if enc.AudioFormat != "m4a" {
		t.Errorf("audio format = %s", enc.AudioFormat)
	}
	if enc.SourceFile == nil || enc.SourceFile.LocalPath != "/recordings/visit1.m4a" {
		t.Errorf("source file = %+v", enc.SourceFile)
	}
	if enc.TranscriptMetadata.JobName != "mock-medical-transcription-1" {
		t.Errorf("transcript metadata = %+v", enc.TranscriptMetadata)
	}
}

func TestRun_TranscribeFailureAbortsRun(t *testing.T) {
	cfg := testConfig(t)
	transcriber := transcribemock.New()
	transcriber.FailWith = errors.New("job reached FAILED state")
	p := testPipeline(t, cfg, transcriber, soapInvoker())

	_, err := p.Run(context.Background(), "/recordings/visit1.m4a", Options{})
	if err == nil {
		t.Fatal("Run() should fail when transcription fails")
	}
	if !strings.HasPrefix(err.Error(), StageTranscribe) {
		t.Errorf("error should name the failed stage: %v", err)
	}

	records, _ := store.New(cfg.OutputDir).List()
	if len(records) != 0 {
		t.Errorf("nothing should be persisted on transcription failure, got %v", records)
	}
}

func TestRun_GenerationFailureKeepsAnalysis(t *testing.T) {
	cfg := testConfig(t)
	invoker := &llmmock.Invoker{
		Respond: func(string, []byte) ([]byte, error) {
			return nil, errors.New("throttled")
		},
	}
	p := testPipeline(t, cfg, transcribemock.New(), invoker)

	_, err := p.Run(context.Background(), "/recordings/visit1.m4a", Options{})
	if err == nil {
		t.Fatal("Run() should fail when generation fails")
	}
	if !strings.HasPrefix(err.Error(), StageGenerate) {
		t.Errorf("error should name the generate stage: %v", err)
	}

	// The analysis results were saved before generation started.
	records, err := store.New(cfg.OutputDir).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Kind != store.PrefixAnalysis {
		t.Errorf("records = %+v, want only the analysis results", records)
	}
}

func TestRun_ModelSelection(t *testing.T) {
	cfg := testConfig(t)
	invoker := soapInvoker()
	p := testPipeline(t, cfg, transcribemock.New(), invoker)

	_, err := p.Run(context.Background(), "/recordings/visit1.m4a", Options{SOAPModel: "nova"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	calls := invoker.Calls()
	// SOAP, decision support, then three patient artefacts.
	if len(calls) != 5 {
		t.Fatalf("invocations = %d, want 5", len(calls))
	}
	for i, call := range calls {
		if call.ModelID != "apac.amazon.nova-lite-v1:0" {
			t.Errorf("call %d model = %s, want nova", i, call.ModelID)
		}
	}
}

func TestAudioFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/rec.m4a", "m4a"},
		{"/tmp/rec.WAV", "wav"},
		{"/tmp/rec", "m4a"},
	}
	for _, tt := range tests {
		if got := audioFormat(tt.path); got != tt.want {
			t.Errorf("audioFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
