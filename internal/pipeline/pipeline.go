package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"clinical-scribe/internal/config"
	"clinical-scribe/internal/events"
	"clinical-scribe/internal/models"
	"clinical-scribe/internal/notes"
	"clinical-scribe/internal/observability/metrics"
	"clinical-scribe/internal/service/entities"
	"clinical-scribe/internal/service/transcription"
	"clinical-scribe/internal/store"
)

// Stage names used in metrics and failure reporting.
const (
	StageUpload     = "upload"
	StageTranscribe = "transcribe"
	StageAnalyze    = "analyze"
	StageGenerate   = "generate"
	StagePersist    = "persist"
)

// Options select the models used for artefact generation. Empty values fall
// back to the per-artefact defaults.
type Options struct {
	SOAPModel     string
	DecisionModel string
	PatientModel  string
}

// Result reports where a completed run left its outputs.
type Result struct {
	RunID         string
	EncounterID   string
	CorrelationID string

	AnalysisPath  string
	SOAPPath      string
	DecisionPath  string
	ArtefactsPath string
}

// Pipeline runs the full encounter flow against its injected providers.
type Pipeline struct {
	cfg         *config.Config
	transcriber transcription.Adapter
	extractor   entities.Adapter
	generator   *notes.Generator
	store       *store.Store
	publisher   *events.Publisher
	metrics     *metrics.Metrics

	now func() time.Time
}

// New creates a Pipeline. All providers are required; the publisher may be a
// disabled (log-only) one.
func New(cfg *config.Config, transcriber transcription.Adapter, extractor entities.Adapter, generator *notes.Generator, st *store.Store, publisher *events.Publisher) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		transcriber: transcriber,
		extractor:   extractor,
		generator:   generator,
		store:       st,
		publisher:   publisher,
		metrics:     metrics.DefaultMetrics,
		now:         time.Now,
	}
}

// Run processes one local recording end to end: upload, transcribe, extract
// entities, generate artefacts and persist everything. The first stage error
// aborts the run.
func (p *Pipeline) Run(ctx context.Context, localAudioPath string, opts Options) (*Result, error) {
	lc := NewLifecycle(uuid.NewString())
	logger := log.With().Str("runId", lc.RunId()).Logger()

	p.metrics.RecordRunStart()
	start := p.now()
	defer func() {
		p.metrics.RecordRunEnd(lc.FailedStage(), p.now().Sub(start).Seconds())
	}()

	fail := func(stage string, err error) (*Result, error) {
		lc.Fail(stage)
		logger.Error().Err(err).Str("stage", stage).Msg("pipeline run failed")
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	// Upload and transcribe.
	if err := lc.Advance(StateTranscribing); err != nil {
		return fail(StageUpload, err)
	}
	key := path.Join("recordings", filepath.Base(localAudioPath))
	audioURI, err := timed(p, StageUpload, func() (string, error) {
		return p.transcriber.Upload(ctx, localAudioPath, key)
	})
	if err != nil {
		return fail(StageUpload, err)
	}
	logger.Info().Str("audioUri", audioURI).Msg("recording uploaded")

	job, err := timed(p, StageTranscribe, func() (*transcription.Job, error) {
		return p.transcriber.Transcribe(ctx, audioURI)
	})
	if err != nil {
		return fail(StageTranscribe, err)
	}
	logger.Info().Str("jobName", job.Name).Str("status", job.Status).Msg("transcription completed")

	// Entity extraction.
	if err := lc.Advance(StateAnalyzing); err != nil {
		return fail(StageAnalyze, err)
	}
	enc, err := timed(p, StageAnalyze, func() (*models.Encounter, error) {
		return p.analyze(ctx, job, localAudioPath, audioURI)
	})
	if err != nil {
		return fail(StageAnalyze, err)
	}

	analysisPath, err := p.store.SaveAnalysisResults(enc)
	if err != nil {
		return fail(StagePersist, err)
	}
	p.publishAnalysis(ctx, enc)

	// Artefact generation.
	if err := lc.Advance(StateGenerating); err != nil {
		return fail(StageGenerate, err)
	}
	result := &Result{
		RunID:         lc.RunId(),
		EncounterID:   enc.EncounterID,
		CorrelationID: enc.CorrelationID,
		AnalysisPath:  analysisPath,
	}
	if err := p.generate(ctx, enc, opts, result); err != nil {
		return fail(StageGenerate, err)
	}

	if err := lc.Advance(StateCompleted); err != nil {
		return fail(StageGenerate, err)
	}
	logger.Info().
		Str("encounterId", enc.EncounterID).
		Str("analysisPath", analysisPath).
		Msg("pipeline run completed")
	return result, nil
}

// analyze builds the encounter payload: full-transcript entity extraction
// plus per-segment analysis. Segment extraction errors are captured on the
// segment instead of aborting the run.
func (p *Pipeline) analyze(ctx context.Context, job *transcription.Job, localPath, audioURI string) (*models.Encounter, error) {
	doc := job.Document
	text := doc.FullTranscript()
	segments := doc.SpeakerSegments()

	medical, err := p.extractor.DetectEntities(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("detect entities: %w", err)
	}
	phi, err := p.extractor.DetectPHI(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("detect phi: %w", err)
	}

	var analysis []models.SegmentAnalysis
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		sa := models.SegmentAnalysis{
			Speaker:   seg.Speaker,
			StartTime: seg.StartTime,
			EndTime:   seg.EndTime,
			Text:      seg.Text,
		}
		segEntities, err := p.extractor.DetectEntities(ctx, seg.Text)
		if err == nil {
			var segPHI models.EntitySet
			segPHI, err = p.extractor.DetectPHI(ctx, seg.Text)
			if err == nil {
				sa.Entities = segEntities.Entities
				sa.PHIEntities = segPHI.Entities
			}
		}
		if err != nil {
			log.Warn().Err(err).Str("speaker", seg.Speaker).Msg("segment analysis failed")
			sa.Entities = []models.Entity{}
			sa.PHIEntities = []models.Entity{}
			sa.Error = err.Error()
		}
		analysis = append(analysis, sa)
	}

	return &models.Encounter{
		TranscriptionJobName: job.Name,
		TranscriptionStatus:  job.Status,
		AudioFormat:          audioFormat(localPath),
		FullTranscript:       text,
		SpeakerSegments:      segments,
		MedicalEntities:      medical,
		PHIEntities:          phi,
		SpeakerAnalysis:      analysis,
		TranscriptMetadata: models.TranscriptMetadata{
			JobName:   doc.JobName,
			AccountID: doc.AccountID,
			Status:    doc.Status,
		},
		SourceFile: &models.SourceFile{
			LocalPath: localPath,
			S3URI:     audioURI,
		},
	}, nil
}

// generate produces and saves the three artefact groups in order. The first
// failure aborts the remaining artefacts.
func (p *Pipeline) generate(ctx context.Context, enc *models.Encounter, opts Options, result *Result) error {
	soap, err := p.generator.SOAPNote(ctx, enc, opts.SOAPModel)
	if err != nil {
		return err
	}
	if result.SOAPPath, err = p.store.SaveSOAPNote(soap, enc.EncounterID, enc.CorrelationID); err != nil {
		return err
	}
	p.publishArtefact(ctx, enc, notes.KindSOAPNote, opts.SOAPModel, result.SOAPPath)

	decision, err := p.generator.DecisionSupport(ctx, enc, opts.DecisionModel)
	if err != nil {
		return err
	}
	if result.DecisionPath, err = p.store.SaveDecisionSupport(decision, enc.EncounterID, enc.CorrelationID); err != nil {
		return err
	}
	p.publishArtefact(ctx, enc, notes.KindDecisionSupport, opts.DecisionModel, result.DecisionPath)

	bundle, err := p.generator.PatientArtefacts(ctx, enc, opts.PatientModel)
	if err != nil {
		return err
	}
	if result.ArtefactsPath, err = p.store.SavePatientArtefacts(bundle, enc.EncounterID, enc.CorrelationID); err != nil {
		return err
	}
	p.publishArtefact(ctx, enc, "patient_artefacts", opts.PatientModel, result.ArtefactsPath)
	return nil
}

func (p *Pipeline) publishAnalysis(ctx context.Context, enc *models.Encounter) {
	event := models.AnalysisEvent{
		EventType:     events.TypeEncounterAnalyzed,
		EncounterID:   enc.EncounterID,
		CorrelationID: enc.CorrelationID,
		JobName:       enc.TranscriptionJobName,
		Segments:      len(enc.SpeakerSegments),
		Entities:      len(enc.MedicalEntities.Entities),
		Timestamp:     p.now().Unix(),
	}
	// Event delivery is best-effort; a broker outage must not fail the run.
	if err := p.publisher.PublishAnalysis(ctx, enc.EncounterID, event); err != nil {
		log.Warn().Err(err).Str("encounterId", enc.EncounterID).Msg("analysis event not published")
	}
}

func (p *Pipeline) publishArtefact(ctx context.Context, enc *models.Encounter, artefact, model, path string) {
	event := models.ArtefactEvent{
		EventType:     events.TypeArtefactGenerated,
		EncounterID:   enc.EncounterID,
		CorrelationID: enc.CorrelationID,
		Artefact:      artefact,
		Model:         model,
		Path:          path,
		Timestamp:     p.now().Unix(),
	}
	if err := p.publisher.PublishArtefact(ctx, enc.EncounterID, event); err != nil {
		log.Warn().Err(err).Str("artefact", artefact).Msg("artefact event not published")
	}
}

// timed runs fn and records its duration under the stage label.
func timed[T any](p *Pipeline, stage string, fn func() (T, error)) (T, error) {
	start := p.now()
	v, err := fn()
	p.metrics.RecordStage(stage, p.now().Sub(start).Seconds())
	return v, err
}

// audioFormat derives the recording format from the file extension.
func audioFormat(localPath string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(localPath)), ".")
	if ext == "" {
		return "m4a"
	}
	return ext
}
