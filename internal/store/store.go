// Package store persists pipeline outputs as JSON files with dynamic naming
// and correlation identifiers, and reads them back for the dashboard and the
// artefact subcommands.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"clinical-scribe/internal/models"
	"clinical-scribe/internal/observability/metrics"
)

// File name prefixes for each persisted record kind.
const (
	PrefixAnalysis         = "medical_analysis_results"
	PrefixSOAPNote         = "soap_output"
	PrefixDecisionSupport  = "decision_support"
	PrefixPatientArtefacts = "patient_artefacts"
)

// Store writes and reads pipeline output files under a single directory.
type Store struct {
	dir     string
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string
}

// New creates a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{
		dir:     dir,
		metrics: metrics.DefaultMetrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Dir returns the output directory.
func (s *Store) Dir() string { return s.dir }

// SaveAnalysisResults persists the combined transcription and entity
// extraction output. Missing correlation identifiers are generated, and the
// encounter is updated in place so downstream artefacts share them.
func (s *Store) SaveAnalysisResults(enc *models.Encounter) (string, error) {
	if enc.EncounterID == "" {
		enc.EncounterID = s.newID()
	}
	if enc.CorrelationID == "" {
		enc.CorrelationID = s.newID()
	}
	enc.Timestamp = s.now().Unix()

	return s.write(PrefixAnalysis, enc.EncounterID, enc.Timestamp, enc)
}

// SaveSOAPNote persists a generated SOAP note wrapped in its correlation
// metadata.
func (s *Store) SaveSOAPNote(data map[string]any, encounterID, correlationID string) (string, error) {
	return s.saveWrapped("soap_note", PrefixSOAPNote, data, encounterID, correlationID)
}

// SaveDecisionSupport persists decision support prompts wrapped in their
// correlation metadata.
func (s *Store) SaveDecisionSupport(data map[string]any, encounterID, correlationID string) (string, error) {
	return s.saveWrapped("decision_support", PrefixDecisionSupport, data, encounterID, correlationID)
}

// SavePatientArtefacts persists the patient artefact bundle wrapped in its
// correlation metadata.
func (s *Store) SavePatientArtefacts(data map[string]any, encounterID, correlationID string) (string, error) {
	return s.saveWrapped("patient_artefacts", PrefixPatientArtefacts, data, encounterID, correlationID)
}

func (s *Store) saveWrapped(key, prefix string, data map[string]any, encounterID, correlationID string) (string, error) {
	if encounterID == "" {
		encounterID = s.newID()
	}
	if correlationID == "" {
		correlationID = s.newID()
	}
	ts := s.now().Unix()

	wrapped := map[string]any{
		"encounter_id":   encounterID,
		"correlation_id": correlationID,
		"timestamp":      ts,
		key:              data,
	}
	return s.write(prefix, encounterID, ts, wrapped)
}

func (s *Store) write(prefix, encounterID string, ts int64, payload any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", s.dir, err)
	}

	name := fmt.Sprintf("%s_%s_%d.json", prefix, encounterID, ts)
	path := filepath.Join(s.dir, name)

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", prefix, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	s.metrics.RecordArtefactWritten(prefix)
	log.Info().
		Str("kind", prefix).
		Str("encounterId", encounterID).
		Str("path", path).
		Msg("artefact saved")
	return path, nil
}

// LoadEncounter reads a previously saved analysis results file.
func (s *Store) LoadEncounter(path string) (*models.Encounter, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis file: %w", err)
	}
	var enc models.Encounter
	if err := json.Unmarshal(b, &enc); err != nil {
		return nil, fmt.Errorf("parse analysis file %s: %w", path, err)
	}
	return &enc, nil
}

// Record describes one persisted output file.
type Record struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	EncounterID string `json:"encounter_id"`
	Timestamp   int64  `json:"timestamp"`
}

// List returns the persisted records, newest first. Files that do not match
// the naming scheme are skipped.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output dir %s: %w", s.dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rec, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp > records[j].Timestamp
		}
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// Load reads one persisted record by its file name. The name must not carry
// path separators.
func (s *Store) Load(name string) (map[string]any, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid record name %q", name)
	}
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", name, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", name, err)
	}
	return payload, nil
}

// parseName splits "<kind>_<encounterID>_<timestamp>.json" from the right so
// kinds containing underscores parse correctly.
func parseName(name string) (Record, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return Record{}, false
	}
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return Record{}, false
	}
	ts, err := strconv.ParseInt(base[i+1:], 10, 64)
	if err != nil {
		return Record{}, false
	}
	rest := base[:i]
	j := strings.LastIndexByte(rest, '_')
	if j < 0 {
		return Record{}, false
	}
	return Record{
		Name:        name,
		Kind:        rest[:j],
		EncounterID: rest[j+1:],
		Timestamp:   ts,
	}, true
}
