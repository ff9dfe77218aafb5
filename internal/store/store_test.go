package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clinical-scribe/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	ids := []string{"id-1", "id-2", "id-3", "id-4"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	return s
}

func TestSaveAnalysisResults(t *testing.T) {
	s := testStore(t)
	enc := &models.Encounter{FullTranscript: "hello doctor"}

	path, err := s.SaveAnalysisResults(enc)
	if err != nil {
		t.Fatalf("SaveAnalysisResults() error = %v", err)
	}
	if enc.EncounterID != "id-1" || enc.CorrelationID != "id-2" {
		t.Errorf("ids not generated: %+v", enc)
	}
	if enc.Timestamp != 1700000000 {
		t.Errorf("timestamp = %d", enc.Timestamp)
	}

	wantName := "medical_analysis_results_id-1_1700000000.json"
	if filepath.Base(path) != wantName {
		t.Errorf("file name = %s, want %s", filepath.Base(path), wantName)
	}

	loaded, err := s.LoadEncounter(path)
	if err != nil {
		t.Fatalf("LoadEncounter() error = %v", err)
	}
	if loaded.FullTranscript != "hello doctor" || loaded.EncounterID != "id-1" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestSaveAnalysisResultsKeepsExistingIDs(t *testing.T) {
	s := testStore(t)
	enc := &models.Encounter{EncounterID: "enc-x", CorrelationID: "corr-y"}

	path, err := s.SaveAnalysisResults(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(filepath.Base(path), "enc-x") {
		t.Errorf("existing encounter id not used in name: %s", path)
	}
	if enc.CorrelationID != "corr-y" {
		t.Errorf("correlation id overwritten: %s", enc.CorrelationID)
	}
}

func TestSaveWrappedRecords(t *testing.T) {
	tests := []struct {
		name   string
		save   func(s *Store, data map[string]any) (string, error)
		prefix string
		key    string
	}{
		{
			name: "soap note",
			save: func(s *Store, data map[string]any) (string, error) {
				return s.SaveSOAPNote(data, "enc-1", "corr-1")
			},
			prefix: PrefixSOAPNote,
			key:    "soap_note",
		},
		{
			name: "decision support",
			save: func(s *Store, data map[string]any) (string, error) {
				return s.SaveDecisionSupport(data, "enc-1", "corr-1")
			},
			prefix: PrefixDecisionSupport,
			key:    "decision_support",
		},
		{
			name: "patient artefacts",
			save: func(s *Store, data map[string]any) (string, error) {
				return s.SavePatientArtefacts(data, "enc-1", "corr-1")
			},
			prefix: PrefixPatientArtefacts,
			key:    "patient_artefacts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			path, err := tt.save(s, map[string]any{"payload": "value"})
			if err != nil {
				t.Fatalf("save error = %v", err)
			}
			if !strings.HasPrefix(filepath.Base(path), tt.prefix+"_enc-1_") {
				t.Errorf("file name = %s, want prefix %s_enc-1_", filepath.Base(path), tt.prefix)
			}

			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var wrapped map[string]any
			if err := json.Unmarshal(b, &wrapped); err != nil {
				t.Fatal(err)
			}
			if wrapped["encounter_id"] != "enc-1" || wrapped["correlation_id"] != "corr-1" {
				t.Errorf("metadata missing: %v", wrapped)
			}
			inner, ok := wrapped[tt.key].(map[string]any)
			if !ok || inner["payload"] != "value" {
				t.Errorf("wrapped payload under %q = %v", tt.key, wrapped[tt.key])
			}
		})
	}
}

func TestListAndLoad(t *testing.T) {
	s := testStore(t)
	times := []int64{100, 300, 200}
	s.now = func() time.Time {
		ts := times[0]
		times = times[1:]
		return time.Unix(ts, 0)
	}

	if _, err := s.SaveSOAPNote(map[string]any{"plan": "rest"}, "enc-a", "corr-a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveDecisionSupport(map[string]any{"prompts": []string{}}, "enc-b", "corr-b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SavePatientArtefacts(map[string]any{}, "enc-c", "corr-c"); err != nil {
		t.Fatal(err)
	}
	// A stray file should be skipped.
	if err := os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List() returned %d records, want 3", len(records))
	}
	if records[0].EncounterID != "enc-b" {
		t.Errorf("newest first ordering broken: %+v", records)
	}
	if records[0].Kind != PrefixDecisionSupport {
		t.Errorf("kind = %s", records[0].Kind)
	}

	payload, err := s.Load(records[0].Name)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if payload["encounter_id"] != "enc-b" {
		t.Errorf("loaded payload = %v", payload)
	}
}

func TestListMissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope"))
	records, err := s.List()
	if err != nil {
		t.Fatalf("List() on missing dir error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("List() = %v, want empty", records)
	}
}

func TestLoadRejectsPathTraversal(t *testing.T) {
	s := testStore(t)
	for _, name := range []string{"../secret.json", "a/b.json", ".."} {
		if _, err := s.Load(name); err == nil {
			t.Errorf("Load(%q) should be rejected", name)
		}
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		wantOK  bool
		kind    string
		encID   string
		ts      int64
	}{
		{"soap_output_abc-123_1700000000.json", true, "soap_output", "abc-123", 1700000000},
		{"medical_analysis_results_id_42.json", true, "medical_analysis_results", "id", 42},
		{"notes.txt", false, "", "", 0},
		{"no-underscores.json", false, "", "", 0},
		{"kind_id_notanumber.json", false, "", "", 0},
	}
	for _, tt := range tests {
		rec, ok := parseName(tt.name)
		if ok != tt.wantOK {
			t.Errorf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if rec.Kind != tt.kind || rec.EncounterID != tt.encID || rec.Timestamp != tt.ts {
			t.Errorf("parseName(%q) = %+v", tt.name, rec)
		}
	}
}
