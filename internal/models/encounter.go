// Package models defines the data structures exchanged between the
// transcription, entity extraction and note generation stages.
package models

// SpeakerSegment is one speaker-attributed span of the transcript.
type SpeakerSegment struct {
	Speaker   string `json:"speaker"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Text      string `json:"text"`
}

// Entity is a tagged medical or PHI entity returned by entity extraction.
type Entity struct {
	Category    string  `json:"category,omitempty"`
	Type        string  `json:"type"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
	BeginOffset int64   `json:"begin_offset"`
	EndOffset   int64   `json:"end_offset"`
}

// EntitySet groups entities with the extraction metadata returned alongside.
type EntitySet struct {
	Entities        []Entity `json:"entities"`
	PaginationToken string   `json:"pagination_token,omitempty"`
	ModelVersion    string   `json:"model_version,omitempty"`
}

// SegmentAnalysis holds per-speaker-segment entity extraction results.
type SegmentAnalysis struct {
	Speaker     string   `json:"speaker"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Text        string   `json:"text"`
	Entities    []Entity `json:"entities"`
	PHIEntities []Entity `json:"phi_entities"`
	Error       string   `json:"error,omitempty"`
}

// TranscriptMetadata carries identifying fields from the transcript document.
type TranscriptMetadata struct {
	JobName   string `json:"job_name"`
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

// Encounter is the combined output of transcription plus entity extraction.
// This is the payload handed to the note generators.
type Encounter struct {
	TranscriptionJobName string             `json:"transcription_job_name"`
	TranscriptionStatus  string             `json:"transcription_status"`
	AudioFormat          string             `json:"audio_format"`
	FullTranscript       string             `json:"full_transcript"`
	SpeakerSegments      []SpeakerSegment   `json:"speaker_segments"`
	MedicalEntities      EntitySet          `json:"medical_entities"`
	PHIEntities          EntitySet          `json:"phi_entities"`
	SpeakerAnalysis      []SegmentAnalysis  `json:"speaker_analysis"`
	TranscriptMetadata   TranscriptMetadata `json:"transcript_metadata"`

	// Correlation fields, filled in when the encounter is persisted.
	EncounterID   string `json:"encounter_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	Timestamp     int64  `json:"timestamp,omitempty"`

	SourceFile *SourceFile `json:"source_file,omitempty"`
}

// SourceFile records where the encounter recording came from.
type SourceFile struct {
	LocalPath string `json:"local_path"`
	S3URI     string `json:"s3_uri"`
}

// ArtefactEvent is published when an artefact has been generated and saved.
type ArtefactEvent struct {
	EventType     string `json:"eventType"`
	EncounterID   string `json:"encounterId"`
	CorrelationID string `json:"correlationId"`
	Artefact      string `json:"artefact"`
	Model         string `json:"model,omitempty"`
	Path          string `json:"path"`
	Timestamp     int64  `json:"timestamp"`
}

// AnalysisEvent is published when transcription + entity extraction completes.
type AnalysisEvent struct {
	EventType     string `json:"eventType"`
	EncounterID   string `json:"encounterId"`
	CorrelationID string `json:"correlationId"`
	JobName       string `json:"jobName"`
	Segments      int    `json:"segments"`
	Entities      int    `json:"entities"`
	Timestamp     int64  `json:"timestamp"`
}
