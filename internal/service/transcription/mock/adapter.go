// Package mock provides a transcription adapter for testing and local runs
// without AWS credentials. It produces a small two-speaker encounter.
package mock

import (
	"context"
	"fmt"
	"path/filepath"

	"clinical-scribe/internal/service/transcription"
)

// SampleDocument is the transcript document the mock adapter returns.
const SampleDocument = `{
  "jobName": "mock-medical-transcription-1",
  "accountId": "000000000000",
  "status": "COMPLETED",
  "results": {
    "transcripts": [{"transcript": "I have had a headache for three days. Any nausea or vomiting? No vomiting."}],
    "speaker_labels": {
      "segments": [
        {"speaker_label": "spk_0", "start_time": "0.0", "end_time": "4.0"},
        {"speaker_label": "spk_1", "start_time": "4.1", "end_time": "6.0"},
        {"speaker_label": "spk_0", "start_time": "6.1", "end_time": "8.0"}
      ]
    },
    "items": [
      {"type": "pronunciation", "start_time": "0.1", "end_time": "0.3", "alternatives": [{"content": "I"}]},
      {"type": "pronunciation", "start_time": "0.4", "end_time": "0.7", "alternatives": [{"content": "have"}]},
      {"type": "pronunciation", "start_time": "0.8", "end_time": "1.1", "alternatives": [{"content": "had"}]},
      {"type": "pronunciation", "start_time": "1.2", "end_time": "1.5", "alternatives": [{"content": "a"}]},
      {"type": "pronunciation", "start_time": "1.6", "end_time": "2.2", "alternatives": [{"content": "headache"}]},
      {"type": "pronunciation", "start_time": "4.2", "end_time": "4.5", "alternatives": [{"content": "Any"}]},
      {"type": "pronunciation", "start_time": "4.6", "end_time": "5.1", "alternatives": [{"content": "nausea"}]},
      {"type": "pronunciation", "start_time": "6.2", "end_time": "6.5", "alternatives": [{"content": "No"}]},
      {"type": "pronunciation", "start_time": "6.6", "end_time": "7.2", "alternatives": [{"content": "vomiting"}]}
    ]
  }
}`

// Adapter implements transcription.Adapter with canned results.
type Adapter struct {
	// FailWith, when set, makes Transcribe return this error. Simulates a
	// job reaching the FAILED state.
	FailWith error

	uploads     []string
	transcribed []string
}

// New creates a new mock transcription adapter.
func New() *Adapter {
	return &Adapter{}
}

// Upload records the call and returns a fake S3 URI.
func (a *Adapter) Upload(ctx context.Context, localPath, key string) (string, error) {
	a.uploads = append(a.uploads, localPath)
	if key == "" {
		key = "recordings/" + filepath.Base(localPath)
	}
	return fmt.Sprintf("s3://mock-bucket/%s", key), nil
}

// Transcribe returns the canned transcript document.
func (a *Adapter) Transcribe(ctx context.Context, audioURI string) (*transcription.Job, error) {
	a.transcribed = append(a.transcribed, audioURI)
	if a.FailWith != nil {
		return nil, a.FailWith
	}
	doc, err := transcription.ParseDocument([]byte(SampleDocument))
	if err != nil {
		return nil, err
	}
	return &transcription.Job{Name: doc.JobName, Status: doc.Status, Document: doc}, nil
}

// Uploads returns the local paths passed to Upload.
func (a *Adapter) Uploads() []string { return a.uploads }

// Transcribed returns the audio URIs passed to Transcribe.
func (a *Adapter) Transcribed() []string { return a.transcribed }
