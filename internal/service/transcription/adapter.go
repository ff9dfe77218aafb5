// Package transcription defines the interface for batch medical
// transcription providers.
package transcription

import "context"

// Job describes a completed transcription run.
type Job struct {
	Name     string
	Status   string
	Document *Document
}

// Adapter defines the interface for batch transcription providers.
// The flow is submit -> poll on a fixed interval -> fetch; providers report
// job failures through the returned error.
type Adapter interface {
	// Upload stores a local recording and returns the URI a job can read.
	Upload(ctx context.Context, localPath, key string) (string, error)

	// Transcribe submits a transcription job for the audio at audioURI,
	// polls until the job reaches a terminal state, and returns the parsed
	// transcript document.
	Transcribe(ctx context.Context, audioURI string) (*Job, error)
}
