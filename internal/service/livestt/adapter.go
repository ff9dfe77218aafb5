// Package livestt defines the interface for streaming speech-to-text
// providers used by the live dictation mode.
package livestt

import "context"

// Callback receives transcript results from the streaming provider.
type Callback interface {
	// OnPartial is called when an interim transcript is received. Partials
	// for the same utterance overwrite each other.
	OnPartial(text string)

	// OnFinal is called when a final transcript is received.
	OnFinal(text string, confidence float64)

	// OnError is called when the stream fails. No further callbacks follow.
	OnError(err error)
}

// Adapter defines the interface for streaming transcription providers.
type Adapter interface {
	// Start begins a streaming transcription session.
	Start(ctx context.Context, cb Callback) error

	// SendAudio sends raw PCM16 audio bytes to the provider.
	SendAudio(ctx context.Context, audio []byte) error

	// Close ends the session and releases resources.
	Close() error
}
