// Package mock provides a streaming transcription adapter for testing
// without cloud credentials. It emits progressive partials and exactly one
// final transcript per utterance, synchronously from SendAudio.
package mock

import (
	"context"
	"sync"

	"clinical-scribe/internal/service/livestt"
)

// Utterance is one simulated dictation with progressive transcripts.
type Utterance struct {
	Partials   []string
	Final      string
	Confidence float64
}

// DefaultUtterance is the dictation the mock replays when none is given.
var DefaultUtterance = Utterance{
	Partials:   []string{"Patient reports", "Patient reports headaches", "Patient reports headaches for two"},
	Final:      "Patient reports headaches for two weeks with no vomiting.",
	Confidence: 0.93,
}

// Adapter implements livestt.Adapter with canned transcripts.
type Adapter struct {
	// FailWith, when set, is delivered through OnError on the next SendAudio.
	FailWith error

	mu           sync.Mutex
	cb           livestt.Callback
	utterance    Utterance
	partialIndex int
	finalSent    bool
	closed       bool
}

// New creates a mock adapter replaying the default utterance.
func New() *Adapter {
	return &Adapter{utterance: DefaultUtterance}
}

// NewWithUtterance creates a mock adapter replaying the given utterance.
func NewWithUtterance(u Utterance) *Adapter {
	return &Adapter{utterance: u}
}

// Start records the callback.
func (a *Adapter) Start(ctx context.Context, cb livestt.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cb = cb
	return nil
}

// SendAudio emits the next partial, or the final once partials are
// exhausted. Further audio after the final is ignored.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.cb == nil {
		return nil
	}
	if a.FailWith != nil {
		err := a.FailWith
		a.FailWith = nil
		a.cb.OnError(err)
		return nil
	}

	switch {
	case a.partialIndex < len(a.utterance.Partials):
		a.cb.OnPartial(a.utterance.Partials[a.partialIndex])
		a.partialIndex++
	case !a.finalSent:
		a.finalSent = true
		a.cb.OnFinal(a.utterance.Final, a.utterance.Confidence)
	}
	return nil
}

// Close ends the session. If no final was emitted yet the utterance final is
// delivered, mirroring a stream that is closed mid-dictation.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if !a.finalSent && a.cb != nil {
		a.finalSent = true
		a.cb.OnFinal(a.utterance.Final, a.utterance.Confidence)
	}
	return nil
}
