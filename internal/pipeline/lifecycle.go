// Package pipeline orchestrates the encounter flow: upload, transcription,
// entity extraction, artefact generation and persistence.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of a pipeline run.
type State int

const (
	// StateCreated - Run accepted, nothing started yet.
	StateCreated State = iota
	// StateTranscribing - Audio uploaded, transcription job in flight.
	StateTranscribing
	// StateAnalyzing - Transcript available, entity extraction running.
	StateAnalyzing
	// StateGenerating - Analysis saved, artefact generation running.
	StateGenerating
	// StateCompleted - All artefacts generated and saved.
	StateCompleted
	// StateFailed - Run aborted in some stage. Terminal.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateTranscribing:
		return "TRANSCRIBING"
	case StateAnalyzing:
		return "ANALYZING"
	case StateGenerating:
		return "GENERATING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true if the state is terminal (COMPLETED or FAILED).
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Errors for invalid state transitions.
var (
	ErrRunFinished       = errors.New("run already in a terminal state")
	ErrInvalidTransition = errors.New("invalid run state transition")
)

// Lifecycle manages the state machine for a single pipeline run.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	CREATED → TRANSCRIBING → ANALYZING → GENERATING → COMPLETED
//	   │           │             │           │
//	   └───────────┴─────────────┴───────────┴── Fail(stage) ──→ FAILED
//
// Stages advance strictly in order; a run cannot skip a stage or move
// backwards. Fail is allowed from any non-terminal state and records the
// stage that aborted the run.
type Lifecycle struct {
	mu          sync.RWMutex
	runId       string
	state       State
	failedStage string
}

// NewLifecycle creates a new run lifecycle in CREATED state.
func NewLifecycle(runId string) *Lifecycle {
	return &Lifecycle{
		runId: runId,
		state: StateCreated,
	}
}

// RunId returns the run ID.
func (l *Lifecycle) RunId() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.runId
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// FailedStage returns the stage recorded by Fail, or "" if the run has not
// failed.
func (l *Lifecycle) FailedStage() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.failedStage
}

// IsFinished returns true if the run is in a terminal state.
func (l *Lifecycle) IsFinished() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.IsTerminal()
}

// IsFailed returns true if the run aborted.
func (l *Lifecycle) IsFailed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateFailed
}

// Advance moves the run to the next stage. Only the immediate successor of
// the current state is accepted; FAILED is reached through Fail, never
// through Advance.
func (l *Lifecycle) Advance(next State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.IsTerminal() {
		return ErrRunFinished
	}
	if next == StateFailed || next != l.state+1 {
		return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, l.state, next)
	}
	l.state = next
	return nil
}

// Fail transitions the run to FAILED and records the aborting stage.
// Returns true if the run was failed, false if already in a terminal state.
func (l *Lifecycle) Fail(stage string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateFailed
	l.failedStage = stage
	return true
}
