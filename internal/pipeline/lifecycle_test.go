package pipeline

import (
	"errors"
	"testing"
)

func TestLifecycle_InitialState(t *testing.T) {
	lc := NewLifecycle("run-1")

	if lc.State() != StateCreated {
		t.Errorf("expected StateCreated, got %v", lc.State())
	}
	if lc.RunId() != "run-1" {
		t.Errorf("expected run-1, got %v", lc.RunId())
	}
	if lc.IsFinished() {
		t.Error("expected IsFinished to be false")
	}
	if lc.IsFailed() {
		t.Error("expected IsFailed to be false")
	}
}

func TestLifecycle_AdvanceThroughAllStages(t *testing.T) {
	lc := NewLifecycle("run-1")

	stages := []State{StateTranscribing, StateAnalyzing, StateGenerating, StateCompleted}
	for _, next := range stages {
		if err := lc.Advance(next); err != nil {
			t.Fatalf("Advance(%v) error = %v", next, err)
		}
		if lc.State() != next {
			t.Errorf("state = %v, want %v", lc.State(), next)
		}
	}

	if !lc.IsFinished() {
		t.Error("expected IsFinished after COMPLETED")
	}
	if lc.IsFailed() {
		t.Error("COMPLETED run should not report failed")
	}
}

func TestLifecycle_AdvanceCannotSkipStages(t *testing.T) {
	lc := NewLifecycle("run-1")

	if err := lc.Advance(StateAnalyzing); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("skipping a stage: expected ErrInvalidTransition, got %v", err)
	}
	if lc.State() != StateCreated {
		t.Errorf("failed transition should not change state, got %v", lc.State())
	}
}

func TestLifecycle_AdvanceCannotMoveBackwards(t *testing.T) {
	lc := NewLifecycle("run-1")
	lc.Advance(StateTranscribing)
	lc.Advance(StateAnalyzing)

	if err := lc.Advance(StateTranscribing); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("moving backwards: expected ErrInvalidTransition, got %v", err)
	}
}

func TestLifecycle_AdvanceCannotReachFailed(t *testing.T) {
	lc := NewLifecycle("run-1")

	if err := lc.Advance(StateFailed); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Advance(FAILED): expected ErrInvalidTransition, got %v", err)
	}
}

func TestLifecycle_AdvanceFailsAfterTerminal(t *testing.T) {
	lc := NewLifecycle("run-1")
	lc.Advance(StateTranscribing)
	lc.Fail("transcribe")

	if err := lc.Advance(StateAnalyzing); !errors.Is(err, ErrRunFinished) {
		t.Errorf("expected ErrRunFinished, got %v", err)
	}
}

func TestLifecycle_Fail(t *testing.T) {
	lc := NewLifecycle("run-1")
	lc.Advance(StateTranscribing)

	if !lc.Fail("transcribe") {
		t.Error("expected Fail to return true from TRANSCRIBING")
	}
	if lc.State() != StateFailed {
		t.Errorf("expected StateFailed, got %v", lc.State())
	}
	if !lc.IsFailed() {
		t.Error("expected IsFailed to be true")
	}
	if lc.FailedStage() != "transcribe" {
		t.Errorf("failed stage = %q, want transcribe", lc.FailedStage())
	}
}

func TestLifecycle_Fail_Idempotent(t *testing.T) {
	lc := NewLifecycle("run-1")

	if !lc.Fail("upload") {
		t.Error("expected first Fail to return true")
	}
	if lc.Fail("analyze") {
		t.Error("expected second Fail to return false")
	}
	if lc.FailedStage() != "upload" {
		t.Errorf("failed stage overwritten: %q", lc.FailedStage())
	}
}

func TestLifecycle_Fail_AfterCompleted(t *testing.T) {
	lc := NewLifecycle("run-1")
	for _, next := range []State{StateTranscribing, StateAnalyzing, StateGenerating, StateCompleted} {
		if err := lc.Advance(next); err != nil {
			t.Fatal(err)
		}
	}

	if lc.Fail("late") {
		t.Error("expected Fail to return false after COMPLETED")
	}
	if lc.State() != StateCompleted {
		t.Errorf("expected StateCompleted, got %v", lc.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateCreated, "CREATED"},
		{StateTranscribing, "TRANSCRIBING"},
		{StateAnalyzing, "ANALYZING"},
		{StateGenerating, "GENERATING"},
		{StateCompleted, "COMPLETED"},
		{StateFailed, "FAILED"},
		{State(99), "UNKNOWN(99)"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state      State
		isTerminal bool
	}{
		{StateCreated, false},
		{StateTranscribing, false},
		{StateAnalyzing, false},
		{StateGenerating, false},
		{StateCompleted, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.isTerminal {
			t.Errorf("State(%s).IsTerminal() = %v, want %v", tt.state, got, tt.isTerminal)
		}
	}
}
