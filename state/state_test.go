package state

import (
	"testing"
)

func TestMachine_AllowedTransitions(t *testing.T) {
	machine := NewMachine()

	allowed := []struct {
		from, to Step
	}{
		{StepWaiting, StepDiscussion},
		{StepDiscussion, StepVoting},
		{StepVoting, StepEnded},
		{StepEnded, StepDiscussion},
	}
	for _, tr := range allowed {
		if err := machine.Guard(tr.from, tr.to); err != nil {
			t.Errorf("Transition %v -> %v should be allowed, got: %v", tr.from, tr.to, err)
		}
	}
}

func TestMachine_BlockedTransitions(t *testing.T) {
	machine := NewMachine()

	blocked := []struct {
		from, to Step
	}{
		{StepWaiting, StepVoting},  // cannot skip discussion
		{StepWaiting, StepEnded},   // cannot end before starting
		{StepDiscussion, StepDiscussion},
		{StepDiscussion, StepEnded}, // resolution goes through voting
		{StepVoting, StepDiscussion},
		{StepEnded, StepWaiting}, // nothing returns to waiting
		{StepEnded, StepVoting},
	}
	for _, tr := range blocked {
		if err := machine.Guard(tr.from, tr.to); err != ErrTransitionNotAllowed {
			t.Errorf("Transition %v -> %v should be blocked, got: %v", tr.from, tr.to, err)
		}
	}
}

func TestMachine_Allow(t *testing.T) {
	machine := NewMachine()
	custom := Step{StatusEnded, PhaseNone}

	if err := machine.Guard(custom, StepWaiting); err != ErrTransitionNotAllowed {
		t.Fatalf("Unregistered transition should be blocked, got: %v", err)
	}
	machine.Allow(custom, StepWaiting)
	if err := machine.Guard(custom, StepWaiting); err != nil {
		t.Errorf("Registered transition should be allowed, got: %v", err)
	}
}

func TestConsistent(t *testing.T) {
	cases := []struct {
		status Status
		phase  Phase
		want   bool
	}{
		{StatusWaiting, PhaseNone, true},
		{StatusOngoing, PhaseDiscussion, true},
		{StatusOngoing, PhaseVoting, true},
		{StatusEnded, PhaseNone, true},
		{StatusWaiting, PhaseDiscussion, false},
		{StatusWaiting, PhaseVoting, false},
		{StatusOngoing, PhaseNone, false},
		{StatusEnded, PhaseVoting, false},
	}
	for _, c := range cases {
		if got := Consistent(c.status, c.phase); got != c.want {
			t.Errorf("Consistent(%s, %s) = %v, want %v", c.status, c.phase, got, c.want)
		}
	}
}
