package state

import (
	"errors"
	"sync"
)

// Status 房间生命周期状态
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusOngoing Status = "ongoing"
	StatusEnded   Status = "ended"
)

// Phase 回合内阶段
type Phase string

const (
	PhaseNone       Phase = "none"
	PhaseDiscussion Phase = "discussion"
	PhaseVoting     Phase = "voting"
)

// ErrTransitionNotAllowed is returned when a phase transition is not allowed.
var ErrTransitionNotAllowed = errors.New("phase transition not allowed")

// Step is a single point in the room lifecycle: status plus phase.
type Step struct {
	Status Status
	Phase  Phase
}

var (
	StepWaiting    = Step{StatusWaiting, PhaseNone}
	StepDiscussion = Step{StatusOngoing, PhaseDiscussion}
	StepVoting     = Step{StatusOngoing, PhaseVoting}
	StepEnded      = Step{StatusEnded, PhaseNone}
)

// Consistent reports whether a status/phase pair satisfies the room
// invariant: ongoing rooms are in discussion or voting, all other rooms
// carry no phase.
func Consistent(s Status, p Phase) bool {
	if s == StatusOngoing {
		return p == PhaseDiscussion || p == PhaseVoting
	}
	return p == PhaseNone
}

// Machine validates host-gated room transitions against a fixed table.
type Machine struct {
	transitions map[Step]map[Step]bool
	mutex       sync.RWMutex
}

// NewMachine builds the room lifecycle machine:
// waiting -> discussion -> voting -> ended, with ended -> discussion
// re-entered on every subsequent round. Nothing returns to waiting.
func NewMachine() *Machine {
	m := &Machine{
		transitions: make(map[Step]map[Step]bool),
	}
	m.Allow(StepWaiting, StepDiscussion)
	m.Allow(StepDiscussion, StepVoting)
	m.Allow(StepVoting, StepEnded)
	m.Allow(StepEnded, StepDiscussion)
	return m
}

// Allow registers a permitted transition.
func (m *Machine) Allow(from, to Step) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.transitions[from]; !exists {
		m.transitions[from] = make(map[Step]bool)
	}
	m.transitions[from][to] = true
}

// Guard returns ErrTransitionNotAllowed unless from -> to is in the table.
func (m *Machine) Guard(from, to Step) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if allowed, exists := m.transitions[from]; exists && allowed[to] {
		return nil
	}
	return ErrTransitionNotAllowed
}
