package tts

import (
	"slices"
	"sync"
)

// StateType represents the lifecycle state of a bridge.
type StateType int

const (
	// StateUninitialized indicates no model has been loaded yet.
	StateUninitialized StateType = iota
	// StateReady indicates the bridge can synthesize.
	StateReady
	// StateClosed indicates the worker has been shut down.
	StateClosed
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateMachine guards bridge state transitions. It is safe for concurrent
// use.
type StateMachine struct {
	mu          sync.Mutex
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func()
}

// NewStateMachine creates a state machine in StateUninitialized. Ready is
// never left except by closing.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateUninitialized,
		transitions: map[StateType][]StateType{
			StateUninitialized: {StateReady, StateClosed},
			StateReady:         {StateClosed},
		},
		onEnter: make(map[StateType]func()),
	}
}

// Transition moves to the given state if the move is allowed and reports
// whether it happened.
func (sm *StateMachine) Transition(to StateType) bool {
	sm.mu.Lock()
	if !slices.Contains(sm.transitions[sm.current], to) {
		sm.mu.Unlock()
		return false
	}
	sm.current = to
	enterFn := sm.onEnter[to]
	sm.mu.Unlock()

	if enterFn != nil {
		enterFn()
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.onEnter[state] = fn
}
