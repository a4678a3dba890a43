package tts

import "testing"

// TestStateTypeString tests the String() method for StateType.
func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state    StateType
		expected string
	}{
		{StateUninitialized, "uninitialized"},
		{StateReady, "ready"},
		{StateClosed, "closed"},
		{StateType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.state.String(); result != tt.expected {
				t.Errorf("StateType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestStateMachineTransitions tests valid and invalid transitions.
func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name     string
		path     []StateType
		expected []bool
		final    StateType
	}{
		{
			name:     "initialize then close",
			path:     []StateType{StateReady, StateClosed},
			expected: []bool{true, true},
			final:    StateClosed,
		},
		{
			name:     "close without initializing",
			path:     []StateType{StateClosed},
			expected: []bool{true},
			final:    StateClosed,
		},
		{
			name:     "ready is not left for uninitialized",
			path:     []StateType{StateReady, StateUninitialized},
			expected: []bool{true, false},
			final:    StateReady,
		},
		{
			name:     "closed is terminal",
			path:     []StateType{StateClosed, StateReady},
			expected: []bool{true, false},
			final:    StateClosed,
		},
		{
			name:     "double initialize",
			path:     []StateType{StateReady, StateReady},
			expected: []bool{true, false},
			final:    StateReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := NewStateMachine()
			for i, to := range tt.path {
				if got := sm.Transition(to); got != tt.expected[i] {
					t.Errorf("Transition(%v) step %d = %v, want %v", to, i, got, tt.expected[i])
				}
			}
			if sm.Current() != tt.final {
				t.Errorf("Current() = %v, want %v", sm.Current(), tt.final)
			}
		})
	}
}

// TestStateMachineOnEnter tests enter callbacks.
func TestStateMachineOnEnter(t *testing.T) {
	sm := NewStateMachine()

	entered := 0
	sm.OnEnter(StateReady, func() { entered++ })

	sm.Transition(StateReady)
	sm.Transition(StateReady)

	if entered != 1 {
		t.Errorf("OnEnter ran %d times, want 1", entered)
	}
}
