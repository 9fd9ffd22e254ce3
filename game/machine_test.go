// game/machine_test.go
package game

import (
	"testing"
)

// mockState is a test double for TurnState.
type mockState struct {
	id      StateID
	entered int
	exited  int
}

func (m *mockState) OnEnter()       { m.entered++ }
func (m *mockState) OnExit()        { m.exited++ }
func (m *mockState) GetID() StateID { return m.id }

func (m *mockState) HandleAction(string, []byte) error { return nil }

func TestNewStateMachineEntersInitialState(t *testing.T) {
	initial := &mockState{id: StateAwaitingRoll}
	machine := NewStateMachine(initial)

	if machine.Current() != initial {
		t.Fatal("Current should return the initial state")
	}
	if initial.entered != 1 {
		t.Fatalf("initial state entered %d times, want 1", initial.entered)
	}
}

func TestChangeStateRunsHooks(t *testing.T) {
	first := &mockState{id: StateAwaitingRoll}
	second := &mockState{id: StateMoving}
	machine := NewStateMachine(first)

	if err := machine.ChangeState(second); err != nil {
		t.Fatalf("ChangeState: %v", err)
	}
	if first.exited != 1 {
		t.Fatalf("first state exited %d times, want 1", first.exited)
	}
	if second.entered != 1 {
		t.Fatalf("second state entered %d times, want 1", second.entered)
	}
	if machine.Current() != second {
		t.Fatal("Current should return the new state")
	}
}

func TestGuardedTransition(t *testing.T) {
	first := &mockState{id: StateActionComplete}
	second := &mockState{id: StateTurnEnded}
	machine := NewStateMachine(first)

	allowed := false
	machine.AddTransition(StateActionComplete, StateTurnEnded, func() bool {
		return allowed
	})

	if err := machine.ChangeState(second); err != ErrTransitionNotAllowed {
		t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
	}
	if machine.Current() != first {
		t.Fatal("refused transition must not change state")
	}
	if second.entered != 0 {
		t.Fatal("refused transition must not enter the target state")
	}

	allowed = true
	if err := machine.ChangeState(second); err != nil {
		t.Fatalf("ChangeState after guard opens: %v", err)
	}
	if machine.Current() != second {
		t.Fatal("allowed transition should change state")
	}
}

func TestForceStateBypassesGuard(t *testing.T) {
	first := &mockState{id: StateActionComplete}
	second := &mockState{id: StateTurnEnded}
	machine := NewStateMachine(first)
	machine.AddTransition(StateActionComplete, StateTurnEnded, func() bool {
		return false
	})

	machine.ForceState(second)
	if machine.Current() != second {
		t.Fatal("ForceState must install the state regardless of guards")
	}
	if first.exited != 1 || second.entered != 1 {
		t.Fatal("ForceState must still run the lifecycle hooks")
	}
}

func TestUnguardedTransitionsAlwaysAllowed(t *testing.T) {
	first := &mockState{id: StateAwaitingRoll}
	second := &mockState{id: StateAwaitingPathCard}
	machine := NewStateMachine(first)
	machine.AddTransition(StateActionComplete, StateTurnEnded, func() bool {
		return false
	})

	if err := machine.ChangeState(second); err != nil {
		t.Fatalf("unrelated guard must not block this transition: %v", err)
	}
}
