// game/machine.go
package game

import (
	"errors"
)

// StateID identifies one turn lifecycle state.
type StateID string

const (
	StateAwaitingStartChoice   StateID = "awaiting_start_choice"
	StateAwaitingRoll          StateID = "awaiting_roll"
	StateMoving                StateID = "moving"
	StateAwaitingChoicepoint   StateID = "awaiting_choicepoint"
	StateAwaitingPathCard      StateID = "awaiting_path_card"
	StateAwaitingEndOfTurnCard StateID = "awaiting_end_of_turn_card"
	StateActionComplete        StateID = "action_complete"
	StateTurnEnded             StateID = "turn_ended"
)

// TurnState is one state of the turn lifecycle. HandleAction receives the
// acting player's id and the raw action payload.
type TurnState interface {
	OnEnter()
	OnExit()
	GetID() StateID
	HandleAction(playerID string, data []byte) error
}

// ErrTransitionNotAllowed is returned when a guarded state transition fails
// its condition.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// StateMachine drives the turn lifecycle. It carries no lock of its own:
// the owning session serializes all access.
type StateMachine struct {
	currentState TurnState
	transitions  map[StateID]map[StateID]func() bool
}

func NewStateMachine(initialState TurnState) *StateMachine {
	machine := &StateMachine{
		currentState: initialState,
		transitions:  make(map[StateID]map[StateID]func() bool),
	}
	initialState.OnEnter()
	return machine
}

// ChangeState moves to newState, running the guard condition registered for
// the transition, if any. OnExit/OnEnter fire only when the transition is
// allowed.
func (sm *StateMachine) ChangeState(newState TurnState) error {
	currentID := sm.currentState.GetID()
	newID := newState.GetID()

	if conditions, exists := sm.transitions[currentID]; exists {
		if condition, exists := conditions[newID]; exists {
			if condition != nil && !condition() {
				return ErrTransitionNotAllowed
			}
		}
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

	return nil
}

// ForceState installs newState unconditionally, bypassing any registered
// guard. It backs the abandoned-turn safety net.
func (sm *StateMachine) ForceState(newState TurnState) {
	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()
}

// Current returns the active state.
func (sm *StateMachine) Current() TurnState {
	return sm.currentState
}

// AddTransition registers a guard condition for a from→to transition.
// Transitions without a registered guard are always allowed.
func (sm *StateMachine) AddTransition(from StateID, to StateID, condition func() bool) {
	if _, exists := sm.transitions[from]; !exists {
		sm.transitions[from] = make(map[StateID]func() bool)
	}
	sm.transitions[from][to] = condition
}
