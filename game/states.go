// game/states.go
package game

import (
	"fmt"

	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/cards"
	"github.com/wfunc/crossroads/logger"
	"github.com/wfunc/crossroads/models"
)

// baseState carries the shared no-op lifecycle hooks.
type baseState struct {
	session *Session
}

func (st *baseState) OnEnter() {}
func (st *baseState) OnExit()  {}

// --- AWAITING_START_CHOICE ---------------------------------------------

// awaitingStartChoiceState waits for the player at START to pick a trail.
type awaitingStartChoiceState struct {
	session *Session
}

func (st *awaitingStartChoiceState) GetID() StateID { return StateAwaitingStartChoice }
func (st *awaitingStartChoiceState) OnExit()        {}

func (st *awaitingStartChoiceState) OnEnter() {
	s := st.session
	p, ok := s.currentPlayerLocked()
	if !ok {
		return
	}
	s.pendingChoices = append([]board.Branch(nil), s.board.Start.Branches...)
	s.presenter.HighlightChoices(p.ID, s.pendingChoices)
	s.scheduleBot()
}

func (st *awaitingStartChoiceState) HandleAction(playerID string, data []byte) error {
	s := st.session
	action, err := parseAction(data)
	if err != nil {
		return err
	}
	if action.Type != ActionChooseStart {
		return ErrWrongState
	}

	branch, ok := findBranch(s.pendingChoices, action.Path)
	if !ok {
		return fmt.Errorf("game: trail %q is not among the offered choices", action.Path)
	}

	p, _ := s.registry.Get(playerID)
	s.presenter.AnimateMovement(p.ID, p.Position, branch.Coord)
	p.Position = branch.Coord
	p.CurrentPath = branch.Path
	s.pendingChoices = nil

	s.setState(&awaitingRollState{session: s})
	return nil
}

// --- AWAITING_ROLL ------------------------------------------------------

type awaitingRollState struct {
	session *Session
}

func (st *awaitingRollState) GetID() StateID { return StateAwaitingRoll }
func (st *awaitingRollState) OnExit()        {}

func (st *awaitingRollState) OnEnter() {
	st.session.scheduleBot()
}

func (st *awaitingRollState) HandleAction(playerID string, data []byte) error {
	s := st.session
	action, err := parseAction(data)
	if err != nil {
		return err
	}
	if action.Type != ActionRoll {
		return ErrWrongState
	}

	p, _ := s.registry.Get(playerID)
	steps := s.rng.Intn(6) + 1
	s.presenter.Log("%s rolls a %d", p.Name, steps)
	logger.Log.Infof("session %s: %s rolled %d", s.ID, p.Name, steps)

	s.setState(&movingState{baseState{session: s}})
	s.resolveMovement(p, steps)
	return nil
}

// --- MOVING -------------------------------------------------------------

// movingState is transient: the session resolves movement and leaves it
// before any further action can arrive.
type movingState struct {
	baseState
}

func (st *movingState) GetID() StateID { return StateMoving }

func (st *movingState) HandleAction(string, []byte) error {
	return ErrWrongState
}

// --- AWAITING_CHOICEPOINT ----------------------------------------------

type awaitingChoicepointState struct {
	session *Session
}

func (st *awaitingChoicepointState) GetID() StateID { return StateAwaitingChoicepoint }
func (st *awaitingChoicepointState) OnExit()        {}

func (st *awaitingChoicepointState) OnEnter() {
	s := st.session
	if p, ok := s.currentPlayerLocked(); ok {
		s.presenter.HighlightChoices(p.ID, s.pendingChoices)
	}
	s.scheduleBot()
}

func (st *awaitingChoicepointState) HandleAction(playerID string, data []byte) error {
	s := st.session
	action, err := parseAction(data)
	if err != nil {
		return err
	}
	if action.Type != ActionChooseBranch {
		return ErrWrongState
	}

	branch, ok := findBranch(s.pendingChoices, action.Path)
	if !ok {
		return fmt.Errorf("game: trail %q is not among the offered choices", action.Path)
	}

	p, _ := s.registry.Get(playerID)
	s.presenter.AnimateMovement(p.ID, p.Position, branch.Coord)
	p.Position = branch.Coord
	p.CurrentPath = branch.Path
	p.ForcedPathChange = false
	s.pendingChoices = nil

	// The chosen branch is re-evaluated like a movement landing: it may
	// itself be a draw space or another branch point.
	space, found := s.board.FindSpace(branch.Coord, board.DefaultTolerance)
	if !found {
		logger.Log.Errorf("session %s: branch target (%v,%v) is not a space",
			s.ID, branch.Coord.X, branch.Coord.Y)
		s.forceTurnEnd()
		return nil
	}

	switch space.Type {
	case board.SpaceDraw, board.SpaceSpecialEvent:
		p.SpecialEventCount++
		s.setState(&awaitingPathCardState{session: s})
	case board.SpaceJunction, board.SpaceChoicepoint:
		s.enterChoice(p, space)
	case board.SpaceFinish:
		s.markFinished(p)
		s.setState(&actionCompleteState{session: s})
	default:
		s.afterLanding(p)
	}
	return nil
}

// --- AWAITING_PATH_CARD -------------------------------------------------

type awaitingPathCardState struct {
	session *Session
}

func (st *awaitingPathCardState) GetID() StateID { return StateAwaitingPathCard }
func (st *awaitingPathCardState) OnExit()        {}

func (st *awaitingPathCardState) OnEnter() {
	st.session.scheduleBot()
}

func (st *awaitingPathCardState) HandleAction(playerID string, data []byte) error {
	s := st.session
	action, err := parseAction(data)
	if err != nil {
		return err
	}
	if action.Type != ActionDrawPathCard {
		return ErrWrongState
	}

	p, _ := s.registry.Get(playerID)
	space, found := s.board.FindSpace(p.Position, board.DefaultTolerance)
	if !found {
		logger.Log.Errorf("session %s: %s draws from an unknown position", s.ID, p.Name)
		s.forceTurnEnd()
		return nil
	}

	deckType := cards.DeckForPath(space.Path)
	card, drawn := s.decks.Draw(deckType)
	if !drawn {
		// Deck and discard both empty: no effect, the turn goes on.
		s.presenter.Log("the %s deck is spent — nothing happens", deckType)
		s.afterLanding(p)
		return nil
	}

	s.presenter.ShowCard(p.ID, card)
	s.presenter.Log("%s draws %q", p.Name, card.Name)

	// The card goes to the discard even when an effect panics and the turn
	// is abandoned, so the deck population stays intact.
	defer s.decks.Discard(deckType, card)
	next, _ := s.applyEffects(p, card.EffectsFor(p.Role))

	if next != nil {
		s.setState(next)
	} else {
		s.afterLanding(p)
	}
	return nil
}

// --- AWAITING_END_OF_TURN_CARD -----------------------------------------

type awaitingEndOfTurnCardState struct {
	session *Session
}

func (st *awaitingEndOfTurnCardState) GetID() StateID { return StateAwaitingEndOfTurnCard }
func (st *awaitingEndOfTurnCardState) OnExit()        {}

func (st *awaitingEndOfTurnCardState) OnEnter() {
	st.session.scheduleBot()
}

func (st *awaitingEndOfTurnCardState) HandleAction(playerID string, data []byte) error {
	s := st.session
	action, err := parseAction(data)
	if err != nil {
		return err
	}
	if action.Type != ActionDrawEndCard {
		return ErrWrongState
	}
	if action.Slot != 0 && action.Slot != 1 {
		return fmt.Errorf("game: end-of-turn slot must be 0 or 1, got %d", action.Slot)
	}

	p, _ := s.registry.Get(playerID)

	// The slot choice is presentational: both face-down slots come off the
	// same deck. The flag is set even when the deck is spent so the
	// end-turn guard can never wedge the session.
	card, drawn := s.decks.Draw(cards.DeckEndOfTurn)
	p.HasDrawnEndOfTurnCard = true

	if !drawn {
		s.presenter.Log("the end-of-turn deck is spent — nothing happens")
		s.afterLanding(p)
		return nil
	}

	s.presenter.ShowCard(p.ID, card)
	s.presenter.Log("%s reveals %q", p.Name, card.Name)

	defer s.decks.Discard(cards.DeckEndOfTurn, card)
	next, _ := s.applyEffects(p, card.EffectsFor(p.Role))

	if next != nil {
		s.setState(next)
	} else {
		s.afterLanding(p)
	}
	return nil
}

// --- ACTION_COMPLETE ----------------------------------------------------

type actionCompleteState struct {
	session *Session
}

func (st *actionCompleteState) GetID() StateID { return StateActionComplete }
func (st *actionCompleteState) OnExit()        {}

func (st *actionCompleteState) OnEnter() {
	st.session.scheduleBot()
}

func (st *actionCompleteState) HandleAction(playerID string, data []byte) error {
	s := st.session
	action, err := parseAction(data)
	if err != nil {
		return err
	}
	if action.Type != ActionEndTurn {
		return ErrWrongState
	}

	// The machine guard refuses ending a turn before the end-of-turn card
	// is drawn (unless the player just finished).
	if err := s.machine.ChangeState(&turnEndedState{session: s}); err != nil {
		return fmt.Errorf("game: cannot end turn yet: %w", err)
	}
	return nil
}

// --- TURN_ENDED ---------------------------------------------------------

// turnEndedState is momentary: entering it advances the turn order, which
// immediately installs the next player's opening state.
type turnEndedState struct {
	session *Session
}

func (st *turnEndedState) GetID() StateID { return StateTurnEnded }
func (st *turnEndedState) OnExit()        {}

func (st *turnEndedState) OnEnter() {
	st.session.advanceTurn()
}

func (st *turnEndedState) HandleAction(string, []byte) error {
	return ErrWrongState
}

// --- shared landing helpers --------------------------------------------

func findBranch(branches []board.Branch, path board.PathColor) (board.Branch, bool) {
	for _, b := range branches {
		if b.Path == path {
			return b, true
		}
	}
	return board.Branch{}, false
}

// afterLanding routes a settled token to the mandatory end-of-turn draw, or
// straight to ACTION_COMPLETE when the draw already happened or the player
// just finished.
func (s *Session) afterLanding(p *models.Player) {
	if p.HasDrawnEndOfTurnCard || p.Finished {
		s.setState(&actionCompleteState{session: s})
		return
	}
	s.setState(&awaitingEndOfTurnCardState{session: s})
}

func (s *Session) enterChoice(p *models.Player, space *board.Space) {
	s.pendingChoices = append([]board.Branch(nil), space.Branches...)
	s.setState(&awaitingChoicepointState{session: s})
}

func (s *Session) markFinished(p *models.Player) {
	if p.Finished {
		return
	}
	p.Finished = true
	s.finishCount++
	p.FinishOrder = s.finishCount
	s.presenter.Log("%s has reached the end of the road (#%d)", p.Name, p.FinishOrder)
	logger.Log.Infof("session %s: %s finished #%d", s.ID, p.Name, p.FinishOrder)
}
