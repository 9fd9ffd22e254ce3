// game/bot.go
package game

import (
	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/logger"
	"github.com/wfunc/crossroads/models"
)

// botActLocked performs the automated player's next action for the current
// state. Bot moves go through the same state handlers as human actions, so
// every rule check applies to them too. Caller holds the session mutex.
func (s *Session) botActLocked(p *models.Player) {
	state := s.machine.Current()

	var action Action
	switch state.GetID() {
	case StateAwaitingStartChoice:
		if len(s.pendingChoices) == 0 {
			return
		}
		pick := s.pendingChoices[s.rng.Intn(len(s.pendingChoices))]
		action = Action{Type: ActionChooseStart, Path: pick.Path}

	case StateAwaitingRoll:
		action = Action{Type: ActionRoll}

	case StateAwaitingChoicepoint:
		pick, ok := s.botChooseBranch(p)
		if !ok {
			return
		}
		action = Action{Type: ActionChooseBranch, Path: pick.Path}

	case StateAwaitingPathCard:
		action = Action{Type: ActionDrawPathCard}

	case StateAwaitingEndOfTurnCard:
		action = Action{Type: ActionDrawEndCard, Slot: s.rng.Intn(2)}

	case StateActionComplete:
		action = Action{Type: ActionEndTurn}

	default:
		return
	}

	if err := state.HandleAction(p.ID, MarshalAction(action)); err != nil {
		logger.Log.Errorf("session %s: bot action %s for %s failed: %v",
			s.ID, action.Type, p.Name, err)
		s.forceTurnEnd()
	}
}

// botChooseBranch is the junction heuristic: stay on the current trail
// unless a card forced a change, or staying would land on yet another
// special-event space after the bot has already hit two this game.
func (s *Session) botChooseBranch(p *models.Player) (board.Branch, bool) {
	if len(s.pendingChoices) == 0 {
		return board.Branch{}, false
	}

	var same *board.Branch
	var others []board.Branch
	for i := range s.pendingChoices {
		b := s.pendingChoices[i]
		if b.Path == p.CurrentPath {
			same = &s.pendingChoices[i]
		} else {
			others = append(others, b)
		}
	}

	stay := same != nil
	if p.ForcedPathChange {
		stay = false
	} else if same != nil && p.SpecialEventCount >= 2 {
		if space, ok := s.board.FindSpace(same.Coord, board.DefaultTolerance); ok {
			if space.Type == board.SpaceDraw || space.Type == board.SpaceSpecialEvent {
				stay = false
			}
		}
	}

	if !stay && len(others) > 0 {
		return others[s.rng.Intn(len(others))], true
	}
	if same != nil {
		return *same, true
	}
	return s.pendingChoices[s.rng.Intn(len(s.pendingChoices))], true
}
