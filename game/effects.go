// game/effects.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/cards"
	"github.com/wfunc/crossroads/logger"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/movement"
	"github.com/wfunc/crossroads/trade"
)

// resolveMovement runs a rolled move and installs the follow-up state. Every
// resolver outcome maps to one explicit route; data-integrity failures
// abandon the turn.
func (s *Session) resolveMovement(p *models.Player, steps int) {
	from := p.Position
	result := movement.Resolve(s.board, from, steps)

	if result.Reason.IsError() {
		logger.Log.Errorf("session %s: movement for %s failed (%s)", s.ID, p.Name, result.Reason)
		s.presenter.Log("%s cannot move from here — the turn is abandoned", p.Name)
		s.forceTurnEnd()
		return
	}

	if result.StepsTaken > 0 {
		s.presenter.AnimateMovement(p.ID, from, result.Position)
		p.Position = result.Position
	}

	switch result.Reason {
	case movement.InterruptFinish, movement.EndOfPath:
		s.markFinished(p)
		s.setState(&actionCompleteState{session: s})
	case movement.InterruptJunction, movement.InterruptChoicepoint:
		space, found := s.board.FindSpace(p.Position, board.DefaultTolerance)
		if !found {
			s.forceTurnEnd()
			return
		}
		s.presenter.Log("%s must choose a trail", p.Name)
		s.enterChoice(p, space)
	case movement.InterruptDraw, movement.InterruptSpecialEvent:
		p.SpecialEventCount++
		s.setState(&awaitingPathCardState{session: s})
	default: // steps_complete
		s.afterLanding(p)
	}
}

// applyEffects applies a card's effects in written order. It returns the
// state to install afterwards (nil means the caller routes normally) and
// whether any effect moved the player.
func (s *Session) applyEffects(p *models.Player, effects []cards.Effect) (next TurnState, moved bool) {
	for _, e := range effects {
		switch e.Kind {
		case cards.EffectResourceChange:
			p.Resources.Add(models.ResourceMoney, e.Money)
			p.Resources.Add(models.ResourceKnowledge, e.Knowledge)
			p.Resources.Add(models.ResourceInfluence, e.Influence)
			s.presenter.Log("%s's holdings shift by %+d money, %+d knowledge, %+d influence",
				p.Name, e.Money, e.Knowledge, e.Influence)

		case cards.EffectMovement:
			if n, m := s.applyMovementEffect(p, e); m {
				moved = true
				if n != nil {
					next = n
				}
			}

		case cards.EffectSteal:
			s.applySteal(p, e)

		case cards.EffectSabotage:
			s.applySabotage(p, e)

		case cards.EffectSkipTurn:
			p.SkipTurns += e.Rounds
			s.presenter.Log("%s will sit out %d turn(s)", p.Name, e.Rounds)

		case cards.EffectImmunity:
			p.ImmunityTurns += e.Rounds
			s.presenter.Log("%s is protected for %d round(s)", p.Name, e.Rounds)

		case cards.EffectTradeBlocked:
			p.TradeBlockedTurns += e.Rounds
			s.presenter.Log("%s cannot trade for %d round(s)", p.Name, e.Rounds)

		case cards.EffectAllianceOffer:
			s.offerFromEffect(p, trade.OfferAlliance, e)

		case cards.EffectTradeOffer:
			s.offerFromEffect(p, trade.OfferAsymmetric, e)
		}
	}
	s.presenter.RefreshPlayers(s.registry.All())
	return next, moved
}

// applyMovementEffect handles the movement shapes a card can carry:
// relocation onto another trail, forward steps, backward steps and a forced
// trail change at the next crossing. A blocked forward resolution fizzles
// rather than abandoning the turn; the card simply has no effect.
func (s *Session) applyMovementEffect(p *models.Player, e cards.Effect) (TurnState, bool) {
	if e.ForceChange {
		p.ForcedPathChange = true
		s.presenter.Log("%s must leave the %s trail at the next crossing", p.Name, p.CurrentPath)
	}

	if e.ToPath != "" {
		return nil, s.relocateToPath(p, e.ToPath)
	}

	if e.Steps > 0 {
		from := p.Position
		result := movement.Resolve(s.board, from, e.Steps)
		if result.Reason.IsError() {
			logger.Log.Warnf("session %s: movement effect for %s fizzled (%s)", s.ID, p.Name, result.Reason)
			return nil, false
		}
		if result.StepsTaken > 0 {
			s.presenter.AnimateMovement(p.ID, from, result.Position)
			p.Position = result.Position
		}
		switch result.Reason {
		case movement.InterruptFinish, movement.EndOfPath:
			s.markFinished(p)
			return nil, true
		case movement.InterruptJunction, movement.InterruptChoicepoint:
			space, found := s.board.FindSpace(p.Position, board.DefaultTolerance)
			if !found {
				return nil, true
			}
			s.pendingChoices = append([]board.Branch(nil), space.Branches...)
			return &awaitingChoicepointState{session: s}, true
		default:
			// Landing on a draw space via a card does not cascade into
			// another draw.
			return nil, true
		}
	}

	if e.Steps < 0 {
		from := p.Position
		result := movement.ResolveBackward(s.board, p.CurrentPath, from, -e.Steps)
		if result.Reason.IsError() {
			logger.Log.Warnf("session %s: backward movement for %s fizzled (%s)", s.ID, p.Name, result.Reason)
			return nil, false
		}
		s.presenter.AnimateMovement(p.ID, from, result.Position)
		p.Position = result.Position
		return nil, true
	}

	return nil, false
}

// relocateToPath moves the player sideways onto the space of the target
// trail nearest their current progress. Branch spaces are skipped so the
// relocation never raises a choice.
func (s *Session) relocateToPath(p *models.Player, color board.PathColor) bool {
	target, ok := s.board.PathByColor(color)
	if !ok || len(target.Spaces) == 0 {
		logger.Log.Warnf("session %s: relocation target %q does not exist", s.ID, color)
		return false
	}

	idx := s.progressIndex(p.Position)
	if idx >= len(target.Spaces) {
		idx = len(target.Spaces) - 1
	}
	for idx < len(target.Spaces)-1 {
		t := target.Spaces[idx].Type
		if t != board.SpaceJunction && t != board.SpaceChoicepoint {
			break
		}
		idx++
	}

	dest := target.Spaces[idx]
	s.presenter.Log("%s crosses over to the %s trail", p.Name, color)
	s.presenter.AnimateMovement(p.ID, p.Position, dest.Coord)
	p.Position = dest.Coord
	p.CurrentPath = color
	p.ForcedPathChange = false
	return true
}

// progressIndex finds how far along their current trail the player is, as a
// space index. Off-trail positions (START) count as no progress.
func (s *Session) progressIndex(pos board.Coord) int {
	for _, path := range s.board.Paths {
		for i := range path.Spaces {
			if path.Spaces[i].Coord.DistanceTo(pos) <= board.DefaultTolerance {
				return i
			}
		}
	}
	return 0
}

// applySteal moves up to e.Amount of e.Resource from the richest rival in
// that resource to p. Immunity blocks it with a visible notice.
func (s *Session) applySteal(p *models.Player, e cards.Effect) {
	target := s.richestRival(p, e.Resource)
	if target == nil {
		s.presenter.Log("%s finds no one worth robbing", p.Name)
		return
	}
	if target.IsImmune() {
		s.presenter.Log("%s is protected — the steal against them is blocked", target.Name)
		return
	}

	amount := e.Amount
	if held := target.Resources.Get(e.Resource); held < amount {
		amount = held
	}
	target.Resources.Add(e.Resource, -amount)
	p.Resources.Add(e.Resource, amount)
	s.presenter.Log("%s takes %d %s from %s", p.Name, amount, e.Resource, target.Name)
}

// applySabotage destroys e.Amount of e.Resource held by the richest rival in
// that resource. Immunity blocks it with a visible notice.
func (s *Session) applySabotage(p *models.Player, e cards.Effect) {
	target := s.richestRival(p, e.Resource)
	if target == nil {
		s.presenter.Log("%s finds no target to undermine", p.Name)
		return
	}
	if target.IsImmune() {
		s.presenter.Log("%s is protected — the sabotage against them is blocked", target.Name)
		return
	}

	target.Resources.Add(e.Resource, -e.Amount)
	s.presenter.Log("%s undermines %s, who loses %d %s", p.Name, target.Name, e.Amount, e.Resource)
}

// richestRival picks the still-racing opponent holding the most of the given
// resource, ties broken by turn order. Returns nil when no opponent holds
// any of it.
func (s *Session) richestRival(p *models.Player, kind models.ResourceKind) *models.Player {
	var best *models.Player
	for _, id := range s.turnOrder {
		other, ok := s.registry.Get(id)
		if !ok || other.ID == p.ID || other.Finished {
			continue
		}
		if other.Resources.Get(kind) == 0 {
			continue
		}
		if best == nil || other.Resources.Get(kind) > best.Resources.Get(kind) {
			best = other
		}
	}
	return best
}

// offerFromEffect turns a card-borne offer into a live offer against a
// randomly chosen eligible opponent.
func (s *Session) offerFromEffect(p *models.Player, kind trade.OfferKind, e cards.Effect) {
	target := s.randomTradeTarget(p)
	if target == nil {
		s.presenter.Log("%s finds no one to deal with", p.Name)
		return
	}

	offer := trade.Offer{
		ID:              uuid.New().String(),
		Kind:            kind,
		From:            p.ID,
		To:              target.ID,
		OfferResource:   e.OfferResource,
		OfferAmount:     e.OfferAmount,
		RequestResource: e.RequestResource,
		RequestAmount:   e.RequestAmount,
	}
	s.resolveOffer(p, offer)
}

func (s *Session) randomTradeTarget(p *models.Player) *models.Player {
	var candidates []*models.Player
	for _, id := range s.turnOrder {
		other, ok := s.registry.Get(id)
		if !ok || other.ID == p.ID || other.Finished || !other.CanTrade() {
			continue
		}
		candidates = append(candidates, other)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[s.rng.Intn(len(candidates))]
}

// resolveOffer routes a validated offer. Automated targets answer
// synchronously by the fixed acceptance rule; a human target suspends the
// session until their trade_response arrives.
func (s *Session) resolveOffer(from *models.Player, offer trade.Offer) error {
	if err := s.trades.Validate(offer); err != nil {
		s.presenter.Log("the offer from %s is rejected: %v", from.Name, err)
		return err
	}

	to, ok := s.registry.Get(offer.To)
	if !ok {
		return ErrUnknownPlayer
	}

	if !to.IsHuman {
		if !s.trades.AcceptAutomated(offer, from.IsHuman) {
			s.presenter.Log("%s declines the offer from %s", to.Name, from.Name)
			return nil
		}
		s.executeOffer(from, to, offer)
		return nil
	}

	offerCopy := offer
	s.pendingOffer = &offerCopy
	s.presenter.PromptTrade(to.ID, offer)
	s.presenter.Log("%s is weighing an offer from %s", to.Name, from.Name)
	return nil
}

// executeOffer runs an accepted offer. Execution re-validates atomically, so
// acceptance can still come to nothing.
func (s *Session) executeOffer(from, to *models.Player, offer trade.Offer) {
	if err := s.trades.Execute(offer, s.currentRound); err != nil {
		s.presenter.Log("%s accepted the offer from %s, but it was cancelled: %v",
			to.Name, from.Name, err)
		return
	}
	if offer.Kind == trade.OfferAlliance {
		s.presenter.Log("%s and %s have formed a pact", from.Name, to.Name)
	} else {
		s.presenter.Log("%s accepted the offer from %s", to.Name, from.Name)
	}
	s.presenter.RefreshPlayers(s.registry.All())
}

// handleTradeResponse settles the outstanding offer. Only the offer's
// target may answer, and only while the offer is pending.
func (s *Session) handleTradeResponse(playerID string, action Action) error {
	if s.pendingOffer == nil {
		return ErrWrongState
	}
	if s.pendingOffer.To != playerID {
		return ErrWrongActor
	}
	if action.OfferID != "" && action.OfferID != s.pendingOffer.ID {
		return fmt.Errorf("game: unknown offer %q", action.OfferID)
	}

	offer := *s.pendingOffer
	s.pendingOffer = nil

	from, _ := s.registry.Get(offer.From)
	to, _ := s.registry.Get(offer.To)
	if from == nil || to == nil {
		return ErrUnknownPlayer
	}

	if action.Accept {
		s.executeOffer(from, to, offer)
	} else {
		s.presenter.Log("%s declines the offer from %s", to.Name, from.Name)
	}

	// The suspension is lifted; resume automation if a bot was waiting.
	s.scheduleBot()
	return nil
}

// handleProposeTrade lets the acting player open an offer between rolls.
func (s *Session) handleProposeTrade(p *models.Player, action Action) error {
	stateID := s.machine.Current().GetID()
	if stateID != StateAwaitingRoll && stateID != StateActionComplete {
		return ErrWrongState
	}

	kind := action.Kind
	if kind == "" {
		kind = trade.OfferAsymmetric
	}
	offer := trade.Offer{
		ID:              uuid.New().String(),
		Kind:            kind,
		From:            p.ID,
		To:              action.To,
		OfferResource:   action.OfferResource,
		OfferAmount:     action.OfferAmount,
		RequestResource: action.RequestResource,
		RequestAmount:   action.RequestAmount,
	}
	return s.resolveOffer(p, offer)
}

// roleAbility is the once-per-game special each role carries.
func roleAbility(role models.Role) (cards.Effect, string) {
	switch role {
	case models.RoleMerchant:
		return cards.Effect{Kind: cards.EffectResourceChange, Money: 8}, "Golden Deal"
	case models.RoleScholar:
		return cards.Effect{Kind: cards.EffectResourceChange, Knowledge: 8}, "Breakthrough"
	case models.RoleDiplomat:
		return cards.Effect{Kind: cards.EffectImmunity, Rounds: 2}, "Diplomatic Cover"
	case models.RoleExplorer:
		return cards.Effect{Kind: cards.EffectMovement, Steps: 3}, "Forced March"
	case models.RoleArtisan:
		return cards.Effect{Kind: cards.EffectResourceChange, Money: 4, Influence: 4}, "Masterwork"
	case models.RoleMystic:
		return cards.Effect{Kind: cards.EffectResourceChange, Money: 3, Knowledge: 3, Influence: 3}, "Favorable Omen"
	}
	return cards.Effect{}, ""
}

// handleUseAbility plays the role's one-shot special. It is valid only
// before the roll; a movement ability replaces the roll and flows into the
// normal landing pipeline.
func (s *Session) handleUseAbility(p *models.Player) error {
	if s.machine.Current().GetID() != StateAwaitingRoll {
		return ErrWrongState
	}
	if p.AbilityUsed {
		return fmt.Errorf("game: %s has already used their ability", p.Name)
	}

	effect, name := roleAbility(p.Role)
	if name == "" {
		return fmt.Errorf("game: role %q has no ability", p.Role)
	}

	p.AbilityUsed = true
	s.presenter.Log("%s invokes %s", p.Name, name)
	logger.Log.Infof("session %s: %s uses ability %s", s.ID, p.Name, name)

	next, moved := s.applyEffects(p, []cards.Effect{effect})
	switch {
	case next != nil:
		s.setState(next)
	case moved:
		s.afterLanding(p)
	}
	return nil
}
