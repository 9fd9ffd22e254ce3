// game/session_test.go
package game

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/cards"
	"github.com/wfunc/crossroads/logger"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/movement"
	"github.com/wfunc/crossroads/trade"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

// recordingPresenter captures presentation requests for assertions.
type recordingPresenter struct {
	logs  []string
	cards []cards.Card
	moves int
}

func (r *recordingPresenter) AnimateMovement(string, board.Coord, board.Coord) { r.moves++ }
func (r *recordingPresenter) ShowCard(_ string, c cards.Card)                  { r.cards = append(r.cards, c) }
func (r *recordingPresenter) HighlightChoices(string, []board.Branch)          {}
func (r *recordingPresenter) PromptTrade(string, trade.Offer)                  {}
func (r *recordingPresenter) RefreshPlayers([]*models.Player)                  {}

func (r *recordingPresenter) Log(format string, args ...interface{}) {
	r.logs = append(r.logs, fmt.Sprintf(format, args...))
}

func (r *recordingPresenter) logged(substr string) bool {
	for _, line := range r.logs {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func newTestSession(seed int64) (*Session, *recordingPresenter) {
	rec := &recordingPresenter{}
	s := NewSession(Options{Seed: seed, Presenter: rec})
	return s, rec
}

func addHumans(t *testing.T, s *Session, roles ...models.Role) []*models.Player {
	t.Helper()
	players := make([]*models.Player, len(roles))
	for i, role := range roles {
		p, err := s.AddPlayer(fmt.Sprintf("player-%d", i+1), true, role)
		if err != nil {
			t.Fatalf("AddPlayer(%s): %v", role, err)
		}
		players[i] = p
	}
	return players
}

func act(t *testing.T, s *Session, playerID string, a Action) {
	t.Helper()
	if err := s.HandleAction(playerID, MarshalAction(a)); err != nil {
		t.Fatalf("action %s: %v", a.Type, err)
	}
}

func TestStartRequiresSetupAndPlayers(t *testing.T) {
	s, _ := newTestSession(1)
	if err := s.Start(); err != ErrNoPlayers {
		t.Fatalf("expected ErrNoPlayers, got %v", err)
	}

	addHumans(t, s, models.RoleMerchant)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Phase() != PhasePlaying {
		t.Fatalf("expected PLAYING, got %s", s.Phase())
	}
	if err := s.Start(); err != ErrNotSetup {
		t.Fatalf("expected ErrNotSetup on second start, got %v", err)
	}
}

func TestAddPlayerRules(t *testing.T) {
	s, _ := newTestSession(1)
	addHumans(t, s, models.RoleMerchant)

	if _, err := s.AddPlayer("dup", true, models.RoleMerchant); err != ErrRoleTaken {
		t.Fatalf("expected ErrRoleTaken, got %v", err)
	}
	if _, err := s.AddPlayer("bad", true, models.Role("wizard")); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := s.AddPlayer("late", true, models.RoleScholar); err != nil {
		t.Fatalf("second role should be free: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.AddPlayer("after", true, models.RoleMystic); err != ErrNotSetup {
		t.Fatalf("expected ErrNotSetup after start, got %v", err)
	}
}

func TestOpeningTurnStartsAtStartChoice(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got := s.State(); got != StateAwaitingStartChoice {
		t.Fatalf("expected %s, got %s", StateAwaitingStartChoice, got)
	}
	if len(s.PendingChoices()) != len(board.PathColors()) {
		t.Fatalf("expected one choice per trail, got %d", len(s.PendingChoices()))
	}

	act(t, s, players[0].ID, Action{Type: ActionChooseStart, Path: board.PathBlue})
	if players[0].CurrentPath != board.PathBlue {
		t.Fatalf("expected blue trail, got %s", players[0].CurrentPath)
	}
	if got := s.State(); got != StateAwaitingRoll {
		t.Fatalf("expected %s after start choice, got %s", StateAwaitingRoll, got)
	}
}

func TestWrongActorRejected(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	err := s.HandleAction(players[1].ID, MarshalAction(Action{Type: ActionChooseStart, Path: board.PathBlue}))
	if err != ErrWrongActor {
		t.Fatalf("expected ErrWrongActor, got %v", err)
	}
	if got := s.State(); got != StateAwaitingStartChoice {
		t.Fatalf("rejection must not change state, got %s", got)
	}
}

func TestWrongStateRejectedWithoutMutation(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	before := players[0].Position
	err := s.HandleAction(players[0].ID, MarshalAction(Action{Type: ActionRoll}))
	if err != ErrWrongState {
		t.Fatalf("expected ErrWrongState, got %v", err)
	}
	if players[0].Position != before {
		t.Fatal("rejected action must not move the player")
	}
	if got := s.State(); got != StateAwaitingStartChoice {
		t.Fatalf("rejected action must not change state, got %s", got)
	}
}

func TestSkipTurnDecrementsAndPasses(t *testing.T) {
	s, rec := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Advance past the first player directly, so no card draw can touch
	// the skip counters: the second player's turn must fall through, tick
	// the counter down and move on without entering a state.
	players[1].SkipTurns = 1
	s.advanceTurn()

	if players[1].SkipTurns != 0 {
		t.Fatalf("expected skip counter 0, got %d", players[1].SkipTurns)
	}
	if !rec.logged(players[1].Name + " sits this turn out") {
		t.Fatal("expected a skip notice in the event log")
	}
	if current, ok := s.CurrentPlayer(); !ok || current.ID != players[0].ID {
		t.Fatal("the turn must come back around to the first player")
	}
}

func TestEndTurnGuardRequiresEndOfTurnDraw(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	act(t, s, players[0].ID, Action{Type: ActionChooseStart, Path: board.PathBlue})

	s.machine.ForceState(&actionCompleteState{session: s})
	err := s.HandleAction(players[0].ID, MarshalAction(Action{Type: ActionEndTurn}))
	if err == nil {
		t.Fatal("expected the end-turn guard to refuse before the draw")
	}
	if got := s.State(); got != StateActionComplete {
		t.Fatalf("refused end turn must stay in %s, got %s", StateActionComplete, got)
	}

	players[0].HasDrawnEndOfTurnCard = true
	act(t, s, players[0].ID, Action{Type: ActionEndTurn})
	current, _ := s.CurrentPlayer()
	if current.ID != players[1].ID {
		t.Fatalf("expected the turn to pass to %s", players[1].Name)
	}
}

type panicState struct {
	baseState
}

func (st *panicState) GetID() StateID { return StateMoving }

func (st *panicState) HandleAction(string, []byte) error {
	panic("corrupted turn data")
}

func TestPanicDuringActionForcesTurnEnd(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s.machine.ForceState(&panicState{baseState{session: s}})
	err := s.HandleAction(players[0].ID, MarshalAction(Action{Type: ActionRoll}))
	if err == nil {
		t.Fatal("expected the panic to surface as an error")
	}

	current, ok := s.CurrentPlayer()
	if !ok || current.ID != players[1].ID {
		t.Fatalf("expected the turn to pass to %s after the panic", players[1].Name)
	}
	if s.Phase() != PhasePlaying {
		t.Fatalf("session must survive the panic, got phase %s", s.Phase())
	}
}

func TestInvalidPositionAbandonsTurn(t *testing.T) {
	s, rec := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	act(t, s, players[0].ID, Action{Type: ActionChooseStart, Path: board.PathBlue})

	players[0].Position = board.Coord{X: -999, Y: -999}
	act(t, s, players[0].ID, Action{Type: ActionRoll})

	current, _ := s.CurrentPlayer()
	if current.ID != players[1].ID {
		t.Fatalf("expected the abandoned turn to pass to %s", players[1].Name)
	}
	if !rec.logged("the turn is abandoned") {
		t.Fatal("expected an abandonment notice in the event log")
	}
}

func TestProposeTradeSuspendsUntilResponse(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	act(t, s, players[0].ID, Action{Type: ActionChooseStart, Path: board.PathBlue})

	act(t, s, players[0].ID, Action{
		Type:            ActionProposeTrade,
		To:              players[1].ID,
		OfferResource:   models.ResourceMoney,
		OfferAmount:     2,
		RequestResource: models.ResourceKnowledge,
		RequestAmount:   1,
	})

	offer := s.PendingOffer()
	if offer == nil {
		t.Fatal("expected a pending offer")
	}

	// Everything but the target's response is refused while suspended.
	if err := s.HandleAction(players[0].ID, MarshalAction(Action{Type: ActionRoll})); err != ErrTradePending {
		t.Fatalf("expected ErrTradePending, got %v", err)
	}
	if err := s.HandleAction(players[0].ID, MarshalAction(Action{Type: ActionTradeResponse, Accept: true})); err != ErrWrongActor {
		t.Fatalf("only the target may respond, got %v", err)
	}

	act(t, s, players[1].ID, Action{Type: ActionTradeResponse, OfferID: offer.ID, Accept: true})

	if got := players[0].Resources.Money; got != 10 {
		t.Fatalf("proposer money = %d, want 10", got)
	}
	if got := players[0].Resources.Knowledge; got != 4 {
		t.Fatalf("proposer knowledge = %d, want 4", got)
	}
	if got := players[1].Resources.Money; got != 6 {
		t.Fatalf("target money = %d, want 6", got)
	}
	if got := players[1].Resources.Knowledge; got != 11 {
		t.Fatalf("target knowledge = %d, want 11", got)
	}
	if s.PendingOffer() != nil {
		t.Fatal("offer must be cleared after the response")
	}
}

func TestDeclinedTradeLeavesResourcesAlone(t *testing.T) {
	s, rec := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	act(t, s, players[0].ID, Action{Type: ActionChooseStart, Path: board.PathBlue})

	before0, before1 := players[0].Resources, players[1].Resources
	act(t, s, players[0].ID, Action{
		Type:            ActionProposeTrade,
		To:              players[1].ID,
		OfferResource:   models.ResourceMoney,
		OfferAmount:     2,
		RequestResource: models.ResourceKnowledge,
		RequestAmount:   1,
	})
	act(t, s, players[1].ID, Action{Type: ActionTradeResponse, Accept: false})

	if players[0].Resources != before0 || players[1].Resources != before1 {
		t.Fatal("declined offer must not move resources")
	}
	if !rec.logged("declines the offer") {
		t.Fatal("expected a decline notice in the event log")
	}
}

func TestHumanSwapOfferAcceptedButCancelled(t *testing.T) {
	s, rec := newTestSession(1)
	human, err := s.AddPlayer("human", true, models.RoleMerchant)
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	cpu, err := s.AddPlayer("cpu", false, models.RoleScholar)
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	act(t, s, human.ID, Action{Type: ActionChooseStart, Path: board.PathBlue})

	// The scholar holds 4 money, so it cannot cover a 6-money swap. Facing
	// a human it still accepts; execution then cancels the whole exchange.
	act(t, s, human.ID, Action{
		Type:          ActionProposeTrade,
		Kind:          trade.OfferSwap,
		To:            cpu.ID,
		OfferResource: models.ResourceMoney,
		OfferAmount:   6,
	})

	if !rec.logged("but it was cancelled") {
		t.Fatal("expected a cancellation notice in the event log")
	}
	if human.Resources.Money != 12 || cpu.Resources.Money != 4 {
		t.Fatalf("cancelled swap must leave resources alone: human=%d cpu=%d",
			human.Resources.Money, cpu.Resources.Money)
	}
	if s.PendingOffer() != nil {
		t.Fatal("an automated response must not leave an offer pending")
	}
}

func TestBackwardCardNeverParksOnAJunction(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	act(t, s, players[0].ID, Action{Type: ActionChooseStart, Path: board.PathCyan})

	// One step back from (600,300) would be the cyan junction. A token
	// parked there has no pending choice and could never roll again.
	p := players[0]
	p.Position = board.Coord{X: 600, Y: 300}
	_, moved := s.applyMovementEffect(p, cards.Effect{Kind: cards.EffectMovement, Steps: -1})
	if !moved {
		t.Fatal("backward card must move the player")
	}
	if p.Position != (board.Coord{X: 600, Y: 400}) {
		t.Fatalf("expected the landing to slide past the junction, got %+v", p.Position)
	}
	if result := movement.Resolve(s.board, p.Position, 1); result.Reason.IsError() {
		t.Fatalf("the player must still be able to roll from %+v, got %s", p.Position, result.Reason)
	}
}

func TestForcedPathChangeSteersTheBot(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant)
	p := players[0]
	p.CurrentPath = board.PathBlue
	p.Position = board.Coord{X: 400, Y: 300}

	junction, ok := s.board.FindSpace(board.Coord{X: 400, Y: 350}, board.DefaultTolerance)
	if !ok {
		t.Fatal("expected the blue junction on the board")
	}
	s.pendingChoices = append([]board.Branch(nil), junction.Branches...)

	// Unforced, the bot stays on its own trail.
	pick, ok := s.botChooseBranch(p)
	if !ok || pick.Path != board.PathBlue {
		t.Fatalf("expected the bot to stay on blue, got %s", pick.Path)
	}

	// A card carrying a forced change sets the flag and steers it off.
	s.applyMovementEffect(p, cards.Effect{Kind: cards.EffectMovement, ForceChange: true})
	if !p.ForcedPathChange {
		t.Fatal("expected the effect to set the forced-change flag")
	}
	pick, ok = s.botChooseBranch(p)
	if !ok || pick.Path == board.PathBlue {
		t.Fatal("a forced bot must leave its trail")
	}
}

// failingPresenter panics on the first RefreshPlayers after it is armed.
type failingPresenter struct {
	recordingPresenter
	armed bool
}

func (p *failingPresenter) RefreshPlayers([]*models.Player) {
	if p.armed {
		p.armed = false
		panic("presentation layer failure")
	}
}

func TestAbandonedDrawStillDiscardsTheCard(t *testing.T) {
	fp := &failingPresenter{}
	s := NewSession(Options{Seed: 1, Presenter: fp})
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	act(t, s, players[0].ID, Action{Type: ActionChooseStart, Path: board.PathBlue})

	players[0].Position = board.Coord{X: 400, Y: 500}
	s.machine.ForceState(&awaitingPathCardState{session: s})

	deck, ok := s.decks.Deck(cards.DeckBlue)
	if !ok {
		t.Fatal("expected the blue deck")
	}
	before := deck.Remaining() + deck.Discarded()

	// The panic fires after the card's effects applied, abandoning the
	// turn. The drawn card must still reach the discard pile.
	fp.armed = true
	err := s.HandleAction(players[0].ID, MarshalAction(Action{Type: ActionDrawPathCard}))
	if err == nil {
		t.Fatal("expected the panic to surface as an error")
	}

	if got := deck.Remaining() + deck.Discarded(); got != before {
		t.Fatalf("deck population changed: %d cards, want %d", got, before)
	}
	if current, _ := s.CurrentPlayer(); current.ID != players[1].ID {
		t.Fatalf("expected the abandoned turn to pass to %s", players[1].Name)
	}
}

func TestUseAbilityOncePerGame(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	act(t, s, players[0].ID, Action{Type: ActionChooseStart, Path: board.PathBlue})

	before := players[0].Resources.Money
	act(t, s, players[0].ID, Action{Type: ActionUseAbility})
	if got := players[0].Resources.Money; got != before+8 {
		t.Fatalf("merchant ability: money = %d, want %d", got, before+8)
	}
	if !players[0].AbilityUsed {
		t.Fatal("ability must be marked used")
	}
	if err := s.HandleAction(players[0].ID, MarshalAction(Action{Type: ActionUseAbility})); err == nil {
		t.Fatal("second ability use must be refused")
	}
}

func TestRoundBoundaryDecrementsCounters(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	players[0].ImmunityTurns = 2
	players[1].TradeBlockedTurns = 1

	s.endRound()

	if s.currentRound != 2 {
		t.Fatalf("expected round 2, got %d", s.currentRound)
	}
	if players[0].ImmunityTurns != 1 {
		t.Fatalf("immunity = %d, want 1", players[0].ImmunityTurns)
	}
	if players[1].TradeBlockedTurns != 0 {
		t.Fatalf("trade block = %d, want 0", players[1].TradeBlockedTurns)
	}
}

func TestComputeRankingsOrdering(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar, models.RoleDiplomat, models.RoleExplorer)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Two finishers in reverse turn order, two stragglers with a clear
	// resource gap.
	players[2].Finished = true
	players[2].FinishOrder = 1
	players[0].Finished = true
	players[0].FinishOrder = 2
	players[1].Resources = models.Resources{Money: 1, Knowledge: 1, Influence: 1}
	players[3].Resources = models.Resources{Money: 9, Knowledge: 9, Influence: 9}

	rankings := s.computeRankings()
	wantOrder := []string{players[2].ID, players[0].ID, players[3].ID, players[1].ID}
	for i, want := range wantOrder {
		if rankings[i].PlayerID != want {
			t.Fatalf("rank %d: got %s, want %s", i+1, rankings[i].Name, want)
		}
		if rankings[i].Rank != i+1 {
			t.Fatalf("rank field = %d, want %d", rankings[i].Rank, i+1)
		}
	}
}

func TestResourceTieBreakFollowsTurnOrder(t *testing.T) {
	s, _ := newTestSession(1)
	players := addHumans(t, s, models.RoleMerchant, models.RoleScholar)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	players[0].Resources = models.Resources{Money: 5, Knowledge: 5, Influence: 5}
	players[1].Resources = models.Resources{Money: 5, Knowledge: 5, Influence: 5}

	rankings := s.computeRankings()
	if rankings[0].PlayerID != players[0].ID {
		t.Fatalf("tied resources must rank by turn order, got %s first", rankings[0].Name)
	}
}

func TestAutomatedGameRunsToCompletion(t *testing.T) {
	var summary *Summary
	rec := &recordingPresenter{}
	s := NewSession(Options{
		Seed:      42,
		Presenter: rec,
		OnFinished: func(sum Summary) {
			summary = &sum
		},
	})

	roles := []models.Role{models.RoleMerchant, models.RoleScholar, models.RoleDiplomat, models.RoleExplorer}
	for i, role := range roles {
		if _, err := s.AddPlayer(fmt.Sprintf("cpu-%d", i+1), false, role); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
	}

	// Without a timer manager automated players act inline, so the whole
	// game plays out during Start.
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if s.Phase() != PhaseFinished {
		t.Fatalf("expected FINISHED, got %s", s.Phase())
	}
	if summary == nil {
		t.Fatal("expected the finish callback to fire")
	}
	if summary.Rounds < 1 || summary.Turns < len(roles) {
		t.Fatalf("implausible summary: %d rounds, %d turns", summary.Rounds, summary.Turns)
	}

	rankings := s.Rankings()
	if len(rankings) != len(roles) {
		t.Fatalf("expected %d ranking rows, got %d", len(roles), len(rankings))
	}
	seen := make(map[string]bool)
	lastFinish := 0
	for i, r := range rankings {
		if r.Rank != i+1 {
			t.Fatalf("rank %d holds rank field %d", i+1, r.Rank)
		}
		if seen[r.PlayerID] {
			t.Fatalf("player %s ranked twice", r.Name)
		}
		seen[r.PlayerID] = true
		if r.Finished {
			if lastFinish > 0 && r.FinishOrder < lastFinish {
				t.Fatal("finished players must rank by finish order")
			}
			lastFinish = r.FinishOrder
		}
	}

	for _, p := range s.Registry().All() {
		if !p.Finished {
			continue
		}
		if p.FinishOrder < 1 || p.FinishOrder > len(roles) {
			t.Fatalf("%s has finish order %d", p.Name, p.FinishOrder)
		}
	}
}

func TestAutomatedGameIsDeterministic(t *testing.T) {
	run := func() []Ranking {
		s := NewSession(Options{Seed: 99, Presenter: NopPresenter{}})
		roles := []models.Role{models.RoleArtisan, models.RoleMystic, models.RoleDiplomat}
		for i, role := range roles {
			if _, err := s.AddPlayer(fmt.Sprintf("cpu-%d", i+1), false, role); err != nil {
				t.Fatalf("AddPlayer: %v", err)
			}
		}
		if err := s.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		return s.Rankings()
	}

	first := run()
	second := run()
	if len(first) != len(second) {
		t.Fatalf("ranking sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Resources != second[i].Resources {
			t.Fatalf("seeded games diverged at rank %d: %+v vs %+v", i+1, first[i], second[i])
		}
	}
}
