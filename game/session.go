// game/session.go
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/cards"
	"github.com/wfunc/crossroads/logger"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/timer"
	"github.com/wfunc/crossroads/trade"
)

// Phase 游戏会话阶段
type Phase string

const (
	PhaseSetup    Phase = "SETUP"
	PhasePlaying  Phase = "PLAYING"
	PhaseFinished Phase = "FINISHED"
)

var (
	ErrNotSetup      = errors.New("game: session is not in setup")
	ErrNotPlaying    = errors.New("game: session is not in progress")
	ErrWrongActor    = errors.New("game: not this player's turn")
	ErrWrongState    = errors.New("game: action not valid in the current state")
	ErrTradePending  = errors.New("game: a trade response is pending")
	ErrUnknownPlayer = errors.New("game: unknown player")
	ErrRoleTaken     = errors.New("game: role already taken")
	ErrTooMany       = errors.New("game: player limit reached")
	ErrNoPlayers     = errors.New("game: no players registered")
)

// Ranking is one row of the final standings.
type Ranking struct {
	Rank        int              `json:"rank"`
	PlayerID    string           `json:"player_id"`
	Name        string           `json:"name"`
	Role        models.Role      `json:"role"`
	Finished    bool             `json:"finished"`
	FinishOrder int              `json:"finish_order"`
	Resources   models.Resources `json:"resources"`
}

// Summary describes a finished game for the record store.
type Summary struct {
	SessionID string
	Rankings  []Ranking
	Rounds    int
	Turns     int
	Duration  time.Duration
}

// Options configures a session.
type Options struct {
	// Seed drives dice, shuffles and automated choices; 0 means time-based.
	Seed       int64
	MaxPlayers int
	Presenter  Presenter
	// Timers schedules automated-player actions after BotDelay. When nil,
	// automated players act inline, which keeps tests synchronous and
	// deterministic.
	Timers   *timer.Manager
	BotDelay time.Duration
	// OnFinished is invoked once when the game ends.
	OnFinished func(Summary)
}

// Session owns one game: the board, the decks, the players, the trade
// ledger and the turn state machine. Exactly one player acts at a time; the
// session mutex serializes every external entry point.
type Session struct {
	ID string

	phase     Phase
	board     *board.Board
	decks     *cards.Set
	registry  *models.Registry
	trades    *trade.System
	presenter Presenter
	rng       *rand.Rand
	timers    *timer.Manager
	botDelay  time.Duration

	machine      *StateMachine
	turnOrder    []string
	currentIdx   int
	currentRound int
	currentTurn  int

	// pendingChoices holds the highlighted branch options while a
	// choicepoint or start choice is outstanding.
	pendingChoices []board.Branch
	// pendingOffer is the single outstanding trade suspension, if any.
	pendingOffer *trade.Offer

	finishCount int
	maxPlayers  int
	rankings    []Ranking
	startedAt   time.Time
	onFinished  func(Summary)

	mutex sync.Mutex
}

// NewSession creates a session in SETUP phase.
func NewSession(opts Options) *Session {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	presenter := opts.Presenter
	if presenter == nil {
		presenter = NopPresenter{}
	}
	maxPlayers := opts.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = len(models.Roles())
	}

	rng := rand.New(rand.NewSource(seed))
	s := &Session{
		ID:           uuid.New().String(),
		phase:        PhaseSetup,
		board:        board.NewBoard(),
		decks:        cards.NewSet(rng),
		registry:     models.NewRegistry(),
		presenter:    presenter,
		rng:          rng,
		timers:       opts.Timers,
		botDelay:     opts.BotDelay,
		currentRound: 1,
		maxPlayers:   maxPlayers,
		onFinished:   opts.OnFinished,
	}
	s.trades = trade.NewSystem(s.registry)
	return s
}

// AddPlayer registers a player during SETUP. Roles are unique per session.
func (s *Session) AddPlayer(name string, human bool, role models.Role) (*models.Player, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.phase != PhaseSetup {
		return nil, ErrNotSetup
	}
	if !models.IsPlayable(role) {
		return nil, fmt.Errorf("game: unknown role %q", role)
	}
	if s.registry.Count() >= s.maxPlayers {
		return nil, ErrTooMany
	}
	for _, p := range s.registry.All() {
		if p.Role == role {
			return nil, ErrRoleTaken
		}
	}

	p := &models.Player{
		ID:        uuid.New().String(),
		Name:      name,
		IsHuman:   human,
		Role:      role,
		Position:  s.board.Start.Coord,
		Resources: models.StartingResources(role),
		CreatedAt: time.Now(),
	}
	s.registry.Add(p)
	return p, nil
}

// Start moves the session to PLAYING and opens the first turn.
func (s *Session) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.phase != PhaseSetup {
		return ErrNotSetup
	}
	if s.registry.Count() == 0 {
		return ErrNoPlayers
	}

	s.phase = PhasePlaying
	s.turnOrder = s.registry.Order()
	s.currentIdx = 0
	s.currentTurn = 1
	s.startedAt = time.Now()

	logger.Log.Infof("session %s started with %d players", s.ID, len(s.turnOrder))
	s.beginTurn()
	return nil
}

// Phase returns the session phase.
func (s *Session) Phase() Phase {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.phase
}

// CurrentPlayer returns the acting player.
func (s *Session) CurrentPlayer() (*models.Player, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.currentPlayerLocked()
}

func (s *Session) currentPlayerLocked() (*models.Player, bool) {
	if s.phase != PhasePlaying || len(s.turnOrder) == 0 {
		return nil, false
	}
	return s.registry.Get(s.turnOrder[s.currentIdx])
}

// State returns the current turn state id.
func (s *Session) State() StateID {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.machine == nil {
		return ""
	}
	return s.machine.Current().GetID()
}

// Round returns the current round number.
func (s *Session) Round() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.currentRound
}

// Registry exposes the player registry.
func (s *Session) Registry() *models.Registry {
	return s.registry
}

// Rankings returns the final standings once the session is FINISHED.
func (s *Session) Rankings() []Ranking {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]Ranking, len(s.rankings))
	copy(out, s.rankings)
	return out
}

// PendingChoices returns the outstanding branch options, if any.
func (s *Session) PendingChoices() []board.Branch {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]board.Branch, len(s.pendingChoices))
	copy(out, s.pendingChoices)
	return out
}

// PendingOffer returns the outstanding trade offer, if any.
func (s *Session) PendingOffer() *trade.Offer {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.pendingOffer == nil {
		return nil
	}
	offer := *s.pendingOffer
	return &offer
}

// HandleAction is the single entry point for player actions. Rule
// violations are rejected synchronously with no state mutation; any panic
// during handling forces TURN_ENDED and advances the turn order so the
// session can never wedge.
func (s *Session) HandleAction(playerID string, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.handleActionLocked(playerID, data)
}

func (s *Session) handleActionLocked(playerID string, data []byte) (err error) {
	if s.phase != PhasePlaying {
		return ErrNotPlaying
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("session %s: panic during action handling: %v", s.ID, r)
			err = fmt.Errorf("game: action handling failed: %v", r)
			s.forceTurnEnd()
		}
	}()

	action, perr := parseAction(data)
	if perr != nil {
		return perr
	}

	// A pending trade response is the one action accepted out of turn.
	if action.Type == ActionTradeResponse {
		return s.handleTradeResponse(playerID, action)
	}
	if s.pendingOffer != nil {
		return ErrTradePending
	}

	current, ok := s.currentPlayerLocked()
	if !ok {
		return ErrNotPlaying
	}
	if current.ID != playerID {
		return ErrWrongActor
	}

	switch action.Type {
	case ActionUseAbility:
		return s.handleUseAbility(current)
	case ActionProposeTrade:
		return s.handleProposeTrade(current, action)
	}

	return s.machine.Current().HandleAction(playerID, data)
}

// ForceEndTurn abandons the current turn if the given player still holds
// it. The gateway calls this when a human player's turn times out.
func (s *Session) ForceEndTurn(playerID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.phase != PhasePlaying {
		return ErrNotPlaying
	}
	current, ok := s.currentPlayerLocked()
	if !ok || current.ID != playerID {
		return ErrWrongActor
	}

	s.presenter.Log("%s ran out of time — the turn is forfeit", current.Name)
	logger.Log.Infof("session %s: turn timed out for %s", s.ID, current.Name)
	s.forceTurnEnd()
	return nil
}

// forceTurnEnd is the safety net for data-integrity failures: the current
// turn is abandoned and the turn order advances.
func (s *Session) forceTurnEnd() {
	if s.phase != PhasePlaying {
		return
	}
	s.pendingChoices = nil
	s.pendingOffer = nil
	if s.machine == nil {
		return
	}
	s.machine.ForceState(&turnEndedState{session: s})
}

// setState switches the machine state. The only guarded transition is the
// end-turn guard, which its handler checks explicitly; a refusal here is a
// programming error worth logging, not a turn-flow event.
func (s *Session) setState(state TurnState) {
	if err := s.machine.ChangeState(state); err != nil {
		logger.Log.Errorf("session %s: refused transition to %s: %v", s.ID, state.GetID(), err)
	}
}

// beginTurn prepares the acting player's turn: states, skip handling and
// automated scheduling.
func (s *Session) beginTurn() {
	p, ok := s.currentPlayerLocked()
	if !ok {
		return
	}
	p.HasDrawnEndOfTurnCard = false

	var initial TurnState
	if p.Position == s.board.Start.Coord {
		initial = &awaitingStartChoiceState{session: s}
	} else {
		initial = &awaitingRollState{session: s}
	}

	if s.machine == nil {
		// Seed with the inert moving state so the real opening state is
		// always entered through setState, after the machine is wired up.
		s.machine = NewStateMachine(&movingState{baseState{session: s}})
		s.machine.AddTransition(StateActionComplete, StateTurnEnded, func() bool {
			current, ok := s.currentPlayerLocked()
			if !ok {
				return false
			}
			return current.HasDrawnEndOfTurnCard || current.Finished
		})
	}
	s.setState(initial)

	s.presenter.RefreshPlayers(s.registry.All())
	logger.Log.Infof("session %s: round %d turn %d, %s to act (%s)",
		s.ID, s.currentRound, s.currentTurn, p.Name, s.machine.Current().GetID())
}

// advanceTurn moves to the next player able to act, applying skip-turn and
// round-boundary rules along the way.
func (s *Session) advanceTurn() {
	if s.allFinished() {
		s.finishGame()
		return
	}

	for {
		s.currentIdx++
		s.currentTurn++
		if s.currentIdx >= len(s.turnOrder) {
			s.currentIdx = 0
			s.endRound()
		}

		p, ok := s.currentPlayerLocked()
		if !ok {
			return
		}
		if p.Finished {
			continue
		}
		if p.SkipTurns > 0 {
			p.SkipTurns--
			s.presenter.Log("%s sits this turn out", p.Name)
			logger.Log.Infof("session %s: %s skips a turn (%d left)", s.ID, p.Name, p.SkipTurns)
			continue
		}
		s.beginTurn()
		return
	}
}

// endRound applies round-boundary effects: status counters tick down and
// expired pacts dissolve.
func (s *Session) endRound() {
	s.currentRound++
	for _, p := range s.registry.All() {
		if p.ImmunityTurns > 0 {
			p.ImmunityTurns--
		}
		if p.TradeBlockedTurns > 0 {
			p.TradeBlockedTurns--
		}
	}
	for _, pact := range s.trades.ExpireAlliances(s.currentRound) {
		a, _ := s.registry.Get(pact.A)
		b, _ := s.registry.Get(pact.B)
		if a != nil && b != nil {
			s.presenter.Log("the pact between %s and %s has run its course", a.Name, b.Name)
		}
	}
	logger.Log.Infof("session %s: round %d begins", s.ID, s.currentRound)
}

func (s *Session) allFinished() bool {
	for _, p := range s.registry.All() {
		if !p.Finished {
			return false
		}
	}
	return true
}

// finishGame closes the session and produces the final standings.
func (s *Session) finishGame() {
	if s.phase == PhaseFinished {
		return
	}
	s.phase = PhaseFinished
	s.trades.Clear()
	s.rankings = s.computeRankings()

	s.presenter.RefreshPlayers(s.registry.All())
	s.presenter.Log("the game is over after %d rounds", s.currentRound)
	logger.Log.Infof("session %s finished after %d rounds, %d turns", s.ID, s.currentRound, s.currentTurn)

	if s.onFinished != nil {
		s.onFinished(Summary{
			SessionID: s.ID,
			Rankings:  s.rankings,
			Rounds:    s.currentRound,
			Turns:     s.currentTurn,
			Duration:  time.Since(s.startedAt),
		})
	}
}

// computeRankings orders finished players by finish order, then unfinished
// players by total resources descending with turn order as the tie-break.
func (s *Session) computeRankings() []Ranking {
	players := s.registry.All()
	orderIdx := make(map[string]int, len(players))
	for i, id := range s.turnOrder {
		orderIdx[id] = i
	}

	sorted := make([]*models.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Finished != b.Finished {
			return a.Finished
		}
		if a.Finished {
			return a.FinishOrder < b.FinishOrder
		}
		if a.Resources.Total() != b.Resources.Total() {
			return a.Resources.Total() > b.Resources.Total()
		}
		return orderIdx[a.ID] < orderIdx[b.ID]
	})

	rankings := make([]Ranking, len(sorted))
	for i, p := range sorted {
		rankings[i] = Ranking{
			Rank:        i + 1,
			PlayerID:    p.ID,
			Name:        p.Name,
			Role:        p.Role,
			Finished:    p.Finished,
			FinishOrder: p.FinishOrder,
			Resources:   p.Resources,
		}
	}
	return rankings
}

// scheduleBot arranges the automated player's next action. With a timer
// manager the action runs after the configured delay; without one it runs
// inline, which keeps bot-only games synchronous.
func (s *Session) scheduleBot() {
	p, ok := s.currentPlayerLocked()
	if !ok || p.IsHuman || s.phase != PhasePlaying {
		return
	}
	// An outstanding offer suspends the session; automation resumes when
	// the response arrives.
	if s.pendingOffer != nil {
		return
	}

	if s.timers != nil && s.botDelay > 0 {
		playerID := p.ID
		stateID := s.machine.Current().GetID()
		s.timers.Schedule(s.botDelay, 0, func() {
			s.runBotAction(playerID, stateID)
		})
		return
	}
	s.botActLocked(p)
}

// runBotAction re-validates actor and state before acting: the scheduled
// turn may have been forced over in the meantime.
func (s *Session) runBotAction(playerID string, stateID StateID) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.currentPlayerLocked()
	if !ok || p.ID != playerID {
		return
	}
	if s.machine.Current().GetID() != stateID {
		return
	}
	s.botActLocked(p)
}
