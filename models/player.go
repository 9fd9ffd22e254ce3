// models/player.go
package models

import (
	"sync"
	"time"

	"github.com/wfunc/crossroads/board"
)

// ResourceKind names one of the three player resources.
type ResourceKind string

const (
	ResourceMoney     ResourceKind = "money"
	ResourceKnowledge ResourceKind = "knowledge"
	ResourceInfluence ResourceKind = "influence"
)

// Resources 玩家资源，全部保持非负
type Resources struct {
	Money     int `json:"money"`
	Knowledge int `json:"knowledge"`
	Influence int `json:"influence"`
}

// Get returns the amount held of one resource kind.
func (r Resources) Get(kind ResourceKind) int {
	switch kind {
	case ResourceMoney:
		return r.Money
	case ResourceKnowledge:
		return r.Knowledge
	case ResourceInfluence:
		return r.Influence
	}
	return 0
}

// Add applies a signed delta to one resource, clamped at a 0 floor.
func (r *Resources) Add(kind ResourceKind, delta int) {
	switch kind {
	case ResourceMoney:
		r.Money = clampZero(r.Money + delta)
	case ResourceKnowledge:
		r.Knowledge = clampZero(r.Knowledge + delta)
	case ResourceInfluence:
		r.Influence = clampZero(r.Influence + delta)
	}
}

// Total sums all resources; used for final tie-breaking.
func (r Resources) Total() int {
	return r.Money + r.Knowledge + r.Influence
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// Player is one game participant, human or automated.
type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsHuman bool   `json:"is_human"`
	Role    Role   `json:"role"`

	Position    board.Coord     `json:"position"`
	CurrentPath board.PathColor `json:"current_path"`

	Resources Resources `json:"resources"`

	// Status counters, decremented at round boundaries (floor 0).
	SkipTurns         int `json:"skip_turns"`
	ImmunityTurns     int `json:"immunity_turns"`
	TradeBlockedTurns int `json:"trade_blocked_turns"`

	AbilityUsed           bool `json:"ability_used"`
	HasDrawnEndOfTurnCard bool `json:"has_drawn_end_of_turn_card"`
	Finished              bool `json:"finished"`
	FinishOrder           int  `json:"finish_order"`

	// ForcedPathChange is set by effects that push the player off their
	// trail at the next junction. SpecialEventCount tracks draw-space
	// landings for the bot heuristic.
	ForcedPathChange  bool `json:"forced_path_change"`
	SpecialEventCount int  `json:"special_event_count"`

	CreatedAt time.Time `json:"created_at"`
}

// IsImmune reports whether STEAL/SABOTAGE effects are currently blocked.
func (p *Player) IsImmune() bool {
	return p.ImmunityTurns > 0
}

// CanTrade reports whether the player may take part in trades.
func (p *Player) CanTrade() bool {
	return p.TradeBlockedTurns == 0
}

// CanAfford reports whether the player holds at least amount of kind.
func (p *Player) CanAfford(kind ResourceKind, amount int) bool {
	return p.Resources.Get(kind) >= amount
}

// Registry holds every player for one session. Players are created at setup
// and never removed; finished players stay registered.
type Registry struct {
	players map[string]*Player
	order   []string
	mutex   sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*Player),
	}
}

// Add registers a player. Registration order is preserved and becomes the
// default turn order.
func (r *Registry) Add(p *Player) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.players[p.ID]; exists {
		return
	}
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
}

// Get returns a player by id.
func (r *Registry) Get(id string) (*Player, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	p, exists := r.players[id]
	return p, exists
}

// Order returns the registration order of player ids.
func (r *Registry) Order() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	order := make([]string, len(r.order))
	copy(order, r.order)
	return order
}

// All returns every player in registration order.
func (r *Registry) All() []*Player {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	players := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, r.players[id])
	}
	return players
}

// Count returns the number of registered players.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.players)
}
