// trade/trade.go
package trade

import (
	"errors"
	"sync"

	"github.com/wfunc/crossroads/models"
)

var (
	ErrUnknownPlayer  = errors.New("trade: unknown player")
	ErrSamePlayer     = errors.New("trade: cannot trade with yourself")
	ErrCannotAfford   = errors.New("trade: insufficient resources")
	ErrTradeBlocked   = errors.New("trade: player is blocked from trading")
	ErrAllianceActive = errors.New("trade: an alliance between this pair is already active")
)

// OfferKind distinguishes the two trade modes and the alliance pact.
type OfferKind string

const (
	OfferAsymmetric OfferKind = "trade"
	OfferSwap       OfferKind = "swap"
	OfferAlliance   OfferKind = "alliance"
)

// Offer is a proposed exchange from one player to another.
//
// Asymmetric: From gives OfferAmount of OfferResource for RequestAmount of
// RequestResource. Swap: both sides exchange OfferAmount of OfferResource.
// Alliance: no resources move; acceptance forms a pact.
type Offer struct {
	ID   string    `json:"id"`
	Kind OfferKind `json:"kind"`
	From string    `json:"from"`
	To   string    `json:"to"`

	OfferResource   models.ResourceKind `json:"offer_resource"`
	OfferAmount     int                 `json:"offer_amount"`
	RequestResource models.ResourceKind `json:"request_resource"`
	RequestAmount   int                 `json:"request_amount"`
}

// Alliance is a timed pact between two players. The pair is unordered.
type Alliance struct {
	A             string `json:"a"`
	B             string `json:"b"`
	FormedInRound int    `json:"formed_in_round"`
	Duration      int    `json:"duration"`
}

// Involves reports whether the player is part of the pact.
func (al *Alliance) Involves(id string) bool {
	return al.A == id || al.B == id
}

// Matches reports whether the pact joins exactly this pair, in either order.
func (al *Alliance) Matches(a, b string) bool {
	return (al.A == a && al.B == b) || (al.A == b && al.B == a)
}

// AllianceDuration is the fixed pact length in rounds. Forming a pact also
// grants both players immunity for the same length.
const AllianceDuration = 1

// System validates and executes trades and keeps the alliance ledger.
type System struct {
	registry  *models.Registry
	alliances []*Alliance
	mutex     sync.Mutex
}

func NewSystem(registry *models.Registry) *System {
	return &System{registry: registry}
}

// Validate rejects an offer up front when its source cannot afford the
// offered amount. The target's side is deliberately not checked here: an
// accepted offer the target cannot cover is Execute's job to cancel, so a
// human-offered swap still reaches the "accepted but cancelled" path. No
// state is mutated.
func (s *System) Validate(offer Offer) error {
	from, ok := s.registry.Get(offer.From)
	if !ok {
		return ErrUnknownPlayer
	}
	to, ok := s.registry.Get(offer.To)
	if !ok {
		return ErrUnknownPlayer
	}
	if offer.From == offer.To {
		return ErrSamePlayer
	}
	if !from.CanTrade() || !to.CanTrade() {
		return ErrTradeBlocked
	}

	switch offer.Kind {
	case OfferAlliance:
		if _, active := s.ActiveAlliance(offer.From, offer.To); active {
			return ErrAllianceActive
		}
		return nil
	case OfferSwap:
		if !from.CanAfford(offer.OfferResource, offer.OfferAmount) {
			return ErrCannotAfford
		}
		return nil
	default:
		if !from.CanAfford(offer.OfferResource, offer.OfferAmount) {
			return ErrCannotAfford
		}
		return nil
	}
}

// AcceptAutomated is the fixed response rule for an automated target.
// Offers from humans are always accepted; offers from other automated
// players are accepted iff the target can afford its side. An accepted
// offer may still fail execution, which callers report as "accepted but
// cancelled".
func (s *System) AcceptAutomated(offer Offer, fromHuman bool) bool {
	if fromHuman {
		return true
	}
	return s.targetAffords(offer) == nil
}

func (s *System) targetAffords(offer Offer) error {
	to, ok := s.registry.Get(offer.To)
	if !ok {
		return ErrUnknownPlayer
	}
	switch offer.Kind {
	case OfferAlliance:
		return nil
	case OfferSwap:
		if !to.CanAfford(offer.OfferResource, offer.OfferAmount) {
			return ErrCannotAfford
		}
	default:
		if !to.CanAfford(offer.RequestResource, offer.RequestAmount) {
			return ErrCannotAfford
		}
	}
	return nil
}

// Execute applies an accepted offer atomically: every delta is re-validated
// under the lock and either all of them apply or none do.
func (s *System) Execute(offer Offer, currentRound int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.Validate(offer); err != nil {
		return err
	}
	if err := s.targetAffords(offer); err != nil {
		return err
	}

	from, _ := s.registry.Get(offer.From)
	to, _ := s.registry.Get(offer.To)

	switch offer.Kind {
	case OfferAlliance:
		return s.formAllianceLocked(from, to, currentRound)
	case OfferSwap:
		// Both sides hand over the same amount of the same resource.
		from.Resources.Add(offer.OfferResource, -offer.OfferAmount)
		to.Resources.Add(offer.OfferResource, offer.OfferAmount)
		to.Resources.Add(offer.OfferResource, -offer.OfferAmount)
		from.Resources.Add(offer.OfferResource, offer.OfferAmount)
	default:
		from.Resources.Add(offer.OfferResource, -offer.OfferAmount)
		to.Resources.Add(offer.OfferResource, offer.OfferAmount)
		to.Resources.Add(offer.RequestResource, -offer.RequestAmount)
		from.Resources.Add(offer.RequestResource, offer.RequestAmount)
	}
	return nil
}

func (s *System) formAllianceLocked(a, b *models.Player, currentRound int) error {
	for _, al := range s.alliances {
		if al.Matches(a.ID, b.ID) {
			return ErrAllianceActive
		}
	}
	s.alliances = append(s.alliances, &Alliance{
		A:             a.ID,
		B:             b.ID,
		FormedInRound: currentRound,
		Duration:      AllianceDuration,
	})
	a.ImmunityTurns += AllianceDuration
	b.ImmunityTurns += AllianceDuration
	return nil
}

// ActiveAlliance returns the pact between the pair, if one exists.
func (s *System) ActiveAlliance(a, b string) (*Alliance, bool) {
	for _, al := range s.alliances {
		if al.Matches(a, b) {
			return al, true
		}
	}
	return nil, false
}

// Alliances returns a snapshot of the active pacts.
func (s *System) Alliances() []*Alliance {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make([]*Alliance, len(s.alliances))
	copy(out, s.alliances)
	return out
}

// ExpireAlliances dissolves every pact whose duration has elapsed and
// returns the dissolved pacts. Called at round boundaries.
func (s *System) ExpireAlliances(currentRound int) []*Alliance {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var expired []*Alliance
	kept := s.alliances[:0]
	for _, al := range s.alliances {
		if currentRound-al.FormedInRound >= al.Duration {
			expired = append(expired, al)
		} else {
			kept = append(kept, al)
		}
	}
	s.alliances = kept
	return expired
}

// Clear dissolves every pact. Called at game end.
func (s *System) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.alliances = nil
}
