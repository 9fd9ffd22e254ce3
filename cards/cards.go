// cards/cards.go
package cards

import (
	"math/rand"

	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/models"
)

// DeckType names one of the five decks: four trail-colored special-event
// decks plus the shared end-of-turn deck.
type DeckType string

const (
	DeckPurple    DeckType = "purple"
	DeckBlue      DeckType = "blue"
	DeckCyan      DeckType = "cyan"
	DeckPink      DeckType = "pink"
	DeckEndOfTurn DeckType = "end_of_turn"
)

// DeckForPath maps a trail color to its special-event deck.
func DeckForPath(color board.PathColor) DeckType {
	switch color {
	case board.PathPurple:
		return DeckPurple
	case board.PathBlue:
		return DeckBlue
	case board.PathCyan:
		return DeckCyan
	case board.PathPink:
		return DeckPink
	default:
		return ""
	}
}

// EffectKind is the closed set of card effect kinds. Adding a kind is a
// compile-time decision: every switch over EffectKind handles all of these.
type EffectKind int

const (
	EffectResourceChange EffectKind = iota
	EffectMovement
	EffectSteal
	EffectSabotage
	EffectSkipTurn
	EffectImmunity
	EffectTradeBlocked
	EffectAllianceOffer
	EffectTradeOffer
)

func (k EffectKind) String() string {
	switch k {
	case EffectResourceChange:
		return "resource_change"
	case EffectMovement:
		return "movement"
	case EffectSteal:
		return "steal"
	case EffectSabotage:
		return "sabotage"
	case EffectSkipTurn:
		return "skip_turn"
	case EffectImmunity:
		return "immunity"
	case EffectTradeBlocked:
		return "trade_blocked"
	case EffectAllianceOffer:
		return "alliance_offer"
	case EffectTradeOffer:
		return "trade_offer"
	default:
		return "unknown"
	}
}

// Effect is one card effect. Only the fields matching Kind are meaningful.
type Effect struct {
	Kind EffectKind

	// EffectResourceChange: signed deltas, floored at 0 on application.
	Money     int
	Knowledge int
	Influence int

	// EffectMovement: signed step count, or a trail to relocate onto.
	// ForceChange makes the player leave their trail at the next
	// junction or choicepoint.
	Steps       int
	ToPath      board.PathColor
	ForceChange bool

	// EffectSteal / EffectSabotage
	Resource models.ResourceKind
	Amount   int

	// EffectSkipTurn / EffectImmunity / EffectTradeBlocked
	Rounds int

	// EffectTradeOffer
	OfferResource   models.ResourceKind
	OfferAmount     int
	RequestResource models.ResourceKind
	RequestAmount   int
}

// Card 卡牌
type Card struct {
	Name        string
	Description string
	Deck        DeckType

	// Effects is set for special-event cards and applies unconditionally.
	Effects []Effect

	// RoleEffects is set for end-of-turn cards: role -> effect, with
	// models.RoleAll as the fallback key.
	RoleEffects map[models.Role]Effect
}

// EffectsFor returns the effects this card applies for the given role.
// A nil result is a no-op, not an error: an end-of-turn card with neither a
// role entry nor an ALL entry simply does nothing.
func (c *Card) EffectsFor(role models.Role) []Effect {
	if len(c.Effects) > 0 {
		return c.Effects
	}
	if c.RoleEffects != nil {
		if e, ok := c.RoleEffects[role]; ok {
			return []Effect{e}
		}
		if e, ok := c.RoleEffects[models.RoleAll]; ok {
			return []Effect{e}
		}
	}
	return nil
}

// Deck is a mutable ordered card sequence with a discard pile. The card
// population is fixed at construction: cards only ever move between the deck
// and its discard.
type Deck struct {
	deckType DeckType
	cards    []Card
	discard  []Card
	rng      *rand.Rand
	size     int
}

// NewDeck copies the source set, tags every card with the deck type and
// shuffles.
func NewDeck(deckType DeckType, source []Card, rng *rand.Rand) *Deck {
	d := &Deck{
		deckType: deckType,
		cards:    make([]Card, len(source)),
		rng:      rng,
		size:     len(source),
	}
	copy(d.cards, source)
	for i := range d.cards {
		d.cards[i].Deck = deckType
	}
	d.shuffle()
	return d
}

func (d *Deck) shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw pops the front card. On an empty deck with a non-empty discard the
// discard is reshuffled in and the draw retried once. When both are empty
// there is no card to give and ok is false; callers treat that as "no
// effect", never as a failure of the turn.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		if len(d.discard) == 0 {
			return Card{}, false
		}
		d.cards = d.discard
		d.discard = nil
		d.shuffle()
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Discard returns a drawn card to the discard pile.
func (d *Deck) Discard(c Card) {
	d.discard = append(d.discard, c)
}

// Remaining returns the number of cards left in the draw pile.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Discarded returns the number of cards in the discard pile.
func (d *Deck) Discarded() int {
	return len(d.discard)
}

// Size returns the fixed original card-set size.
func (d *Deck) Size() int {
	return d.size
}

// Set bundles the five session decks.
type Set struct {
	decks map[DeckType]*Deck
}

// NewSet builds the five decks from the fixed source sets, each shuffled
// with the shared session rng.
func NewSet(rng *rand.Rand) *Set {
	return &Set{
		decks: map[DeckType]*Deck{
			DeckPurple:    NewDeck(DeckPurple, purpleCards(), rng),
			DeckBlue:      NewDeck(DeckBlue, blueCards(), rng),
			DeckCyan:      NewDeck(DeckCyan, cyanCards(), rng),
			DeckPink:      NewDeck(DeckPink, pinkCards(), rng),
			DeckEndOfTurn: NewDeck(DeckEndOfTurn, endOfTurnCards(), rng),
		},
	}
}

// Deck returns one deck by type.
func (s *Set) Deck(t DeckType) (*Deck, bool) {
	d, ok := s.decks[t]
	return d, ok
}

// Draw draws from the named deck.
func (s *Set) Draw(t DeckType) (Card, bool) {
	d, ok := s.decks[t]
	if !ok {
		return Card{}, false
	}
	return d.Draw()
}

// Discard returns a card to the named deck's discard pile.
func (s *Set) Discard(t DeckType, c Card) {
	if d, ok := s.decks[t]; ok {
		d.Discard(c)
	}
}
