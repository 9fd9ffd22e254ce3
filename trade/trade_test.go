package trade

import (
	"errors"
	"testing"

	"github.com/wfunc/crossroads/models"
)

func newTestRegistry() (*models.Registry, *models.Player, *models.Player) {
	registry := models.NewRegistry()
	a := &models.Player{
		ID:        "a",
		Name:      "Alice",
		IsHuman:   true,
		Role:      models.RoleMerchant,
		Resources: models.Resources{Money: 10, Knowledge: 2, Influence: 5},
	}
	b := &models.Player{
		ID:        "b",
		Name:      "Bot",
		Role:      models.RoleScholar,
		Resources: models.Resources{Money: 3, Knowledge: 8, Influence: 5},
	}
	registry.Add(a)
	registry.Add(b)
	return registry, a, b
}

func TestValidate_RejectsUnaffordableOffer(t *testing.T) {
	registry, a, _ := newTestRegistry()
	system := NewSystem(registry)

	offer := Offer{
		Kind:            OfferAsymmetric,
		From:            "a",
		To:              "b",
		OfferResource:   models.ResourceMoney,
		OfferAmount:     50,
		RequestResource: models.ResourceKnowledge,
		RequestAmount:   1,
	}
	if err := system.Validate(offer); !errors.Is(err, ErrCannotAfford) {
		t.Fatalf("expected ErrCannotAfford, got %v", err)
	}
	if a.Resources.Money != 10 {
		t.Error("validation must not mutate resources")
	}
}

func TestValidate_SwapChecksOnlyTheOfferer(t *testing.T) {
	registry, a, b := newTestRegistry()
	system := NewSystem(registry)

	// b holds only 3 money. The 5-money swap still validates, because the
	// target's side is settled at execution time, not up front.
	offer := Offer{
		Kind:          OfferSwap,
		From:          "a",
		To:            "b",
		OfferResource: models.ResourceMoney,
		OfferAmount:   5,
	}
	if err := system.Validate(offer); err != nil {
		t.Fatalf("swap with a poor target must pass validation, got %v", err)
	}

	// Execution is where the target's shortfall cancels the swap, whole.
	if err := system.Execute(offer, 1); !errors.Is(err, ErrCannotAfford) {
		t.Fatalf("expected ErrCannotAfford on execute, got %v", err)
	}
	if a.Resources.Money != 10 || b.Resources.Money != 3 {
		t.Error("cancelled swap must leave both sides untouched")
	}

	// A swap the offerer cannot cover is still rejected up front.
	offer.OfferAmount = 50
	if err := system.Validate(offer); !errors.Is(err, ErrCannotAfford) {
		t.Fatalf("expected ErrCannotAfford for the offerer's side, got %v", err)
	}
}

func TestValidate_TradeBlockedPlayer(t *testing.T) {
	registry, _, b := newTestRegistry()
	system := NewSystem(registry)
	b.TradeBlockedTurns = 1

	offer := Offer{
		Kind:            OfferAsymmetric,
		From:            "a",
		To:              "b",
		OfferResource:   models.ResourceMoney,
		OfferAmount:     1,
		RequestResource: models.ResourceKnowledge,
		RequestAmount:   1,
	}
	if err := system.Validate(offer); !errors.Is(err, ErrTradeBlocked) {
		t.Fatalf("expected ErrTradeBlocked, got %v", err)
	}
}

func TestExecute_AsymmetricTradeAppliesAllDeltas(t *testing.T) {
	registry, a, b := newTestRegistry()
	system := NewSystem(registry)

	offer := Offer{
		Kind:            OfferAsymmetric,
		From:            "a",
		To:              "b",
		OfferResource:   models.ResourceMoney,
		OfferAmount:     4,
		RequestResource: models.ResourceKnowledge,
		RequestAmount:   3,
	}
	if err := system.Execute(offer, 1); err != nil {
		t.Fatalf("execute should succeed: %v", err)
	}

	if a.Resources.Money != 6 || a.Resources.Knowledge != 5 {
		t.Errorf("source resources wrong: %+v", a.Resources)
	}
	if b.Resources.Money != 7 || b.Resources.Knowledge != 5 {
		t.Errorf("target resources wrong: %+v", b.Resources)
	}
}

func TestExecute_NeverPartiallyApplies(t *testing.T) {
	registry, a, b := newTestRegistry()
	system := NewSystem(registry)

	// a can afford its side but b cannot afford the requested 20 knowledge.
	offer := Offer{
		Kind:            OfferAsymmetric,
		From:            "a",
		To:              "b",
		OfferResource:   models.ResourceMoney,
		OfferAmount:     2,
		RequestResource: models.ResourceKnowledge,
		RequestAmount:   20,
	}
	if err := system.Execute(offer, 1); !errors.Is(err, ErrCannotAfford) {
		t.Fatalf("expected ErrCannotAfford, got %v", err)
	}
	if a.Resources.Money != 10 || b.Resources.Knowledge != 8 {
		t.Error("a failed trade must leave both sides untouched")
	}
}

func TestExecute_SwapLeavesTotalsIntact(t *testing.T) {
	registry, a, b := newTestRegistry()
	system := NewSystem(registry)

	offer := Offer{
		Kind:          OfferSwap,
		From:          "a",
		To:            "b",
		OfferResource: models.ResourceMoney,
		OfferAmount:   3,
	}
	if err := system.Execute(offer, 1); err != nil {
		t.Fatalf("swap should succeed: %v", err)
	}
	if a.Resources.Money != 10 || b.Resources.Money != 3 {
		t.Errorf("equal swap should leave balances unchanged: a=%d b=%d",
			a.Resources.Money, b.Resources.Money)
	}
}

func TestAcceptAutomated(t *testing.T) {
	registry, _, _ := newTestRegistry()
	system := NewSystem(registry)

	unaffordable := Offer{
		Kind:          OfferSwap,
		From:          "a",
		To:            "b",
		OfferResource: models.ResourceMoney,
		OfferAmount:   5,
	}

	// A human offer is always accepted, even when execution will cancel.
	if !system.AcceptAutomated(unaffordable, true) {
		t.Error("automated target must accept a human offer")
	}

	// An automated source is only accepted when the target can afford it.
	if system.AcceptAutomated(unaffordable, false) {
		t.Error("automated target must reject an unaffordable automated offer")
	}

	affordable := Offer{
		Kind:          OfferSwap,
		From:          "a",
		To:            "b",
		OfferResource: models.ResourceMoney,
		OfferAmount:   2,
	}
	if !system.AcceptAutomated(affordable, false) {
		t.Error("automated target should accept an affordable automated offer")
	}
}

func TestAlliance_GrantsImmunityAndBlocksReoffer(t *testing.T) {
	registry, a, b := newTestRegistry()
	system := NewSystem(registry)

	offer := Offer{Kind: OfferAlliance, From: "a", To: "b"}
	if err := system.Execute(offer, 2); err != nil {
		t.Fatalf("alliance should form: %v", err)
	}

	if a.ImmunityTurns != AllianceDuration || b.ImmunityTurns != AllianceDuration {
		t.Errorf("both players should gain immunity: a=%d b=%d",
			a.ImmunityTurns, b.ImmunityTurns)
	}

	if _, active := system.ActiveAlliance("b", "a"); !active {
		t.Error("pact should be active for the pair in either order")
	}

	// Re-offering while the pact is active is a rule violation.
	if err := system.Validate(offer); !errors.Is(err, ErrAllianceActive) {
		t.Errorf("expected ErrAllianceActive, got %v", err)
	}
	if err := system.Execute(offer, 2); !errors.Is(err, ErrAllianceActive) {
		t.Errorf("expected ErrAllianceActive on execute, got %v", err)
	}
}

func TestExpireAlliances(t *testing.T) {
	registry, _, _ := newTestRegistry()
	system := NewSystem(registry)

	if err := system.Execute(Offer{Kind: OfferAlliance, From: "a", To: "b"}, 3); err != nil {
		t.Fatalf("alliance should form: %v", err)
	}

	if expired := system.ExpireAlliances(3); len(expired) != 0 {
		t.Errorf("pact formed this round must not expire yet, got %d", len(expired))
	}

	expired := system.ExpireAlliances(4)
	if len(expired) != 1 {
		t.Fatalf("pact should expire after its duration, got %d", len(expired))
	}
	if _, active := system.ActiveAlliance("a", "b"); active {
		t.Error("expired pact should be removed from the ledger")
	}
}
