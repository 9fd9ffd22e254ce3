// cards/data.go
package cards

import (
	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/models"
)

// Fixed card sets. Each special-event deck is themed after its trail:
// purple is the arts trail, blue is commerce, cyan is science and pink is
// society. The end-of-turn deck is shared and role-aware.

func purpleCards() []Card {
	return []Card{
		{
			Name:        "Gallery Opening",
			Description: "Your exhibition draws a crowd. Gain 4 money and 2 influence.",
			Effects:     []Effect{{Kind: EffectResourceChange, Money: 4, Influence: 2}},
		},
		{
			Name:        "Harsh Critic",
			Description: "A review tears your work apart. Lose 3 influence.",
			Effects:     []Effect{{Kind: EffectResourceChange, Influence: -3}},
		},
		{
			Name:        "Muse",
			Description: "Inspiration strikes. Move forward 2 spaces.",
			Effects:     []Effect{{Kind: EffectMovement, Steps: 2}},
		},
		{
			Name:        "Creative Block",
			Description: "Nothing comes. Move back 2 spaces.",
			Effects:     []Effect{{Kind: EffectMovement, Steps: -2}},
		},
		{
			Name:        "Plagiarist",
			Description: "Someone passes your work off as theirs. Steal back 3 knowledge from the richest rival.",
			Effects:     []Effect{{Kind: EffectSteal, Resource: models.ResourceKnowledge, Amount: 3}},
		},
		{
			Name:        "Patron's Favor",
			Description: "A patron shields you from your rivals for 2 rounds.",
			Effects:     []Effect{{Kind: EffectImmunity, Rounds: 2}},
		},
		{
			Name:        "Scandal",
			Description: "Your name is mud in the markets. No trades for 1 round.",
			Effects:     []Effect{{Kind: EffectTradeBlocked, Rounds: 1}},
		},
		{
			Name:        "Commission",
			Description: "Paid work, but it eats your season. Gain 5 money and skip a turn.",
			Effects: []Effect{
				{Kind: EffectResourceChange, Money: 5},
				{Kind: EffectSkipTurn, Rounds: 1},
			},
		},
		{
			Name:        "Touring Company",
			Description: "The company takes you along the commerce trail.",
			Effects:     []Effect{{Kind: EffectMovement, ToPath: board.PathBlue}},
		},
		{
			Name:        "Collaboration",
			Description: "Offer 2 money for 3 knowledge from another traveler.",
			Effects: []Effect{{
				Kind:            EffectTradeOffer,
				OfferResource:   models.ResourceMoney,
				OfferAmount:     2,
				RequestResource: models.ResourceKnowledge,
				RequestAmount:   3,
			}},
		},
	}
}

func blueCards() []Card {
	return []Card{
		{
			Name:        "Market Boom",
			Description: "Prices soar. Gain 6 money.",
			Effects:     []Effect{{Kind: EffectResourceChange, Money: 6}},
		},
		{
			Name:        "Bad Investment",
			Description: "The venture folds. Lose 5 money.",
			Effects:     []Effect{{Kind: EffectResourceChange, Money: -5}},
		},
		{
			Name:        "Caravan",
			Description: "Ride with the caravan. Move forward 3 spaces.",
			Effects:     []Effect{{Kind: EffectMovement, Steps: 3}},
		},
		{
			Name:        "Toll Road",
			Description: "Pay up or turn back. Lose 2 money and move back 1 space.",
			Effects: []Effect{
				{Kind: EffectResourceChange, Money: -2},
				{Kind: EffectMovement, Steps: -1},
			},
		},
		{
			Name:        "Pickpocket",
			Description: "Quick fingers in the bazaar. Steal 3 money from the richest rival.",
			Effects:     []Effect{{Kind: EffectSteal, Resource: models.ResourceMoney, Amount: 3}},
		},
		{
			Name:        "Sabotaged Shipment",
			Description: "Your rival's goods spoil. They lose 4 money.",
			Effects:     []Effect{{Kind: EffectSabotage, Resource: models.ResourceMoney, Amount: 4}},
		},
		{
			Name:        "Guild Protection",
			Description: "The guild watches your back for 1 round.",
			Effects:     []Effect{{Kind: EffectImmunity, Rounds: 1}},
		},
		{
			Name:        "Embargo",
			Description: "The guild bars you from trading for 2 rounds.",
			Effects:     []Effect{{Kind: EffectTradeBlocked, Rounds: 2}},
		},
		{
			Name:        "Trade Delegation",
			Description: "Propose a pact with another traveler.",
			Effects:     []Effect{{Kind: EffectAllianceOffer, Rounds: 1}},
		},
		{
			Name:        "Falsified Ledger",
			Description: "The auditors find it. Skip a turn.",
			Effects:     []Effect{{Kind: EffectSkipTurn, Rounds: 1}},
		},
	}
}

func cyanCards() []Card {
	return []Card{
		{
			Name:        "Breakthrough",
			Description: "The experiment works. Gain 6 knowledge.",
			Effects:     []Effect{{Kind: EffectResourceChange, Knowledge: 6}},
		},
		{
			Name:        "Failed Trial",
			Description: "Back to the bench. Lose 3 knowledge and 1 money.",
			Effects:     []Effect{{Kind: EffectResourceChange, Knowledge: -3, Money: -1}},
		},
		{
			Name:        "Field Expedition",
			Description: "The survey pushes ahead. Move forward 3 spaces.",
			Effects:     []Effect{{Kind: EffectMovement, Steps: 3}},
		},
		{
			Name:        "Lost Notes",
			Description: "Retrace your steps. Move back 3 spaces and take a different trail at the next crossing.",
			Effects:     []Effect{{Kind: EffectMovement, Steps: -3, ForceChange: true}},
		},
		{
			Name:        "Espionage",
			Description: "Your findings leak. Steal 4 knowledge from the richest rival.",
			Effects:     []Effect{{Kind: EffectSteal, Resource: models.ResourceKnowledge, Amount: 4}},
		},
		{
			Name:        "Contaminated Lab",
			Description: "A rival's samples are ruined. They lose 3 knowledge.",
			Effects:     []Effect{{Kind: EffectSabotage, Resource: models.ResourceKnowledge, Amount: 3}},
		},
		{
			Name:        "Peer Review",
			Description: "The committee sits on your paper. Skip a turn.",
			Effects:     []Effect{{Kind: EffectSkipTurn, Rounds: 1}},
		},
		{
			Name:        "Tenure",
			Description: "Settled and untouchable for 2 rounds.",
			Effects:     []Effect{{Kind: EffectImmunity, Rounds: 2}},
		},
		{
			Name:        "Research Grant",
			Description: "Offer 4 knowledge for 4 money from another traveler.",
			Effects: []Effect{{
				Kind:            EffectTradeOffer,
				OfferResource:   models.ResourceKnowledge,
				OfferAmount:     4,
				RequestResource: models.ResourceMoney,
				RequestAmount:   4,
			}},
		},
		{
			Name:        "Visiting Chair",
			Description: "The appointment moves you to the society trail.",
			Effects:     []Effect{{Kind: EffectMovement, ToPath: board.PathPink}},
		},
	}
}

func pinkCards() []Card {
	return []Card{
		{
			Name:        "Election Win",
			Description: "The district is yours. Gain 6 influence.",
			Effects:     []Effect{{Kind: EffectResourceChange, Influence: 6}},
		},
		{
			Name:        "Smear Campaign",
			Description: "Mud sticks. Lose 4 influence.",
			Effects:     []Effect{{Kind: EffectResourceChange, Influence: -4}},
		},
		{
			Name:        "Motorcade",
			Description: "Doors open ahead of you. Move forward 2 spaces.",
			Effects:     []Effect{{Kind: EffectMovement, Steps: 2}},
		},
		{
			Name:        "Recalled Home",
			Description: "The council summons you. Move back 2 spaces and leave this trail at the next crossing.",
			Effects:     []Effect{{Kind: EffectMovement, Steps: -2, ForceChange: true}},
		},
		{
			Name:        "Defection",
			Description: "A rival's backer joins you. Steal 3 influence from the richest rival.",
			Effects:     []Effect{{Kind: EffectSteal, Resource: models.ResourceInfluence, Amount: 3}},
		},
		{
			Name:        "Leaked Letters",
			Description: "A rival's correspondence goes public. They lose 4 influence.",
			Effects:     []Effect{{Kind: EffectSabotage, Resource: models.ResourceInfluence, Amount: 4}},
		},
		{
			Name:        "Diplomatic Pouch",
			Description: "Untouchable under seal for 1 round.",
			Effects:     []Effect{{Kind: EffectImmunity, Rounds: 1}},
		},
		{
			Name:        "Censure",
			Description: "The assembly censures you. No trades for 1 round.",
			Effects:     []Effect{{Kind: EffectTradeBlocked, Rounds: 1}},
		},
		{
			Name:        "Coalition",
			Description: "Propose a pact with another traveler.",
			Effects:     []Effect{{Kind: EffectAllianceOffer, Rounds: 1}},
		},
		{
			Name:        "Trade Mission",
			Description: "The mission posts you to the commerce trail.",
			Effects:     []Effect{{Kind: EffectMovement, ToPath: board.PathBlue}},
		},
	}
}

func endOfTurnCards() []Card {
	return []Card{
		{
			Name:        "Tax Season",
			Description: "Everyone pays; merchants pay double.",
			RoleEffects: map[models.Role]Effect{
				models.RoleMerchant: {Kind: EffectResourceChange, Money: -4},
				models.RoleAll:      {Kind: EffectResourceChange, Money: -2},
			},
		},
		{
			Name:        "Public Lecture",
			Description: "Scholars profit from the crowd; others pick up a little.",
			RoleEffects: map[models.Role]Effect{
				models.RoleScholar: {Kind: EffectResourceChange, Knowledge: 3, Money: 2},
				models.RoleAll:     {Kind: EffectResourceChange, Knowledge: 1},
			},
		},
		{
			Name:        "Court Intrigue",
			Description: "Diplomats thrive at court; explorers are out of their depth.",
			RoleEffects: map[models.Role]Effect{
				models.RoleDiplomat: {Kind: EffectResourceChange, Influence: 4},
				models.RoleExplorer: {Kind: EffectResourceChange, Influence: -2},
				models.RoleAll:      {Kind: EffectResourceChange, Influence: 1},
			},
		},
		{
			Name:        "Open Road",
			Description: "Explorers push ahead.",
			RoleEffects: map[models.Role]Effect{
				models.RoleExplorer: {Kind: EffectMovement, Steps: 2},
				models.RoleAll:      {Kind: EffectMovement, Steps: 1},
			},
		},
		{
			Name:        "Guild Dues",
			Description: "Artisans pay the guild; mystics owe nothing.",
			RoleEffects: map[models.Role]Effect{
				models.RoleArtisan: {Kind: EffectResourceChange, Money: -3},
				models.RoleMystic:  {Kind: EffectResourceChange},
				models.RoleAll:     {Kind: EffectResourceChange, Money: -1},
			},
		},
		{
			Name:        "Omen",
			Description: "Mystics read the signs and step carefully.",
			RoleEffects: map[models.Role]Effect{
				models.RoleMystic: {Kind: EffectImmunity, Rounds: 1},
			},
		},
		{
			Name:        "Harvest Festival",
			Description: "A good year for everyone.",
			RoleEffects: map[models.Role]Effect{
				models.RoleAll: {Kind: EffectResourceChange, Money: 2, Knowledge: 1, Influence: 1},
			},
		},
		{
			Name:        "Border Closed",
			Description: "Everyone waits at the crossing; diplomats talk their way through.",
			RoleEffects: map[models.Role]Effect{
				models.RoleDiplomat: {Kind: EffectResourceChange, Influence: 1},
				models.RoleAll:      {Kind: EffectSkipTurn, Rounds: 1},
			},
		},
		{
			Name:        "Rumor Mill",
			Description: "Merchants are barred from the exchange for a round.",
			RoleEffects: map[models.Role]Effect{
				models.RoleMerchant: {Kind: EffectTradeBlocked, Rounds: 1},
				models.RoleAll:      {Kind: EffectResourceChange, Influence: -1},
			},
		},
		{
			Name:        "Quiet Season",
			Description: "Nothing of note happens on the road.",
			RoleEffects: map[models.Role]Effect{},
		},
	}
}
