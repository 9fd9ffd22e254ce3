// game/actions.go
package game

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/trade"
)

// Action type names accepted by HandleAction.
const (
	ActionChooseStart   = "choose_start"
	ActionRoll          = "roll"
	ActionChooseBranch  = "choose_branch"
	ActionDrawPathCard  = "draw_path_card"
	ActionDrawEndCard   = "draw_end_card"
	ActionEndTurn       = "end_turn"
	ActionUseAbility    = "use_ability"
	ActionProposeTrade  = "propose_trade"
	ActionTradeResponse = "trade_response"
)

// Action is the wire payload for every player action. Only the fields
// matching Type are read.
type Action struct {
	Type string `json:"type"`

	// choose_start / choose_branch
	Path board.PathColor `json:"path,omitempty"`

	// draw_end_card: one of the two parallel face-down slots.
	Slot int `json:"slot,omitempty"`

	// trade_response
	OfferID string `json:"offer_id,omitempty"`
	Accept  bool   `json:"accept,omitempty"`

	// propose_trade
	Kind            trade.OfferKind     `json:"kind,omitempty"`
	To              string              `json:"to,omitempty"`
	OfferResource   models.ResourceKind `json:"offer_resource,omitempty"`
	OfferAmount     int                 `json:"offer_amount,omitempty"`
	RequestResource models.ResourceKind `json:"request_resource,omitempty"`
	RequestAmount   int                 `json:"request_amount,omitempty"`
}

func parseAction(data []byte) (Action, error) {
	var action Action
	if err := json.Unmarshal(data, &action); err != nil {
		return Action{}, fmt.Errorf("game: failed to unmarshal action: %w", err)
	}
	if action.Type == "" {
		return Action{}, fmt.Errorf("game: action has no type")
	}
	return action, nil
}

// MarshalAction serializes an action payload. Clients and bots share it.
func MarshalAction(action Action) []byte {
	data, _ := json.Marshal(action)
	return data
}
