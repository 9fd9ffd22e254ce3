// server/presenter.go
package server

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/broadcast"
	"github.com/wfunc/crossroads/cards"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/network"
	"github.com/wfunc/crossroads/trade"
)

// wsPresenter satisfies game.Presenter by pushing every presentation
// request to the game's connected clients. Writes complete before the
// method returns, which is the completion signal the core expects.
type wsPresenter struct {
	gameID      string
	broadcaster broadcast.Broadcaster
}

func (p *wsPresenter) AnimateMovement(playerID string, from, to board.Coord) {
	data, _ := json.Marshal(map[string]interface{}{
		"player_id": playerID,
		"from":      from,
		"to":        to,
	})
	p.broadcaster.BroadcastToGame(p.gameID, network.MsgTypeMovement, data)
}

func (p *wsPresenter) ShowCard(playerID string, card cards.Card) {
	data, _ := json.Marshal(map[string]interface{}{
		"player_id": playerID,
		"card":      card,
	})
	p.broadcaster.BroadcastToGame(p.gameID, network.MsgTypeCardReveal, data)
}

func (p *wsPresenter) HighlightChoices(playerID string, branches []board.Branch) {
	data, _ := json.Marshal(map[string]interface{}{
		"player_id": playerID,
		"branches":  branches,
	})
	p.broadcaster.BroadcastToGame(p.gameID, network.MsgTypeChoices, data)
}

// PromptTrade goes only to the offer's target; the rest of the table just
// sees the event log line.
func (p *wsPresenter) PromptTrade(playerID string, offer trade.Offer) {
	data, _ := json.Marshal(offer)
	p.broadcaster.SendToPlayer(playerID, network.MsgTypeTradeOffer, data)
}

func (p *wsPresenter) RefreshPlayers(players []*models.Player) {
	data, _ := json.Marshal(map[string]interface{}{
		"players": players,
	})
	p.broadcaster.BroadcastToGame(p.gameID, network.MsgTypePlayerState, data)
}

func (p *wsPresenter) Log(format string, args ...interface{}) {
	data, _ := json.Marshal(map[string]string{"message": fmt.Sprintf(format, args...)})
	p.broadcaster.BroadcastToGame(p.gameID, network.MsgTypeGameEvent, data)
}
