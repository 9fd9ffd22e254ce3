// game/presenter.go
package game

import (
	"github.com/wfunc/crossroads/board"
	"github.com/wfunc/crossroads/cards"
	"github.com/wfunc/crossroads/models"
	"github.com/wfunc/crossroads/trade"
)

// Presenter is the contract with the presentation collaborator. The core
// never renders or measures time itself; it issues these requests and a
// method's return is its completion signal. Implementations must not call
// back into the session from inside a method.
type Presenter interface {
	// AnimateMovement shows the token travelling from one coordinate to
	// another.
	AnimateMovement(playerID string, from, to board.Coord)

	// ShowCard displays a drawn card until dismissed.
	ShowCard(playerID string, card cards.Card)

	// HighlightChoices marks the selectable branch coordinates.
	HighlightChoices(playerID string, branches []board.Branch)

	// PromptTrade asks a human player to accept or reject an offer. The
	// answer arrives later as a trade_response action.
	PromptTrade(playerID string, offer trade.Offer)

	// RefreshPlayers updates the player/resource display.
	RefreshPlayers(players []*models.Player)

	// Log reports a game event line.
	Log(format string, args ...interface{})
}

// NopPresenter is a Presenter that completes every request immediately.
// It backs tests and headless sessions.
type NopPresenter struct{}

func (NopPresenter) AnimateMovement(string, board.Coord, board.Coord) {}
func (NopPresenter) ShowCard(string, cards.Card)                      {}
func (NopPresenter) HighlightChoices(string, []board.Branch)          {}
func (NopPresenter) PromptTrade(string, trade.Offer)                  {}
func (NopPresenter) RefreshPlayers([]*models.Player)                  {}
func (NopPresenter) Log(string, ...interface{})                       {}
