package network

// Message ids. 1xx lobby, 2xx player input, 3xx server-pushed game output.
const (
	MsgTypeHeartbeat = 1

	MsgTypeCreateGame = 101
	MsgTypeJoinGame   = 102
	MsgTypeLeaveGame  = 103
	MsgTypeStartGame  = 104

	MsgTypePlayerAction = 201

	MsgTypeGameEvent   = 301
	MsgTypePlayerState = 302
	MsgTypeMovement    = 303
	MsgTypeCardReveal  = 304
	MsgTypeChoices     = 305
	MsgTypeTradeOffer  = 306
	MsgTypeGameEnd     = 307

	MsgTypeError = 401
)
