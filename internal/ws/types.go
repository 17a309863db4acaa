package ws

const (
	// client - server
	MsgTap  = "tap"
	MsgPing = "ping"

	// server - client
	MsgReady     = "ready"
	MsgStats     = "stats"
	MsgTapResult = "tap_result"
	MsgPong      = "pong"
	MsgError     = "error"
)
