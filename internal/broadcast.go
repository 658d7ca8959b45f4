package internal

// Broadcaster is the transport-facing sink the match engine pushes events
// into. Delivery is fire-and-forget: the engine never learns whether a write
// reached a client. JoinRoom mirrors the session layer's room membership so
// ToRoom can fan out without the engine knowing the transport.
type Broadcaster interface {
	JoinRoom(roomID, playerID string)
	ToRoom(roomID string, msg any)
	ToPlayer(playerID string, msg any)
}
