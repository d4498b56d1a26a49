package connection

// SessionMessage is a frame addressed to a player rather than to a
// connection. The session manager resolves the player's live session.
type SessionMessage struct {
	ReceiverID string
	MatchID    string
	Payload    any
}

func NewSessionMessage(receiverID, matchID string, p any) SessionMessage {
	return SessionMessage{
		ReceiverID: receiverID,
		MatchID:    matchID,
		Payload:    p,
	}
}
