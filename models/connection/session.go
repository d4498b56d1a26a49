package connection

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = time.Second * 10

// Session is one player's websocket connection. The player id is assigned
// by the server when the session opens and never comes from the client.
type Session struct {
	id        string
	playerID  string
	conn      *websocket.Conn
	createdAt time.Time

	// unix nanos of the last frame read from the client
	lastActive atomic.Int64

	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex

	mu      sync.RWMutex
	matchID string
	closed  bool
}

func NewSession(id, playerID string, conn *websocket.Conn) *Session {
	s := &Session{
		id:        id,
		playerID:  playerID,
		conn:      conn,
		createdAt: time.Now(),
	}
	s.touch()
	return s
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) PlayerID() string {
	return s.playerID
}

func (s *Session) MatchID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matchID
}

func (s *Session) SetMatchID(matchID string) {
	s.mu.Lock()
	s.matchID = matchID
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// ConnectedFor is how long the session has been open at now.
func (s *Session) ConnectedFor(now time.Time) time.Duration {
	return now.Sub(s.createdAt)
}

func (s *Session) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActive.Load()))
}

// close is idempotent. It makes a blocked read on the connection fail.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.conn.Close()
}

func (s *Session) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// onConnErr logs a read or write failure at a level matching how expected it
// is. Every failure ends the session; there is no reconnection.
func (s *Session) onConnErr(err error) uint8 {
	logger := log.With().Str("session_id", s.id).Str("remote_addr", s.conn.RemoteAddr().String()).Logger()

	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.Warn().Err(err).Msg("timeout error")

	case websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
		logger.Debug().Err(err).Msg("close error")

	case websocket.IsCloseError(err, websocket.CloseAbnormalClosure, websocket.CloseNoStatusReceived):
		logger.Info().Err(err).Msg("abnormal closure")

	case websocket.IsCloseError(err, websocket.CloseProtocolError, websocket.CloseInternalServerErr, websocket.CloseTLSHandshake, websocket.CloseMandatoryExtension):
		logger.Error().Err(err).Msg("critical error")

	/*
		This might mean that the client is not from the application.
		Breaking not to overwhelm the server with invalid payloads (e.g. binary data)
	*/
	case websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation):
		logger.Warn().Err(err).Msg("non-critical error")

	default:
		logger.Debug().Err(err).Msg("connection error")
	}

	return ConnLoopBreak
}

func (s *Session) writeJSON(msg any) error {
	if s.isClosed() {
		return NewConnErr(ConnSessionClosed).AddDesc("session " + s.id + " is closed")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		return NewConnErr(s.onConnErr(err)).AddDesc("writing json failed: " + err.Error())
	}
	return nil
}

func (s *Session) read() ([]byte, error) {
	for {
		messageType, payload, err := s.conn.ReadMessage()
		if err != nil {
			return nil, NewConnErr(s.onConnErr(err)).AddDesc("reading failed: " + err.Error())
		}
		s.touch()

		// Only text frames carry commands
		if messageType == websocket.TextMessage {
			return payload, nil
		}
	}
}
