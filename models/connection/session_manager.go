package connection

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const (
	defaultCleanupInterval = time.Minute
	defaultMaxIdle         = time.Minute * 30
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	FindSession(sessionId string) (*Session, error)
	FindPlayerSession(playerID string) (*Session, error)
	TerminateSession(session *Session)

	WriteToSessionConn(session *Session, msg any) error
	ReadFromSessionConn(session *Session) ([]byte, error)
	Communicate(msg SessionMessage) error

	CleanupPeriodically(ctx context.Context)
}

type BattleshipSessionManager struct {
	cleanupInterval time.Duration
	maxIdle         time.Duration
	sessions        map[string]*Session
	// player id -> session id
	players map[string]string
	mu      sync.RWMutex
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

func NewBattleshipSessionManager(maxIdle time.Duration) *BattleshipSessionManager {
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdle
	}

	return &BattleshipSessionManager{
		sessions:        make(map[string]*Session, 10),
		players:         make(map[string]string, 10),
		cleanupInterval: defaultCleanupInterval,
		maxIdle:         maxIdle,
	}
}

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, uuid.NewString(), conn)

	bsm.mu.Lock()
	bsm.sessions[sessionId] = session
	bsm.players[session.playerID] = sessionId
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}
	return session, nil
}

func (bsm *BattleshipSessionManager) FindPlayerSession(playerID string) (*Session, error) {
	bsm.mu.RLock()
	sessionId, prs := bsm.players[playerID]
	bsm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrSessionNotFound("player " + playerID)
	}
	return bsm.FindSession(sessionId)
}

func (bsm *BattleshipSessionManager) TerminateSession(session *Session) {
	session.close()

	bsm.mu.Lock()
	delete(bsm.sessions, session.id)
	delete(bsm.players, session.playerID)
	bsm.mu.Unlock()
}

func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg any) error {
	return session.writeJSON(msg)
}

func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) ([]byte, error) {
	return session.read()
}

// Communicate delivers msg to the receiver's live session, if any.
func (bsm *BattleshipSessionManager) Communicate(msg SessionMessage) error {
	receiverSession, err := bsm.FindPlayerSession(msg.ReceiverID)
	if err != nil {
		return err
	}
	return receiverSession.writeJSON(msg.Payload)
}

// To ensure that there is no dangling connections, sessions that have not
// sent anything for maxIdle are closed. Closing the connection ends the
// session's read loop, which abandons its match.
func (bsm *BattleshipSessionManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(bsm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			bsm.mu.RLock()
			stale := make([]*Session, 0, 10)
			for _, session := range bsm.sessions {
				if session.idleFor(now) > bsm.maxIdle {
					stale = append(stale, session)
				}
			}
			bsm.mu.RUnlock()

			for _, session := range stale {
				log.Info().Str("session_id", session.id).Msg("closing idle session")
				bsm.TerminateSession(session)
			}
		}
	}
}
