package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

// commandTimeout bounds a single command including its store round trip.
const commandTimeout = time.Second * 10

var upgrader = websocket.Upgrader{
	// good average time since this is not a high-latency operation such as video streaming
	HandshakeTimeout: time.Second * 5,

	// probably more that enough but this is a good average size
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RequestProcessor upgrades a connection and runs the command loop of one
// player session until the connection breaks.
type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      MatchAnalytics

	shipAttempts  int
	boardAttempts int
}

func NewRequestProcessor(s *Server) *RequestProcessor {
	return &RequestProcessor{
		sessionManager: s.sessionManager,
		gameManager:    s.gameManager,
		analytics:      s.analytics,
		shipAttempts:   s.shipAttempts,
		boardAttempts:  s.boardAttempts,
	}
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an http error
		log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	session := rp.sessionManager.GenerateNewSession(conn)
	log.Info().
		Str("session_id", session.Id()).
		Str("player_id", session.PlayerID()).
		Str("remote_addr", conn.RemoteAddr().String()).
		Msg("a new connection established")

	rp.processSessionRequests(session)
}

// A broken connection is a disconnect. There is no grace period, so the
// player's active match is abandoned right away.
func (rp *RequestProcessor) onDisconnect(session *mc.Session) {
	rp.sessionManager.TerminateSession(session)

	matchID := session.MatchID()
	if matchID == "" {
		return
	}
	log.Info().
		Str("match_id", matchID).
		Str("player_id", session.PlayerID()).
		Dur("session_age", session.ConnectedFor(time.Now())).
		Msg("player disconnected mid-match, abandoning")

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := rp.gameManager.Abandon(ctx, matchID, session.PlayerID()); err != nil {
		log.Error().Err(err).Str("match_id", matchID).Str("player_id", session.PlayerID()).Msg("abandon on disconnect failed")
	}
}

func (rp *RequestProcessor) processSessionRequests(session *mc.Session) {
	defer rp.onDisconnect(session)

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: session.Id(), PlayerID: session.PlayerID()})
	if err := rp.sessionManager.WriteToSessionConn(session, resp); err != nil {
		logSessionEnd(session, err)
		return
	}

	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			logSessionEnd(session, err)
			return
		}

		respMsg := rp.dispatch(session, payload)
		if err := rp.sessionManager.WriteToSessionConn(session, respMsg); err != nil {
			logSessionEnd(session, err)
			return
		}
	}
}

func logSessionEnd(session *mc.Session, err error) {
	msg := "session connection broke"
	if mc.IsSessionClosed(err) {
		msg = "session was already terminated"
	}
	log.Debug().
		Err(err).
		Str("session_id", session.Id()).
		Str("player_id", session.PlayerID()).
		Dur("session_age", session.ConnectedFor(time.Now())).
		Msg(msg)
}

// dispatch runs one command and returns the frame to answer it with.
func (rp *RequestProcessor) dispatch(session *mc.Session, payload []byte) any {
	var signal mc.Signal
	if err := json.Unmarshal(payload, &signal); err != nil || signal.Code == nil {
		msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
		msg.AddError("signal_absent", "incoming req payload must contain 'code' field")
		return msg
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	req := NewRequest(payload)
	switch *signal.Code {
	case mc.CodeCreateGame:
		return req.HandleCreateGame(ctx, rp.gameManager, rp.analytics, session)

	case mc.CodeJoinGame:
		return req.HandleJoinGame(ctx, rp.gameManager, session)

	case mc.CodeRandomFleet:
		return req.HandleRandomFleet(rp.shipAttempts, rp.boardAttempts)

	case mc.CodeReady:
		return req.HandleReadyPlayer(ctx, rp.gameManager, session)

	case mc.CodeAttack:
		return req.HandleAttack(ctx, rp.gameManager, session)

	case mc.CodeAbandon:
		return req.HandleAbandon(ctx, rp.gameManager, session)

	default:
		respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
		respInvalidSignal.AddError("invalid_signal", "invalid code in the incoming payload")
		return respInvalidSignal
	}
}
