package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

// Request is one incoming frame. Every handler answers with a Message whose
// code matches the command, carrying either a payload or an error.
type Request struct {
	payload []byte
}

func NewRequest(payload []byte) Request {
	return Request{payload: payload}
}

func decodePayload[T any](payload []byte) (T, error) {
	var msg mc.Message[T]
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg.Payload, cerr.ErrInvalidPayload(err)
	}
	return msg.Payload, nil
}

// errorKind maps an error to the stable identifier clients branch on.
func errorKind(err error) string {
	switch {
	case errors.Is(err, cerr.ErrValidation):
		return "validation_error"
	case errors.Is(err, cerr.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, cerr.ErrAlreadyShot):
		return "already_shot"
	case errors.Is(err, cerr.ErrNotFound):
		return "not_found"
	case errors.Is(err, cerr.ErrAlreadyFull):
		return "already_full"
	case errors.Is(err, cerr.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, cerr.ErrStoreUnavailable):
		return "operation_not_applied"
	case errors.Is(err, cerr.ErrPlacementExhausted):
		return "placement_exhausted"
	default:
		return "internal_error"
	}
}

func errMessage[T any](code uint8, err error) mc.Message[T] {
	msg := mc.NewMessage[T](code)
	msg.AddError(errorKind(err), err.Error())
	return msg
}

// matchIDFor prefers the id in the request and falls back to the session's
// current match. Membership is checked by the game manager.
func matchIDFor(session *mc.Session, requested string) string {
	if requested != "" {
		return requested
	}
	return session.MatchID()
}

// A player takes part in at most one running match at a time.
func ensureNoActiveMatch(ctx context.Context, gm mb.GameManager, session *mc.Session) error {
	matchID := session.MatchID()
	if matchID == "" {
		return nil
	}

	m, err := gm.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, cerr.ErrNotFound) {
			return nil
		}
		return err
	}
	if m.Status.IsTerminal() {
		return nil
	}
	return cerr.ErrPlayerInActiveMatch(session.PlayerID(), matchID)
}

func (r Request) HandleCreateGame(ctx context.Context, gm mb.GameManager, analytics MatchAnalytics, session *mc.Session) mc.Message[mc.RespCreateGame] {
	if err := ensureNoActiveMatch(ctx, gm, session); err != nil {
		return errMessage[mc.RespCreateGame](mc.CodeCreateGame, err)
	}

	m, err := gm.CreateMatch(ctx, session.PlayerID())
	if err != nil {
		return errMessage[mc.RespCreateGame](mc.CodeCreateGame, err)
	}
	session.SetMatchID(m.ID)

	if analytics != nil {
		if err := analytics.IncrementMatchesCreatedCount(ctx); err != nil {
			// for now not failing the command for it
			log.Error().Err(err).Msg("incrementing matches created failed")
		}
	}

	resp := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)
	resp.AddPayload(mc.RespCreateGame{MatchID: m.ID})
	return resp
}

func (r Request) HandleJoinGame(ctx context.Context, gm mb.GameManager, session *mc.Session) mc.Message[mc.RespJoinGame] {
	req, err := decodePayload[mc.ReqJoinGame](r.payload)
	if err != nil {
		return errMessage[mc.RespJoinGame](mc.CodeJoinGame, err)
	}
	if err := ensureNoActiveMatch(ctx, gm, session); err != nil {
		return errMessage[mc.RespJoinGame](mc.CodeJoinGame, err)
	}

	m, err := gm.JoinMatch(ctx, req.MatchID, session.PlayerID())
	if err != nil {
		return errMessage[mc.RespJoinGame](mc.CodeJoinGame, err)
	}
	session.SetMatchID(m.ID)

	resp := mc.NewMessage[mc.RespJoinGame](mc.CodeJoinGame)
	resp.AddPayload(mc.RespJoinGame{MatchID: m.ID})
	return resp
}

// HandleRandomFleet suggests a legal fleet. Nothing is stored; the client
// submits the ships with CodeReady if it wants them.
func (r Request) HandleRandomFleet(shipAttempts, boardAttempts int) mc.Message[mc.RespRandomFleet] {
	engine := mb.NewPlacementEngine(mb.NewBoard(), mb.WithAttemptLimits(shipAttempts, boardAttempts))
	if err := engine.PlaceRandomly(); err != nil {
		return errMessage[mc.RespRandomFleet](mc.CodeRandomFleet, err)
	}

	resp := mc.NewMessage[mc.RespRandomFleet](mc.CodeRandomFleet)
	resp.AddPayload(mc.RespRandomFleet{Ships: engine.Placements()})
	return resp
}

func (r Request) HandleReadyPlayer(ctx context.Context, gm mb.GameManager, session *mc.Session) mc.Message[mc.NoPayload] {
	req, err := decodePayload[mc.ReqReadyPlayer](r.payload)
	if err != nil {
		return errMessage[mc.NoPayload](mc.CodeReady, err)
	}

	if _, err := gm.SubmitFleet(ctx, matchIDFor(session, req.MatchID), session.PlayerID(), req.Ships); err != nil {
		return errMessage[mc.NoPayload](mc.CodeReady, err)
	}
	return mc.NewMessage[mc.NoPayload](mc.CodeReady)
}

// HandleAttack answers the attacker. The defender learns about the shot from
// the ShotResolved event.
func (r Request) HandleAttack(ctx context.Context, gm mb.GameManager, session *mc.Session) mc.Message[mc.RespAttack] {
	req, err := decodePayload[mc.ReqAttack](r.payload)
	if err != nil {
		return errMessage[mc.RespAttack](mc.CodeAttack, err)
	}

	result, err := gm.Shoot(ctx, matchIDFor(session, req.MatchID), session.PlayerID(), req.Row, req.Col)
	if err != nil {
		return errMessage[mc.RespAttack](mc.CodeAttack, err)
	}

	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)
	resp.AddPayload(mc.RespAttack{
		ShotResult: result,
		IsTurn:     result.NextTurnOwner == session.PlayerID(),
	})
	return resp
}

func (r Request) HandleAbandon(ctx context.Context, gm mb.GameManager, session *mc.Session) mc.Message[mc.NoPayload] {
	req, err := decodePayload[mc.ReqAbandon](r.payload)
	if err != nil {
		return errMessage[mc.NoPayload](mc.CodeAbandon, err)
	}

	matchID := matchIDFor(session, req.MatchID)
	if err := gm.Abandon(ctx, matchID, session.PlayerID()); err != nil {
		return errMessage[mc.NoPayload](mc.CodeAbandon, err)
	}
	if session.MatchID() == matchID {
		session.SetMatchID("")
	}
	return mc.NewMessage[mc.NoPayload](mc.CodeAbandon)
}
