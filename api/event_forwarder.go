package api

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

// ForwardEvents delivers game events to the sessions of the players they
// concern. It is the only reader of the event channel and returns when ctx
// is done or the channel is closed.
func (s *Server) ForwardEvents(ctx context.Context, events <-chan mb.Event) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			s.forward(ctx, ev)
		}
	}
}

func (s *Server) forward(ctx context.Context, ev mb.Event) {
	for _, msg := range sessionMessagesFor(ev) {
		// A player without a live session simply misses the frame
		if err := s.sessionManager.Communicate(msg); err != nil {
			log.Debug().Err(err).Str("match_id", ev.MatchID).Str("receiver_id", msg.ReceiverID).Str("event", ev.Kind.String()).Msg("event not delivered")
		}
	}

	if ev.Kind != mb.EventMatchEnded {
		return
	}

	for _, playerID := range ev.Players {
		if session, err := s.sessionManager.FindPlayerSession(playerID); err == nil && session.MatchID() == ev.MatchID {
			session.SetMatchID("")
		}
	}

	if s.analytics != nil {
		ctx, cancel := context.WithTimeout(ctx, time.Second*10)
		defer cancel()
		if err := s.analytics.IncrementMatchesFinishedCount(ctx); err != nil {
			log.Error().Err(err).Msg("incrementing matches finished failed")
		}
	}
}

// sessionMessagesFor turns one event into the frames each player receives.
// The shooter is answered directly by the attack command, so ShotResolved
// only goes to the other player.
func sessionMessagesFor(ev mb.Event) []mc.SessionMessage {
	msgs := make([]mc.SessionMessage, 0, len(ev.Players))

	switch ev.Kind {
	case mb.EventMatchStateChanged:
		code := mc.CodeMatchState
		if ev.Status == mb.MatchStatusPlayer1Turn {
			code = mc.CodeStartGame
		}
		for _, playerID := range ev.Players {
			msg := mc.NewMessage[mc.RespMatchState](code)
			msg.AddPayload(mc.RespMatchState{
				MatchID:          ev.MatchID,
				Status:           ev.Status.String(),
				CurrentTurnOwner: ev.CurrentTurnOwner,
				IsTurn:           ev.CurrentTurnOwner == playerID,
			})
			msgs = append(msgs, mc.NewSessionMessage(playerID, ev.MatchID, msg))
		}

	case mb.EventShotResolved:
		if ev.Shot == nil {
			return nil
		}
		for _, playerID := range ev.Players {
			if playerID == ev.Shot.Shooter {
				continue
			}
			msg := mc.NewMessage[mc.RespAttack](mc.CodeAttack)
			msg.AddPayload(mc.RespAttack{
				ShotResult: *ev.Shot,
				IsTurn:     ev.Shot.NextTurnOwner == playerID,
			})
			msgs = append(msgs, mc.NewSessionMessage(playerID, ev.MatchID, msg))
		}

	case mb.EventMatchEnded:
		stats := make(map[string]mc.RespPlayerStats, len(ev.Stats))
		for id, ps := range ev.Stats {
			stats[id] = mc.NewRespPlayerStats(ps)
		}
		for _, playerID := range ev.Players {
			msg := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
			msg.AddPayload(mc.RespEndGame{
				MatchID:  ev.MatchID,
				Winner:   ev.Winner,
				Reason:   string(ev.Reason),
				IsWinner: ev.Winner != "" && ev.Winner == playerID,
				Stats:    stats,
			})
			msgs = append(msgs, mc.NewSessionMessage(playerID, ev.MatchID, msg))
		}
	}

	return msgs
}
