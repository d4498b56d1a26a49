package connection

import (
	mb "github.com/saeidalz13/seabattle/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
}

type RespCreateGame struct {
	MatchID string `json:"match_id"`
}

type RespJoinGame struct {
	MatchID string `json:"match_id"`
}

type RespRandomFleet struct {
	Ships []mb.ShipPlacement `json:"ships"`
}

type RespMatchState struct {
	MatchID          string `json:"match_id"`
	Status           string `json:"status"`
	CurrentTurnOwner string `json:"current_turn_owner,omitempty"`
	IsTurn           bool   `json:"is_turn"`
}

// RespAttack is sent to both players; IsTurn is set per receiver.
type RespAttack struct {
	mb.ShotResult
	IsTurn bool `json:"is_turn"`
}

type RespEndGame struct {
	MatchID  string                     `json:"match_id"`
	Winner   string                     `json:"winner,omitempty"`
	Reason   string                     `json:"reason"`
	IsWinner bool                       `json:"is_winner"`
	Stats    map[string]RespPlayerStats `json:"stats"`
}

type RespPlayerStats struct {
	Shots    int     `json:"shots"`
	Hits     int     `json:"hits"`
	Misses   int     `json:"misses"`
	Accuracy float64 `json:"accuracy"`
}

func NewRespPlayerStats(ps mb.PlayerStats) RespPlayerStats {
	return RespPlayerStats{
		Shots:    ps.Shots,
		Hits:     ps.Hits,
		Misses:   ps.Misses,
		Accuracy: ps.Accuracy(),
	}
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
