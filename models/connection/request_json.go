package connection

import (
	mb "github.com/saeidalz13/seabattle/models/battleship"
)

type ReqJoinGame struct {
	MatchID string `json:"match_id"`
}

type ReqReadyPlayer struct {
	MatchID string             `json:"match_id"`
	Ships   []mb.ShipPlacement `json:"ships"`
}

type ReqAttack struct {
	MatchID string `json:"match_id"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
}

type ReqAbandon struct {
	MatchID string `json:"match_id"`
}
