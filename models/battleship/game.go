package battleship

import (
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type MatchStatus uint8

const (
	MatchStatusWaitingForPlayer MatchStatus = iota
	MatchStatusPlacingShips
	MatchStatusPlayer1Turn
	MatchStatusPlayer2Turn
	MatchStatusPlayer1Won
	MatchStatusPlayer2Won
	MatchStatusDraw
	MatchStatusAbandoned
)

func (s MatchStatus) String() string {
	switch s {
	case MatchStatusWaitingForPlayer:
		return "WaitingForPlayer"
	case MatchStatusPlacingShips:
		return "PlacingShips"
	case MatchStatusPlayer1Turn:
		return "Player1Turn"
	case MatchStatusPlayer2Turn:
		return "Player2Turn"
	case MatchStatusPlayer1Won:
		return "Player1Won"
	case MatchStatusPlayer2Won:
		return "Player2Won"
	case MatchStatusDraw:
		return "Draw"
	case MatchStatusAbandoned:
		return "Abandoned"
	default:
		return "Unknown"
	}
}

func (s MatchStatus) IsTerminal() bool {
	return s >= MatchStatusPlayer1Won && s <= MatchStatusAbandoned
}

func (s MatchStatus) IsCombat() bool {
	return s == MatchStatusPlayer1Turn || s == MatchStatusPlayer2Turn
}

type EndReason string

const (
	EndReasonAllShipsSunk         EndReason = "all_ships_sunk"
	EndReasonOpponentDisconnected EndReason = "opponent_disconnected"
	EndReasonAbandoned            EndReason = "abandoned"
	EndReasonTimeout              EndReason = "timeout"
)

// Match is one game between two players. Players[0] is always the creator
// and moves first once both fleets are ready. Once Status is terminal no
// method changes the match again.
type Match struct {
	ID               string
	Status           MatchStatus
	Players          [2]*Player
	CurrentTurnOwner string
	Winner           string
	EndReason        EndReason
	CreatedAt        time.Time
	EndedAt          time.Time
}

// NewMatchID returns a short id players can share. It is not globally
// unique, so stores reject a taken id on create.
func NewMatchID() string {
	return uuid.NewString()[:8]
}

func NewMatch(player1ID string, now time.Time) *Match {
	return &Match{
		ID:        NewMatchID(),
		Status:    MatchStatusWaitingForPlayer,
		Players:   [2]*Player{NewPlayer(player1ID), nil},
		CreatedAt: now,
	}
}

// PlayerIDs lists the seated players, creator first.
func (m *Match) PlayerIDs() []string {
	ids := make([]string, 0, len(m.Players))
	for _, p := range m.Players {
		if p != nil {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (m *Match) Player(playerID string) (*Player, error) {
	if i := m.seatOf(playerID); i >= 0 {
		return m.Players[i], nil
	}
	return nil, cerr.ErrPlayerNotInMatch(playerID, m.ID)
}

// Opponent returns the other seated player, or nil while the seat is empty.
func (m *Match) Opponent(playerID string) *Player {
	switch m.seatOf(playerID) {
	case 0:
		return m.Players[1]
	case 1:
		return m.Players[0]
	default:
		return nil
	}
}

func (m *Match) seatOf(playerID string) int {
	for i, p := range m.Players {
		if p != nil && p.ID == playerID {
			return i
		}
	}
	return -1
}

func (m *Match) turnStatusOf(playerID string) MatchStatus {
	if m.seatOf(playerID) == 0 {
		return MatchStatusPlayer1Turn
	}
	return MatchStatusPlayer2Turn
}

func (m *Match) wonStatusOf(playerID string) MatchStatus {
	if m.seatOf(playerID) == 0 {
		return MatchStatusPlayer1Won
	}
	return MatchStatusPlayer2Won
}

func (m *Match) Join(playerID string) error {
	if m.seatOf(playerID) >= 0 {
		return cerr.ErrPlayerAlreadyJoined(playerID)
	}
	if m.Players[1] != nil {
		return cerr.ErrMatchFull(m.ID)
	}
	if m.Status != MatchStatusWaitingForPlayer {
		return cerr.ErrMatchStatus(m.ID, m.Status.String())
	}

	m.Players[1] = NewPlayer(playerID)
	m.Status = MatchStatusPlacingShips
	return nil
}

// SubmitFleet validates ships as playerID's fleet and marks them ready. It
// reports whether this submission started combat.
func (m *Match) SubmitFleet(playerID string, ships []ShipPlacement) (bool, error) {
	if m.Status != MatchStatusPlacingShips {
		return false, cerr.ErrMatchStatus(m.ID, m.Status.String())
	}
	player, err := m.Player(playerID)
	if err != nil {
		return false, err
	}
	if player.Ready {
		return false, cerr.ErrFleetAlreadySubmitted(playerID)
	}

	board, err := BuildBoard(ships)
	if err != nil {
		return false, err
	}
	player.Board = board
	player.Ready = true

	if !m.Players[0].Ready || !m.Players[1].Ready {
		return false, nil
	}
	m.Status = MatchStatusPlayer1Turn
	m.CurrentTurnOwner = m.Players[0].ID
	return true, nil
}

// Abandon ends the match on behalf of playerID. The other player, if any, is
// credited as winner. It reports false when the match had already ended.
func (m *Match) Abandon(playerID string, now time.Time) (bool, error) {
	if _, err := m.Player(playerID); err != nil {
		return false, err
	}
	if m.Status.IsTerminal() {
		return false, nil
	}

	winner, reason := "", EndReasonAbandoned
	if opponent := m.Opponent(playerID); opponent != nil {
		winner, reason = opponent.ID, EndReasonOpponentDisconnected
	}
	m.EndedAt = now
	m.finish(MatchStatusAbandoned, winner, reason)
	return true, nil
}

// Expire ends a match older than maxAge. A match still in setup is abandoned
// with nobody credited; a match in combat is drawn.
func (m *Match) Expire(now time.Time, maxAge time.Duration) bool {
	if m.Status.IsTerminal() || now.Sub(m.CreatedAt) < maxAge {
		return false
	}

	m.EndedAt = now
	if m.Status.IsCombat() {
		m.finish(MatchStatusDraw, "", EndReasonTimeout)
	} else {
		m.finish(MatchStatusAbandoned, "", EndReasonTimeout)
	}
	return true
}

func (m *Match) finish(status MatchStatus, winner string, reason EndReason) {
	m.Status = status
	m.Winner = winner
	m.EndReason = reason
}
