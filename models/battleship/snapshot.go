package battleship

import (
	"fmt"
	"time"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type ShipSnapshot struct {
	ID    string        `json:"id"`
	Size  int           `json:"size"`
	Cells []Coordinates `json:"cells"`
}

type ShotMark struct {
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Status CellStatus `json:"status"`
}

// BoardSnapshot is the persisted form of a board. Ship hits and the cell
// index are not stored; both are recomputed from ships and shots on restore.
type BoardSnapshot struct {
	Ships []ShipSnapshot `json:"ships"`
	Shots []ShotMark     `json:"shots"`
}

type PlayerSnapshot struct {
	ID    string        `json:"id"`
	Ready bool          `json:"ready"`
	Stats PlayerStats   `json:"stats"`
	Board BoardSnapshot `json:"board"`
}

type MatchSnapshot struct {
	ID               string           `json:"id"`
	Status           MatchStatus      `json:"status"`
	Players          []PlayerSnapshot `json:"players"`
	CurrentTurnOwner string           `json:"current_turn_owner,omitempty"`
	Winner           string           `json:"winner,omitempty"`
	EndReason        EndReason        `json:"end_reason,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	EndedAt          time.Time        `json:"ended_at"`
}

func (b *Board) Snapshot() BoardSnapshot {
	snap := BoardSnapshot{
		Ships: make([]ShipSnapshot, 0, len(b.ships)),
		Shots: []ShotMark{},
	}
	for _, ship := range b.ships {
		snap.Ships = append(snap.Ships, ShipSnapshot{
			ID:    ship.ID,
			Size:  ship.Size,
			Cells: append([]Coordinates(nil), ship.Cells...),
		})
	}
	for row := range b.marks {
		for col, mark := range b.marks[row] {
			if mark.wasShot {
				snap.Shots = append(snap.Shots, ShotMark{Row: row, Col: col, Status: mark.status})
			}
		}
	}
	return snap
}

// RestoreBoard rebuilds a board from its snapshot. A board with ships must
// hold a complete legal fleet; stored ship ids are kept.
func RestoreBoard(snap BoardSnapshot) (*Board, error) {
	b := NewBoard()
	if len(snap.Ships) > 0 {
		placements := make([]ShipPlacement, len(snap.Ships))
		ids := make(map[string]struct{}, len(snap.Ships))
		for i, s := range snap.Ships {
			if _, dup := ids[s.ID]; dup || s.ID == "" {
				return nil, cerr.ErrSnapshot(fmt.Sprintf("ship %d has a missing or repeated id %q", i, s.ID))
			}
			ids[s.ID] = struct{}{}
			placements[i] = ShipPlacement{Size: s.Size, Cells: s.Cells}
		}
		if err := checkFleetSizes(placements); err != nil {
			return nil, cerr.ErrSnapshot(err.Error())
		}

		for i, p := range placements {
			cells, err := normalizeShipCells(i, p)
			if err != nil {
				return nil, cerr.ErrSnapshot(err.Error())
			}
			for _, c := range cells {
				if b.HasShip(c.Row, c.Col) {
					return nil, cerr.ErrSnapshot(fmt.Sprintf("ship %d overlaps at %s", i, c))
				}
			}
			b.addShip(&Ship{
				ID:    snap.Ships[i].ID,
				Name:  ShipName(p.Size),
				Size:  p.Size,
				Cells: cells,
			})
		}

		for i, ship := range b.ships {
			for _, c := range ship.Cells {
				if !b.CellIsPlaceable(c.Row, c.Col, ship.ID) {
					return nil, cerr.ErrSnapshot(fmt.Sprintf("ship %d touches another ship at %s", i, c))
				}
			}
		}
	}

	for _, shot := range snap.Shots {
		if !inBounds(shot.Row, shot.Col) || shot.Status > CellStatusSunk {
			return nil, cerr.ErrSnapshot(fmt.Sprintf("invalid shot mark at (%d,%d)", shot.Row, shot.Col))
		}
		b.marks[shot.Row][shot.Col] = cellMark{wasShot: true, status: shot.Status}
		if ship := b.ShipAt(shot.Row, shot.Col); ship != nil {
			ship.Hits++
		}
	}
	return b, nil
}

func (m *Match) Snapshot() MatchSnapshot {
	snap := MatchSnapshot{
		ID:               m.ID,
		Status:           m.Status,
		CurrentTurnOwner: m.CurrentTurnOwner,
		Winner:           m.Winner,
		EndReason:        m.EndReason,
		CreatedAt:        m.CreatedAt,
		EndedAt:          m.EndedAt,
	}
	for _, p := range m.Players {
		if p == nil {
			continue
		}
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:    p.ID,
			Ready: p.Ready,
			Stats: p.Stats,
			Board: p.Board.Snapshot(),
		})
	}
	return snap
}

func RestoreMatch(snap MatchSnapshot) (*Match, error) {
	if snap.ID == "" {
		return nil, cerr.ErrSnapshot("missing match id")
	}
	if len(snap.Players) == 0 || len(snap.Players) > 2 {
		return nil, cerr.ErrSnapshot(fmt.Sprintf("match %s has %d players", snap.ID, len(snap.Players)))
	}
	if snap.Status > MatchStatusAbandoned {
		return nil, cerr.ErrSnapshot(fmt.Sprintf("match %s has unknown status %d", snap.ID, snap.Status))
	}

	m := &Match{
		ID:               snap.ID,
		Status:           snap.Status,
		CurrentTurnOwner: snap.CurrentTurnOwner,
		Winner:           snap.Winner,
		EndReason:        snap.EndReason,
		CreatedAt:        snap.CreatedAt,
		EndedAt:          snap.EndedAt,
	}
	for i, ps := range snap.Players {
		board, err := RestoreBoard(ps.Board)
		if err != nil {
			return nil, err
		}
		m.Players[i] = &Player{ID: ps.ID, Ready: ps.Ready, Stats: ps.Stats, Board: board}
	}
	return m, nil
}
