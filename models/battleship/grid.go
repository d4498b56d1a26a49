package battleship

import "fmt"

const GridSize = 10

type CellStatus uint8

const (
	CellStatusEmpty CellStatus = iota
	CellStatusShipIntact
	CellStatusHit
	CellStatusMiss
	CellStatusSunk
)

func (s CellStatus) String() string {
	switch s {
	case CellStatusEmpty:
		return "Empty"
	case CellStatusShipIntact:
		return "ShipIntact"
	case CellStatusHit:
		return "Hit"
	case CellStatusMiss:
		return "Miss"
	case CellStatusSunk:
		return "Sunk"
	default:
		return "Unknown"
	}
}

type Coordinates struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewCoordinates(row, col int) Coordinates {
	return Coordinates{Row: row, Col: col}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

func inBounds(row, col int) bool {
	return row >= 0 && row < GridSize && col >= 0 && col < GridSize
}

// chebyshev returns the king-move distance between two cells.
func chebyshev(a, b Coordinates) int {
	return max(abs(a.Row-b.Row), abs(a.Col-b.Col))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// forEachNeighbor calls fn for every in-bounds cell within Chebyshev
// distance 1 of (row, col), the cell itself included.
func forEachNeighbor(row, col int, fn func(r, c int)) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if r, c := row+dr, col+dc; inBounds(r, c) {
				fn(r, c)
			}
		}
	}
}

// Cell is a read-only view of one grid position. HasShip and ShipID are
// derived from the board's ship index and are never stored on their own.
type Cell struct {
	Row     int        `json:"row"`
	Col     int        `json:"col"`
	HasShip bool       `json:"has_ship"`
	WasShot bool       `json:"was_shot"`
	Status  CellStatus `json:"status"`
	ShipID  string     `json:"ship_id,omitempty"`
}

// cellMark is the only per-cell state a board owns.
type cellMark struct {
	wasShot bool
	status  CellStatus
}
