package battleship

import (
	"slices"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

// Board is one player's 10x10 grid and fleet. The ship list is the source of
// truth for occupancy; index is derived from it and rebuilt whenever ships
// are added or removed.
type Board struct {
	marks [GridSize][GridSize]cellMark
	ships []*Ship
	// index holds position in ships plus one; zero means no ship.
	index [GridSize][GridSize]int
}

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) Ships() []*Ship {
	return b.ships
}

func (b *Board) Cell(row, col int) (Cell, error) {
	if !inBounds(row, col) {
		return Cell{}, cerr.ErrXorYOutOfGridBound(row, col)
	}

	mark := b.marks[row][col]
	cell := Cell{Row: row, Col: col, WasShot: mark.wasShot, Status: mark.status}
	if ship := b.ShipAt(row, col); ship != nil {
		cell.HasShip = true
		cell.ShipID = ship.ID
		if cell.Status == CellStatusEmpty {
			cell.Status = CellStatusShipIntact
		}
	}
	return cell, nil
}

// ShipAt returns the ship occupying (row, col), or nil.
func (b *Board) ShipAt(row, col int) *Ship {
	if !inBounds(row, col) {
		return nil
	}
	if i := b.index[row][col]; i > 0 {
		return b.ships[i-1]
	}
	return nil
}

func (b *Board) HasShip(row, col int) bool {
	return b.ShipAt(row, col) != nil
}

func (b *Board) OccupiedCells() int {
	n := 0
	for _, ship := range b.ships {
		n += len(ship.Cells)
	}
	return n
}

// CellIsPlaceable reports whether a ship cell may go on (row, col): the cell
// is in bounds and neither it nor any of its neighbours belongs to a ship.
// Cells of the ship with id excluding are ignored, which lets a committed
// ship be checked against the rest of the board.
func (b *Board) CellIsPlaceable(row, col int, excluding string) bool {
	if !inBounds(row, col) {
		return false
	}

	ok := true
	forEachNeighbor(row, col, func(r, c int) {
		if ship := b.ShipAt(r, c); ship != nil && ship.ID != excluding {
			ok = false
		}
	})
	return ok
}

func (b *Board) cellsArePlaceable(cells []Coordinates) bool {
	for _, c := range cells {
		if !b.CellIsPlaceable(c.Row, c.Col, "") {
			return false
		}
	}
	return true
}

// runFits reports whether some straight run of size cells that contains
// (row, col) is entirely placeable.
func (b *Board) runFits(row, col, size int) bool {
	for _, o := range []Orientation{OrientationHorizontal, OrientationVertical} {
		for offset := 0; offset < size; offset++ {
			if b.cellsArePlaceable(straightRun(row, col, offset, size, o)) {
				return true
			}
		}
	}
	return false
}

// straightRun lists size cells along o, starting offset cells before (row, col).
func straightRun(row, col, offset, size int, o Orientation) []Coordinates {
	cells := make([]Coordinates, size)
	for i := range cells {
		if o == OrientationHorizontal {
			cells[i] = NewCoordinates(row, col-offset+i)
		} else {
			cells[i] = NewCoordinates(row-offset+i, col)
		}
	}
	return cells
}

func (b *Board) addShip(ship *Ship) {
	b.ships = append(b.ships, ship)
	b.rebuildIndex()
}

func (b *Board) removeShip(id string) {
	b.ships = slices.DeleteFunc(b.ships, func(s *Ship) bool { return s.ID == id })
	b.rebuildIndex()
}

func (b *Board) rebuildIndex() {
	b.index = [GridSize][GridSize]int{}
	for i, ship := range b.ships {
		for _, c := range ship.Cells {
			b.index[c.Row][c.Col] = i + 1
		}
	}
}

// Clear removes every ship and every shot mark.
func (b *Board) Clear() {
	b.marks = [GridSize][GridSize]cellMark{}
	b.ships = nil
	b.index = [GridSize][GridSize]int{}
}

func (b *Board) AllSunk() bool {
	if len(b.ships) == 0 {
		return false
	}
	for _, ship := range b.ships {
		if !ship.IsSunk() {
			return false
		}
	}
	return true
}

func (b *Board) RemainingShips() int {
	n := 0
	for _, ship := range b.ships {
		if !ship.IsSunk() {
			n++
		}
	}
	return n
}

// Placements returns the fleet in submittable form.
func (b *Board) Placements() []ShipPlacement {
	placements := make([]ShipPlacement, 0, len(b.ships))
	for _, ship := range b.ships {
		placements = append(placements, ShipPlacement{Size: ship.Size, Cells: slices.Clone(ship.Cells)})
	}
	return placements
}
