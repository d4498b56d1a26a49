package battleship

import (
	"slices"

	"github.com/google/uuid"
)

// FleetCells is the number of board cells a complete fleet occupies.
const FleetCells = 20

var fleetSizes = [...]int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

// FleetSpec returns the required ship sizes in placement order.
func FleetSpec() []int {
	return slices.Clone(fleetSizes[:])
}

func ShipName(size int) string {
	switch size {
	case 4:
		return "Battleship"
	case 3:
		return "Cruiser"
	case 2:
		return "Destroyer"
	case 1:
		return "Boat"
	default:
		return "Unknown"
	}
}

type Orientation uint8

const (
	OrientationUndecided Orientation = iota
	OrientationHorizontal
	OrientationVertical
)

func (o Orientation) String() string {
	switch o {
	case OrientationHorizontal:
		return "Horizontal"
	case OrientationVertical:
		return "Vertical"
	default:
		return "Undecided"
	}
}

type Ship struct {
	ID    string
	Name  string
	Size  int
	Cells []Coordinates
	Hits  int
}

func NewShip(size int, cells []Coordinates) *Ship {
	return &Ship{
		ID:    uuid.NewString()[:8],
		Name:  ShipName(size),
		Size:  size,
		Cells: slices.Clone(cells),
	}
}

func (sh *Ship) IsSunk() bool {
	return sh.Size > 0 && sh.Hits >= sh.Size
}

func (sh *Ship) Orientation() Orientation {
	if len(sh.Cells) < 2 {
		return OrientationHorizontal
	}
	if sh.Cells[0].Row == sh.Cells[1].Row {
		return OrientationHorizontal
	}
	return OrientationVertical
}

// ShipPlacement is a ship as submitted by a client: a size and the cells it
// claims. It carries no game state.
type ShipPlacement struct {
	Size  int           `json:"size"`
	Cells []Coordinates `json:"cells"`
}

// sortCells orders cells along their row, then column.
func sortCells(cells []Coordinates) {
	slices.SortFunc(cells, func(a, b Coordinates) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
}
