package battleship

import (
	"testing"
	"time"
)

var testNow = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

// testFleet is a legal fleet in placement order:
//
//	4: (0,0)-(0,3)   3: (0,5)-(0,7)   3: (2,0)-(2,2)
//	2: (2,4)-(2,5)   2: (5,5)-(5,6)   2: (8,0)-(8,1)
//	1: (4,0) (7,9) (9,9) (9,5)
func testFleet() []ShipPlacement {
	line := func(row, col, size int) ShipPlacement {
		return ShipPlacement{Size: size, Cells: straightRun(row, col, 0, size, OrientationHorizontal)}
	}

	return []ShipPlacement{
		line(0, 0, 4),
		line(0, 5, 3),
		line(2, 0, 3),
		line(2, 4, 2),
		line(5, 5, 2),
		line(8, 0, 2),
		line(4, 0, 1),
		line(7, 9, 1),
		line(9, 9, 1),
		line(9, 5, 1),
	}
}

func fleetCells(fleet []ShipPlacement) []Coordinates {
	var cells []Coordinates
	for _, p := range fleet {
		cells = append(cells, p.Cells...)
	}
	return cells
}

func mustBuildBoard(t *testing.T, fleet []ShipPlacement) *Board {
	t.Helper()
	board, err := BuildBoard(fleet)
	if err != nil {
		t.Fatalf("expected valid fleet\t got: %v", err)
	}
	return board
}

// combatMatch returns a match between "p1" and "p2" in Player1Turn, both
// using testFleet.
func combatMatch(t *testing.T) *Match {
	t.Helper()
	m := NewMatch("p1", testNow)
	if err := m.Join("p2"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SubmitFleet("p1", testFleet()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SubmitFleet("p2", testFleet()); err != nil {
		t.Fatal(err)
	}
	return m
}

// assertNoTouch fails when two distinct ships on board come within
// Chebyshev distance 1 of each other.
func assertNoTouch(t *testing.T, board *Board) {
	t.Helper()
	ships := board.Ships()
	for i := range ships {
		for j := i + 1; j < len(ships); j++ {
			for _, a := range ships[i].Cells {
				for _, b := range ships[j].Cells {
					if d := chebyshev(a, b); d < 2 {
						t.Fatalf("expected ships %d and %d apart\t got: %s and %s at distance %d", i, j, a, b, d)
					}
				}
			}
		}
	}
}
