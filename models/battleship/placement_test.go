package battleship

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

func newTestEngine(seed int64) *PlacementEngine {
	return NewPlacementEngine(NewBoard(), WithRand(rand.New(rand.NewSource(seed))))
}

func clickAll(t *testing.T, pe *PlacementEngine, cells []Coordinates) {
	t.Helper()
	for _, c := range cells {
		if !pe.TryPlaceCell(c.Row, c.Col) {
			t.Fatalf("expected click at %s to be accepted", c)
		}
	}
}

func TestPlaceSingleCellShip(t *testing.T) {
	pe := newTestEngine(1)
	// Walk the queue up to the first size-1 ship.
	for _, p := range testFleet()[:6] {
		clickAll(t, pe, p.Cells)
	}
	if size, _ := pe.CurrentShipSize(); size != 1 {
		t.Fatalf("expected next size: 1\t got: %d", size)
	}

	tests := []struct {
		name     string
		row, col int
		expected bool
	}{
		{name: "occupied", row: 0, col: 0, expected: false},
		{name: "diagonal neighbour of a ship", row: 1, col: 4, expected: false},
		{name: "side neighbour of a ship", row: 3, col: 0, expected: false},
		{name: "out of bounds", row: 10, col: 3, expected: false},
		{name: "negative", row: -1, col: 3, expected: false},
		{name: "free", row: 4, col: 0, expected: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			before := pe.board.OccupiedCells()
			got := pe.TryPlaceCell(test.row, test.col)
			if got != test.expected {
				t.Fatalf("expected: %v\t got: %v", test.expected, got)
			}
			if !got && pe.board.OccupiedCells() != before {
				t.Fatalf("expected rejected click to leave the board alone")
			}
		})
	}
}

func TestCompletedShipIsNotExtended(t *testing.T) {
	pe := newTestEngine(1)
	clickAll(t, pe, straightRun(9, 0, 0, 4, OrientationHorizontal))

	clickAll(t, pe, []Coordinates{{0, 0}, {0, 1}, {0, 2}})
	if pe.IsPlacingShip() {
		t.Fatalf("expected size-3 ship to be committed")
	}
	ship := pe.board.ShipAt(0, 1)
	if ship == nil || ship.Size != 3 || ship.Orientation() != OrientationHorizontal {
		t.Fatalf("expected horizontal ship of size 3 at row 0\t got: %+v", ship)
	}

	if pe.TryPlaceCell(1, 2) {
		t.Fatalf("expected (1,2) to be rejected next to the committed ship")
	}
	if len(ship.Cells) != 3 {
		t.Fatalf("expected committed ship to keep 3 cells\t got: %d", len(ship.Cells))
	}
	if size, _ := pe.CurrentShipSize(); size != 3 {
		t.Fatalf("expected second cruiser to be next\t got size: %d", size)
	}
}

func TestPendingShipRules(t *testing.T) {
	tests := []struct {
		name     string
		clicks   []Coordinates
		next     Coordinates
		expected bool
	}{
		{name: "second cell on same row", clicks: []Coordinates{{5, 5}}, next: Coordinates{5, 4}, expected: true},
		{name: "second cell on same column", clicks: []Coordinates{{5, 5}}, next: Coordinates{6, 5}, expected: true},
		{name: "diagonal second cell", clicks: []Coordinates{{5, 5}}, next: Coordinates{6, 6}, expected: false},
		{name: "duplicate cell", clicks: []Coordinates{{5, 5}}, next: Coordinates{5, 5}, expected: false},
		{name: "gap along the row", clicks: []Coordinates{{5, 5}}, next: Coordinates{5, 7}, expected: false},
		{name: "leaves the fixed row", clicks: []Coordinates{{5, 5}, {5, 6}}, next: Coordinates{6, 6}, expected: false},
		{name: "extends below the run", clicks: []Coordinates{{5, 5}, {5, 6}}, next: Coordinates{5, 4}, expected: true},
		{name: "gap after the run", clicks: []Coordinates{{5, 5}, {5, 6}}, next: Coordinates{5, 8}, expected: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pe := newTestEngine(1)
			clickAll(t, pe, test.clicks)
			before := pe.PendingCells()

			got := pe.TryPlaceCell(test.next.Row, test.next.Col)
			if got != test.expected {
				t.Fatalf("expected: %v\t got: %v", test.expected, got)
			}
			if !got && !slices.Equal(before, pe.PendingCells()) {
				t.Fatalf("expected pending cells unchanged: %v\t got: %v", before, pe.PendingCells())
			}
		})
	}
}

func TestAnchorMustFitShip(t *testing.T) {
	pe := newTestEngine(1)
	pe.board.addShip(NewShip(1, []Coordinates{{0, 2}}))
	pe.board.addShip(NewShip(1, []Coordinates{{2, 0}}))

	if pe.TryPlaceCell(0, 0) {
		t.Fatalf("expected boxed-in corner to be rejected as an anchor for size 4")
	}
	if !pe.TryPlaceCell(5, 5) {
		t.Fatalf("expected open anchor to be accepted")
	}
}

// An anchor may sit at either end of a ship, so a size-4 ship can start in
// the last column and grow leftwards.
func TestAnchorAtFarEndOfRun(t *testing.T) {
	pe := newTestEngine(1)
	clickAll(t, pe, []Coordinates{{0, 9}, {0, 8}, {0, 7}, {0, 6}})

	if pe.IsPlacingShip() || pe.board.OccupiedCells() != 4 {
		t.Fatalf("expected a committed size 4 ship\t got: %d cells", pe.board.OccupiedCells())
	}
	for col := 6; col < GridSize; col++ {
		if !pe.board.HasShip(0, col) {
			t.Fatalf("expected ship cell at (0,%d)", col)
		}
	}

	if !pe.TryPlaceCell(9, 9) {
		t.Fatalf("expected bottom-right corner to anchor a size 3 ship")
	}
}

func TestRemoveLastAndCancel(t *testing.T) {
	pe := newTestEngine(1)
	clickAll(t, pe, []Coordinates{{5, 2}, {5, 3}})

	pe.RemoveLast()
	if got := pe.PendingCells(); !slices.Equal(got, []Coordinates{{5, 2}}) {
		t.Fatalf("expected one pending cell\t got: %v", got)
	}
	// Orientation is open again once only the anchor is left.
	if !pe.TryPlaceCell(6, 2) {
		t.Fatalf("expected vertical extension after undo")
	}

	pe.CancelPending()
	if pe.IsPlacingShip() || pe.board.OccupiedCells() != 0 {
		t.Fatalf("expected cancel to drop the pending ship only")
	}

	clickAll(t, pe, straightRun(5, 2, 0, 4, OrientationHorizontal))
	if pe.board.OccupiedCells() != 4 {
		t.Fatalf("expected 4 occupied cells\t got: %d", pe.board.OccupiedCells())
	}

	pe.RemoveLast()
	if pe.board.OccupiedCells() != 0 {
		t.Fatalf("expected committed ship removed\t got: %d cells", pe.board.OccupiedCells())
	}
	if size, _ := pe.CurrentShipSize(); size != 4 {
		t.Fatalf("expected battleship to be next again\t got size: %d", size)
	}

	pe.RemoveLast()
	if pe.board.OccupiedCells() != 0 {
		t.Fatalf("expected undo on empty board to be a no-op")
	}
}

func TestPreviewMatchesPlacement(t *testing.T) {
	pe := newTestEngine(1)
	clickAll(t, pe, []Coordinates{{3, 3}, {3, 4}})

	preview := pe.PreviewCells(3, 5)
	if !slices.Equal(preview, []Coordinates{{3, 3}, {3, 4}, {3, 5}}) {
		t.Fatalf("expected three-cell preview\t got: %v", preview)
	}
	if got := pe.PendingCells(); len(got) != 2 {
		t.Fatalf("expected preview to leave pending cells alone\t got: %v", got)
	}
	if pe.PreviewCells(4, 4) != nil {
		t.Fatalf("expected no preview for an off-line cell")
	}

	pe.TryPlaceCell(3, 5)
	if !slices.Equal(pe.PendingCells(), preview) {
		t.Fatalf("expected placement to match preview: %v\t got: %v", preview, pe.PendingCells())
	}
}

func TestManualFleetIsComplete(t *testing.T) {
	pe := newTestEngine(1)
	for _, p := range testFleet() {
		if pe.AllPlaced() {
			t.Fatalf("expected fleet incomplete before the last ship")
		}
		clickAll(t, pe, p.Cells)
	}

	if !pe.AllPlaced() {
		t.Fatalf("expected all ships placed")
	}
	if _, ok := pe.CurrentShipSize(); ok {
		t.Fatalf("expected empty fleet queue")
	}
	if pe.TryPlaceCell(9, 0) {
		t.Fatalf("expected clicks after completion to be rejected")
	}
	if _, err := BuildBoard(pe.Placements()); err != nil {
		t.Fatalf("expected placements to validate\t got: %v", err)
	}
}

func TestPlaceRandomly(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		pe := newTestEngine(seed)
		if err := pe.PlaceRandomly(); err != nil {
			t.Fatalf("seed %d: expected a fleet\t got: %v", seed, err)
		}
		if !pe.AllPlaced() {
			t.Fatalf("seed %d: expected all ships placed", seed)
		}
		if n := pe.board.OccupiedCells(); n != FleetCells {
			t.Fatalf("seed %d: expected %d occupied cells\t got: %d", seed, FleetCells, n)
		}
		assertNoTouch(t, pe.board)
		if _, err := BuildBoard(pe.Placements()); err != nil {
			t.Fatalf("seed %d: expected random fleet to validate\t got: %v", seed, err)
		}
	}
}

func TestPlaceRandomlyReplacesManualWork(t *testing.T) {
	pe := newTestEngine(7)
	clickAll(t, pe, []Coordinates{{4, 4}, {4, 5}})

	if err := pe.PlaceRandomly(); err != nil {
		t.Fatal(err)
	}
	if pe.IsPlacingShip() {
		t.Fatalf("expected pending ship to be discarded")
	}
	if len(pe.board.Ships()) != len(FleetSpec()) {
		t.Fatalf("expected %d ships\t got: %d", len(FleetSpec()), len(pe.board.Ships()))
	}
}

func TestBuildBoard(t *testing.T) {
	replace := func(i int, p ShipPlacement) []ShipPlacement {
		fleet := testFleet()
		fleet[i] = p
		return fleet
	}

	tests := []struct {
		name     string
		fleet    []ShipPlacement
		expected error
	}{
		{name: "valid", fleet: testFleet()},
		{name: "missing ship", fleet: testFleet()[:9], expected: cerr.ErrValidation},
		{name: "wrong sizes", fleet: replace(9, ShipPlacement{Size: 2, Cells: []Coordinates{{9, 5}, {9, 6}}}), expected: cerr.ErrValidation},
		{name: "cell count mismatch", fleet: replace(1, ShipPlacement{Size: 3, Cells: []Coordinates{{0, 5}, {0, 6}}}), expected: cerr.ErrValidation},
		{name: "bent ship", fleet: replace(1, ShipPlacement{Size: 3, Cells: []Coordinates{{0, 5}, {0, 6}, {1, 7}}}), expected: cerr.ErrValidation},
		{name: "gap in ship", fleet: replace(1, ShipPlacement{Size: 3, Cells: []Coordinates{{0, 5}, {0, 6}, {0, 8}}}), expected: cerr.ErrValidation},
		{name: "repeated cell", fleet: replace(1, ShipPlacement{Size: 3, Cells: []Coordinates{{0, 5}, {0, 6}, {0, 6}}}), expected: cerr.ErrValidation},
		{name: "touching ships", fleet: replace(6, ShipPlacement{Size: 1, Cells: []Coordinates{{3, 0}}}), expected: cerr.ErrValidation},
		{name: "out of bounds", fleet: replace(7, ShipPlacement{Size: 1, Cells: []Coordinates{{7, 10}}}), expected: cerr.ErrValidation},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			board, err := BuildBoard(test.fleet)
			if !errors.Is(err, test.expected) {
				t.Fatalf("expected error: %v\t got: %v", test.expected, err)
			}
			if err != nil {
				return
			}

			if n := board.OccupiedCells(); n != FleetCells {
				t.Fatalf("expected %d occupied cells\t got: %d", FleetCells, n)
			}
			assertNoTouch(t, board)
		})
	}
}
