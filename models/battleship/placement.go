package battleship

import (
	"math/rand"
	"slices"
	"time"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const (
	DefaultShipAttempts  = 1000
	DefaultBoardAttempts = 100
)

type fleetSlot struct {
	size   int
	placed *Ship
}

// pendingShip is a multi-cell ship the player is still clicking out. Cells
// are kept in click order so RemoveLast undoes the latest click.
type pendingShip struct {
	anchor      Coordinates
	orientation Orientation
	cells       []Coordinates
}

func (p *pendingShip) contains(c Coordinates) bool {
	return slices.Contains(p.cells, c)
}

// placementStep is the outcome of one click, computed without touching any
// state. TryPlaceCell applies it; PreviewCells only reads it.
type placementStep struct {
	orientation Orientation
	cells       []Coordinates
	complete    bool
}

// PlacementEngine builds one player's fleet on a board, either cell by cell
// or at random. It is not safe for concurrent use.
type PlacementEngine struct {
	board         *Board
	fleet         []fleetSlot
	next          int
	pending       *pendingShip
	rng           *rand.Rand
	shipAttempts  int
	boardAttempts int
}

type PlacementOption func(*PlacementEngine)

func WithRand(rng *rand.Rand) PlacementOption {
	return func(pe *PlacementEngine) {
		pe.rng = rng
	}
}

func WithAttemptLimits(perShip, perBoard int) PlacementOption {
	return func(pe *PlacementEngine) {
		if perShip > 0 {
			pe.shipAttempts = perShip
		}
		if perBoard > 0 {
			pe.boardAttempts = perBoard
		}
	}
}

// NewPlacementEngine clears board and prepares to fill it with the standard fleet.
func NewPlacementEngine(board *Board, opts ...PlacementOption) *PlacementEngine {
	pe := &PlacementEngine{
		board:         board,
		shipAttempts:  DefaultShipAttempts,
		boardAttempts: DefaultBoardAttempts,
	}
	for _, opt := range opts {
		opt(pe)
	}
	if pe.rng == nil {
		pe.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pe.Reset()
	return pe
}

// Reset empties the board and rewinds the fleet queue.
func (pe *PlacementEngine) Reset() {
	pe.board.Clear()
	sizes := FleetSpec()
	pe.fleet = make([]fleetSlot, len(sizes))
	for i, size := range sizes {
		pe.fleet[i] = fleetSlot{size: size}
	}
	pe.next = 0
	pe.pending = nil
}

// CurrentShipSize is the size of the next ship to place.
func (pe *PlacementEngine) CurrentShipSize() (int, bool) {
	if pe.next >= len(pe.fleet) {
		return 0, false
	}
	return pe.fleet[pe.next].size, true
}

func (pe *PlacementEngine) AllPlaced() bool {
	if pe.next < len(pe.fleet) {
		return false
	}
	for _, slot := range pe.fleet {
		if slot.placed == nil {
			return false
		}
	}
	return true
}

func (pe *PlacementEngine) IsPlacingShip() bool {
	return pe.pending != nil
}

// PendingCells returns the cells of the ship under construction, ordered
// along the ship.
func (pe *PlacementEngine) PendingCells() []Coordinates {
	if pe.pending == nil {
		return nil
	}
	cells := slices.Clone(pe.pending.cells)
	sortCells(cells)
	return cells
}

// Placements returns the committed ships in submittable form.
func (pe *PlacementEngine) Placements() []ShipPlacement {
	return pe.board.Placements()
}

// TryPlaceCell handles one click on (row, col). It reports false, and leaves
// every piece of state untouched, when the click is not a legal next cell.
func (pe *PlacementEngine) TryPlaceCell(row, col int) bool {
	step, ok := pe.evaluate(row, col)
	if !ok {
		return false
	}

	if step.complete {
		pe.commit(step.cells)
		return true
	}

	if pe.pending == nil {
		pe.pending = &pendingShip{anchor: step.cells[0]}
	}
	pe.pending.orientation = step.orientation
	pe.pending.cells = step.cells
	return true
}

// PreviewCells returns the cells the ship under construction would hold if
// (row, col) were clicked next; nil when the click would be rejected.
func (pe *PlacementEngine) PreviewCells(row, col int) []Coordinates {
	step, ok := pe.evaluate(row, col)
	if !ok {
		return nil
	}
	sortCells(step.cells)
	return step.cells
}

// CancelPending drops the ship under construction. The board is not touched.
func (pe *PlacementEngine) CancelPending() {
	pe.pending = nil
}

// RemoveLast undoes the most recent click: the last pending cell if a ship
// is under construction, otherwise the last committed ship.
func (pe *PlacementEngine) RemoveLast() {
	if pe.pending != nil {
		pe.pending.cells = pe.pending.cells[:len(pe.pending.cells)-1]
		switch len(pe.pending.cells) {
		case 0:
			pe.CancelPending()
		case 1:
			pe.pending.orientation = OrientationUndecided
		}
		return
	}

	if pe.next == 0 {
		return
	}
	slot := &pe.fleet[pe.next-1]
	if slot.placed == nil {
		return
	}
	pe.board.removeShip(slot.placed.ID)
	slot.placed = nil
	pe.next--
}

func (pe *PlacementEngine) evaluate(row, col int) (placementStep, bool) {
	size, ok := pe.CurrentShipSize()
	if !ok {
		return placementStep{}, false
	}
	if !pe.board.CellIsPlaceable(row, col, "") {
		return placementStep{}, false
	}

	target := NewCoordinates(row, col)

	if size == 1 {
		return placementStep{
			orientation: OrientationHorizontal,
			cells:       []Coordinates{target},
			complete:    true,
		}, true
	}

	if pe.pending == nil {
		if !pe.board.runFits(row, col, size) {
			return placementStep{}, false
		}
		return placementStep{orientation: OrientationUndecided, cells: []Coordinates{target}}, true
	}

	p := pe.pending
	if p.contains(target) {
		return placementStep{}, false
	}

	orientation := p.orientation
	if len(p.cells) == 1 {
		switch {
		case row == p.anchor.Row:
			orientation = OrientationHorizontal
		case col == p.anchor.Col:
			orientation = OrientationVertical
		default:
			return placementStep{}, false
		}
	}

	if !extendsRun(p.cells, target, orientation, size) {
		return placementStep{}, false
	}

	cells := append(slices.Clone(p.cells), target)
	if len(cells) < size {
		return placementStep{orientation: orientation, cells: cells}, true
	}
	sortCells(cells)

	// Completion: the whole ship is checked again before it may be committed.
	if !pe.board.cellsArePlaceable(cells) {
		return placementStep{}, false
	}
	return placementStep{orientation: orientation, cells: cells, complete: true}, true
}

// extendsRun reports whether target continues the straight run cells along
// o without gaps and without the run growing past size.
func extendsRun(cells []Coordinates, target Coordinates, o Orientation, size int) bool {
	axis := func(c Coordinates) int { return c.Col }
	line := func(c Coordinates) int { return c.Row }
	if o == OrientationVertical {
		axis, line = line, axis
	}

	if line(target) != line(cells[0]) {
		return false
	}

	lo, hi := axis(target), axis(target)
	taken := map[int]bool{axis(target): true}
	for _, c := range cells {
		lo, hi = min(lo, axis(c)), max(hi, axis(c))
		taken[axis(c)] = true
	}

	if hi-lo+1 > size {
		return false
	}
	for p := lo; p <= hi; p++ {
		if !taken[p] {
			return false
		}
	}
	return true
}

func (pe *PlacementEngine) commit(cells []Coordinates) {
	slot := &pe.fleet[pe.next]
	ship := NewShip(slot.size, cells)
	pe.board.addShip(ship)
	slot.placed = ship
	pe.next++
	pe.pending = nil
}

// PlaceRandomly replaces whatever is on the board with a random legal fleet.
// Each ship gets a bounded number of draws; when one runs out the board is
// wiped and the whole fleet is tried again, up to the board attempt limit.
func (pe *PlacementEngine) PlaceRandomly() error {
	for attempt := 1; attempt <= pe.boardAttempts; attempt++ {
		pe.Reset()
		if pe.tryRandomFleet() {
			return nil
		}
	}

	pe.Reset()
	return cerr.ErrRandomPlacement(pe.boardAttempts)
}

func (pe *PlacementEngine) tryRandomFleet() bool {
	for pe.next < len(pe.fleet) {
		cells, ok := pe.randomShipCells(pe.fleet[pe.next].size)
		if !ok {
			return false
		}
		pe.commit(cells)
	}
	return true
}

func (pe *PlacementEngine) randomShipCells(size int) ([]Coordinates, bool) {
	for i := 0; i < pe.shipAttempts; i++ {
		var row, col int
		orientation := OrientationHorizontal
		if pe.rng.Intn(2) == 0 {
			row, col = pe.rng.Intn(GridSize), pe.rng.Intn(GridSize+1-size)
		} else {
			orientation = OrientationVertical
			row, col = pe.rng.Intn(GridSize+1-size), pe.rng.Intn(GridSize)
		}

		cells := straightRun(row, col, 0, size, orientation)
		if pe.board.cellsArePlaceable(cells) {
			return cells, true
		}
	}
	return nil, false
}

// BuildBoard validates a submitted fleet and returns the board it describes.
// It enforces the fleet size multiset, straight contiguous ships and the
// no-touch rule using the same predicate as the placement engine.
func BuildBoard(placements []ShipPlacement) (*Board, error) {
	if err := checkFleetSizes(placements); err != nil {
		return nil, err
	}

	board := NewBoard()
	for i, p := range placements {
		cells, err := normalizeShipCells(i, p)
		if err != nil {
			return nil, err
		}
		for _, c := range cells {
			if !board.CellIsPlaceable(c.Row, c.Col, "") {
				return nil, cerr.ErrShipsTouching(i, c.Row, c.Col)
			}
		}
		board.addShip(NewShip(p.Size, cells))
	}

	return board, nil
}

func checkFleetSizes(placements []ShipPlacement) error {
	want := FleetSpec()
	if len(placements) != len(want) {
		return cerr.ErrFleetShipCount(len(want), len(placements))
	}

	got := make([]int, len(placements))
	for i, p := range placements {
		got[i] = p.Size
	}
	sortedGot := slices.Clone(got)
	slices.Sort(sortedGot)
	sortedWant := slices.Clone(want)
	slices.Sort(sortedWant)
	if !slices.Equal(sortedGot, sortedWant) {
		return cerr.ErrFleetSizes(want, got)
	}
	return nil
}

func normalizeShipCells(index int, p ShipPlacement) ([]Coordinates, error) {
	if len(p.Cells) != p.Size {
		return nil, cerr.ErrShipCellCount(index, p.Size, len(p.Cells))
	}
	for _, c := range p.Cells {
		if !inBounds(c.Row, c.Col) {
			return nil, cerr.ErrXorYOutOfGridBound(c.Row, c.Col)
		}
	}

	cells := slices.Clone(p.Cells)
	sortCells(cells)

	sameRow, sameCol := true, true
	for _, c := range cells[1:] {
		sameRow = sameRow && c.Row == cells[0].Row
		sameCol = sameCol && c.Col == cells[0].Col
	}
	if !sameRow && !sameCol {
		return nil, cerr.ErrShipNotStraight(index)
	}

	for i := 1; i < len(cells); i++ {
		if chebyshev(cells[i-1], cells[i]) != 1 {
			return nil, cerr.ErrShipNotContiguous(index)
		}
	}
	return cells, nil
}
