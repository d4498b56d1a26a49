package battleship

import (
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

// ShotResult is everything a client needs to render one resolved shot.
type ShotResult struct {
	Shooter        string        `json:"shooter"`
	Target         string        `json:"target"`
	Row            int           `json:"row"`
	Col            int           `json:"col"`
	Hit            bool          `json:"hit"`
	Sunk           bool          `json:"sunk"`
	SunkShipName   string        `json:"sunk_ship_name,omitempty"`
	SunkShipSize   int           `json:"sunk_ship_size,omitempty"`
	SunkShipCells  []Coordinates `json:"sunk_ship_cells,omitempty"`
	DerivedMisses  []Coordinates `json:"derived_misses,omitempty"`
	CellStatus     CellStatus    `json:"cell_status"`
	NextTurnOwner  string        `json:"next_turn_owner"`
	GameOver       bool          `json:"game_over"`
	Winner         string        `json:"winner,omitempty"`
	RemainingShips int           `json:"remaining_ships"`
}

type shotOutcome struct {
	hit           bool
	sunk          *Ship
	derivedMisses []Coordinates
	status        CellStatus
}

// receiveShot marks (row, col) as shot and scores it. A cell can only be
// shot once; a repeat is rejected and changes nothing.
func (b *Board) receiveShot(row, col int) (shotOutcome, error) {
	if !inBounds(row, col) {
		return shotOutcome{}, cerr.ErrXorYOutOfGridBound(row, col)
	}
	mark := &b.marks[row][col]
	if mark.wasShot {
		return shotOutcome{}, cerr.ErrCellAlreadyShot(row, col)
	}
	mark.wasShot = true

	ship := b.ShipAt(row, col)
	if ship == nil {
		mark.status = CellStatusMiss
		return shotOutcome{status: CellStatusMiss}, nil
	}

	mark.status = CellStatusHit
	ship.Hits++
	if !ship.IsSunk() {
		return shotOutcome{hit: true, status: CellStatusHit}, nil
	}

	for _, c := range ship.Cells {
		b.marks[c.Row][c.Col].status = CellStatusSunk
	}
	return shotOutcome{
		hit:           true,
		sunk:          ship,
		derivedMisses: b.markAround(ship),
		status:        CellStatusSunk,
	}, nil
}

// markAround turns every unshot cell bordering ship into a shot miss. The
// no-touch rule guarantees none of them holds a ship.
func (b *Board) markAround(ship *Ship) []Coordinates {
	var marked []Coordinates
	for _, c := range ship.Cells {
		forEachNeighbor(c.Row, c.Col, func(r, col int) {
			mark := &b.marks[r][col]
			if mark.wasShot || b.HasShip(r, col) {
				return
			}
			mark.wasShot = true
			mark.status = CellStatusMiss
			marked = append(marked, NewCoordinates(r, col))
		})
	}
	sortCells(marked)
	return marked
}

// Shoot resolves playerID firing at (row, col) on the opponent's board. A hit
// keeps the turn with the shooter; a miss hands it over. Sinking the last
// ship ends the match with the shooter as winner.
func (m *Match) Shoot(playerID string, row, col int) (ShotResult, error) {
	if !m.Status.IsCombat() {
		return ShotResult{}, cerr.ErrMatchStatus(m.ID, m.Status.String())
	}
	shooter, err := m.Player(playerID)
	if err != nil {
		return ShotResult{}, err
	}
	if m.CurrentTurnOwner != playerID {
		return ShotResult{}, cerr.ErrNotTurnForAttacker(playerID)
	}
	target := m.Opponent(playerID)

	outcome, err := target.Board.receiveShot(row, col)
	if err != nil {
		return ShotResult{}, err
	}
	shooter.Stats.record(outcome.hit)

	result := ShotResult{
		Shooter:        shooter.ID,
		Target:         target.ID,
		Row:            row,
		Col:            col,
		Hit:            outcome.hit,
		CellStatus:     outcome.status,
		DerivedMisses:  outcome.derivedMisses,
		RemainingShips: target.Board.RemainingShips(),
	}
	if ship := outcome.sunk; ship != nil {
		result.Sunk = true
		result.SunkShipName = ship.Name
		result.SunkShipSize = ship.Size
		result.SunkShipCells = append([]Coordinates(nil), ship.Cells...)
	}

	if !outcome.hit {
		m.CurrentTurnOwner = target.ID
		m.Status = m.turnStatusOf(target.ID)
	}

	if target.Board.AllSunk() {
		m.finish(m.wonStatusOf(shooter.ID), shooter.ID, EndReasonAllShipsSunk)
		result.GameOver = true
		result.Winner = shooter.ID
	}

	result.NextTurnOwner = m.CurrentTurnOwner
	return result, nil
}
