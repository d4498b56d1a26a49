package error

import (
	"errors"
	"fmt"
)

// Error kinds. Every constructor below wraps exactly one of these so the
// transport can branch with errors.Is instead of matching message text.
var (
	ErrValidation         = errors.New("validation error")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrAlreadyShot        = errors.New("already shot")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyFull        = errors.New("already full")
	ErrInvalidState       = errors.New("invalid state")
	ErrStoreUnavailable   = errors.New("operation not applied")
	ErrPlacementExhausted = errors.New("placement attempts exhausted")
	ErrDuplicateID        = errors.New("duplicate id")
)

func ErrMatchNotExists(matchID string) error {
	return fmt.Errorf("%w: match with this id does not exist, id: %s", ErrNotFound, matchID)
}

func ErrMatchIDTaken(matchID string) error {
	return fmt.Errorf("%w: a match with id %s already exists", ErrDuplicateID, matchID)
}

func ErrPlayerNotInMatch(playerID, matchID string) error {
	return fmt.Errorf("%w: player %s is not part of match %s", ErrNotFound, playerID, matchID)
}

func ErrMatchFull(matchID string) error {
	return fmt.Errorf("%w: match %s already has two players", ErrAlreadyFull, matchID)
}

func ErrPlayerAlreadyJoined(playerID string) error {
	return fmt.Errorf("%w: player %s cannot join their own match", ErrValidation, playerID)
}

func ErrMatchStatus(matchID, status string) error {
	return fmt.Errorf("%w: match %s does not accept this command in status %s", ErrInvalidState, matchID, status)
}

func ErrFleetAlreadySubmitted(playerID string) error {
	return fmt.Errorf("%w: player %s already submitted a fleet", ErrInvalidState, playerID)
}

func ErrNotTurnForAttacker(playerID string) error {
	return fmt.Errorf("%w: player %s attacked out of turn", ErrNotYourTurn, playerID)
}

func ErrXorYOutOfGridBound(row, col int) error {
	return fmt.Errorf("%w: incoming row or col is out of grid bound\trow: %d\tcol: %d", ErrValidation, row, col)
}

func ErrCellAlreadyShot(row, col int) error {
	return fmt.Errorf("%w: this cell was shot in a previous round\trow: %d\tcol: %d", ErrAlreadyShot, row, col)
}

func ErrFleetShipCount(want, got int) error {
	return fmt.Errorf("%w: fleet must contain %d ships, got %d", ErrValidation, want, got)
}

func ErrFleetSizes(want, got []int) error {
	return fmt.Errorf("%w: fleet ship sizes must be %v, got %v", ErrValidation, want, got)
}

func ErrShipCellCount(index, size, got int) error {
	return fmt.Errorf("%w: ship %d of size %d has %d cells", ErrValidation, index, size, got)
}

func ErrShipNotStraight(index int) error {
	return fmt.Errorf("%w: ship %d is not in a single row or column", ErrValidation, index)
}

func ErrShipNotContiguous(index int) error {
	return fmt.Errorf("%w: ship %d has a gap or a repeated cell", ErrValidation, index)
}

func ErrShipsTouching(index, row, col int) error {
	return fmt.Errorf("%w: ship %d touches or overlaps another ship at row: %d col: %d", ErrValidation, index, row, col)
}

func ErrRandomPlacement(attempts int) error {
	return fmt.Errorf("%w: no valid fleet after %d board attempts", ErrPlacementExhausted, attempts)
}

func ErrStore(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

func ErrSnapshot(reason string) error {
	return fmt.Errorf("%w: corrupt match snapshot: %s", ErrValidation, reason)
}

func ErrSessionNotFound(sessionID string) error {
	return fmt.Errorf("%w: session with this id does not exist, id: %s", ErrNotFound, sessionID)
}

func ErrPlayerInActiveMatch(playerID, matchID string) error {
	return fmt.Errorf("%w: player %s is still in running match %s", ErrInvalidState, playerID, matchID)
}

func ErrInvalidPayload(err error) error {
	return fmt.Errorf("%w: invalid request payload: %v", ErrValidation, err)
}
