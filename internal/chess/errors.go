package chess

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match operations wrap these in a *MoveError, so test
// for them with errors.Is.
var (
	ErrOutOfBounds        = errors.New("position is not on the board")
	ErrOccupiedCell       = errors.New("there is already a piece on that position")
	ErrInvalidSquare      = errors.New("invalid square")
	ErrInvalidBoardSize   = errors.New("board needs at least one row and one column")
	ErrInvalidPlacement   = errors.New("invalid starting position")
	ErrNoPieceAtSource    = errors.New("there is no piece on the source position")
	ErrWrongOwner         = errors.New("the chosen piece is not yours")
	ErrNoLegalMoves       = errors.New("there are no possible moves for the chosen piece")
	ErrIllegalTarget      = errors.New("the chosen piece can't move to the target position")
	ErrSelfCheck          = errors.New("you can't put yourself in check")
	ErrNoPendingPromotion = errors.New("there is no piece to be promoted")
	ErrMissingKing        = errors.New("no king on the board")
)

// MoveError annotates a failed Match operation with the operation name and
// the square it was about.
type MoveError struct {
	Op     string
	Square string
	Err    error
}

func (e *MoveError) Error() string {
	if e.Square == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Square, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// IsInvariant reports whether err means the engine state is corrupt rather
// than that the caller asked for something illegal.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrOccupiedCell) ||
		errors.Is(err, ErrMissingKing) ||
		errors.Is(err, ErrNoPendingPromotion)
}

func moveErr(op string, sq Square, err error) error {
	return &MoveError{Op: op, Square: sq.String(), Err: err}
}
