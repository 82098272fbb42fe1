package chess

import "fmt"

// Board is a rows x columns grid holding at most one piece per cell. It
// knows nothing about colors, turns or rules.
type Board struct {
	rows, columns int
	cells         [][]*Piece
}

// NewBoard returns an empty board.
func NewBoard(rows, columns int) (*Board, error) {
	if rows < 1 || columns < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidBoardSize, rows, columns)
	}
	cells := make([][]*Piece, rows)
	for i := range cells {
		cells[i] = make([]*Piece, columns)
	}
	return &Board{rows: rows, columns: columns, cells: cells}, nil
}

func (b *Board) Rows() int    { return b.rows }
func (b *Board) Columns() int { return b.columns }

// PositionExists reports whether at lies on the grid.
func (b *Board) PositionExists(at Position) bool {
	return at.Row >= 0 && at.Row < b.rows && at.Column >= 0 && at.Column < b.columns
}

// Piece returns the occupant of at, or nil.
func (b *Board) Piece(at Position) (*Piece, error) {
	if !b.PositionExists(at) {
		return nil, fmt.Errorf("%w: %v", ErrOutOfBounds, at)
	}
	return b.cells[at.Row][at.Column], nil
}

// HasPiece reports whether at is occupied.
func (b *Board) HasPiece(at Position) (bool, error) {
	p, err := b.Piece(at)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// PlacePiece puts p on at and records at as its position. The cell must be
// empty; callers remove any occupant first.
func (b *Board) PlacePiece(p *Piece, at Position) error {
	occupied, err := b.HasPiece(at)
	if err != nil {
		return err
	}
	if occupied {
		return fmt.Errorf("%w: %v", ErrOccupiedCell, at)
	}
	b.cells[at.Row][at.Column] = p
	p.pos, p.placed = at, true
	return nil
}

// RemovePiece detaches and returns the occupant of at. An empty cell yields
// nil and no change.
func (b *Board) RemovePiece(at Position) (*Piece, error) {
	p, err := b.Piece(at)
	if err != nil || p == nil {
		return nil, err
	}
	b.cells[at.Row][at.Column] = nil
	p.placed = false
	return p, nil
}

// at is the unchecked lookup used by move generation after a bounds test.
func (b *Board) at(p Position) *Piece {
	return b.cells[p.Row][p.Column]
}

func (b *Board) empty(p Position) bool {
	return b.PositionExists(p) && b.at(p) == nil
}
