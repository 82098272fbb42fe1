package chess

import (
	"fmt"
	"strings"
)

// Ranks and Files bound the human-facing coordinates.
const (
	Ranks = 8
	Files = 8
)

// Position is a zero-based grid coordinate. Row 0 is rank 8.
type Position struct {
	Row, Column int
}

func (p Position) offset(dr, dc int) Position {
	return Position{p.Row + dr, p.Column + dc}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Column)
}

// Square is a file/rank coordinate such as e2.
type Square struct {
	File byte
	Rank int
}

// NewSquare returns the square for file 'a'..'h' and rank 1..8.
func NewSquare(file byte, rank int) (Square, error) {
	if file >= 'A' && file <= 'H' {
		file += 'a' - 'A'
	}
	if file < 'a' || file >= 'a'+Files || rank < 1 || rank > Ranks {
		return Square{}, fmt.Errorf("%w: %c%d (valid values are from a1 to h8)", ErrInvalidSquare, file, rank)
	}
	return Square{File: file, Rank: rank}, nil
}

// MustSquare is like ParseSquare but panics on bad input. It is meant for
// literals in setup code and tests.
func MustSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

// ParseSquare parses a two character coordinate like "e2".
func ParseSquare(s string) (Square, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 || s[1] < '0' || s[1] > '9' {
		return Square{}, fmt.Errorf("%w: %q (valid values are from a1 to h8)", ErrInvalidSquare, s)
	}
	return NewSquare(s[0], int(s[1]-'0'))
}

// SquareOf converts a grid position back to its file/rank coordinate.
func SquareOf(p Position) (Square, error) {
	if p.Row < 0 || p.Row >= Ranks || p.Column < 0 || p.Column >= Files {
		return Square{}, fmt.Errorf("%w: %s is off the board", ErrInvalidSquare, p)
	}
	return NewSquare(byte('a'+p.Column), Ranks-p.Row)
}

// Position returns the grid coordinate for the square.
func (s Square) Position() Position {
	return Position{Row: Ranks - s.Rank, Column: int(s.File - 'a')}
}

func (s Square) String() string {
	if s.File == 0 {
		return ""
	}
	return fmt.Sprintf("%c%d", s.File, s.Rank)
}
