package chess

import "strings"

type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// Opponent returns the other color.
func (c Color) Opponent() Color {
	return 1 - c
}

// forward is the row delta of a pawn of this color. White starts on the
// high rows and moves toward row 0.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

type PieceType int

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceNames = [...]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King"}

func (t PieceType) String() string {
	if t < Pawn || t > King {
		return "Unknown"
	}
	return pieceNames[t]
}

// Letter is the single upper-case letter for the piece type.
func (t PieceType) Letter() string {
	if t < Pawn || t > King {
		return "?"
	}
	return string("PNBRQK"[t])
}

// PromotionType maps a promotion letter (B, N, R or Q, any case) to its type.
func PromotionType(letter string) (PieceType, bool) {
	switch strings.ToUpper(strings.TrimSpace(letter)) {
	case "B":
		return Bishop, true
	case "N":
		return Knight, true
	case "R":
		return Rook, true
	case "Q":
		return Queen, true
	}
	return 0, false
}

// Piece is a board occupant. All variants share this shape; behavior is
// selected by Type.
type Piece struct {
	Type      PieceType
	Color     Color
	MoveCount int

	pos    Position
	placed bool
}

// NewPiece returns an unplaced piece.
func NewPiece(t PieceType, c Color) *Piece {
	return &Piece{Type: t, Color: c}
}

// Position returns where the piece stands. ok is false once the piece has
// been removed from the board.
func (p *Piece) Position() (pos Position, ok bool) {
	return p.pos, p.placed
}

// Square is the file/rank of the piece, or the zero Square when off board.
func (p *Piece) Square() Square {
	if !p.placed {
		return Square{}
	}
	sq, err := SquareOf(p.pos)
	if err != nil {
		return Square{}
	}
	return sq
}

func (p *Piece) String() string {
	if p == nil {
		return " "
	}
	if p.Color == White {
		return string([]rune("♙♘♗♖♕♔")[p.Type])
	}
	return string([]rune("♟♞♝♜♛♚")[p.Type])
}

// Name is a readable description like "White Knight".
func (p *Piece) Name() string {
	return p.Color.String() + " " + p.Type.String()
}
