package tui

import "github.com/imjasonh/chessmatch/internal/chess"

// Table is the game a model plays on.
type Table interface {
	Snapshot() chess.Snapshot
	LegalMoves(from chess.Square) (chess.Grid, error)
	Move(from, to chess.Square) (*chess.Piece, error)
	Promote(letter string) (*chess.Piece, error)
	// Color is the color this table plays. ok is false when one keyboard
	// plays both sides.
	Color() (c chess.Color, ok bool)
}

// Local is a hot-seat table over a match owned by the caller.
type Local struct {
	Match *chess.Match
}

func (l Local) Snapshot() chess.Snapshot { return l.Match.Snapshot() }

func (l Local) LegalMoves(from chess.Square) (chess.Grid, error) {
	return l.Match.LegalMoves(from)
}

func (l Local) Move(from, to chess.Square) (*chess.Piece, error) {
	return l.Match.PerformMove(from, to)
}

func (l Local) Promote(letter string) (*chess.Piece, error) {
	return l.Match.ReplacePromotedPiece(letter)
}

func (l Local) Color() (chess.Color, bool) { return chess.White, false }
