package chess

import (
	"testing"

	"github.com/imjasonh/chessmatch/internal/testutil"
)

// at is a placement shorthand: at(White, Rook, "a1").
func at(c Color, t PieceType, sq string) Placement {
	return Placement{Square: MustSquare(sq), Type: t, Color: c}
}

// moved is like at but with a non-zero move count.
func moved(c Color, t PieceType, sq string, count int) Placement {
	pl := at(c, t, sq)
	pl.MoveCount = count
	return pl
}

func customMatch(t *testing.T, current Color, placements ...Placement) *Match {
	t.Helper()
	m, err := NewCustomMatch(current, placements)
	testutil.AssertNoError(t, err, "NewCustomMatch")
	return m
}

func play(t *testing.T, m *Match, moves ...string) {
	t.Helper()
	for _, mv := range moves {
		if _, err := m.PerformMove(MustSquare(mv[:2]), MustSquare(mv[2:])); err != nil {
			t.Fatalf("PerformMove(%s): %v", mv, err)
		}
	}
}

func squares(g Grid) []string {
	var out []string
	for _, p := range g.Positions() {
		sq, err := SquareOf(p)
		if err != nil {
			panic(err)
		}
		out = append(out, sq.String())
	}
	return out
}

type pieceState struct {
	Type      PieceType
	Color     Color
	MoveCount int
	Pos       Position
	Placed    bool
}

// matchState is a comparable picture of a match. Pieces are identified by
// the order they were first seen so pointer identity is part of the picture.
type matchState struct {
	Cells    [][]int
	Pieces   []pieceState
	OnBoard  []int
	Captured []int
}

type stateRecorder struct {
	ids    map[*Piece]int
	pieces []*Piece
}

func newStateRecorder(m *Match) *stateRecorder {
	r := &stateRecorder{ids: map[*Piece]int{}}
	for _, p := range m.onBoard {
		r.id(p)
	}
	for _, p := range m.captured {
		r.id(p)
	}
	return r
}

func (r *stateRecorder) id(p *Piece) int {
	if p == nil {
		return -1
	}
	if id, ok := r.ids[p]; ok {
		return id
	}
	r.ids[p] = len(r.pieces)
	r.pieces = append(r.pieces, p)
	return r.ids[p]
}

func (r *stateRecorder) state(m *Match) matchState {
	var s matchState
	for _, row := range m.board.cells {
		ids := make([]int, len(row))
		for c, p := range row {
			ids[c] = r.id(p)
		}
		s.Cells = append(s.Cells, ids)
	}
	for _, p := range m.onBoard {
		s.OnBoard = append(s.OnBoard, r.id(p))
	}
	for _, p := range m.captured {
		s.Captured = append(s.Captured, r.id(p))
	}
	for _, p := range r.pieces {
		s.Pieces = append(s.Pieces, pieceState{p.Type, p.Color, p.MoveCount, p.pos, p.placed})
	}
	return s
}

// situation is a fixed Situation for piece-level tests.
type situation struct {
	checked    bool
	vulnerable *Piece
}

func (s situation) Checked(Color) bool          { return s.checked }
func (s situation) EnPassantVulnerable() *Piece { return s.vulnerable }
