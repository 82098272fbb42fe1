package chess

import (
	"errors"
	"testing"

	"github.com/imjasonh/chessmatch/internal/testutil"
)

func TestNewMatch(t *testing.T) {
	m := NewMatch()
	testutil.AssertEqual(t, m.Turn(), 1)
	testutil.AssertEqual(t, m.CurrentPlayer(), White)
	testutil.AssertFalse(t, m.Check())
	testutil.AssertFalse(t, m.Checkmate())
	testutil.AssertEqual(t, len(m.onBoard), 32)

	s := m.Snapshot()
	testutil.AssertEqual(t, s.At(MustSquare("e1")).Name(), "White King")
	testutil.AssertEqual(t, s.At(MustSquare("d8")).Name(), "Black Queen")
	testutil.AssertEqual(t, s.At(MustSquare("g7")).Name(), "Black Pawn")
	if p := s.At(MustSquare("e4")); p != nil {
		t.Errorf("e4 holds %v, want empty", p.Name())
	}

	g, err := m.PossibleMoves(MustSquare("g1"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, squares(g), []string{"f3", "h3"})
}

func TestSelectionErrors(t *testing.T) {
	m := NewMatch()
	tests := []struct {
		source string
		want   error
	}{
		{"e4", ErrNoPieceAtSource},
		{"e7", ErrWrongOwner},
		{"a1", ErrNoLegalMoves},
		{"d1", ErrNoLegalMoves},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := m.PossibleMoves(MustSquare(tt.source))
			testutil.AssertErrorIs(t, err, tt.want)
			var me *MoveError
			if !errors.As(err, &me) {
				t.Fatalf("error %v is not a *MoveError", err)
			}
			testutil.AssertEqual(t, me.Square, tt.source)
			testutil.AssertFalse(t, IsInvariant(err))
		})
	}

	_, err := m.PossibleMoves(Square{})
	testutil.AssertErrorIs(t, err, ErrOutOfBounds, "zero square")

	_, err = m.PerformMove(MustSquare("e2"), MustSquare("e5"))
	testutil.AssertErrorIs(t, err, ErrIllegalTarget)
	testutil.AssertEqual(t, m.Turn(), 1)
}

func TestTurnAlternation(t *testing.T) {
	m := NewMatch()
	for i, mv := range []string{"e2e4", "e7e5", "g1f3", "b8c6"} {
		before := m.CurrentPlayer()
		play(t, m, mv)
		if m.Turn() != i+2 {
			t.Errorf("turn after %s = %d, want %d", mv, m.Turn(), i+2)
		}
		if m.CurrentPlayer() != before.Opponent() {
			t.Errorf("player after %s = %s, want %s", mv, m.CurrentPlayer(), before.Opponent())
		}
	}
}

func TestCaptureReturnsPiece(t *testing.T) {
	m := NewMatch()
	play(t, m, "e2e4", "d7d5")
	captured, err := m.PerformMove(MustSquare("e4"), MustSquare("d5"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, captured.Name(), "Black Pawn")
	_, onBoard := captured.Position()
	testutil.AssertFalse(t, onBoard)

	s := m.Snapshot()
	testutil.AssertEqual(t, len(s.Captured), 1)
	testutil.AssertEqual(t, len(s.CapturedBy(Black)), 1)
	testutil.AssertEqual(t, len(s.CapturedBy(White)), 0)
	testutil.AssertEqual(t, len(m.onBoard), 31)
}

func TestSelfCheckRejected(t *testing.T) {
	m := customMatch(t, White,
		at(White, King, "e1"),
		at(White, Rook, "e2"),
		at(Black, Rook, "e8"),
		at(Black, King, "a8"),
	)
	rec := newStateRecorder(m)
	before := rec.state(m)

	_, err := m.PerformMove(MustSquare("e2"), MustSquare("d2"))
	testutil.AssertErrorIs(t, err, ErrSelfCheck)
	testutil.AssertFalse(t, IsInvariant(err))
	testutil.AssertEqual(t, rec.state(m), before)
	testutil.AssertEqual(t, m.Turn(), 1)
	testutil.AssertEqual(t, m.CurrentPlayer(), White)

	// Moving along the pin is fine.
	captured, err := m.PerformMove(MustSquare("e2"), MustSquare("e8"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, captured.Name(), "Black Rook")
}

func TestLegalMovesFiltersSelfCheck(t *testing.T) {
	m := customMatch(t, White,
		at(White, King, "e1"),
		at(White, Rook, "e2"),
		at(Black, Rook, "e8"),
		at(Black, King, "a8"),
	)
	g, err := m.LegalMoves(MustSquare("e2"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, squares(g), []string{"e8", "e7", "e6", "e5", "e4", "e3"})
}

func TestEnPassantWindow(t *testing.T) {
	m := NewMatch()
	play(t, m, "e2e4", "a7a6", "e4e5", "d7d5")
	if want := m.board.at(MustSquare("d5").Position()); m.EnPassantVulnerable() != want {
		t.Errorf("EnPassantVulnerable() = %v, want the d5 pawn", m.EnPassantVulnerable())
	}

	g, err := m.PossibleMoves(MustSquare("e5"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, squares(g), []string{"d6", "e6"})

	play(t, m, "h2h3")
	if m.EnPassantVulnerable() != nil {
		t.Errorf("vulnerable pawn still recorded after an unrelated move")
	}
	play(t, m, "a6a5")
	g, err = m.PossibleMoves(MustSquare("e5"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, squares(g), []string{"e6"})
}

func TestEnPassantCapture(t *testing.T) {
	m := NewMatch()
	play(t, m, "e2e4", "a7a6", "e4e5", "d7d5")
	captured, err := m.PerformMove(MustSquare("e5"), MustSquare("d6"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, captured.Name(), "Black Pawn")

	s := m.Snapshot()
	if p := s.At(MustSquare("d5")); p != nil {
		t.Errorf("d5 still holds %s after en passant", p.Name())
	}
	testutil.AssertEqual(t, s.At(MustSquare("d6")).Name(), "White Pawn")
	testutil.AssertEqual(t, len(s.CapturedBy(Black)), 1)
}

func TestCastling(t *testing.T) {
	setup := []Placement{
		at(White, King, "e1"),
		at(White, Rook, "a1"),
		at(White, Rook, "h1"),
		at(Black, King, "e8"),
	}
	tests := []struct {
		target   string
		rookFrom string
		rookTo   string
	}{
		{"g1", "h1", "f1"},
		{"c1", "a1", "d1"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			m := customMatch(t, White, setup...)
			rook := m.board.at(MustSquare(tt.rookFrom).Position())
			captured, err := m.PerformMove(MustSquare("e1"), MustSquare(tt.target))
			testutil.AssertNoError(t, err)
			if captured != nil {
				t.Errorf("castling captured %s", captured.Name())
			}
			s := m.Snapshot()
			testutil.AssertEqual(t, s.At(MustSquare(tt.target)).Name(), "White King")
			testutil.AssertEqual(t, s.At(MustSquare(tt.rookTo)).Name(), "White Rook")
			if s.At(MustSquare(tt.rookFrom)) != nil {
				t.Errorf("%s not vacated", tt.rookFrom)
			}
			testutil.AssertEqual(t, rook.MoveCount, 1)
			testutil.AssertEqual(t, s.At(MustSquare(tt.target)).MoveCount, 1)
		})
	}
}

func TestCastlingIgnoresAttackedSquares(t *testing.T) {
	// The king passes f1, which the black rook covers. Only occupancy is
	// checked, so the castle is still offered.
	m := customMatch(t, White,
		at(White, King, "e1"),
		at(White, Rook, "h1"),
		at(Black, Rook, "f8"),
		at(Black, King, "a8"),
	)
	g, err := m.PossibleMoves(MustSquare("e1"))
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, g.At(MustSquare("g1").Position()), "g1 offered")
}

func TestPromotion(t *testing.T) {
	m := customMatch(t, White,
		at(White, King, "e1"),
		moved(White, Pawn, "a7", 5),
		at(Black, King, "h5"),
	)
	_, err := m.ReplacePromotedPiece("Q")
	testutil.AssertErrorIs(t, err, ErrNoPendingPromotion)
	testutil.AssertTrue(t, IsInvariant(err))

	play(t, m, "a7a8")
	promoted := m.Promoted()
	if promoted == nil {
		t.Fatal("no promotion pending after reaching the last rank")
	}
	testutil.AssertEqual(t, promoted.Type, Queen)
	testutil.AssertEqual(t, promoted.Square().String(), "a8")
	testutil.AssertEqual(t, promoted.MoveCount, 6)
	testutil.AssertEqual(t, m.Turn(), 2)

	knight, err := m.ReplacePromotedPiece("n")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, knight.Type, Knight)
	testutil.AssertEqual(t, knight.Color, White)
	testutil.AssertEqual(t, knight.MoveCount, 6)
	testutil.AssertEqual(t, m.Snapshot().At(MustSquare("a8")).Type, Knight)
	if m.Promoted() != knight {
		t.Error("pending promotion does not track the replacement")
	}

	same, err := m.ReplacePromotedPiece("x")
	testutil.AssertNoError(t, err)
	if same != knight {
		t.Errorf("invalid letter replaced the piece with %v", same.Name())
	}

	var queens, pawns int
	for _, p := range m.onBoard {
		switch p.Type {
		case Queen:
			queens++
		case Pawn:
			pawns++
		}
	}
	testutil.AssertEqual(t, []int{queens, pawns, len(m.onBoard)}, []int{0, 0, 3})

	play(t, m, "h5h4")
	if m.Promoted() != nil {
		t.Error("promotion still pending after the next move")
	}
}

func TestPromotionOverrideReevaluatesCheck(t *testing.T) {
	m := customMatch(t, White,
		at(White, King, "e1"),
		moved(White, Pawn, "b7", 5),
		at(Black, King, "h8"),
	)
	play(t, m, "b7b8")
	testutil.AssertTrue(t, m.Check(), "queen on b8 checks h8")

	_, err := m.ReplacePromotedPiece("B")
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, m.Check(), "bishop on b8 does not check h8")
	testutil.AssertEqual(t, m.CurrentPlayer(), Black)
	testutil.AssertEqual(t, m.Turn(), 2)
}

func TestFoolsMate(t *testing.T) {
	m := NewMatch()
	play(t, m, "f2f3", "e7e5", "g2g4", "d8h4")
	testutil.AssertTrue(t, m.Check())
	testutil.AssertTrue(t, m.Checkmate())
	testutil.AssertEqual(t, m.Turn(), 4)
	testutil.AssertEqual(t, m.CurrentPlayer(), Black)
}

func TestBackRankMate(t *testing.T) {
	m := customMatch(t, White,
		at(White, King, "g1"),
		at(White, Rook, "a1"),
		at(Black, King, "h8"),
		at(Black, Pawn, "g7"),
		at(Black, Pawn, "h7"),
	)
	play(t, m, "a1a8")
	testutil.AssertTrue(t, m.Checkmate())
	testutil.AssertEqual(t, m.Turn(), 1)
	testutil.AssertEqual(t, m.CurrentPlayer(), White)

	mate, err := m.InCheckmate(Black)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, mate)
}

func TestCheckWithEscape(t *testing.T) {
	m := customMatch(t, White,
		at(White, King, "g1"),
		at(White, Rook, "a1"),
		at(Black, King, "h8"),
		at(Black, Pawn, "h7"),
	)
	play(t, m, "a1a8")
	testutil.AssertTrue(t, m.Check())
	testutil.AssertFalse(t, m.Checkmate(), "g7 is free")
	testutil.AssertEqual(t, m.CurrentPlayer(), Black)
	testutil.AssertEqual(t, m.Turn(), 2)
}

func TestCheckmateSearchLeavesStateAlone(t *testing.T) {
	m := customMatch(t, Black,
		at(White, King, "e1"),
		at(White, Queen, "e2"),
		at(White, Rook, "a1"),
		at(White, Rook, "h1"),
		at(Black, King, "e8"),
		at(Black, Rook, "a8"),
		at(Black, Knight, "c6"),
		moved(Black, Pawn, "d4", 3),
	)
	rec := newStateRecorder(m)
	before := rec.state(m)
	_, err := m.InCheckmate(Black)
	testutil.AssertNoError(t, err)
	_, err = m.InCheckmate(White)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec.state(m), before)
}

func TestMissingKing(t *testing.T) {
	m := NewMatch()
	king, err := m.king(Black)
	testutil.AssertNoError(t, err)
	pos, _ := king.Position()
	_, err = m.board.RemovePiece(pos)
	testutil.AssertNoError(t, err)
	m.capture(king)

	_, err = m.InCheck(Black)
	testutil.AssertErrorIs(t, err, ErrMissingKing)
	testutil.AssertTrue(t, IsInvariant(err))
}

func TestNewCustomMatchValidation(t *testing.T) {
	_, err := NewCustomMatch(White, []Placement{at(White, King, "e1")})
	testutil.AssertErrorIs(t, err, ErrInvalidPlacement, "missing black king")

	_, err = NewCustomMatch(White, []Placement{
		at(White, King, "e1"),
		at(Black, King, "e8"),
		at(White, Rook, "e5"),
	})
	testutil.AssertErrorIs(t, err, ErrInvalidPlacement, "side not to move in check")

	_, err = NewCustomMatch(White, []Placement{at(White, King, "e1"), at(Black, King, "e1")})
	testutil.AssertErrorIs(t, err, ErrOccupiedCell)

	m, err := NewCustomMatch(Black, []Placement{
		at(White, King, "e1"),
		at(Black, King, "e8"),
		at(White, Rook, "e5"),
	})
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, m.Check())
	testutil.AssertTrue(t, m.Checked(Black))
	testutil.AssertFalse(t, m.Checked(White))
}

func TestNewCustomMatchAlreadyMated(t *testing.T) {
	m := customMatch(t, Black,
		at(White, King, "e1"),
		moved(White, Rook, "a8", 1),
		at(Black, King, "h8"),
		at(Black, Pawn, "g7"),
		at(Black, Pawn, "h7"),
	)
	testutil.AssertTrue(t, m.Check())
	testutil.AssertTrue(t, m.Checkmate())
	testutil.AssertEqual(t, m.CurrentPlayer(), White)
	testutil.AssertEqual(t, m.Turn(), 1)

	// In check but not mated: the king can step to g8.
	m = customMatch(t, Black,
		at(White, King, "e1"),
		moved(White, Rook, "a8", 1),
		at(Black, King, "h8"),
		at(Black, Pawn, "h7"),
	)
	testutil.AssertTrue(t, m.Check())
	testutil.AssertFalse(t, m.Checkmate())
	testutil.AssertEqual(t, m.CurrentPlayer(), Black)
}
