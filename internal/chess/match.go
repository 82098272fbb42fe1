// Package chess is a rules engine for standard chess. A Match owns the
// board and both piece inventories; it validates and applies moves, rejects
// moves that leave the mover in check, and detects check and checkmate.
//
// A Match is not safe for concurrent use.
package chess

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Match is one game: board, turn state and piece inventories.
type Match struct {
	board *Board

	turn      int
	current   Color
	check     bool
	checkSide Color
	checkmate bool

	enPassantVulnerable *Piece
	promoted            *Piece

	onBoard  []*Piece
	captured []*Piece

	// lastMover and moveTurn describe the most recent completed move so a
	// promotion override can re-evaluate its outcome.
	lastMover Color
	moveTurn  int

	log *log.Logger
}

// Option configures a Match.
type Option func(*Match)

// WithLogger sets the logger for move-level debug records.
func WithLogger(l *log.Logger) Option {
	return func(m *Match) { m.log = l }
}

func newMatch(opts []Option) *Match {
	board, _ := NewBoard(Ranks, Files)
	m := &Match{
		board:   board,
		turn:    1,
		current: White,
		log:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewMatch returns a match in the standard starting position, White to move.
func NewMatch(opts ...Option) *Match {
	m := newMatch(opts)
	back := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for i, t := range back {
		file := byte('a' + i)
		m.mustPlace(file, 1, NewPiece(t, White))
		m.mustPlace(file, 2, NewPiece(Pawn, White))
		m.mustPlace(file, 7, NewPiece(Pawn, Black))
		m.mustPlace(file, 8, NewPiece(t, Black))
	}
	return m
}

func (m *Match) mustPlace(file byte, rank int, p *Piece) {
	sq, err := NewSquare(file, rank)
	if err != nil {
		panic(err)
	}
	if err := m.place(p, sq); err != nil {
		panic(err)
	}
}

func (m *Match) place(p *Piece, sq Square) error {
	if err := m.board.PlacePiece(p, sq.Position()); err != nil {
		return err
	}
	m.onBoard = append(m.onBoard, p)
	return nil
}

// Placement describes one piece of a custom starting position.
type Placement struct {
	Square    Square
	Type      PieceType
	Color     Color
	MoveCount int
}

// NewCustomMatch starts a match from an arbitrary position with current to
// move. Each color needs exactly one king, and the side not to move must not
// be in check. A position where current is already mated starts finished,
// with the winner reported as the current player as after any mating move.
func NewCustomMatch(current Color, placements []Placement, opts ...Option) (*Match, error) {
	m := newMatch(opts)
	m.current = current
	var kings [2]int
	for _, pl := range placements {
		p := &Piece{Type: pl.Type, Color: pl.Color, MoveCount: pl.MoveCount}
		if err := m.place(p, pl.Square); err != nil {
			return nil, fmt.Errorf("place %s on %s: %w", p.Name(), pl.Square, err)
		}
		if p.Type == King {
			kings[p.Color]++
		}
	}
	for _, c := range []Color{White, Black} {
		if kings[c] != 1 {
			return nil, fmt.Errorf("%w: %s has %d kings", ErrInvalidPlacement, c, kings[c])
		}
	}
	idle, err := m.InCheck(current.Opponent())
	if err != nil {
		return nil, err
	}
	if idle {
		return nil, fmt.Errorf("%w: %s is in check but it is %s's turn", ErrInvalidPlacement, current.Opponent(), current)
	}
	if m.check, err = m.InCheck(current); err != nil {
		return nil, err
	}
	m.checkSide = current
	if m.checkmate, err = m.InCheckmate(current); err != nil {
		return nil, err
	}
	if m.checkmate {
		m.current = current.Opponent()
	}
	return m, nil
}

func (m *Match) Turn() int                   { return m.turn }
func (m *Match) CurrentPlayer() Color        { return m.current }
func (m *Match) Check() bool                 { return m.check }
func (m *Match) Checkmate() bool             { return m.checkmate }
func (m *Match) Promoted() *Piece            { return m.promoted }
func (m *Match) EnPassantVulnerable() *Piece { return m.enPassantVulnerable }

// Checked reports whether c is the side flagged as in check. Move
// generation uses it to rule out castling.
func (m *Match) Checked(c Color) bool {
	return m.check && m.checkSide == c
}

// PossibleMoves validates source as a selection for the current player and
// returns the piece's candidate grid. The grid ignores self-check; use
// LegalMoves for a filtered one.
func (m *Match) PossibleMoves(source Square) (Grid, error) {
	pos := source.Position()
	if err := m.validateSource(pos); err != nil {
		return nil, moveErr("possible moves", source, err)
	}
	return m.board.at(pos).PossibleMoves(m.board, m), nil
}

// LegalMoves is PossibleMoves with every candidate that would leave the
// mover in check removed.
func (m *Match) LegalMoves(source Square) (Grid, error) {
	g, err := m.PossibleMoves(source)
	if err != nil {
		return nil, err
	}
	src := source.Position()
	mover := m.board.at(src).Color
	for _, dst := range g.Positions() {
		safe, err := m.try(src, dst, func() (bool, error) {
			in, err := m.InCheck(mover)
			return !in, err
		})
		if err != nil {
			return nil, moveErr("legal moves", source, err)
		}
		g[dst.Row][dst.Column] = safe
	}
	return g, nil
}

func (m *Match) validateSource(pos Position) error {
	if !m.board.PositionExists(pos) {
		return ErrOutOfBounds
	}
	p := m.board.at(pos)
	if p == nil {
		return ErrNoPieceAtSource
	}
	if p.Color != m.current {
		return ErrWrongOwner
	}
	if !p.PossibleMoves(m.board, m).Any() {
		return ErrNoLegalMoves
	}
	return nil
}

func (m *Match) validateTarget(source, target Position) error {
	if !m.board.PositionExists(target) {
		return ErrOutOfBounds
	}
	if !m.board.at(source).PossibleMoves(m.board, m).At(target) {
		return ErrIllegalTarget
	}
	return nil
}

// PerformMove moves the current player's piece from source to target and
// returns the captured piece, if any. A move that would leave the mover in
// check is rolled back and reported as ErrSelfCheck with no state changed.
//
// A pawn reaching the last rank is promoted to a queen straight away and
// left pending so ReplacePromotedPiece can pick another piece. If the move
// mates, Checkmate is set and the turn does not advance.
func (m *Match) PerformMove(source, target Square) (*Piece, error) {
	const op = "perform move"
	src, dst := source.Position(), target.Position()
	if err := m.validateSource(src); err != nil {
		return nil, moveErr(op, source, err)
	}
	if err := m.validateTarget(src, dst); err != nil {
		return nil, moveErr(op, target, err)
	}

	mover := m.current
	mv, err := m.execute(src, dst)
	if err != nil {
		return nil, moveErr(op, source, err)
	}
	self, err := m.InCheck(mover)
	if err == nil && self {
		err = ErrSelfCheck
	}
	if err != nil {
		if uerr := m.undo(mv); uerr != nil {
			return nil, moveErr(op, source, uerr)
		}
		m.log.Debug("move rejected", "from", source, "to", target, "err", err)
		return nil, moveErr(op, target, err)
	}

	moved := mv.piece
	m.enPassantVulnerable = nil
	if moved.Type == Pawn && (dst.Row-src.Row == 2 || src.Row-dst.Row == 2) {
		m.enPassantVulnerable = moved
	}

	m.promoted = nil
	if moved.Type == Pawn && dst.Row == m.lastRow(moved.Color) {
		if m.promoted, err = m.promote(moved, Queen); err != nil {
			return nil, moveErr(op, target, err)
		}
	}

	m.lastMover, m.moveTurn = mover, m.turn
	if err := m.conclude(); err != nil {
		return nil, moveErr(op, target, err)
	}
	m.log.Debug("move applied", "turn", m.moveTurn, "player", mover, "from", source, "to", target,
		"captured", mv.captured != nil, "check", m.check, "checkmate", m.checkmate)
	return mv.captured, nil
}

// ReplacePromotedPiece swaps the pending promotion for the piece named by
// letter (B, N, R or Q, any case). An unknown letter keeps the current
// piece and returns it unchanged. The replacement keeps the pawn's
// MoveCount rather than starting from zero.
func (m *Match) ReplacePromotedPiece(letter string) (*Piece, error) {
	if m.promoted == nil {
		return nil, &MoveError{Op: "replace promoted piece", Err: ErrNoPendingPromotion}
	}
	t, ok := PromotionType(letter)
	if !ok || t == m.promoted.Type {
		return m.promoted, nil
	}
	p, err := m.promote(m.promoted, t)
	if err != nil {
		return nil, moveErr("replace promoted piece", m.promoted.Square(), err)
	}
	m.promoted = p
	if err := m.conclude(); err != nil {
		return nil, moveErr("replace promoted piece", p.Square(), err)
	}
	return p, nil
}

func (m *Match) lastRow(c Color) int {
	if c == White {
		return 0
	}
	return m.board.rows - 1
}

// promote replaces p on the board and in the inventory with a new piece of
// type t and the same color.
func (m *Match) promote(p *Piece, t PieceType) (*Piece, error) {
	pos, ok := p.Position()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not on the board", ErrNoPendingPromotion, p.Name())
	}
	if _, err := m.board.RemovePiece(pos); err != nil {
		return nil, err
	}
	for i, q := range m.onBoard {
		if q == p {
			m.onBoard = append(m.onBoard[:i], m.onBoard[i+1:]...)
			break
		}
	}
	np := &Piece{Type: t, Color: p.Color, MoveCount: p.MoveCount}
	if err := m.board.PlacePiece(np, pos); err != nil {
		return nil, err
	}
	m.onBoard = append(m.onBoard, np)
	m.log.Debug("promotion", "piece", np.Name(), "square", np.Square())
	return np, nil
}

// conclude evaluates the position after the last move: check and mate for
// the opponent, and whether the turn passes.
func (m *Match) conclude() error {
	opp := m.lastMover.Opponent()
	check, err := m.InCheck(opp)
	if err != nil {
		return err
	}
	m.check, m.checkSide = check, opp

	mate, err := m.InCheckmate(opp)
	if err != nil {
		return err
	}
	m.checkmate = mate
	if mate {
		m.turn, m.current = m.moveTurn, m.lastMover
		m.log.Debug("checkmate", "winner", m.lastMover, "turn", m.turn)
		return nil
	}
	m.turn, m.current = m.moveTurn+1, opp
	return nil
}
