package chess

// Snapshot is a detached copy of what a presentation layer needs. Nothing in
// it aliases the live match.
type Snapshot struct {
	// Cells is indexed [row][column]; nil means empty.
	Cells     [][]*Piece
	Turn      int
	Player    Color
	Check     bool
	Checkmate bool
	// Captured is in capture order.
	Captured []*Piece
	Promoted *Piece
}

// Snapshot copies the current state of the match.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		Cells:     make([][]*Piece, m.board.rows),
		Turn:      m.turn,
		Player:    m.current,
		Check:     m.check,
		Checkmate: m.checkmate,
		Captured:  make([]*Piece, 0, len(m.captured)),
		Promoted:  clonePiece(m.promoted),
	}
	for r := range s.Cells {
		s.Cells[r] = make([]*Piece, m.board.columns)
		for c, p := range m.board.cells[r] {
			s.Cells[r][c] = clonePiece(p)
		}
	}
	for _, p := range m.captured {
		s.Captured = append(s.Captured, clonePiece(p))
	}
	return s
}

// CapturedBy returns the pieces of color c that have been captured.
func (s Snapshot) CapturedBy(c Color) []*Piece {
	var out []*Piece
	for _, p := range s.Captured {
		if p.Color == c {
			out = append(out, p)
		}
	}
	return out
}

// At returns the piece on sq, or nil.
func (s Snapshot) At(sq Square) *Piece {
	pos := sq.Position()
	if pos.Row < 0 || pos.Row >= len(s.Cells) || pos.Column < 0 || pos.Column >= len(s.Cells[pos.Row]) {
		return nil
	}
	return s.Cells[pos.Row][pos.Column]
}

func clonePiece(p *Piece) *Piece {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
