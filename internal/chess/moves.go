package chess

// Grid marks, cell for cell, where a piece could move. It has the shape of
// the board it was generated from.
type Grid [][]bool

func newGrid(rows, columns int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]bool, columns)
	}
	return g
}

// At reports whether p is marked. Positions off the grid are never marked.
func (g Grid) At(p Position) bool {
	if p.Row < 0 || p.Row >= len(g) || p.Column < 0 || p.Column >= len(g[p.Row]) {
		return false
	}
	return g[p.Row][p.Column]
}

// Any reports whether at least one cell is marked.
func (g Grid) Any() bool {
	for _, row := range g {
		for _, v := range row {
			if v {
				return true
			}
		}
	}
	return false
}

// Positions lists the marked cells in row-major order.
func (g Grid) Positions() []Position {
	var out []Position
	for r, row := range g {
		for c, v := range row {
			if v {
				out = append(out, Position{r, c})
			}
		}
	}
	return out
}

func (g Grid) mark(p Position) {
	g[p.Row][p.Column] = true
}

// Situation is the read-only game context move generation may consult
// besides the board itself.
type Situation interface {
	// Checked reports whether c is currently flagged as being in check.
	Checked(c Color) bool
	// EnPassantVulnerable is the pawn that just double-stepped, if any.
	EnPassantVulnerable() *Piece
}

type direction struct{ dr, dc int }

var (
	diagonals  = []direction{{-1, -1}, {-1, 1}, {1, 1}, {1, -1}}
	orthogonal = []direction{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	allAround  = append(append([]direction{}, orthogonal...), diagonals...)
	knightJump = []direction{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

type generator func(p *Piece, b *Board, s Situation, g Grid)

var generators = [...]generator{
	Pawn:   pawnMoves,
	Knight: knightMoves,
	Bishop: bishopMoves,
	Rook:   rookMoves,
	Queen:  queenMoves,
	King:   kingMoves,
}

// PossibleMoves returns the candidate grid for p on b. Self-check is not
// considered. An off-board piece has no moves.
func (p *Piece) PossibleMoves(b *Board, s Situation) Grid {
	g := newGrid(b.rows, b.columns)
	if !p.placed {
		return g
	}
	generators[p.Type](p, b, s, g)
	return g
}

func (p *Piece) isOpponent(b *Board, at Position) bool {
	q := b.at(at)
	return q != nil && q.Color != p.Color
}

// canLand is the empty-or-opponent rule for single step pieces.
func (p *Piece) canLand(b *Board, at Position) bool {
	if !b.PositionExists(at) {
		return false
	}
	q := b.at(at)
	return q == nil || q.Color != p.Color
}

// slide walks each ray until it leaves the board or meets a piece. The
// blocking cell is marked only when it holds an opponent.
func slide(p *Piece, b *Board, g Grid, dirs []direction) {
	for _, d := range dirs {
		at := p.pos.offset(d.dr, d.dc)
		for b.empty(at) {
			g.mark(at)
			at = at.offset(d.dr, d.dc)
		}
		if b.PositionExists(at) && p.isOpponent(b, at) {
			g.mark(at)
		}
	}
}

func step(p *Piece, b *Board, g Grid, dirs []direction) {
	for _, d := range dirs {
		if at := p.pos.offset(d.dr, d.dc); p.canLand(b, at) {
			g.mark(at)
		}
	}
}

func bishopMoves(p *Piece, b *Board, _ Situation, g Grid) { slide(p, b, g, diagonals) }
func rookMoves(p *Piece, b *Board, _ Situation, g Grid)   { slide(p, b, g, orthogonal) }
func queenMoves(p *Piece, b *Board, _ Situation, g Grid)  { slide(p, b, g, allAround) }
func knightMoves(p *Piece, b *Board, _ Situation, g Grid) { step(p, b, g, knightJump) }

func kingMoves(p *Piece, b *Board, s Situation, g Grid) {
	step(p, b, g, allAround)

	// Castling only looks at occupancy: the squares the king crosses are not
	// tested for attacks.
	if p.MoveCount != 0 || s.Checked(p.Color) {
		return
	}
	if castlingRook(p, b, p.pos.offset(0, 3)) && b.empty(p.pos.offset(0, 1)) && b.empty(p.pos.offset(0, 2)) {
		g.mark(p.pos.offset(0, 2))
	}
	if castlingRook(p, b, p.pos.offset(0, -4)) &&
		b.empty(p.pos.offset(0, -1)) && b.empty(p.pos.offset(0, -2)) && b.empty(p.pos.offset(0, -3)) {
		g.mark(p.pos.offset(0, -2))
	}
}

func castlingRook(king *Piece, b *Board, at Position) bool {
	if !b.PositionExists(at) {
		return false
	}
	r := b.at(at)
	return r != nil && r.Type == Rook && r.Color == king.Color && r.MoveCount == 0
}

func pawnMoves(p *Piece, b *Board, s Situation, g Grid) {
	fwd := p.Color.forward()

	one := p.pos.offset(fwd, 0)
	if b.empty(one) {
		g.mark(one)
		if two := p.pos.offset(2*fwd, 0); p.MoveCount == 0 && b.empty(two) {
			g.mark(two)
		}
	}

	vulnerable := s.EnPassantVulnerable()
	for _, dc := range []int{-1, 1} {
		diag := p.pos.offset(fwd, dc)
		if !b.PositionExists(diag) {
			continue
		}
		if p.isOpponent(b, diag) {
			g.mark(diag)
			continue
		}
		side := p.pos.offset(0, dc)
		if vulnerable != nil && b.at(diag) == nil && b.at(side) == vulnerable && vulnerable.Color != p.Color {
			g.mark(diag)
		}
	}
}
