package chess

import "fmt"

// move records everything execute changed so undo can put it back exactly.
type move struct {
	source, target Position
	piece          *Piece

	captured   *Piece
	capturedAt Position
	// capturedIdx is where captured sat in the on-board inventory.
	capturedIdx int

	rook             *Piece
	rookFrom, rookTo Position
	enPassant        bool
}

func (mv *move) castled() bool { return mv.rook != nil }

// execute applies source->target to the board and inventories. target must
// already be validated against the candidate grid of the piece on source.
func (m *Match) execute(source, target Position) (*move, error) {
	p, err := m.board.RemovePiece(source)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPieceAtSource, source)
	}
	p.MoveCount++
	mv := &move{source: source, target: target, piece: p, capturedIdx: -1}

	captured, err := m.board.RemovePiece(target)
	if err != nil {
		return nil, err
	}
	if err := m.board.PlacePiece(p, target); err != nil {
		return nil, err
	}
	if captured != nil {
		mv.captured, mv.capturedAt = captured, target
		mv.capturedIdx = m.capture(captured)
	}

	switch {
	case p.Type == King && target.Column == source.Column+2:
		err = m.moveRook(mv, source.offset(0, 3), source.offset(0, 1))
	case p.Type == King && target.Column == source.Column-2:
		err = m.moveRook(mv, source.offset(0, -4), source.offset(0, -1))
	case p.Type == Pawn && source.Column != target.Column && captured == nil:
		// The only diagonal pawn move onto an empty cell is en passant. The
		// victim stands behind the target, on the mover's original row.
		at := Position{source.Row, target.Column}
		victim, rerr := m.board.RemovePiece(at)
		if rerr != nil {
			return nil, rerr
		}
		if victim != nil {
			mv.enPassant = true
			mv.captured, mv.capturedAt = victim, at
			mv.capturedIdx = m.capture(victim)
		}
	}
	if err != nil {
		return nil, err
	}
	return mv, nil
}

func (m *Match) moveRook(mv *move, from, to Position) error {
	rook, err := m.board.RemovePiece(from)
	if err != nil {
		return err
	}
	if rook == nil {
		return fmt.Errorf("%w: castling rook missing at %v", ErrNoPieceAtSource, from)
	}
	if err := m.board.PlacePiece(rook, to); err != nil {
		return err
	}
	rook.MoveCount++
	mv.rook, mv.rookFrom, mv.rookTo = rook, from, to
	return nil
}

// undo reverts execute. Afterwards board, positions, move counts and both
// inventories equal what they were before execute.
func (m *Match) undo(mv *move) error {
	if mv.castled() {
		if _, err := m.board.RemovePiece(mv.rookTo); err != nil {
			return err
		}
		if err := m.board.PlacePiece(mv.rook, mv.rookFrom); err != nil {
			return err
		}
		mv.rook.MoveCount--
	}

	if _, err := m.board.RemovePiece(mv.target); err != nil {
		return err
	}
	mv.piece.MoveCount--
	if err := m.board.PlacePiece(mv.piece, mv.source); err != nil {
		return err
	}

	if mv.captured != nil {
		if err := m.board.PlacePiece(mv.captured, mv.capturedAt); err != nil {
			return err
		}
		m.restore(mv.captured, mv.capturedIdx)
	}
	return nil
}

// try executes source->target, runs probe on the resulting position and
// reverts the move on every path out.
func (m *Match) try(source, target Position, probe func() (bool, error)) (ok bool, err error) {
	mv, err := m.execute(source, target)
	if err != nil {
		return false, err
	}
	defer func() {
		if uerr := m.undo(mv); uerr != nil && err == nil {
			ok, err = false, uerr
		}
	}()
	return probe()
}

// capture moves p from the on-board inventory to the captured one and
// returns the index it was removed from.
func (m *Match) capture(p *Piece) int {
	idx := -1
	for i, q := range m.onBoard {
		if q == p {
			idx = i
			break
		}
	}
	if idx >= 0 {
		m.onBoard = append(m.onBoard[:idx], m.onBoard[idx+1:]...)
	}
	m.captured = append(m.captured, p)
	return idx
}

// restore is the inverse of capture; p must be the last captured piece.
func (m *Match) restore(p *Piece, idx int) {
	if n := len(m.captured); n > 0 && m.captured[n-1] == p {
		m.captured[n-1] = nil
		m.captured = m.captured[:n-1]
	}
	if idx < 0 || idx > len(m.onBoard) {
		m.onBoard = append(m.onBoard, p)
		return
	}
	m.onBoard = append(m.onBoard, nil)
	copy(m.onBoard[idx+1:], m.onBoard[idx:])
	m.onBoard[idx] = p
}
