package chess

import "fmt"

func (m *Match) king(c Color) (*Piece, error) {
	for _, p := range m.onBoard {
		if p.Type == King && p.Color == c {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingKing, c)
}

// InCheck reports whether any opponent piece's candidate grid covers the
// king of color c.
func (m *Match) InCheck(c Color) (bool, error) {
	k, err := m.king(c)
	if err != nil {
		return false, err
	}
	for _, p := range m.onBoard {
		if p.Color == c {
			continue
		}
		if p.PossibleMoves(m.board, m).At(k.pos) {
			return true, nil
		}
	}
	return false, nil
}

// InCheckmate reports whether c is in check and every candidate move of
// every piece of c still leaves it in check. Each candidate is tried by
// executing it on the board and undoing it.
func (m *Match) InCheckmate(c Color) (bool, error) {
	in, err := m.InCheck(c)
	if err != nil || !in {
		return false, err
	}

	var own []*Piece
	for _, p := range m.onBoard {
		if p.Color == c {
			own = append(own, p)
		}
	}
	for _, p := range own {
		src := p.pos
		for _, dst := range p.PossibleMoves(m.board, m).Positions() {
			escapes, err := m.try(src, dst, func() (bool, error) {
				in, err := m.InCheck(c)
				return !in, err
			})
			if err != nil {
				return false, err
			}
			if escapes {
				return false, nil
			}
		}
	}
	return true, nil
}
