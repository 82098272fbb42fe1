package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imjasonh/chessmatch/internal/chess"
)

// styles are bound to a renderer so each SSH session gets its own color
// profile.
type styles struct {
	light, dark, cursor, selected, target lipgloss.Style

	info, banner, err lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		light:    r.NewStyle().Background(lipgloss.Color("250")).Foreground(lipgloss.Color("0")),
		dark:     r.NewStyle().Background(lipgloss.Color("242")).Foreground(lipgloss.Color("0")),
		cursor:   r.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15")),
		selected: r.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
		target:   r.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0")),
		info:     r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(26),
		banner:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		err:      r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

const fileLabels = "   a  b  c  d  e  f  g  h"

// board draws the board with rank 8 on top. highlights may be nil.
func (st styles) board(s chess.Snapshot, cursor chess.Position, selected *chess.Position, highlights chess.Grid) string {
	var b strings.Builder
	b.WriteString(fileLabels + "\n")
	for row, cells := range s.Cells {
		rank := len(s.Cells) - row
		fmt.Fprintf(&b, "%d ", rank)
		for col, p := range cells {
			pos := chess.Position{Row: row, Column: col}
			style := st.dark
			if (row+col)%2 == 0 {
				style = st.light
			}
			switch {
			case pos == cursor:
				style = st.cursor
			case selected != nil && pos == *selected:
				style = st.selected
			case highlights.At(pos):
				style = st.target
			}
			b.WriteString(style.Render(" " + p.String() + " "))
		}
		fmt.Fprintf(&b, " %d\n", rank)
	}
	b.WriteString(fileLabels)
	return b.String()
}

func capturedLine(pieces []*chess.Piece) string {
	var parts []string
	for _, p := range pieces {
		parts = append(parts, p.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// infoPanel is the panel next to the board: turn, captured pieces and the
// piece under the cursor.
func (st styles) infoPanel(s chess.Snapshot, cursor chess.Position) string {
	var lines []string
	lines = append(lines, "GAME INFO", "")
	lines = append(lines, fmt.Sprintf("Turn: %d", s.Turn))
	if s.Checkmate {
		lines = append(lines, fmt.Sprintf("Winner: %s", s.Player))
	} else {
		lines = append(lines, fmt.Sprintf("Waiting player: %s", s.Player))
	}
	lines = append(lines, "", "Captured pieces:")
	lines = append(lines, "White: "+capturedLine(s.CapturedBy(chess.White)))
	lines = append(lines, "Black: "+capturedLine(s.CapturedBy(chess.Black)))
	lines = append(lines, "")

	if sq, err := chess.SquareOf(cursor); err == nil {
		lines = append(lines, "Cursor: "+sq.String())
		if p := s.At(sq); p != nil {
			lines = append(lines, "Piece: "+p.Name())
		} else {
			lines = append(lines, "Piece: Empty")
		}
	}
	return st.info.Render(strings.Join(lines, "\n"))
}

func (st styles) status(s chess.Snapshot) string {
	switch {
	case s.Checkmate:
		return st.banner.Render(fmt.Sprintf("*** CHECKMATE! %s wins ***", s.Player))
	case s.Check:
		return st.banner.Render(fmt.Sprintf("*** %s is in CHECK ***", s.Player))
	}
	return ""
}
