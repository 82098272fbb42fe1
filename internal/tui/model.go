// Package tui is the terminal front end: a bubbletea model that drives a
// match through a Table, either locally or as one seat of a lobby game.
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/imjasonh/chessmatch/internal/chess"
	"github.com/imjasonh/chessmatch/internal/lobby"
)

type state int

const (
	stateWaiting state = iota
	statePlaying
	stateDisconnected
)

type mode int

const (
	modeBoard mode = iota
	modeGoto
	modePromote
)

// Model is the bubbletea model for one terminal.
type Model struct {
	table  Table
	styles styles

	// preview is the board shown while waiting for an opponent.
	preview chess.Snapshot

	// Set for networked play only.
	player   *lobby.Player
	manager  *lobby.Manager
	opponent string

	state    state
	mode     mode
	cursor   chess.Position
	selected *chess.Position
	moves    chess.Grid
	input    string
	message  string
	fatal    error
}

// New returns a model playing on t straight away.
func New(t Table) Model {
	m := Model{table: t, state: statePlaying, styles: newStyles(lipgloss.DefaultRenderer())}
	m.cursor = homeCursor(t)
	return m
}

// NewNetworked returns a model for p that waits for m to pair it.
func NewNetworked(manager *lobby.Manager, p *lobby.Player) Model {
	return Model{
		player:  p,
		manager: manager,
		state:   stateWaiting,
		cursor:  chess.MustSquare("e2").Position(),
		styles:  newStyles(lipgloss.DefaultRenderer()),
		preview: chess.NewMatch().Snapshot(),
	}
}

// WithRenderer returns m drawing through r, e.g. one bound to an SSH
// session's terminal.
func (m Model) WithRenderer(r *lipgloss.Renderer) Model {
	m.styles = newStyles(r)
	return m
}

func homeCursor(t Table) chess.Position {
	if c, ok := t.Color(); ok && c == chess.Black {
		return chess.MustSquare("e7").Position()
	}
	return chess.MustSquare("e2").Position()
}

// Err is the error that ended the session, if any.
func (m Model) Err() error { return m.fatal }

func (m Model) Init() tea.Cmd {
	if m.player != nil && m.player.Updates != nil {
		return m.listenForUpdates()
	}
	return nil
}

func (m Model) listenForUpdates() tea.Cmd {
	ch := m.player.Updates
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return u
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case lobby.Update:
		return m.handleUpdate(msg)
	}
	return m, nil
}

func (m Model) handleUpdate(u lobby.Update) (tea.Model, tea.Cmd) {
	switch u.Type {
	case lobby.UpdateMatched:
		sess := m.manager.Session(m.player.ID)
		if sess == nil {
			break
		}
		seat, err := sess.Seat(m.player.ID)
		if err != nil {
			m.fatal = err
			return m, tea.Quit
		}
		m.table = seat
		m.state = statePlaying
		m.cursor = homeCursor(seat)
		if opp := sess.Opponent(m.player.ID); opp != nil {
			m.opponent = opp.Name
		}
		m.message = u.Text

	case lobby.UpdateMove, lobby.UpdatePromotion:
		if u.FromPlayer != m.player.ID {
			m.message = u.Text
			m.clearSelection()
		}

	case lobby.UpdateDisconnected:
		m.state = stateDisconnected
		m.mode = modeBoard
		m.clearSelection()
		m.message = u.Text
	}
	return m, m.listenForUpdates()
}

func (m *Model) clearSelection() {
	m.selected = nil
	m.moves = nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeGoto:
		return m.handleGotoKey(msg)
	case modePromote:
		return m.handlePromoteKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.clearSelection()
		m.message = ""
	case "up", "k":
		if m.cursor.Row > 0 {
			m.cursor.Row--
		}
	case "down", "j":
		if m.cursor.Row < chess.Ranks-1 {
			m.cursor.Row++
		}
	case "left", "h":
		if m.cursor.Column > 0 {
			m.cursor.Column--
		}
	case "right", "l":
		if m.cursor.Column < chess.Files-1 {
			m.cursor.Column++
		}
	case ":":
		m.mode = modeGoto
		m.input = ""
	case "enter", " ":
		if m.state != statePlaying {
			break
		}
		return m.choose()
	}
	return m, nil
}

func (m Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode, m.input = modeBoard, ""
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyEnter:
		sq, err := chess.ParseSquare(m.input)
		m.mode, m.input = modeBoard, ""
		if err != nil {
			m.message = err.Error()
			break
		}
		m.cursor = sq.Position()
		m.message = ""
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m Model) handlePromoteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
		m.mode = modeBoard
		return m, nil
	}
	if msg.Type != tea.KeyRunes {
		return m, nil
	}
	m.mode = modeBoard
	p, err := m.table.Promote(string(msg.Runes))
	if err != nil {
		return m.fail(err)
	}
	m.message = "Promoted to " + p.Type.String()
	return m, nil
}

// choose handles enter on the cursor square: select a piece, move the
// selected piece there, or deselect.
func (m Model) choose() (tea.Model, tea.Cmd) {
	snap := m.table.Snapshot()
	if snap.Checkmate {
		m.message = fmt.Sprintf("The game is over, %s won", snap.Player)
		return m, nil
	}
	if c, ok := m.table.Color(); ok && snap.Player != c {
		m.message = "Wait for your opponent to move"
		return m, nil
	}
	at, err := chess.SquareOf(m.cursor)
	if err != nil {
		return m.fail(err)
	}

	if m.selected != nil && *m.selected == m.cursor {
		m.clearSelection()
		return m, nil
	}
	if m.selected == nil {
		return m.selectAt(at)
	}
	if p := snap.At(at); p != nil && p.Color == snap.Player {
		return m.selectAt(at)
	}

	from, err := chess.SquareOf(*m.selected)
	if err != nil {
		return m.fail(err)
	}
	captured, err := m.table.Move(from, at)
	if err != nil {
		return m.fail(err)
	}
	m.clearSelection()
	m.message = ""
	if captured != nil {
		m.message = "Captured " + captured.Name()
	}

	snap = m.table.Snapshot()
	if p := snap.Promoted; p != nil && p.Square() == at {
		m.mode = modePromote
	}
	return m, nil
}

func (m Model) selectAt(at chess.Square) (tea.Model, tea.Cmd) {
	g, err := m.table.LegalMoves(at)
	if err != nil {
		m.clearSelection()
		return m.fail(err)
	}
	if !g.Any() {
		m.clearSelection()
		m.message = fmt.Sprintf("%s has no legal moves", at)
		return m, nil
	}
	pos := at.Position()
	m.selected, m.moves = &pos, g
	m.message = ""
	return m, nil
}

// fail shows a user error on the message line. Invariant violations end
// the program.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if chess.IsInvariant(err) {
		m.fatal = err
		return m, tea.Quit
	}
	m.message = userMessage(err)
	return m, nil
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, chess.ErrSelfCheck):
		return "You can't put yourself in check"
	case errors.Is(err, chess.ErrIllegalTarget):
		return "The chosen piece can't move to the target position"
	case errors.Is(err, chess.ErrNoLegalMoves):
		return "There are no possible moves for the chosen piece"
	case errors.Is(err, chess.ErrWrongOwner):
		return "The chosen piece is not yours"
	case errors.Is(err, chess.ErrNoPieceAtSource):
		return "There is no piece on the source position"
	}
	return err.Error()
}

func (m Model) View() string {
	if m.fatal != nil {
		return m.styles.err.Render("Error: "+m.fatal.Error()) + "\n"
	}

	var s strings.Builder
	s.WriteString("CheSSH\n")

	var snap chess.Snapshot
	switch m.state {
	case stateWaiting:
		s.WriteString("Waiting for an opponent to connect...\n")
		if pos := m.manager.QueuePosition(m.player.ID); pos > 0 {
			fmt.Fprintf(&s, "Position in queue: %d\n", pos)
		}
		s.WriteString("You can explore the board while waiting.\n\n")
		snap = m.preview
	case stateDisconnected:
		s.WriteString(m.styles.banner.Render("*** OPPONENT DISCONNECTED; YOU WIN ***") + "\n\n")
		snap = m.table.Snapshot()
	default:
		snap = m.table.Snapshot()
		if c, ok := m.table.Color(); ok {
			fmt.Fprintf(&s, "You: %s (%s) vs %s (%s)\n", m.player.Name, c, m.opponent, c.Opponent())
			if snap.Player == c && !snap.Checkmate {
				s.WriteString("YOUR TURN\n")
			} else if !snap.Checkmate {
				s.WriteString("OPPONENT'S TURN\n")
			}
		}
		if status := m.styles.status(snap); status != "" {
			s.WriteString(status + "\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.board(snap, m.cursor, m.selected, m.moves),
		"   ",
		m.styles.infoPanel(snap, m.cursor),
	))
	s.WriteString("\n\n")

	switch m.mode {
	case modeGoto:
		s.WriteString("Go to square: " + m.input + "\n")
	case modePromote:
		s.WriteString("Enter piece for promotion (B/N/R/Q): \n")
	}
	if m.message != "" {
		s.WriteString(m.styles.err.Render(m.message) + "\n")
	}
	s.WriteString("arrows/hjkl move, enter/space select, : go to square, esc deselect, q quit\n")
	return s.String()
}
