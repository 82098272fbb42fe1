// Package lobby pairs connected players and runs their shared matches.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"

	"github.com/imjasonh/chessmatch/internal/chess"
)

var (
	ErrNotYourTurn = errors.New("it is not your turn")
	ErrGameOver    = errors.New("the game is over")
	ErrNotSeated   = errors.New("player is not seated in this game")

	// ErrPromotionClosed means the opponent moved before the promotion
	// choice arrived.
	ErrPromotionClosed = errors.New("the promotion can no longer be changed")
)

// Update types sent to players.
const (
	UpdateMatched      = "matched"
	UpdateMove         = "move"
	UpdatePromotion    = "promotion"
	UpdateDisconnected = "opponent_disconnected"
)

// Player is a connected player.
type Player struct {
	ID        string
	Name      string
	Session   ssh.Session
	Color     chess.Color
	GameID    string
	Connected bool
	// Updates feeds the player's model. It is buffered; updates are dropped
	// when it is full.
	Updates chan Update
}

// NewPlayer returns a connected player with a buffered update channel.
func NewPlayer(id, name string, s ssh.Session) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Session:   s,
		Connected: true,
		Updates:   make(chan Update, 10),
	}
}

// Update is a notification for a player's model.
type Update struct {
	Type       string
	FromPlayer string
	Text       string
}

// Session is a single game between two players. All access to the match
// goes through the session lock.
type Session struct {
	ID    string
	White *Player
	Black *Player

	mu      sync.Mutex
	match   *chess.Match
	updates chan Update
	ctx     context.Context
	cancel  context.CancelFunc
	log     *log.Logger
}

func newSession(id string, white, black *Player, logger *log.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:      id,
		White:   white,
		Black:   black,
		match:   chess.NewMatch(chess.WithLogger(logger.With("game", id))),
		updates: make(chan Update, 10),
		ctx:     ctx,
		cancel:  cancel,
		log:     logger,
	}
	white.Color, white.GameID = chess.White, id
	black.Color, black.GameID = chess.Black, id

	go s.handleUpdates()
	return s
}

func (s *Session) handleUpdates() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case u := <-s.updates:
			s.broadcast(u)
		}
	}
}

func (s *Session) broadcast(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []*Player{s.White, s.Black} {
		if p == nil || !p.Connected {
			continue
		}
		select {
		case p.Updates <- u:
		default:
		}
	}
}

func (s *Session) publish(u Update) {
	select {
	case s.updates <- u:
	case <-s.ctx.Done():
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *Session) player(id string) *Player {
	switch {
	case s.White != nil && s.White.ID == id:
		return s.White
	case s.Black != nil && s.Black.ID == id:
		return s.Black
	}
	return nil
}

// Opponent returns the other player of id's game.
func (s *Session) Opponent(id string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.White != nil && s.White.ID == id:
		return s.Black
	case s.Black != nil && s.Black.ID == id:
		return s.White
	}
	return nil
}

// Seat returns id's view of the session.
func (s *Session) Seat(id string) (*Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.player(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotSeated, id)
	}
	return &Seat{session: s, player: p}, nil
}

// disconnect marks id as gone, tells the other player and reports whether
// nobody is left.
func (s *Session) disconnect(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	gone := s.player(id)
	if gone == nil {
		return false
	}
	gone.Connected = false
	for _, p := range []*Player{s.White, s.Black} {
		if p == nil || p == gone || !p.Connected {
			continue
		}
		select {
		case p.Updates <- Update{Type: UpdateDisconnected, FromPlayer: id, Text: gone.Name + " left the game"}:
		default:
		}
	}
	if (s.White == nil || !s.White.Connected) && (s.Black == nil || !s.Black.Connected) {
		s.cancel()
		return true
	}
	return false
}

// Seat is one player's handle on a session. It satisfies the TUI's table.
type Seat struct {
	session *Session
	player  *Player
}

func (st *Seat) Snapshot() chess.Snapshot {
	st.session.mu.Lock()
	defer st.session.mu.Unlock()
	return st.session.match.Snapshot()
}

// Color is the color this seat plays.
func (st *Seat) Color() (chess.Color, bool) {
	return st.player.Color, true
}

// MyTurn reports whether this seat is the one to move.
func (st *Seat) MyTurn() bool {
	st.session.mu.Lock()
	defer st.session.mu.Unlock()
	return st.ready() == nil
}

func (st *Seat) ready() error {
	m := st.session.match
	if m.Checkmate() {
		return ErrGameOver
	}
	if m.CurrentPlayer() != st.player.Color {
		return ErrNotYourTurn
	}
	return nil
}

func (st *Seat) LegalMoves(from chess.Square) (chess.Grid, error) {
	st.session.mu.Lock()
	defer st.session.mu.Unlock()
	if err := st.ready(); err != nil {
		return nil, err
	}
	return st.session.match.LegalMoves(from)
}

func (st *Seat) Move(from, to chess.Square) (*chess.Piece, error) {
	st.session.mu.Lock()
	if err := st.ready(); err != nil {
		st.session.mu.Unlock()
		return nil, err
	}
	captured, err := st.session.match.PerformMove(from, to)
	st.session.mu.Unlock()
	if err != nil {
		return nil, err
	}
	st.session.publish(Update{
		Type:       UpdateMove,
		FromPlayer: st.player.ID,
		Text:       fmt.Sprintf("%s played %s-%s", st.player.Name, from, to),
	})
	return captured, nil
}

func (st *Seat) Promote(letter string) (*chess.Piece, error) {
	st.session.mu.Lock()
	m := st.session.match
	p := m.Promoted()
	if p == nil || p.Color != st.player.Color {
		st.session.mu.Unlock()
		return nil, ErrPromotionClosed
	}
	piece, err := m.ReplacePromotedPiece(letter)
	st.session.mu.Unlock()
	if err != nil {
		return nil, err
	}
	st.session.publish(Update{
		Type:       UpdatePromotion,
		FromPlayer: st.player.ID,
		Text:       fmt.Sprintf("%s promoted to %s", st.player.Name, piece.Type),
	})
	return piece, nil
}

// Manager handles matchmaking and game lookup.
type Manager struct {
	mu           sync.RWMutex
	queue        []*Player
	games        map[string]*Session
	playerToGame map[string]string
	gameCounter  int
	log          *log.Logger
}

func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		games:        make(map[string]*Session),
		playerToGame: make(map[string]string),
		log:          logger,
	}
}

// Join queues p and starts a game once two players are waiting. The first
// queued player plays White.
func (gm *Manager) Join(p *Player) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.queue = append(gm.queue, p)
	gm.log.Info("player joined", "player", p.Name, "id", p.ID, "queued", len(gm.queue))
	if len(gm.queue) < 2 {
		return
	}
	white, black := gm.queue[0], gm.queue[1]
	gm.queue = gm.queue[2:]

	gm.gameCounter++
	id := fmt.Sprintf("game_%d", gm.gameCounter)
	gm.games[id] = newSession(id, white, black, gm.log)
	gm.playerToGame[white.ID] = id
	gm.playerToGame[black.ID] = id
	gm.log.Info("game started", "game", id, "white", white.Name, "black", black.Name)

	for _, pl := range []*Player{white, black} {
		select {
		case pl.Updates <- Update{Type: UpdateMatched, Text: fmt.Sprintf("%s vs %s", white.Name, black.Name)}:
		default:
		}
	}
}

// Leave removes id from the queue or its game.
func (gm *Manager) Leave(id string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for i, p := range gm.queue {
		if p.ID == id {
			gm.queue = append(gm.queue[:i], gm.queue[i+1:]...)
			break
		}
	}

	gameID, ok := gm.playerToGame[id]
	if !ok {
		return
	}
	delete(gm.playerToGame, id)
	s, ok := gm.games[gameID]
	if !ok {
		return
	}
	if s.disconnect(id) {
		delete(gm.games, gameID)
		gm.log.Info("game closed", "game", gameID)
	}
}

// Session returns the game id is seated in, or nil.
func (gm *Manager) Session(id string) *Session {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	if gameID, ok := gm.playerToGame[id]; ok {
		return gm.games[gameID]
	}
	return nil
}

// QueuePosition is id's 1-based place in the queue, or -1.
func (gm *Manager) QueuePosition(id string) int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	for i, p := range gm.queue {
		if p.ID == id {
			return i + 1
		}
	}
	return -1
}
