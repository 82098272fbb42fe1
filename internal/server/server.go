// Package server exposes the lobby over SSH, with an optional WebSocket
// bridge for browser clients.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/gorilla/websocket"
	sshproxy "github.com/imjasonh/ssh-proxy"

	"github.com/imjasonh/chessmatch/internal/lobby"
	"github.com/imjasonh/chessmatch/internal/tui"
)

// Server is the SSH front door. Every session becomes a lobby player.
type Server struct {
	ssh     *ssh.Server
	manager *lobby.Manager
	log     *log.Logger
	nextID  atomic.Uint64
}

// New builds a server listening on addr with the given PEM host key.
func New(addr string, hostKey []byte, manager *lobby.Manager, logger *log.Logger) (*Server, error) {
	s := &Server{manager: manager, log: logger}
	srv, err := wish.NewServer(
		wish.WithAddress(addr),
		wish.WithHostKeyPEM(hostKey),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}
	s.ssh = srv
	return s, nil
}

func (s *Server) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	player := lobby.NewPlayer(fmt.Sprintf("player_%d", s.nextID.Add(1)), sess.User(), sess)
	m := tui.NewNetworked(s.manager, player).WithRenderer(bubbletea.MakeRenderer(sess))

	s.manager.Join(player)

	go func() {
		<-sess.Context().Done()
		s.manager.Leave(player.ID)
		close(player.Updates)
	}()

	return m, []tea.ProgramOption{tea.WithAltScreen()}
}

// ListenAndServe serves on the configured address.
func (s *Server) ListenAndServe() error {
	s.log.Info("starting SSH chess server", "addr", s.ssh.Addr)
	return s.ssh.ListenAndServe()
}

// Serve accepts connections on l.
func (s *Server) Serve(l net.Listener) error {
	return s.ssh.Serve(l)
}

// Shutdown stops accepting connections and waits for sessions to end or
// ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.ssh.Shutdown(ctx)
}

// Close drops all connections immediately.
func (s *Server) Close() error {
	return s.ssh.Close()
}

// Bridge serves a WebSocket to SSH proxy on /ssh that dials sshAddr.
func Bridge(sshAddr string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ssh", sshproxy.ProxyWebSocketToSSH(sshAddr, websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow connections from any origin for now
		},
	}))
	return mux
}
