package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"

	"github.com/imjasonh/chessmatch/internal/chess"
	"github.com/imjasonh/chessmatch/internal/config"
	"github.com/imjasonh/chessmatch/internal/hostkey"
	"github.com/imjasonh/chessmatch/internal/lobby"
	"github.com/imjasonh/chessmatch/internal/server"
	"github.com/imjasonh/chessmatch/internal/tui"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "chessh",
		Level:           cfg.LogLevel,
	})

	if cfg.Offline {
		if err := playOffline(); err != nil {
			logger.Fatal("game ended with an error", "err", err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := serve(ctx, cfg, logger); err != nil {
		logger.Fatal("server failed", "err", err)
	}
}

func playOffline() error {
	m := tui.New(tui.Local{Match: chess.NewMatch()})
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	return final.(tui.Model).Err()
}

func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	key, err := hostkey.Load(ctx, cfg, logger)
	if err != nil {
		return err
	}

	s, err := server.New(cfg.SSHAddr(), key, lobby.NewManager(logger), logger)
	if err != nil {
		return err
	}
	errc := make(chan error, 2)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
	}()

	var bridge *http.Server
	if cfg.HTTPPort != "" {
		logger.Info("starting WebSocket to SSH proxy", "port", cfg.HTTPPort)
		bridge = &http.Server{
			Addr:              ":" + cfg.HTTPPort,
			Handler:           server.Bridge(cfg.SSHAddr()),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := bridge.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("HTTP server error: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}
	logger.Info("stopping SSH server")

	tctx, tcancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer tcancel()
	if bridge != nil {
		if err := bridge.Shutdown(tctx); err != nil {
			logger.Error("HTTP shutdown", "err", err)
		}
	}
	return s.Shutdown(tctx)
}
