// Package config reads the server configuration from flags and the
// environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the resolved configuration.
type Config struct {
	// Port is the SSH listen port.
	Port int
	// Local loads or generates the host key on disk instead of reading it
	// from Secret Manager.
	Local bool
	// Offline plays a hot-seat game in this terminal without a server.
	Offline  bool
	HostKey  string
	LogLevel log.Level

	// HostKeySecret is the Secret Manager version holding the host key.
	HostKeySecret string
	// HTTPPort enables the WebSocket bridge when set.
	HTTPPort string
}

// SSHAddr is the address the SSH server listens on.
func (c Config) SSHAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func defaultHostKey() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".chessh", "host_key")
	}
	return filepath.Join(home, ".chessh", "host_key")
}

// Load parses args (without the program name) and reads the environment
// through getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("chessh", flag.ContinueOnError)
	var (
		port     = fs.Int("port", 2222, "SSH server port")
		local    = fs.Bool("local", false, "run in local mode (generates/uses local host key instead of Secret Manager)")
		offline  = fs.Bool("offline", false, "play a two player game in this terminal")
		hostKey  = fs.String("host-key", defaultHostKey(), "host key path for local mode")
		logLevel = fs.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("%w: unexpected arguments %q", ErrInvalidConfig, fs.Args())
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg := Config{
		Port:          *port,
		Local:         *local,
		Offline:       *offline,
		HostKey:       *hostKey,
		LogLevel:      level,
		HostKeySecret: getenv("SSH_HOST_KEY_SECRET"),
		HTTPPort:      getenv("PORT"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Offline {
		return nil
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.Local && c.HostKey == "" {
		return fmt.Errorf("%w: -host-key is required in local mode", ErrInvalidConfig)
	}
	if !c.Local && c.HostKeySecret == "" {
		return fmt.Errorf("%w: SSH_HOST_KEY_SECRET must be set unless -local is given", ErrInvalidConfig)
	}
	return nil
}
