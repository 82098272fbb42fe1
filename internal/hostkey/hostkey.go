// Package hostkey provides the SSH server's host key, either from disk or
// from Secret Manager.
package hostkey

import (
	"context"
	"errors"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/charmbracelet/keygen"
	"github.com/charmbracelet/log"
	"github.com/googleapis/gax-go/v2"

	"github.com/imjasonh/chessmatch/internal/config"
)

// ErrEmptyKey is returned when a source yields no key material.
var ErrEmptyKey = errors.New("host key is empty")

// SecretAccessor is the part of the Secret Manager client used here.
type SecretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// Local loads the Ed25519 key at path, generating and writing it first if
// it does not exist. The result is PEM encoded.
func Local(path string, logger *log.Logger) ([]byte, error) {
	kp, err := keygen.New(path, keygen.WithKeyType(keygen.Ed25519))
	if err != nil {
		return nil, fmt.Errorf("failed to load host key %s: %w", path, err)
	}
	if !kp.KeyPairExists() {
		if err := kp.WriteKeys(); err != nil {
			return nil, fmt.Errorf("failed to save host key: %w", err)
		}
		logger.Info("generated new SSH host key", "path", path)
	}
	pem := kp.RawPrivateKey()
	if len(pem) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyKey, path)
	}
	return pem, nil
}

// Cloud reads the secret version name, e.g.
// projects/p/secrets/ssh-host-key/versions/latest.
func Cloud(ctx context.Context, client SecretAccessor, name string) ([]byte, error) {
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access secret version: %w", err)
	}
	if len(resp.GetPayload().GetData()) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyKey, name)
	}
	return resp.GetPayload().GetData(), nil
}

// Load picks the source cfg asks for.
func Load(ctx context.Context, cfg config.Config, logger *log.Logger) ([]byte, error) {
	if cfg.Local {
		logger.Info("running in local mode", "host_key", cfg.HostKey)
		return Local(cfg.HostKey, logger)
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	defer client.Close()
	logger.Info("running in cloud mode with Secret Manager")
	return Cloud(ctx, client, cfg.HostKeySecret)
}
