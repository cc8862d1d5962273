package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/toastmaster/toastmaster/internal/chef"
	"github.com/toastmaster/toastmaster/internal/secrets"
	"github.com/toastmaster/toastmaster/pkg/config"
	"github.com/toastmaster/toastmaster/pkg/critique"
)

// loadConfig reads path, $TOASTMASTER_CONFIG or the nearest
// .toastmaster/config.yaml, in that order. Defaults apply when none exists.
func loadConfig(path string) (*config.Config, error) {
	found := ""
	if cwd, err := os.Getwd(); err == nil {
		found = config.FindConfigFile(cwd)
	}
	path = firstNonEmpty(path, os.Getenv("TOASTMASTER_CONFIG"), found)
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func keyStore() *secrets.KeyringStore {
	return secrets.NewKeyringStore(secrets.DefaultService, config.SecretsFile())
}

// newCritic builds the guarded collaborator. The API key comes from the
// environment first and the keychain second.
func newCritic(ctx context.Context, cfg *config.Config, logger *log.Logger) (*critique.Guard, error) {
	key := keyStore().ResolveAPIKey(cfg.Critique.Provider, cfg.APIKeyFromEnv())
	g, err := chef.New(ctx, cfg, chef.Options{
		APIKey:     key,
		S3Endpoint: os.Getenv("S3_ENDPOINT"),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up critic: %w", err)
	}
	return g, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
