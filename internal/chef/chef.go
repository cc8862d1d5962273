// Package chef assembles the guarded critique collaborator from
// configuration: the provider, its timeout and the optional exchange
// archive.
package chef

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/toastmaster/toastmaster/internal/archive"
	"github.com/toastmaster/toastmaster/pkg/config"
	"github.com/toastmaster/toastmaster/pkg/critique"
)

// Options carries what configuration files do not hold.
type Options struct {
	// APIKey for the gemini provider. Without one the local provider is
	// used instead.
	APIKey string
	// S3Endpoint points the s3 archive at a compatible store.
	S3Endpoint string
	Logger     *log.Logger
}

// New builds the guard described by cfg.Critique and cfg.Archive.
func New(ctx context.Context, cfg *config.Config, opts Options) (*critique.Guard, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "[critique] ", log.LstdFlags)
	}
	engine, err := cfg.Engine()
	if err != nil {
		return nil, err
	}

	var provider critique.Provider
	switch cfg.Critique.Provider {
	case config.ProviderGemini:
		if opts.APIKey == "" {
			opts.Logger.Printf("no API key for %s, using the local critic", config.ProviderGemini)
			provider = critique.NewLocal(engine)
			break
		}
		provider = critique.NewClient(critique.Config{
			APIKey:     opts.APIKey,
			BaseURL:    cfg.Critique.BaseURL,
			Model:      cfg.Critique.Model,
			MaxRetries: cfg.Critique.MaxRetries,
			Engine:     engine,
		})
	case config.ProviderLocal:
		provider = critique.NewLocal(engine)
	case config.ProviderNone:
		// The guard answers every call with fallbacks.
	default:
		return nil, fmt.Errorf("unknown critique provider %q", cfg.Critique.Provider)
	}

	gc := critique.GuardConfig{Timeout: cfg.Critique.Timeout, Logger: opts.Logger}
	store, err := archive.Open(ctx, archiveOptions(cfg.Archive, opts.S3Endpoint))
	if err != nil {
		return nil, err
	}
	if store != nil {
		gc.Recorder = archive.NewRecorder(store)
	}
	return critique.NewGuard(provider, gc), nil
}

func archiveOptions(a config.ArchiveConfig, endpoint string) archive.Options {
	dir := a.Dir
	if a.Backend == archive.BackendLocal && dir == "" {
		dir = config.ArchiveDir()
	}
	return archive.Options{
		Backend:  a.Backend,
		Dir:      dir,
		Bucket:   a.Bucket,
		Prefix:   a.Prefix,
		Region:   a.Region,
		Endpoint: endpoint,
	}
}
