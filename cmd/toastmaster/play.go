package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/toastmaster/toastmaster/internal/tui"
	"github.com/toastmaster/toastmaster/pkg/config"
	"github.com/toastmaster/toastmaster/pkg/game"
)

func newPlayCmd(configPath *string) *cobra.Command {
	var (
		noTopping bool
		logFile   string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a round in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			engine, err := cfg.Engine()
			if err != nil {
				return err
			}

			// The screen belongs to the game; collaborator logs go to a file.
			logOut, closeLog, err := openLog(logFile)
			if err != nil {
				return err
			}
			defer closeLog()
			logger := log.New(logOut, "[critique] ", log.LstdFlags)

			critic, err := newCritic(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Config{
				Stages:       cfg.StageSettings(),
				Assembler:    game.NewAssembler(engine, critic),
				Suggester:    critic,
				ToppingStage: cfg.Stages.Topping && !noTopping,
			})
		},
	}

	cmd.Flags().BoolVar(&noTopping, "no-topping", false, "Skip the topping stage")
	cmd.Flags().StringVar(&logFile, "log-file", filepath.Join(config.CacheDir(), "play.log"), "Where collaborator logs are written (\"-\" discards them)")
	return cmd
}

func openLog(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return io.Discard, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
