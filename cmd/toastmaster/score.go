package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/toastmaster/toastmaster/pkg/config"
	"github.com/toastmaster/toastmaster/pkg/game"
	"github.com/toastmaster/toastmaster/pkg/scoring"
	"github.com/toastmaster/toastmaster/pkg/stage"
	"github.com/toastmaster/toastmaster/pkg/surface"
)

type scoreOpts struct {
	cuts     int
	toast    int
	cells    int
	topping  string
	format   string
	critique bool
}

func newScoreCmd(configPath *string) *cobra.Command {
	var opts scoreOpts

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a round from raw stage inputs",
		Long: `Runs a round through the phase machine without playing it: the number of
cuts, the toast level at which the toast was popped and the number of
buttered cells are turned into stage results and judged.`,
		Example: `  toastmaster score --cuts 10 --toast 50 --cells 25
  toastmaster score --cuts 8 --toast 85 --cells 12 --format json
  toastmaster score --cuts 10 --toast 48 --cells 20 --topping Honey --critique`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.cuts, "cuts", 0, "Number of slices cut")
	f.IntVar(&opts.toast, "toast", 0, "Toast level when popped (0-100)")
	f.IntVar(&opts.cells, "cells", 0, "Number of buttered grid cells")
	f.StringVar(&opts.topping, "topping", "", "Topping name (adds the topping stage)")
	f.StringVar(&opts.format, "format", "text", "Output format: text, json or markdown")
	f.BoolVar(&opts.critique, "critique", false, "Ask the critic for a comment")
	return cmd
}

func runScore(ctx context.Context, out io.Writer, cfg *config.Config, opts scoreOpts) error {
	renderer, err := surface.ForFormat(opts.format)
	if err != nil {
		return err
	}
	st := cfg.StageSettings()
	if opts.cuts < 0 {
		return fmt.Errorf("--cuts must not be negative")
	}
	if opts.toast < 0 || opts.toast > stage.MaxToastLevel {
		return fmt.Errorf("--toast must be within 0-%d", stage.MaxToastLevel)
	}
	total := st.GridSize * st.GridSize
	if opts.cells < 0 || opts.cells > total {
		return fmt.Errorf("--cells must be within 0-%d", total)
	}

	engine, err := cfg.Engine()
	if err != nil {
		return err
	}
	var reviewer game.Reviewer
	if opts.critique {
		critic, err := newCritic(ctx, cfg, log.New(os.Stderr, "[critique] ", log.LstdFlags))
		if err != nil {
			return err
		}
		reviewer = critic
	}
	asm := game.NewAssembler(engine, reviewer)
	m := game.NewMachine(
		game.WithAssembler(asm),
		game.WithToppingStageIf(opts.topping != ""),
	)

	cutter := stage.NewCutter(st)
	cutter.CutN(opts.cuts)
	results := []stage.Result{
		cutter.Finish(),
		{Kind: stage.KindToast, Value: opts.toast},
		{Kind: stage.KindButter, Value: stage.CoverageOf(opts.cells, total)},
	}
	if opts.topping != "" {
		res, err := stage.NewToppingStation(nil).Custom(opts.topping)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if err := m.Begin(); err != nil {
		return err
	}
	for _, r := range results {
		if err := m.Complete(r); err != nil {
			return fmt.Errorf("recording %s: %w", r, err)
		}
	}
	v, err := m.Verdict()
	if err != nil {
		return err
	}

	if enriched, ok := <-asm.Enrich(ctx, m); ok {
		v = enriched
	}

	return renderVerdict(out, renderer, &v)
}

func renderVerdict(out io.Writer, r surface.Renderer, v *scoring.Verdict) error {
	if err := r.Render(out, v); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}
