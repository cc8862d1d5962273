// Package main provides the toastmaster CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "toastmaster",
		Short: "Make toast, get judged",
		Long: `Toastmaster is a cooking mini-game: slice the bread, toast it, butter it,
pick a topping and receive a 1-10 verdict from the Toastmaster.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: search .toastmaster/config.yaml)")

	rootCmd.AddCommand(
		newPlayCmd(&configPath),
		newScoreCmd(&configPath),
		newSuggestCmd(&configPath),
		newAuthCmd(),
	)
	return rootCmd
}
