package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
)

func newSuggestCmd(configPath *string) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "suggest <craving>",
		Short: "Ask the chef for three topping ideas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logOut := io.Discard
			if verbose {
				logOut = cmd.ErrOrStderr()
			}
			critic, err := newCritic(cmd.Context(), cfg, log.New(logOut, "[critique] ", log.LstdFlags))
			if err != nil {
				return err
			}

			names, fallback := critic.Suggest(cmd.Context(), strings.Join(args, " "))
			out := cmd.OutOrStdout()
			for i, n := range names {
				fmt.Fprintf(out, "%d. %s\n", i+1, n)
			}
			if fallback {
				fmt.Fprintln(cmd.ErrOrStderr(), "(the chef was unavailable; these are the house favorites)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show collaborator errors")
	return cmd
}
