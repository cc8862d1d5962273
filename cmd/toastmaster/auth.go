package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toastmaster/toastmaster/internal/secrets"
	"github.com/toastmaster/toastmaster/pkg/config"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the critic's API key",
	}

	var provider string
	cmd.PersistentFlags().StringVar(&provider, "provider", config.ProviderGemini, "Provider the key belongs to")

	setKey := &cobra.Command{
		Use:   "set-key [key]",
		Short: "Store the API key in the OS keychain (reads stdin when no key is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading key: %w", err)
				}
				key = line
			}
			if err := keyStore().SetAPIKey(provider, strings.TrimSpace(key)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s API key.\n", provider)
			return nil
		},
	}

	clearKey := &cobra.Command{
		Use:   "clear-key",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keyStore().DeleteAPIKey(provider); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s API key.\n", provider)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := keyStore().GetAPIKey(provider)
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "%s: key stored\n", provider)
			case errors.Is(err, secrets.ErrNotFound):
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no key stored\n", provider)
			default:
				return err
			}
			return nil
		},
	}

	cmd.AddCommand(setKey, clearKey, status)
	return cmd
}
