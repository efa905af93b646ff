package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"numrelay/internal/client"
	"numrelay/internal/infra/secrets"
)

const envURL = "NUMRELAY_URL"

// NewRootCmd creates the 'lookup' command: lookup [number].
func NewRootCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:           "lookup [number]",
		Short:         "Look up a 10-digit number through a running relay",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no number given")
				}
				raw = line
			}

			view := &client.TerminalView{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr(), Verbose: verbose}
			ctrl := client.NewController(baseURL, view, &http.Client{Timeout: timeout}, nil)
			_, err := ctrl.Submit(cmd.Context(), client.SanitizeInput(raw))
			return err
		},
	}

	defURL := os.Getenv(envURL)
	if defURL == "" {
		defURL = "http://localhost:8080"
	}
	rootCmd.Flags().StringVarP(&baseURL, "url", "u", defURL, "relay base URL (env "+envURL+")")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print progress to stderr")

	rootCmd.AddCommand(newStoreTokenCmd())
	return rootCmd
}

// newStoreTokenCmd saves the bot token in the OS keyring for
// relay.token_source=keyring.
func newStoreTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "store-token",
		Short: "Read a bot token from stdin and store it in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			tok := strings.TrimSpace(line)
			if tok == "" {
				if err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				return errors.New("empty token")
			}
			if err := secrets.StoreBotToken(tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored token in keyring %s/%s\n", secrets.KeyringService, secrets.KeyringAccount)
			return nil
		},
	}
}
