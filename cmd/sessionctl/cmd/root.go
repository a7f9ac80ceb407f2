// Package cmd provides the CLI commands for sessionctl.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sessionkit/pkg/config"
	"github.com/dmitrymomot/sessionkit/pkg/lifecycle"
)

// Exit codes returned by Execute.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUnreachable = 3
)

var (
	envFile  string
	logLevel string
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "sessionctl - authentication session manager",
	Long: `sessionctl signs in against a GoTrue-compatible auth server and keeps the
resulting session persisted locally.

Configuration is read from the environment (and an optional .env file):
  AUTH_URL, AUTH_ANON_KEY          auth server and its public key
  SESSION_STORAGE_DRIVER           memory, file, redis, sqlite or postgres
  SESSION_PERSIST                  false keeps the session in memory only
  METRICS_ADDR                     enables /metrics and /readyz for "watch"

Commands:
  status      Show the current session
  signin      Sign in with email and password
  signup      Register a new account
  signout     End the current session
  refresh     Exchange the refresh token for a new session
  resend      Resend the sign-up confirmation email
  watch       Keep the session alive and print every change`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if envFile == "" {
			return nil
		}
		return config.LoadEnv(envFile)
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, lifecycle.ErrConnectivity):
		return exitUnreachable
	default:
		return exitFailure
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load variables from this file before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "deadline for one-shot commands")
}
