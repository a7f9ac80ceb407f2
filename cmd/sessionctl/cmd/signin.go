package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/sessionkit/pkg/identity"
)

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with email and password",
	Long: `Sign in with email and password. Any existing session is ended first.
Without --password the password is read from the first line of stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		creds, err := readCredentials(credEmail, credPassword, cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return withApp(ctx, cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
			if _, err := a.manager.SignIn(ctx, creds); err != nil {
				if errors.Is(err, identity.ErrEmailNotConfirmed) {
					return fmt.Errorf("%w (run: sessionctl resend --email %s)", err, creds.Email)
				}
				return err
			}
			return printState(cmd.OutOrStdout(), a.manager.CurrentState(), time.Now(), false)
		})
	},
}

func init() {
	signinCmd.Flags().StringVar(&credEmail, "email", "", "account email")
	signinCmd.Flags().StringVar(&credPassword, "password", "", "account password (default: read from stdin)")
	_ = signinCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(signinCmd)
}
