package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return withApp(ctx, cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
			// The local session is cleared even when the server call fails.
			if err := a.manager.SignOut(ctx); err != nil {
				return fmt.Errorf("signed out locally: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(signoutCmd)
}
