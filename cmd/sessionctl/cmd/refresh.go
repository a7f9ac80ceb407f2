package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return withApp(ctx, cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
			if _, err := a.manager.Refresh(ctx); err != nil {
				return err
			}
			return printState(cmd.OutOrStdout(), a.manager.CurrentState(), time.Now(), false)
		})
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
