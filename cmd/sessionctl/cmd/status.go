package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return withApp(ctx, cmd.ErrOrStderr(), func(_ context.Context, a *app) error {
			return printState(cmd.OutOrStdout(), a.manager.CurrentState(), time.Now(), statusJSON)
		})
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the state as JSON")
	rootCmd.AddCommand(statusCmd)
}
