package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resendEmail string

var resendCmd = &cobra.Command{
	Use:   "resend",
	Short: "Resend the sign-up confirmation email",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return withApp(ctx, cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
			if err := a.manager.ResendVerification(ctx, resendEmail); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "confirmation email sent to %s\n", resendEmail)
			return err
		})
	},
}

func init() {
	resendCmd.Flags().StringVar(&resendEmail, "email", "", "account email")
	_ = resendCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(resendCmd)
}
