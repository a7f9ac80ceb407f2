package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account",
	Long: `Register a new account. The current session is left untouched; sign in
after confirming the email address.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		creds, err := readCredentials(credEmail, credPassword, cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return withApp(ctx, cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
			res, err := a.manager.SignUp(ctx, creds)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.PendingConfirmation {
				_, err = fmt.Fprintf(out, "account created, check %s for a confirmation link\n", creds.Email)
				return err
			}
			_, err = fmt.Fprintln(out, "account created, you can sign in now")
			return err
		})
	},
}

func init() {
	signupCmd.Flags().StringVar(&credEmail, "email", "", "account email")
	signupCmd.Flags().StringVar(&credPassword, "password", "", "account password (default: read from stdin)")
	_ = signupCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(signupCmd)
}
