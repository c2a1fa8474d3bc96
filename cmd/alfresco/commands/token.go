package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

func newTokenCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the OAuth2 access token",
	}

	cmd.AddCommand(newTokenRefreshCommand(env))
	cmd.AddCommand(newTokenShowCommand(env))

	return cmd
}

func newTokenRefreshCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token",
		Long:  "Exchange the stored refresh token for a new access token. Not available with the implicit grant.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			token, err := session.RefreshToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("refreshing token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Access token refreshed: %s\n", mask(token))

			return nil
		},
	}
}

func newTokenShowCommand(env *environment) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			token := ""
			cfg := session.Config()
			if cfg.IsOAuth() {
				token = session.GetTicketAuth()
			}

			if token == "" {
				return constants.ErrNotLoggedIn
			}

			if !reveal {
				token = mask(token)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the token unmasked")

	return cmd
}
