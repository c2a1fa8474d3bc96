package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

func newImplicitCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "implicit",
		Short: "Log in with the OAuth2 implicit grant",
		Long: `Run the implicit grant in two steps: 'begin' prints the authorization URL to
open in a browser, 'complete' takes the URL the browser was redirected to.`,
	}

	cmd.AddCommand(newImplicitBeginCommand(env))
	cmd.AddCommand(newImplicitCompleteCommand(env))

	return cmd
}

func newImplicitBeginCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "begin",
		Short: "Print the authorization URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.viper.GetString(KeyOAuth2Host) == "" {
				return constants.ErrNoOAuth2Host
			}

			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			pending, err := session.ImplicitLogin(cmd.Context())
			if err != nil {
				return fmt.Errorf("starting implicit login: %w", err)
			}

			return render(cmd.OutOrStdout(), env.output(), pending, []row{
				{Property: "Authorization URL", Value: pending.AuthorizationURL},
				{Property: "State", Value: pending.State},
			})
		},
	}
}

func newImplicitCompleteCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "complete CALLBACK_URL",
		Short: "Finish the implicit grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callback := strings.TrimSpace(args[0])
			if callback == "" {
				return constants.ErrCallbackRequired
			}

			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			token, err := session.CompleteImplicitLogin(cmd.Context(), callback)
			if err != nil {
				return fmt.Errorf("completing implicit login: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in, access token %s\n", mask(token))

			return nil
		},
	}
}
