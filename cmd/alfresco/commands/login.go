package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

// loginOutput is the machine readable result of login.
type loginOutput struct {
	Mode        string `json:"mode"                  yaml:"mode"`
	Username    string `json:"username"              yaml:"username"`
	TicketEcm   string `json:"ticketEcm,omitempty"   yaml:"ticket_ecm,omitempty"`
	TicketBpm   string `json:"ticketBpm,omitempty"   yaml:"ticket_bpm,omitempty"`
	AccessToken string `json:"accessToken,omitempty" yaml:"access_token,omitempty"`
}

func newLoginCommand(env *environment) *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to Alfresco",
		Long: `Authenticate against the configured backend(s) and keep the resulting
tickets or tokens in the credential store.

With provider ALL both the content repository and the process engine must
accept the credentials.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			if username == "" {
				username = env.viper.GetString(KeyUsername)
			}

			if username == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Username: ")

				line, _ := reader.ReadString('\n')
				username = strings.TrimSpace(line)
			}

			if username == "" {
				return constants.ErrUsernameRequired
			}

			if password == "" {
				read, err := readPassword(cmd.OutOrStdout(), reader)
				if err != nil {
					return err
				}

				password = read
			}

			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			result, err := session.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			output := loginOutput{
				Mode:        modeName(session),
				Username:    strings.TrimSpace(username),
				TicketEcm:   mask(result.TicketEcm),
				TicketBpm:   mask(result.TicketBpm),
				AccessToken: mask(result.AccessToken),
			}

			if env.output() != formatTable {
				return render(cmd.OutOrStdout(), env.output(), output, nil)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", output.Username, output.Mode)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

func newLogoutCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of Alfresco",
		Long:  "End the session on the server and remove the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			if !session.IsLoggedIn() {
				return constants.ErrNotLoggedIn
			}

			if err := session.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and reads a plain line
// otherwise.
func readPassword(out io.Writer, reader *bufio.Reader) (string, error) {
	fmt.Fprint(out, "Password: ")

	fd := int(os.Stdin.Fd()) //nolint:gosec // File descriptors fit in int
	if term.IsTerminal(fd) {
		bytePassword, err := term.ReadPassword(fd)

		fmt.Fprintln(out)

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(bytePassword), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
