package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

// ticketOutput holds the tickets of a session.
type ticketOutput struct {
	TicketEcm string `json:"ticketEcm" yaml:"ticket_ecm"`
	TicketBpm string `json:"ticketBpm" yaml:"ticket_bpm"`
}

func newTicketCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Manage authentication tickets",
		Long:  "Show, install and validate content repository and process engine tickets",
	}

	cmd.AddCommand(newTicketShowCommand(env))
	cmd.AddCommand(newTicketSetCommand(env))
	cmd.AddCommand(newTicketValidateCommand(env))

	return cmd
}

func newTicketShowCommand(env *environment) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			tickets := session.GetTicket()
			output := ticketOutput{TicketEcm: tickets[0], TicketBpm: tickets[1]}

			if !reveal {
				output.TicketEcm = mask(output.TicketEcm)
				output.TicketBpm = mask(output.TicketBpm)
			}

			return render(cmd.OutOrStdout(), env.output(), output, []row{
				{Property: "ECM ticket", Value: orNotAvailable(output.TicketEcm)},
				{Property: "BPM ticket", Value: orNotAvailable(output.TicketBpm)},
			})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the tickets unmasked")

	return cmd
}

func newTicketSetCommand(env *environment) *cobra.Command {
	var (
		ticketEcm string
		ticketBpm string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Install tickets obtained elsewhere",
		Long: `Install tickets without contacting the server. Use 'alfresco ticket validate'
to check the content repository ticket afterwards.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ticketEcm == "" && ticketBpm == "" {
				return constants.ErrTicketRequired
			}

			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			session.SetTicket(ticketEcm, ticketBpm)

			fmt.Fprintln(cmd.OutOrStdout(), "Tickets installed")

			return nil
		},
	}

	cmd.Flags().StringVar(&ticketEcm, "ecm", "", "content repository ticket")
	cmd.Flags().StringVar(&ticketBpm, "bpm", "", "process engine ticket")

	return cmd
}

func newTicketValidateCommand(env *environment) *cobra.Command {
	var (
		ticketEcm string
		ticketBpm string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a content repository ticket",
		Long: `Validate the content repository ticket against the server and keep it on
success. Without flags the stored tickets are validated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			if ticketEcm == "" && ticketBpm == "" {
				stored := session.GetTicket()
				ticketEcm, ticketBpm = stored[0], stored[1]
			}

			if ticketEcm == "" {
				return constants.ErrTicketRequired
			}

			ticket, err := session.LoginTicket(cmd.Context(), ticketEcm, ticketBpm)
			if err != nil {
				return fmt.Errorf("validating ticket: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Ticket %s is valid\n", mask(ticket))

			return nil
		},
	}

	cmd.Flags().StringVar(&ticketEcm, "ecm", "", "content repository ticket")
	cmd.Flags().StringVar(&ticketBpm, "bpm", "", "process engine ticket")

	return cmd
}
