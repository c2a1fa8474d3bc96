package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

// statusOutput describes the stored session.
type statusOutput struct {
	Mode          string `json:"mode"                  yaml:"mode"`
	HostEcm       string `json:"hostEcm"               yaml:"host_ecm"`
	HostBpm       string `json:"hostBpm"               yaml:"host_bpm"`
	LoggedIn      bool   `json:"loggedIn"              yaml:"logged_in"`
	EcmLoggedIn   bool   `json:"ecmLoggedIn"           yaml:"ecm_logged_in"`
	BpmLoggedIn   bool   `json:"bpmLoggedIn"           yaml:"bpm_logged_in"`
	EcmUsername   string `json:"ecmUsername,omitempty" yaml:"ecm_username,omitempty"`
	BpmUsername   string `json:"bpmUsername,omitempty" yaml:"bpm_username,omitempty"`
	TicketEcm     string `json:"ticketEcm,omitempty"   yaml:"ticket_ecm,omitempty"`
	TicketBpm     string `json:"ticketBpm,omitempty"   yaml:"ticket_bpm,omitempty"`
	AccessToken   string `json:"accessToken,omitempty" yaml:"access_token,omitempty"`
	DomainPrefix  string `json:"domainPrefix,omitempty" yaml:"domain_prefix,omitempty"`
	CredentialsAt string `json:"storage"               yaml:"storage"`
}

func newStatusCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the session status",
		Long:    "Display the configured mode and whether the stored credentials are still held",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := env.openSession()
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			config := session.Config()
			ctx := cmd.Context()

			status := statusOutput{
				Mode:          modeName(session),
				HostEcm:       config.HostEcm,
				HostBpm:       config.HostBpm,
				LoggedIn:      session.IsLoggedIn(),
				EcmLoggedIn:   session.IsEcmLoggedIn(),
				BpmLoggedIn:   session.IsBpmLoggedIn(),
				EcmUsername:   session.GetEcmUsername(ctx),
				BpmUsername:   session.GetBpmUsername(ctx),
				TicketEcm:     mask(session.GetTicketEcm()),
				TicketBpm:     mask(session.GetTicketBpm()),
				DomainPrefix:  config.DomainPrefix,
				CredentialsAt: env.viper.GetString(KeyStorage),
			}

			if config.IsOAuth() {
				status.AccessToken = mask(session.GetTicketAuth())
			}

			return render(cmd.OutOrStdout(), env.output(), status, statusRows(status))
		},
	}
}

func statusRows(status statusOutput) []row {
	rows := []row{
		{Property: "Mode", Value: status.Mode},
		{Property: "Content repository", Value: status.HostEcm},
		{Property: "Process engine", Value: status.HostBpm},
		{Property: "Logged in", Value: loggedInMark(status.LoggedIn)},
		{Property: "ECM logged in", Value: yesNo(status.EcmLoggedIn)},
		{Property: "BPM logged in", Value: yesNo(status.BpmLoggedIn)},
		{Property: "ECM username", Value: orNotAvailable(status.EcmUsername)},
		{Property: "BPM username", Value: orNotAvailable(status.BpmUsername)},
		{Property: "ECM ticket", Value: orNotAvailable(status.TicketEcm)},
		{Property: "BPM ticket", Value: orNotAvailable(status.TicketBpm)},
	}

	if status.AccessToken != "" {
		rows = append(rows, row{Property: "Access token", Value: status.AccessToken})
	}

	if status.DomainPrefix != "" {
		rows = append(rows, row{Property: "Domain prefix", Value: status.DomainPrefix})
	}

	return append(rows, row{Property: "Credential store", Value: status.CredentialsAt})
}

// modeName describes the session mode, for example "ticket/ALL".
func modeName(session *session) string {
	config := session.Config()

	kind := "ticket"
	if config.IsOAuth() {
		kind = "oauth2"
	}

	return kind + "/" + strings.ToUpper(string(config.Provider))
}

func loggedInMark(loggedIn bool) string {
	if loggedIn {
		return constants.CheckMarkSymbol
	}

	return "no"
}

func orNotAvailable(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
