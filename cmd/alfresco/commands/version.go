package commands

import (
	"github.com/spf13/cobra"
)

func newVersionCommand(env *environment, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the alfresco CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.OutOrStdout(), env.output(), info, []row{
				{Property: "Version", Value: info.Version},
				{Property: "Commit", Value: info.Commit},
				{Property: "Built", Value: info.Built},
			})
		},
	}
}
