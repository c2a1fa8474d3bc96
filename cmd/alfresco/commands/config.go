package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

func newConfigCommand(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings kept in <config-dir>/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand(env))
	cmd.AddCommand(newConfigSetCommand(env))

	return cmd
}

func newConfigShowCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration: flags, ALFRESCO_* environment variables, config file and defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := env.effectiveSettings()

			rows := make([]row, 0, len(values))
			for _, key := range sortedKeys(values) {
				rows = append(rows, row{Property: key, Value: values[key]})
			}

			return render(cmd.OutOrStdout(), env.output(), values, rows)
		},
	}
}

func newConfigSetCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Secrets such as oauth2_secret are read from the environment only.",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if err := env.saveSetting(key, value); err != nil {
				return err
			}

			dir, err := env.configDir()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", key, filepath.Join(dir, configFileName))

			return nil
		},
	}
}
