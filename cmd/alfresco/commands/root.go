// Package commands implements the alfresco command line interface.
package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

const (
	envPrefix      = "ALFRESCO"
	configDirName  = ".alfresco"
	configFileName = "config.yml"
)

// BuildInfo identifies the binary.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// environment carries the settings of one command tree.
type environment struct {
	viper *viper.Viper
}

// NewRootCommand builds the command tree. Every tree owns its own settings,
// so several trees can run side by side.
func NewRootCommand(info BuildInfo) *cobra.Command {
	env := &environment{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "alfresco",
		Short: "Alfresco session CLI",
		Long: `A command-line interface for authenticating against Alfresco Content
Services and Alfresco Process Services.

Tickets and tokens are kept in a credential store (by default
~/.alfresco/credentials.yml) so later commands reuse the session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.initConfig()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config-dir", "", "configuration directory (default is $HOME/.alfresco)")
	flags.String("env-file", "", "dotenv file loaded before reading the environment (default .env when present)")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("host-ecm", "", "content repository URL")
	flags.String("host-bpm", "", "process engine URL")
	flags.String("provider", "", "backend selection (ECM, BPM, ALL)")
	flags.String("auth-type", "", "authentication type (BASIC, OAUTH)")

	_ = env.viper.BindPFlag("config_dir", flags.Lookup("config-dir"))
	_ = env.viper.BindPFlag("env_file", flags.Lookup("env-file"))
	_ = env.viper.BindPFlag("output", flags.Lookup("output"))
	_ = env.viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = env.viper.BindPFlag(KeyHostEcm, flags.Lookup("host-ecm"))
	_ = env.viper.BindPFlag(KeyHostBpm, flags.Lookup("host-bpm"))
	_ = env.viper.BindPFlag(KeyProvider, flags.Lookup("provider"))
	_ = env.viper.BindPFlag(KeyAuthType, flags.Lookup("auth-type"))

	cmd.AddCommand(newVersionCommand(env, info))
	cmd.AddCommand(newLoginCommand(env))
	cmd.AddCommand(newLogoutCommand(env))
	cmd.AddCommand(newStatusCommand(env))
	cmd.AddCommand(newTokenCommand(env))
	cmd.AddCommand(newTicketCommand(env))
	cmd.AddCommand(newImplicitCommand(env))
	cmd.AddCommand(newConfigCommand(env))

	return cmd
}

func (e *environment) initConfig() error {
	e.viper.SetEnvPrefix(envPrefix)
	e.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.viper.AutomaticEnv()

	if err := e.loadDotenv(); err != nil {
		return err
	}

	dir, err := e.configDir()
	if err != nil {
		return err
	}

	e.viper.SetConfigFile(filepath.Join(dir, configFileName))
	e.viper.SetConfigType("yaml")

	for _, setting := range settings {
		e.viper.SetDefault(setting.Key, setting.Default)
	}

	err = e.viper.ReadInConfig()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading configuration: %w", err)
	}

	if e.verbose() && e.viper.ConfigFileUsed() != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", e.viper.ConfigFileUsed())
	}

	return nil
}

// loadDotenv loads the env file named by --env-file, or ./.env when present.
// Variables already set in the process environment win.
func (e *environment) loadDotenv() error {
	path := e.viper.GetString("env_file")
	if path == "" {
		if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
			return nil
		}

		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

func (e *environment) configDir() (string, error) {
	if dir := e.viper.GetString("config_dir"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

func (e *environment) ensureConfigDir() (string, error) {
	dir, err := e.configDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, constants.ConfigDirPerm); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return dir, nil
}

func (e *environment) output() string {
	return e.viper.GetString("output")
}

func (e *environment) verbose() bool {
	return e.viper.GetBool("verbose")
}
