package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/gitlab-client/cmd/gitlab-api/commands"
	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//nolint:gochecknoglobals // set by -ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

//nolint:gochecknoglobals // cobra root command
var rootCmd = &cobra.Command{
	Use:   "gitlab-api",
	Short: "GitLab REST API v4 CLI",
	Long: `A command-line interface for the GitLab REST API v4.

Any endpoint can be read with "get" and "list"; "list" follows offset or
keyset pagination to the end. The "hooks" commands decode webhook and system
hook payloads and run a receiver that can fan them out to NATS.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() { //nolint:gochecknoinits // cobra wiring
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.gitlab-api/config.yml)")
	flags.StringP("url", "u", "", "GitLab instance URL")
	flags.StringP("token", "t", "", "private, project or group access token")
	flags.String("oauth-token", "", "OAuth2 access token")
	flags.String("sudo", "", "perform requests as this user (admin tokens only)")
	flags.StringP("output", "o", "", "output format (table, json, yaml); defaults to table on a terminal and json otherwise")
	flags.String("jq", "", "jq expression applied to JSON output")
	flags.BoolP("verbose", "v", false, "log HTTP requests to stderr")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("url", flags.Lookup("url"))
	_ = viper.BindPFlag("token", flags.Lookup("token"))
	_ = viper.BindPFlag("oauth_token", flags.Lookup("oauth-token"))
	_ = viper.BindPFlag("sudo", flags.Lookup("sudo"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("jq", flags.Lookup("jq"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewWhoamiCommand())
	rootCmd.AddCommand(commands.NewProjectsCommand())
	rootCmd.AddCommand(commands.NewHooksCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, commands.ConfigDirName))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
