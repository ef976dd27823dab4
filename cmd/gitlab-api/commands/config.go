package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/fivetwenty-io/gitlab-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigDirName is the directory under $HOME holding config.yml.
const ConfigDirName = ".gitlab-api"

// Config represents the CLI configuration.
type Config struct {
	URL        string `json:"url"                   yaml:"url"`
	Token      string `json:"token,omitempty"       yaml:"token,omitempty"`
	OAuthToken string `json:"oauth_token,omitempty" yaml:"oauth_token,omitempty"`
	Sudo       string `json:"sudo,omitempty"        yaml:"sudo,omitempty"`
	Output     string `json:"output,omitempty"      yaml:"output,omitempty"`

	HookSecret string `json:"hook_secret,omitempty" yaml:"hook_secret,omitempty"`
	NATSURL    string `json:"nats_url,omitempty"    yaml:"nats_url,omitempty"`
}

// settableKeys are the keys "config set" accepts.
var settableKeys = map[string]func(*Config, string){ //nolint:gochecknoglobals // read-only table
	"url":         func(c *Config, v string) { c.URL = v },
	"token":       func(c *Config, v string) { c.Token = v },
	"oauth_token": func(c *Config, v string) { c.OAuthToken = v },
	"sudo":        func(c *Config, v string) { c.Sudo = v },
	"output":      func(c *Config, v string) { c.Output = v },
	"hook_secret": func(c *Config, v string) { c.HookSecret = v },
	"nats_url":    func(c *Config, v string) { c.NATSURL = v },
}

func loadConfig() *Config {
	return &Config{
		URL:        viper.GetString("url"),
		Token:      viper.GetString("token"),
		OAuthToken: viper.GetString("oauth_token"),
		Sudo:       viper.GetString("sudo"),
		Output:     viper.GetString("output"),
		HookSecret: viper.GetString("hook_secret"),
		NATSURL:    viper.GetString("nats_url"),
	}
}

// masked returns a copy safe to print.
func (c *Config) masked() *Config {
	out := *c

	if out.Token != "" {
		out.Token = constants.MaskedSecret
	}

	if out.OAuthToken != "" {
		out.OAuthToken = constants.MaskedSecret
	}

	if out.HookSecret != "" {
		out.HookSecret = constants.MaskedSecret
	}

	return &out
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ConfigDirName, "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in ~/.gitlab-api/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration from flags, environment and config file. Secrets are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig().masked()
			out := cmd.OutOrStdout()

			format, err := outputFormat(out)
			if err != nil {
				return err
			}

			switch format {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case constants.FormatYAML:
				return yaml.NewEncoder(out).Encode(config)
			default:
				return displayConfigTable(out, config)
			}
		},
	}
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append("URL", config.URL)
	_ = table.Append("Token", config.Token)
	_ = table.Append("OAuth Token", config.OAuthToken)
	_ = table.Append("Sudo", config.Sudo)
	_ = table.Append("Output", config.Output)
	_ = table.Append("Hook Secret", config.HookSecret)
	_ = table.Append("NATS URL", config.NATSURL)

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newConfigSetCommand() *cobra.Command {
	keys := make([]string, 0, len(settableKeys))
	for key := range settableKeys {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Set a configuration value",
		Long:      fmt.Sprintf("Persist a configuration value. Valid keys: %v", keys),
		Args:      cobra.ExactArgs(2), //nolint:mnd // key and value
		ValidArgs: keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			setter, ok := settableKeys[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			if key == "output" && !validFormat(value) {
				return fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, value)
			}

			config := loadConfig()
			setter(config, value)

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			viper.Set(key, value)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}
