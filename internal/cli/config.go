package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/svetzal/hone/internal/honeconfig"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View or modify the user configuration",
	Long: `View or modify Hone's user configuration, stored as JSON under
<user-config-home>/hone/config.json.

Examples:
  hone config                  Show the effective configuration
  hone config models.assess    Get a specific value
  hone config mode github      Set a value`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := honeconfig.ConfigDir()
		if err != nil {
			return err
		}
		configPath := filepath.Join(dir, "config.json")

		switch len(args) {
		case 0:
			return showConfig(configPath)
		case 1:
			return getConfigValue(configPath, args[0])
		default:
			return setConfigValue(dir, configPath, args[0], args[1])
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := honeconfig.DefaultConfig()
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	fmt.Println(string(content))
	return nil
}

func getConfigValue(configPath, key string) error {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	value := v.Get(key)
	if value == nil {
		return fmt.Errorf("key not found: %s", key)
	}
	fmt.Println(value)
	return nil
}

func setConfigValue(dir, configPath, key, value string) error {
	v := viper.New()
	v.SetConfigType("json")
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if strings.Contains(value, ",") {
		v.Set(key, strings.Split(value, ","))
	} else {
		v.Set(key, value)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
