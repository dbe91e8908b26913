package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/w3fund/internal/config"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/spf13/cobra"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configJSON {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Println(ui.KeyValueBlock("Current Configuration", cfg.Pairs()))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: fmt.Sprintf(`Set and persist one configuration value.

Keys: %v

Examples:
  w3fund config set platform_address 0x...
  w3fund config set network_mode mainnet
  w3fund config set log_level debug`, config.Keys()),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// --testnet/--mainnet must not leak into the saved file.
		saved, err := config.Load(cfg.Dir())
		if err != nil {
			return err
		}
		if err := saved.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := saved.Save(); err != nil {
			return err
		}
		v, _ := saved.Get(args[0])
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", args[0], v)))
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "print the raw config file")
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd)
}
