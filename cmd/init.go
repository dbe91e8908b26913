package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Pick the default network, network mode and platform contract address.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		chains := chain.NewRegistry().All()
		names := make([]string, len(chains))
		for i, c := range chains {
			names[i] = c.Name
		}

		result, err := ui.RunWizard(names)
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		for _, kv := range [][2]string{
			{"default_network", result.DefaultNetwork},
			{"network_mode", result.NetworkMode},
			{"platform_address", result.PlatformAddress},
		} {
			if kv[1] == "" {
				continue
			}
			if err := cfg.Set(kv[0], kv[1]); err != nil {
				return err
			}
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(ui.Success("w3fund configured."))
		if cfg.PlatformAddress == "" {
			fmt.Println(ui.Hint("Set the platform later with: w3fund config set platform_address 0x..."))
		}
		fmt.Println(ui.Hint("Add a wallet with: w3fund wallet add <name> --key <private-key>"))
		return nil
	},
}
