package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported chains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 3},
			{Title: "Name", Width: 12},
			{Title: "Display", Width: 12},
			{Title: "Chain ID", Width: 10},
			{Title: "Testnet", Width: 18},
			{Title: "USDC (" + cfg.NetworkMode + ")", Width: 44},
		})

		for i, c := range reg.All() {
			name := ui.ChainName(c.Name)
			if c.Name == cfg.DefaultNetwork {
				name += ui.StyleSuccess.Render(" ✓")
			}
			usdc := c.USDC(cfg.NetworkMode)
			if usdc == "" {
				usdc = "-"
			}
			t.AddRow(ui.Row{
				fmt.Sprintf("%d", i+1),
				name,
				c.DisplayName,
				fmt.Sprintf("%d", c.ID(cfg.NetworkMode)),
				fmt.Sprintf("%s (%d)", c.TestnetName, c.TestnetChainID),
				ui.Addr(usdc),
			})
		}

		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d chains total", len(reg.All()))))
		return nil
	},
}

var networkUseCmd = &cobra.Command{
	Use:   "use <chain>",
	Short: "Set the default network",
	Long: `Set the default chain and persist it to config.

When combined with --testnet or --mainnet the network mode is also persisted.

Examples:
  w3fund network use base              # set default chain, keep current mode
  w3fund network use base --testnet    # set default chain and persist testnet mode`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown chain %q: run `w3fund network list` to see all chains", args[0])
		}
		cfg.DefaultNetwork = c.Name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %s (%s)", ui.ChainName(c.Name), cfg.NetworkMode)))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkUseCmd)
}
