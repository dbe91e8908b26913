package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"github.com/Mohsinsiddi/w3fund/internal/config"
	"github.com/Mohsinsiddi/w3fund/internal/rpc"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <chain> <url>",
	Short: "Add a custom RPC URL for a chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, url := args[0], args[1]
		if _, err := chain.NewRegistry().GetByName(chainName); err != nil {
			return fmt.Errorf("unknown chain %q", chainName)
		}
		if err := cfg.AddRPC(chainName, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(chainName), url)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <chain> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, url := args[0], args[1]
		if err := cfg.RemoveRPC(chainName, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", chainName, url)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [chain]",
	Short: "List built-in and custom RPCs for a chain",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chainArg(args)
		if err != nil {
			return err
		}

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", c.DisplayName)))
		fmt.Println(ui.StyleHeader.Render("Built-in RPCs:"))
		for _, r := range c.MainnetRPCs {
			fmt.Printf("  %s %s\n", ui.Meta("(mainnet)"), r)
		}
		for _, r := range c.TestnetRPCs {
			fmt.Printf("  %s %s\n", ui.Meta("(testnet)"), r)
		}

		if custom := cfg.GetRPCs(c.Name); len(custom) > 0 {
			fmt.Println(ui.StyleHeader.Render("Custom RPCs:"))
			for _, r := range custom {
				fmt.Printf("  %s\n", r)
			}
		}
		return nil
	},
}

var rpcBenchCmd = &cobra.Command{
	Use:     "bench [chain]",
	Aliases: []string{"benchmark"},
	Short:   "Benchmark the RPCs for a chain and show which one would be picked",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := chainArg(args)
		if err != nil {
			return err
		}

		rpcs := append(append([]string(nil), cfg.GetRPCs(c.Name)...), c.RPCs(cfg.NetworkMode)...)
		if len(rpcs) == 0 {
			return fmt.Errorf("no RPCs configured for %s (%s)", c.Name, cfg.NetworkMode)
		}

		fmt.Printf("%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs (%s)...", c.DisplayName, cfg.NetworkMode)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		results := rpc.Benchmark(ctx, rpcs)
		best, pickErr := rpc.NewPicker(rpc.Algorithm(cfg.RPCAlgorithm)).Pick(rpc.ResultsToEndpoints(results))
		rpc.SortByLatency(results)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 12},
		})
		for _, r := range results {
			status := ui.StyleSuccess.Render("healthy")
			latency := fmt.Sprintf("%dms", r.Latency.Milliseconds())
			block := fmt.Sprintf("%d", r.BlockNumber)
			if r.Err != nil {
				status = ui.StyleError.Render("down")
				latency = "-"
				block = "-"
			}
			url := r.URL
			if pickErr == nil && best.URL == r.URL {
				url = ui.StyleSelected.Render(url)
			}
			t.AddRow(ui.Row{url, latency, block, status})
		}
		fmt.Println(t.Render())

		if pickErr != nil {
			return pickErr
		}
		fmt.Println(ui.Success(fmt.Sprintf("Selected (%s): %s", cfg.RPCAlgorithm, best.URL)))
		return nil
	},
}

// chainArg returns the chain named by args[0], or the active network.
func chainArg(args []string) (*chain.Chain, error) {
	name := networkFlag
	if name == "" {
		name = cfg.DefaultNetwork
	}
	if len(args) > 0 {
		name = args[0]
	}
	c, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("unknown chain %q: run `w3fund network list`", name)
	}
	return c, nil
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchCmd)
}
