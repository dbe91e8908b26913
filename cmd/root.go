package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/w3fund/internal/config"
	"github.com/Mohsinsiddi/w3fund/internal/logger"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3fund/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	testnet     bool
	mainnet     bool
	networkFlag string
	walletFlag  string
	assumeYes   bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3fund",
	Short: "Crowdfunding campaigns from the terminal",
	Long: `w3fund reads campaigns from an on-chain crowdfunding platform, lets your
wallet approve and contribute USDC, and lets campaign creators claim raised
funds once the goal is met.

Every write runs one step at a time: when your token allowance does not
cover the amount, 'contribute' sends an approval first and you run it again
to contribute.

Global flags --testnet and --mainnet override the configured network mode
for a single invocation. Persist with: w3fund config set network_mode <mode>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger.Configure(level, os.Stderr)
		return nil
	},
}

// Execute runs the root command. Ctrl-C cancels the command context so
// pending RPC calls and receipt polling stop.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $"+config.EnvConfigDir+" or ~/.w3fund)")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "chain to use (default: config default_network)")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: the default wallet)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet for this invocation")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use mainnet for this invocation")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "sign transactions without the confirmation prompt")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		initCmd,
		campaignsCmd,
		contributeCmd,
		claimCmd,
		allowanceCmd,
		watchCmd,
		walletCmd,
		networkCmd,
		rpcCmd,
		configCmd,
	)
}
