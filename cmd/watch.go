package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Mohsinsiddi/w3fund/internal/loader"
	"github.com/Mohsinsiddi/w3fund/internal/logger"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live campaign board",
	Long: `Open a full-screen board that re-reads every campaign, your contributions
and your allowance on an interval.

Keyboard controls:
  r   refresh now
  q   quit

Examples:
  w3fund watch
  w3fund watch --interval 30s
  w3fund watch --network base --testnet`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePlatform(); err != nil {
			return err
		}
		ctx := cmd.Context()
		conn, err := connect(ctx, false)
		if err != nil {
			return err
		}

		// Log lines would tear the alt screen.
		logger.Base().SetOutput(io.Discard)

		interval := watchInterval
		if interval <= 0 {
			interval = time.Duration(cfg.WatchInterval) * time.Second
		}

		symbol, decimals := tokenMeta(ctx, conn.env)
		l := loader.New(conn.env)
		account := accountHex(conn)
		view := ui.CardView{Symbol: symbol, Decimals: decimals}

		fetch := func(ctx context.Context) ui.BoardSnapshot {
			var snap ui.BoardSnapshot
			if err := l.RefreshCampaigns(ctx); err != nil {
				snap.Err = err
				return snap
			}
			if conn.env.HasAccount() {
				snap.Allowance = view.Amount(l.ReloadAllowance(ctx))
			}
			if n, err := conn.client.BlockNumber(ctx); err == nil {
				snap.Block = n
			}
			snap.Cards = cardViews(l, account, symbol, decimals)
			return snap
		}

		title := fmt.Sprintf("w3fund  ·  %s (%s)", conn.chain.DisplayName, conn.mode)
		return ui.RunBoard(ui.NewBoard(ctx, title, interval, fetch))
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "refresh interval (default: config watch_interval)")
}
