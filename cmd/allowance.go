package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3fund/internal/loader"
	"github.com/Mohsinsiddi/w3fund/internal/logger"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/spf13/cobra"
)

var allowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Show the token allowance you have granted the platform",
	Long: `Read allowance(owner, spender) on the token contract, where owner is the
connected wallet and spender is the platform contract. Also shows the
wallet's token balance.

Examples:
  w3fund allowance
  w3fund allowance --wallet alice --network base`,
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
		if !conn.env.HasAccount() {
			return errors.New("no wallet connected: use --wallet <name> or `w3fund wallet use <name>`")
		}
		if !conn.env.HasToken() {
			return fmt.Errorf("no token configured for %s (%s)\n  Set one with: w3fund config set token_address 0x...", conn.chain.Name, conn.mode)
		}

		l := loader.New(conn.env)
		allowance := l.ReloadAllowance(ctx)
		symbol, decimals := tokenMeta(ctx, conn.env)
		view := ui.CardView{Symbol: symbol, Decimals: decimals}

		balance := ui.Meta("unavailable")
		if b, err := conn.env.TokenContract().BalanceOf(ctx, conn.env.Account); err == nil {
			balance = ui.Val(view.Amount(b))
		} else {
			logger.For(ctx).WithError(err).Warn("reading token balance")
		}

		fmt.Println(ui.KeyValueBlock("Token Allowance", [][2]string{
			{"Network", ui.ChainName(conn.chain.DisplayName) + " " + ui.Meta("("+conn.mode+")")},
			{"Token", ui.Addr(conn.env.Token.Hex())},
			{"Owner", ui.Addr(conn.env.Account.Hex())},
			{"Spender", ui.Addr(conn.env.Platform.Hex())},
			{"Allowance", ui.Val(view.Amount(allowance))},
			{"Balance", balance},
		}))
		return nil
	},
}
