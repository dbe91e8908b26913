package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/Mohsinsiddi/w3fund/internal/campaign"
	"github.com/Mohsinsiddi/w3fund/internal/loader"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/Mohsinsiddi/w3fund/internal/workflow"
	"github.com/spf13/cobra"
)

var contributeTokens bool

var contributeCmd = &cobra.Command{
	Use:   "contribute <campaign-id> <amount>",
	Short: "Approve or contribute tokens to a campaign",
	Long: `Contribute tokens to an active campaign.

The amount is in token base units (1 USDC = 1000000) unless --tokens is
given. When your allowance for the platform contract is below the amount,
this sends an ERC-20 approval for exactly that amount and stops. Run the
same command again to send the contribution itself.

Examples:
  w3fund contribute 1 5000000
  w3fund contribute 1 5 --tokens
  w3fund contribute 3 2.5 --tokens --wallet alice --yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseCampaignID(args[0])
		if err != nil {
			return err
		}
		if err := requirePlatform(); err != nil {
			return err
		}

		ctx := cmd.Context()
		conn, err := connect(ctx, true)
		if err != nil {
			return err
		}

		symbol, decimals := tokenMeta(ctx, conn.env)
		amount, err := parseAmount(args[1], contributeTokens, decimals)
		if err != nil {
			return err
		}

		l := loader.New(conn.env)
		c, err := findCampaign(ctx, l, id)
		if err != nil {
			return err
		}
		if c.Status != campaign.StatusActive {
			fmt.Println(ui.Warn(fmt.Sprintf("Campaign #%d is %s; the contract will likely reject the contribution.", c.ID, c.Status)))
		}

		allowance := l.ReloadAllowance(ctx)
		view := ui.CardView{Symbol: symbol, Decimals: decimals}
		fmt.Println(ui.KeyValueBlock(fmt.Sprintf("Campaign #%d  ·  %s", c.ID, c.Title), [][2]string{
			{"Amount", ui.Val(view.Amount(amount))},
			{"Allowance", view.Amount(allowance)},
			{"From", ui.Addr(conn.env.Account.Hex())},
		}))
		if amount.Sign() >= 0 && allowance.Cmp(amount) < 0 {
			fmt.Println(ui.Info("Allowance is below the amount; sending an approval first."))
		}

		wf := workflow.New(conn.env, workflow.WithLoader(l))
		res := wf.Contribute(ctx, c, amount, allowance)
		if res.OK && res.Action == workflow.ActionApprove {
			fmt.Println(ui.Success(fmt.Sprintf("Approved %s for the platform.", view.Amount(amount))))
			fmt.Println(ui.Hint(fmt.Sprintf("Now run: w3fund contribute %s %s", args[0], contributeArgs(args[1]))))
			return nil
		}
		if res.OK {
			updated, _ := l.Campaign(c.ID)
			fmt.Println(ui.Success(fmt.Sprintf("Contributed %s to #%d. Raised %s of %s (%.1f%%).",
				view.Amount(amount), c.ID, view.Amount(updated.AmountRaised), view.Amount(updated.Goal), updated.Progress())))
			return nil
		}
		return reportFailure(res)
	},
}

// contributeArgs echoes the amount with --tokens when it was given.
func contributeArgs(amount string) string {
	if contributeTokens {
		return amount + " --tokens"
	}
	return amount
}

func parseCampaignID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid campaign id %q: must be a positive integer", s)
	}
	return id, nil
}

// parseAmount reads base units, or whole tokens with tokens set.
func parseAmount(s string, tokens bool, decimals uint8) (*big.Int, error) {
	if tokens {
		n, err := campaign.ParseUnits(s, decimals)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return n, nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q: expected an integer in base units (use --tokens for decimals)", s)
	}
	return n, nil
}

// reportFailure turns a non-OK result into a command outcome. Skips are
// reported but do not fail the command.
func reportFailure(res workflow.Result) error {
	switch res.Kind {
	case workflow.KindSkipped:
		fmt.Println(ui.Warn(res.Summary()))
		return nil
	case workflow.KindUserRejected:
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}
	return errors.New(res.Summary())
}

func init() {
	contributeCmd.Flags().BoolVar(&contributeTokens, "tokens", false, "amount is in whole tokens (e.g. 2.5) instead of base units")
}
