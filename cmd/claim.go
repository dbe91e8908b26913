package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3fund/internal/campaign"
	"github.com/Mohsinsiddi/w3fund/internal/loader"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/Mohsinsiddi/w3fund/internal/workflow"
	"github.com/spf13/cobra"
)

var claimCmd = &cobra.Command{
	Use:   "claim <campaign-id>",
	Short: "Withdraw the funds of a completed campaign you created",
	Long: `Withdraw the raised funds of a campaign.

Only the campaign creator can claim, and only once the campaign has reached
its goal (status completed). Claimed campaigns cannot be claimed again.

Examples:
  w3fund claim 2
  w3fund claim 2 --wallet creator`,
	Args: cobra.ExactArgs(1),
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

		l := loader.New(conn.env)
		c, err := findCampaign(ctx, l, id)
		if err != nil {
			return err
		}

		account := conn.env.Account.Hex()
		switch {
		case !campaign.IsCreator(c, account):
			return fmt.Errorf("campaign #%d was created by %s, not %s", c.ID, c.Creator.Hex(), account)
		case c.Status == campaign.StatusClaimed:
			fmt.Println(ui.Info(fmt.Sprintf("Campaign #%d was already claimed.", c.ID)))
			return nil
		case c.Status != campaign.StatusCompleted:
			return fmt.Errorf("campaign #%d is %s: funds can be claimed once the goal is met", c.ID, c.Status)
		}

		symbol, decimals := tokenMeta(ctx, conn.env)
		view := ui.CardView{Symbol: symbol, Decimals: decimals}
		fmt.Println(ui.KeyValueBlock(fmt.Sprintf("Claim #%d  ·  %s", c.ID, c.Title), [][2]string{
			{"Raised", ui.Val(view.Amount(c.AmountRaised))},
			{"Goal", view.Amount(c.Goal)},
			{"To", ui.Addr(account)},
		}))

		wf := workflow.New(conn.env, workflow.WithLoader(l))
		res := wf.Claim(ctx, c)
		if !res.OK {
			return reportFailure(res)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Claimed %s from campaign #%d.", view.Amount(c.AmountRaised), c.ID)))
		if updated, ok := l.Campaign(c.ID); ok {
			fmt.Println(ui.Meta("Status: " + updated.Status.String()))
		}
		return nil
	},
}
