package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3fund/internal/campaign"
	"github.com/Mohsinsiddi/w3fund/internal/loader"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/spf13/cobra"
)

var campaignsJSON bool

var campaignsCmd = &cobra.Command{
	Use:     "campaigns",
	Aliases: []string{"ls"},
	Short:   "List campaigns with progress, status and your contribution",
	Long: `Read every campaign from the platform contract and render it as a card.

With a wallet connected each card also shows how much you have contributed
and which action applies: contribute while the campaign is active, claim
when you are the creator of a completed campaign.

Examples:
  w3fund campaigns
  w3fund campaigns --wallet alice
  w3fund campaigns --json`,
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

		spin := ui.NewSpinner("Loading campaigns…")
		if !campaignsJSON {
			spin.Start()
		}
		l := loader.New(conn.env)
		err = l.RefreshCampaigns(ctx)
		symbol, decimals := tokenMeta(ctx, conn.env)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("loading campaigns: %w", err)
		}

		if campaignsJSON {
			return printCampaignsJSON(l, conn.env.HasAccount(), decimals)
		}

		list := l.Campaigns()
		if len(list) == 0 {
			fmt.Println(ui.Info("No campaigns yet."))
			return nil
		}
		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("Campaigns  ·  %s (%s)", conn.chain.DisplayName, conn.mode)))
		if !conn.env.HasAccount() {
			fmt.Println(ui.Hint("No wallet connected. Add one with: w3fund wallet add <name> <address>"))
		}
		fmt.Println(ui.Cards(cardViews(l, accountHex(conn), symbol, decimals), 2))
		fmt.Println(ui.Meta(fmt.Sprintf("%d campaign(s)", len(list))))
		return nil
	},
}

// cardViews builds card views from the loader snapshot.
func cardViews(l *loader.Loader, account, symbol string, decimals uint8) []ui.CardView {
	list := l.Campaigns()
	views := make([]ui.CardView, 0, len(list))
	for _, c := range list {
		v := ui.CardView{
			Campaign: c,
			Account:  account,
			Symbol:   symbol,
			Decimals: decimals,
		}
		if account != "" {
			v.Contribution = l.Contribution(c.ID)
		}
		views = append(views, v)
	}
	return views
}

func accountHex(conn *connection) string {
	if !conn.env.HasAccount() {
		return ""
	}
	return conn.env.Account.Hex()
}

type campaignJSON struct {
	ID           uint64  `json:"id"`
	Creator      string  `json:"creator"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Goal         string  `json:"goal"`
	AmountRaised string  `json:"amount_raised"`
	Progress     float64 `json:"progress"`
	Status       string  `json:"status"`
	Contribution string  `json:"contribution,omitempty"`
	Decimals     uint8   `json:"decimals"`
}

func toCampaignJSON(c campaign.Campaign, contribution *big.Int, decimals uint8) campaignJSON {
	out := campaignJSON{
		ID:           c.ID,
		Creator:      c.Creator.Hex(),
		Title:        c.Title,
		Description:  c.Description,
		Goal:         bigString(c.Goal),
		AmountRaised: bigString(c.AmountRaised),
		Progress:     c.Progress(),
		Status:       c.Status.String(),
		Decimals:     decimals,
	}
	if contribution != nil {
		out.Contribution = contribution.String()
	}
	return out
}

func printCampaignsJSON(l *loader.Loader, withContributions bool, decimals uint8) error {
	list := l.Campaigns()
	out := make([]campaignJSON, 0, len(list))
	for _, c := range list {
		var contribution *big.Int
		if withContributions {
			contribution = l.Contribution(c.ID)
		}
		out = append(out, toCampaignJSON(c, contribution, decimals))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

// findCampaign loads the list and returns campaign id from it.
func findCampaign(ctx context.Context, l *loader.Loader, id uint64) (campaign.Campaign, error) {
	if _, err := l.LoadCampaigns(ctx); err != nil {
		return campaign.Campaign{}, fmt.Errorf("loading campaigns: %w", err)
	}
	c, ok := l.Campaign(id)
	if !ok {
		return campaign.Campaign{}, fmt.Errorf("campaign #%d not found: run `w3fund campaigns` to list them", id)
	}
	return c, nil
}

func init() {
	campaignsCmd.Flags().BoolVar(&campaignsJSON, "json", false, "print raw JSON instead of cards")
}
