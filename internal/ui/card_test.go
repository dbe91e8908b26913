package ui

import (
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3fund/internal/campaign"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

var cardCreator = common.HexToAddress("0xAbCdEf0000000000000000000000000000000001")

func view(status campaign.Status, account string) CardView {
	return CardView{
		Campaign: campaign.Campaign{
			ID:           2,
			Creator:      cardCreator,
			Title:        "Community garden",
			Description:  "Seeds and soil",
			Goal:         big.NewInt(1_000_000_000),
			AmountRaised: big.NewInt(250_000_000),
			Status:       status,
		},
		Contribution: big.NewInt(5_000_000),
		Account:      account,
		Symbol:       "USDC",
		Decimals:     6,
	}
}

func TestCardActive(t *testing.T) {
	out := Card(view(campaign.StatusActive, "0x00000000000000000000000000000000000000aa"))
	assert.Contains(t, out, "#2 Community garden")
	assert.Contains(t, out, "Active")
	assert.Contains(t, out, "1000 USDC")
	assert.Contains(t, out, "25.0% funded")
	assert.Contains(t, out, "250 USDC")
	assert.Contains(t, out, "5 USDC", "connected account sees its contribution")
	assert.Contains(t, out, "contribute 2")
}

func TestCardWithoutAccountHidesShare(t *testing.T) {
	out := Card(view(campaign.StatusActive, ""))
	assert.NotContains(t, out, "Your share")
}

func TestActionLabel(t *testing.T) {
	creatorLower := strings.ToLower(cardCreator.Hex())
	tests := []struct {
		name     string
		v        CardView
		contains string
	}{
		{"active", view(campaign.StatusActive, ""), "contribute 2"},
		{"creator can claim", view(campaign.StatusCompleted, creatorLower), "claim 2"},
		{"others see completed", view(campaign.StatusCompleted, "0x00000000000000000000000000000000000000aa"), "Campaign Completed"},
		{"claimed", view(campaign.StatusClaimed, creatorLower), "Funds Claimed"},
		{"unknown", view(campaign.StatusUnknown, ""), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ActionLabel(tt.v), tt.contains)
		})
	}

	claiming := view(campaign.StatusCompleted, creatorLower)
	claiming.Claiming = true
	assert.Contains(t, ActionLabel(claiming), "Claiming")
}

func TestProgressBar(t *testing.T) {
	count := func(s string) int { return strings.Count(s, "█") }
	assert.Equal(t, 0, count(ProgressBar(0, 10)))
	assert.Equal(t, 5, count(ProgressBar(50, 10)))
	assert.Equal(t, 10, count(ProgressBar(100, 10)))
	assert.Equal(t, 10, count(ProgressBar(250, 10)))
	assert.Equal(t, 0, count(ProgressBar(-5, 10)))
	assert.Equal(t, 0, count(ProgressBar(math.NaN(), 10)))
	assert.Equal(t, "", ProgressBar(50, 0))
}

func TestStatusBadge(t *testing.T) {
	for _, s := range []campaign.Status{campaign.StatusActive, campaign.StatusCompleted, campaign.StatusClaimed, campaign.StatusUnknown} {
		assert.Contains(t, StatusBadge(s), s.String())
	}
}

func TestCards(t *testing.T) {
	assert.Contains(t, Cards(nil, 2), "No campaigns")

	a, b, c := view(campaign.StatusActive, ""), view(campaign.StatusCompleted, ""), view(campaign.StatusClaimed, "")
	b.Campaign.Title, c.Campaign.Title = "Library", "Bridge"
	out := Cards([]CardView{a, b, c}, 2)
	assert.Contains(t, out, "Community garden")
	assert.Contains(t, out, "Library")
	assert.Contains(t, out, "Bridge")
}
