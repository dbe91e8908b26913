package ui

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3fund/internal/campaign"
	"github.com/charmbracelet/lipgloss"
)

const (
	cardWidth   = 46
	progressLen = 30
)

// CardView is everything a campaign card shows.
type CardView struct {
	Campaign     campaign.Campaign
	Contribution *big.Int
	Account      string // connected account; empty when none
	Claiming     bool
	Symbol       string
	Decimals     uint8
}

// Amount formats base units with the card's token decimals and symbol.
func (v CardView) Amount(n *big.Int) string {
	s := campaign.FormatUnits(n, v.Decimals)
	if v.Symbol != "" {
		s += " " + v.Symbol
	}
	return s
}

// StatusBadge renders a campaign status as a colored pill.
func StatusBadge(s campaign.Status) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#000000"))
	switch s {
	case campaign.StatusActive:
		style = style.Background(ColorSuccess)
	case campaign.StatusCompleted:
		style = style.Background(ColorInfo)
	default:
		style = style.Background(ColorMeta).Foreground(ColorValue)
	}
	return style.Render("● " + s.String())
}

// ProgressBar renders pct (0..100) as a bar of width cells. Out-of-range
// values are clamped.
func ProgressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 || pct != pct {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return StyleInfo.Render(strings.Repeat("█", filled)) + StyleDim.Render(strings.Repeat("░", width-filled))
}

// ActionLabel is the text of the card's action row.
func ActionLabel(v CardView) string {
	switch campaign.ActionFor(v.Campaign, v.Account) {
	case campaign.ActionContribute:
		return StyleSuccess.Render(fmt.Sprintf("▶ w3fund contribute %d <amount>", v.Campaign.ID))
	case campaign.ActionClaim:
		if v.Claiming {
			return StyleWarning.Render("⠋ Claiming…")
		}
		return StyleSuccess.Render(fmt.Sprintf("▶ w3fund claim %d", v.Campaign.ID))
	case campaign.ActionCompleted:
		return StyleInfo.Render("✓ Campaign Completed")
	default:
		if v.Campaign.Status == campaign.StatusUnknown {
			return StyleMeta.Render("? Unknown status")
		}
		return StyleMeta.Render("✓ Funds Claimed")
	}
}

// Card renders one campaign.
func Card(v CardView) string {
	c := v.Campaign
	inner := cardWidth - 4
	var sb strings.Builder

	title := StyleValue.Render(fmt.Sprintf("#%d %s", c.ID, c.Title))
	badge := StatusBadge(c.Status)
	gap := inner - lipgloss.Width(title) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	sb.WriteString(title + strings.Repeat(" ", gap) + badge + "\n")
	if c.Description != "" {
		sb.WriteString(StyleMeta.Width(inner).Render(c.Description) + "\n")
	}
	sb.WriteString("\n")

	pct := c.Progress()
	sb.WriteString(padR(Meta("Goal"), 14) + Val(v.Amount(c.Goal)) + "\n")
	sb.WriteString(ProgressBar(pct, progressLen) + "\n")
	sb.WriteString(padR(Meta(fmt.Sprintf("%.1f%% funded", pct)), 18) + Val(v.Amount(c.AmountRaised)) + Meta(" raised") + "\n\n")

	sb.WriteString(padR(Meta("Creator"), 14) + Addr(TruncateAddr(c.Creator.Hex())) + "\n")
	if v.Account != "" {
		sb.WriteString(padR(Meta("Your share"), 14) + Val(v.Amount(v.Contribution)) + "\n")
	}
	sb.WriteString("\n" + ActionLabel(v))

	return StyleBorder.Width(cardWidth).Render(sb.String())
}

// Cards renders cards side by side, perRow to a line.
func Cards(views []CardView, perRow int) string {
	if len(views) == 0 {
		return Meta("No campaigns yet.")
	}
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	for i := 0; i < len(views); i += perRow {
		end := min(i+perRow, len(views))
		cards := make([]string, 0, end-i)
		for _, v := range views[i:end] {
			cards = append(cards, Card(v))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
