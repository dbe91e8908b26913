package campaign

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the on-chain lifecycle of a campaign.
type Status uint8

const (
	StatusActive Status = iota
	StatusCompleted
	StatusClaimed
	StatusUnknown Status = 255
)

// ParseStatus maps the contract's enum value to a Status.
func ParseStatus(v uint8) Status {
	switch Status(v) {
	case StatusActive, StatusCompleted, StatusClaimed:
		return Status(v)
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusCompleted:
		return "Completed"
	case StatusClaimed:
		return "Claimed"
	default:
		return "Unknown"
	}
}

// Campaign is a read-only projection of one contract record.
type Campaign struct {
	ID           uint64
	Creator      common.Address
	Title        string
	Description  string
	Goal         *big.Int
	AmountRaised *big.Int
	Status       Status
}

// Progress returns AmountRaised as a percentage of Goal.
func (c Campaign) Progress() float64 {
	return Progress(c.AmountRaised, c.Goal)
}

// Progress returns raised/goal*100 clamped to [0, 100]. A zero goal reports
// 100 once anything has been raised and 0 otherwise.
func Progress(raised, goal *big.Int) float64 {
	if raised == nil || raised.Sign() <= 0 {
		return 0
	}
	if goal == nil || goal.Sign() <= 0 {
		return 100
	}
	if raised.Cmp(goal) >= 0 {
		return 100
	}
	pct := new(big.Rat).SetFrac(new(big.Int).Mul(raised, big.NewInt(100)), goal)
	f, _ := pct.Float64()
	return f
}

// IsCreator reports whether account created c. Hex case is ignored.
func IsCreator(c Campaign, account string) bool {
	if account == "" {
		return false
	}
	return strings.EqualFold(c.Creator.Hex(), strings.TrimSpace(account))
}

// ClaimEnabled reports whether account may withdraw c's funds right now.
func ClaimEnabled(c Campaign, account string, claiming bool) bool {
	return !claiming && c.Status == StatusCompleted && IsCreator(c, account)
}

// Action is the interaction a campaign card offers.
type Action int

const (
	ActionContribute Action = iota
	ActionClaim
	ActionCompleted
	ActionClaimed
)

func (a Action) String() string {
	switch a {
	case ActionContribute:
		return "contribute"
	case ActionClaim:
		return "claim"
	case ActionCompleted:
		return "completed"
	default:
		return "claimed"
	}
}

// ActionFor picks the card action for account.
func ActionFor(c Campaign, account string) Action {
	switch {
	case c.Status == StatusActive:
		return ActionContribute
	case c.Status == StatusCompleted && IsCreator(c, account):
		return ActionClaim
	case c.Status == StatusCompleted:
		return ActionCompleted
	default:
		return ActionClaimed
	}
}
