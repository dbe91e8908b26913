package workflow

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3fund/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// Kind classifies the outcome of a workflow step.
type Kind uint8

const (
	KindOK Kind = iota
	// KindSkipped means a guard prevented the write.
	KindSkipped
	// KindInvalid means the input was rejected before any write.
	KindInvalid
	KindNetworkError
	KindUserRejected
	KindContractRevert
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindSkipped:
		return "skipped"
	case KindInvalid:
		return "invalid"
	case KindNetworkError:
		return "network error"
	case KindUserRejected:
		return "rejected"
	case KindContractRevert:
		return "reverted"
	default:
		return "unknown"
	}
}

// Action names the transaction a step sent, or would have sent.
type Action uint8

const (
	ActionNone Action = iota
	ActionApprove
	ActionContribute
	ActionClaim
)

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionContribute:
		return "contribute"
	case ActionClaim:
		return "claim"
	default:
		return "none"
	}
}

// Result is the outcome of one Contribute or Claim call.
type Result struct {
	OK         bool
	Kind       Kind
	Action     Action
	CampaignID uint64
	Amount     *big.Int
	TxHash     common.Hash
	Err        error
}

// Summary is a one-line description suitable for the terminal.
func (r Result) Summary() string {
	switch {
	case r.OK && r.Action == ActionApprove:
		return fmt.Sprintf("approved %s for campaign #%d; run contribute again to send the contribution", r.Amount, r.CampaignID)
	case r.OK && r.Action == ActionContribute:
		return fmt.Sprintf("contributed %s to campaign #%d", r.Amount, r.CampaignID)
	case r.OK && r.Action == ActionClaim:
		return fmt.Sprintf("claimed funds of campaign #%d", r.CampaignID)
	case r.Err != nil:
		return fmt.Sprintf("%s #%d %s: %v", r.Action, r.CampaignID, r.Kind, r.Err)
	default:
		return fmt.Sprintf("%s #%d %s", r.Action, r.CampaignID, r.Kind)
	}
}

// Classify maps a write error onto a result kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, contract.ErrUserRejected):
		return KindUserRejected
	case errors.Is(err, contract.ErrReverted):
		return KindContractRevert
	default:
		return KindNetworkError
	}
}
