package contract

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Sentinel errors for write and read failures the caller may branch on.
var (
	ErrReverted     = errors.New("execution reverted")
	ErrUserRejected = errors.New("transaction rejected by user")
)

// RevertError is a contract-level failure: either eth_call / eth_estimateGas
// reported a revert, or a mined receipt carries status 0.
type RevertError struct {
	Reason string
	TxHash common.Hash // zero unless the tx was mined
}

func (e *RevertError) Error() string {
	var sb strings.Builder
	sb.WriteString("execution reverted")
	if e.Reason != "" {
		sb.WriteString(": " + e.Reason)
	}
	if e.TxHash != (common.Hash{}) {
		sb.WriteString(" (tx " + e.TxHash.Hex() + ")")
	}
	return sb.String()
}

// Is makes errors.Is(err, ErrReverted) match.
func (e *RevertError) Is(target error) bool { return target == ErrReverted }

// Selector returns the 4-byte selector of a canonical signature such as
// "Error(string)".
func Selector(signature string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var out [4]byte
	copy(out[:], h.Sum(nil)[:4])
	return out
}

// asRevert converts node errors that describe a revert into *RevertError.
// Other errors pass through unchanged.
func asRevert(err error, parsed *abi.ABI) error {
	var rpcErr *chain.RPCError
	if !errors.As(err, &rpcErr) {
		return err
	}
	msg := strings.ToLower(rpcErr.Message)
	if rpcErr.Code != 3 && !strings.Contains(msg, "revert") {
		return err
	}
	reason := decodeRevert(rpcErr.RevertData(), parsed)
	if reason == "" {
		reason = strings.TrimSpace(strings.TrimPrefix(rpcErr.Message, "execution reverted"))
		reason = strings.TrimSpace(strings.TrimPrefix(reason, ":"))
	}
	return &RevertError{Reason: reason}
}

// decodeRevert renders revert data as text. Error(string) and
// Panic(uint256) go through abi.UnpackRevert; anything else is looked up
// among the ABI's custom errors. Empty data yields "".
func decodeRevert(data []byte, parsed *abi.ABI) string {
	if len(data) < 4 {
		return ""
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason
	}

	sel := data[:4]
	if parsed != nil {
		for name, e := range parsed.Errors {
			if bytes.Equal(e.ID[:4], sel) {
				return name
			}
		}
	}
	return "custom error 0x" + hex.EncodeToString(sel)
}
