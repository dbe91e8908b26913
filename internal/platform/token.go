package platform

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3fund/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// Token is a typed ERC-20 binding.
type Token struct {
	c contract.Contract
	r contract.Reader
	w contract.Writer
}

// NewToken creates a Token binding.
func NewToken(c contract.Contract, r contract.Reader, w contract.Writer) *Token {
	return &Token{c: c, r: r, w: w}
}

// Address returns the token contract address.
func (t *Token) Address() common.Address { return t.c.Address }

// Allowance returns how much spender may pull from owner.
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	out, err := t.r.Read(ctx, t.c, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return firstBig("allowance", out)
}

// BalanceOf returns account's token balance.
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := t.r.Read(ctx, t.c, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	return firstBig("balanceOf", out)
}

// Decimals returns the token's decimals.
func (t *Token) Decimals(ctx context.Context) (uint8, error) {
	out, err := t.r.Read(ctx, t.c, "decimals")
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("decimals: expected 1 output, got %d", len(out))
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected output type %T", out[0])
	}
	return d, nil
}

// Symbol returns the token's ticker.
func (t *Token) Symbol(ctx context.Context) (string, error) {
	out, err := t.r.Read(ctx, t.c, "symbol")
	if err != nil {
		return "", err
	}
	if len(out) != 1 {
		return "", fmt.Errorf("symbol: expected 1 output, got %d", len(out))
	}
	s, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("symbol: unexpected output type %T", out[0])
	}
	return s, nil
}

// Approve lets spender pull exactly amount tokens from the caller.
func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (common.Hash, error) {
	if t.w == nil {
		return common.Hash{}, ErrReadOnly
	}
	return t.w.Write(ctx, t.c, "approve", spender, amount)
}
