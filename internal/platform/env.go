// Package platform binds the crowdfunding platform and its ERC-20 token to
// a network context shared by the loader and the contribution workflow.
package platform

import (
	"github.com/Mohsinsiddi/w3fund/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// Env is the network context handed to every component: who is connected,
// on which chain, and how to read from and write to it.
//
// A zero Account means no wallet is connected. A zero Platform or Token
// address means the deployment is not configured yet. Writer may be nil for
// read-only use.
type Env struct {
	Account  common.Address
	ChainID  int64
	Reader   contract.Reader
	Writer   contract.Writer
	Platform common.Address
	Token    common.Address
}

// HasAccount reports whether a wallet is connected.
func (e Env) HasAccount() bool { return e.Account != (common.Address{}) }

// HasPlatform reports whether the platform contract address is known.
func (e Env) HasPlatform() bool { return e.Platform != (common.Address{}) }

// HasToken reports whether the token contract address is known.
func (e Env) HasToken() bool { return e.Token != (common.Address{}) }

// PlatformContract returns the platform binding for e.
func (e Env) PlatformContract() *Platform {
	return NewPlatform(contract.NewContract(contract.BuiltinCrowdfunding, e.Platform), e.Reader, e.Writer)
}

// TokenContract returns the token binding for e.
func (e Env) TokenContract() *Token {
	return NewToken(contract.NewContract(contract.BuiltinERC20, e.Token), e.Reader, e.Writer)
}
