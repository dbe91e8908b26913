package contract

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract identifies a deployed contract and its interface.
type Contract struct {
	Name    string
	Address common.Address
	ABI     abi.ABI
}

// NewContract binds a built-in ABI to an address.
func NewContract(builtinID string, addr common.Address) Contract {
	b, _ := GetBuiltin(builtinID)
	name := builtinID
	if b != nil {
		name = b.Name
	}
	return Contract{Name: name, Address: addr, ABI: MustABI(builtinID)}
}

// Reader executes read-only contract functions and returns decoded values.
type Reader interface {
	Read(ctx context.Context, c Contract, method string, args ...interface{}) ([]interface{}, error)
}

// Writer submits state-changing contract calls. A returned hash means the
// transaction was mined successfully, not merely broadcast.
type Writer interface {
	Write(ctx context.Context, c Contract, method string, args ...interface{}) (common.Hash, error)
}

// CallBackend is the node surface Caller needs.
type CallBackend interface {
	CallContract(ctx context.Context, msg chain.CallMsg) ([]byte, error)
}

// Caller calls view/pure contract functions through eth_call.
type Caller struct {
	backend CallBackend
	from    common.Address
}

// NewCaller creates a Caller. from may be the zero address.
func NewCaller(backend CallBackend, from common.Address) *Caller {
	return &Caller{backend: backend, from: from}
}

// Read packs args, executes eth_call and unpacks the outputs.
func (c *Caller) Read(ctx context.Context, ct Contract, method string, args ...interface{}) ([]interface{}, error) {
	m, ok := ct.ABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("function %q not found in %s ABI", method, ct.Name)
	}
	if !m.IsConstant() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", method, m.StateMutability)
	}

	calldata, err := ct.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}

	out, err := c.backend.CallContract(ctx, chain.CallMsg{From: c.from, To: ct.Address, Data: calldata})
	if err != nil {
		return nil, fmt.Errorf("calling %s.%s: %w", ct.Name, method, asRevert(err, &ct.ABI))
	}
	if len(out) == 0 && len(m.Outputs) > 0 {
		return nil, fmt.Errorf("calling %s.%s: empty result (is %s a contract on this chain?)", ct.Name, method, ct.Address.Hex())
	}

	vals, err := ct.ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", method, err)
	}
	return vals, nil
}
