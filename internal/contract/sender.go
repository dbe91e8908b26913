package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// GasLimitContractCall is the EstimateGas fallback for state-changing calls
// when the node cannot simulate them for a non-revert reason.
const GasLimitContractCall = uint64(200_000)

// TxBackend is the node surface Sender needs.
type TxBackend interface {
	EstimateGas(ctx context.Context, msg chain.CallMsg) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*chain.TxReceipt, error)
}

// TxSigner signs transactions for one account.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Preview describes a transaction about to be signed.
type Preview struct {
	Contract string
	To       common.Address
	From     common.Address
	Method   string
	Args     []interface{}
	Gas      uint64
	GasPrice *big.Int
	ChainID  *big.Int
}

// ConfirmFunc approves or declines a transaction before signing.
type ConfirmFunc func(Preview) bool

// Sender signs, broadcasts and awaits state-changing contract calls.
type Sender struct {
	backend TxBackend
	signer  TxSigner
	chainID *big.Int
	confirm ConfirmFunc
	poll    time.Duration
	onSent  func(common.Hash)
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

// WithConfirm installs a confirmation prompt. Declining yields ErrUserRejected.
func WithConfirm(fn ConfirmFunc) SenderOption {
	return func(s *Sender) { s.confirm = fn }
}

// WithPollInterval sets the receipt polling interval.
func WithPollInterval(d time.Duration) SenderOption {
	return func(s *Sender) { s.poll = d }
}

// OnBroadcast registers a hook called with the hash once a tx is accepted
// by the node, before its receipt is available.
func OnBroadcast(fn func(common.Hash)) SenderOption {
	return func(s *Sender) { s.onSent = fn }
}

// NewSender creates a Sender.
func NewSender(backend TxBackend, signer TxSigner, chainID *big.Int, opts ...SenderOption) *Sender {
	s := &Sender{
		backend: backend,
		signer:  signer,
		chainID: chainID,
		poll:    2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Address returns the signing account.
func (s *Sender) Address() common.Address { return s.signer.Address() }

// Write packs the call, signs an EIP-1559 transaction and waits for its
// receipt. A receipt with status 0 is returned as *RevertError.
func (s *Sender) Write(ctx context.Context, ct Contract, method string, args ...interface{}) (common.Hash, error) {
	m, ok := ct.ABI.Methods[method]
	if !ok {
		return common.Hash{}, fmt.Errorf("function %q not found in %s ABI", method, ct.Name)
	}
	if m.IsConstant() {
		return common.Hash{}, fmt.Errorf("function %q is not a write function", method)
	}

	calldata, err := ct.ABI.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding %s: %w", method, err)
	}

	from := s.signer.Address()
	msg := chain.CallMsg{From: from, To: ct.Address, Data: calldata}

	gas, err := s.backend.EstimateGas(ctx, msg)
	if err != nil {
		if rev := asRevert(err, &ct.ABI); errors.Is(rev, ErrReverted) {
			return common.Hash{}, fmt.Errorf("simulating %s: %w", method, rev)
		}
		gas = GasLimitContractCall
	}

	gasPrice, err := s.backend.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.backend.PendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	if s.confirm != nil && !s.confirm(Preview{
		Contract: ct.Name,
		To:       ct.Address,
		From:     from,
		Method:   method,
		Args:     args,
		Gas:      gas,
		GasPrice: gasPrice,
		ChainID:  s.chainID,
	}) {
		return common.Hash{}, ErrUserRejected
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &ct.Address,
		Value:     big.NewInt(0),
		Data:      calldata,
	})

	raw, err := s.signer.SignTx(tx, s.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := s.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", asRevert(err, &ct.ABI))
	}
	if s.onSent != nil {
		s.onSent(hash)
	}

	receipt, err := s.backend.WaitForReceipt(ctx, hash, s.poll)
	if err != nil {
		return hash, fmt.Errorf("tx %s: %w", hash.Hex(), err)
	}
	if receipt.Status == 0 {
		return hash, &RevertError{TxHash: hash}
	}
	return hash, nil
}
