package contract

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeNode struct {
	callOut     []byte
	callErr     error
	estimate    uint64
	estimateErr error
	status      uint64
	sent        []*types.Transaction
	lastCall    chain.CallMsg
}

func (f *fakeNode) CallContract(_ context.Context, msg chain.CallMsg) ([]byte, error) {
	f.lastCall = msg
	return f.callOut, f.callErr
}

func (f *fakeNode) EstimateGas(_ context.Context, _ chain.CallMsg) (uint64, error) {
	return f.estimate, f.estimateErr
}

func (f *fakeNode) GasPrice(context.Context) (*big.Int, error) { return big.NewInt(1_000_000_000), nil }

func (f *fakeNode) PendingNonce(context.Context, common.Address) (uint64, error) { return 4, nil }

func (f *fakeNode) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	f.sent = append(f.sent, tx)
	return tx.Hash(), nil
}

func (f *fakeNode) WaitForReceipt(_ context.Context, hash common.Hash, _ time.Duration) (*chain.TxReceipt, error) {
	return &chain.TxReceipt{Hash: hash, Status: f.status, BlockNumber: 1}, nil
}

type keySigner struct{ key *ecdsa.PrivateKey }

func (s keySigner) Address() common.Address { return crypto.PubkeyToAddress(s.key.PublicKey) }

func (s keySigner) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), s.key)
	if err != nil {
		return nil, err
	}
	return signed.MarshalBinary()
}

func testSigner(t *testing.T) keySigner {
	t.Helper()
	key, err := crypto.HexToECDSA("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	return keySigner{key: key}
}

func revertPayload(t *testing.T, reason string) []byte {
	t.Helper()
	typ, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: typ}}.Pack(reason)
	require.NoError(t, err)
	sel := Selector("Error(string)")
	return append(sel[:], packed...)
}

var (
	tokenAddr    = common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e")
	platformAddr = common.HexToAddress("0x00000000000000000000000000000000000000ff")
)

// ---------------------------------------------------------------------------
// built-ins and selectors
// ---------------------------------------------------------------------------

func TestBuiltinsParse(t *testing.T) {
	for _, b := range AllBuiltins() {
		t.Run(b.ID, func(t *testing.T) {
			_, err := b.ABI()
			require.NoError(t, err)
		})
	}
	assert.Len(t, AllBuiltins(), 2)
}

func TestSelectors(t *testing.T) {
	tests := []struct {
		sig  string
		want string
	}{
		{"approve(address,uint256)", "0x095ea7b3"},
		{"allowance(address,address)", "0xdd62ed3e"},
		{"Error(string)", "0x08c379a0"},
		{"Panic(uint256)", "0x4e487b71"},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			sel := Selector(tt.sig)
			assert.Equal(t, tt.want, hexutil.Encode(sel[:]))
		})
	}
}

func TestMethodIDsMatchSelectors(t *testing.T) {
	erc20 := MustABI(BuiltinERC20)
	sel := Selector("approve(address,uint256)")
	assert.Equal(t, sel[:], erc20.Methods["approve"].ID)

	cf := MustABI(BuiltinCrowdfunding)
	sel = Selector("contribute(uint256,uint256)")
	assert.Equal(t, sel[:], cf.Methods["contribute"].ID)
	sel = Selector("withdraw(uint256)")
	assert.Equal(t, sel[:], cf.Methods["withdraw"].ID)
}

func TestMustABIPanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { MustABI("nope") })
}

// ---------------------------------------------------------------------------
// revert decoding
// ---------------------------------------------------------------------------

func TestDecodeRevert(t *testing.T) {
	assert.Equal(t, "not creator", decodeRevert(revertPayload(t, "not creator"), nil))

	sel := Selector("Panic(uint256)")
	panicData := append(sel[:], common.LeftPadBytes([]byte{0x11}, 32)...)
	assert.Contains(t, decodeRevert(panicData, nil), "overflow")

	unknown := append(sel[:], common.LeftPadBytes([]byte{0x99}, 32)...)
	assert.Contains(t, decodeRevert(unknown, nil), "0x99")

	assert.Equal(t, "custom error 0xdeadbeef", decodeRevert([]byte{0xde, 0xad, 0xbe, 0xef}, nil))
	assert.Equal(t, "", decodeRevert(nil, nil))
}

func TestDecodeRevertCustomError(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(`[{"type":"error","name":"NotCreator","inputs":[]}]`))
	require.NoError(t, err)

	sel := Selector("NotCreator()")
	assert.Equal(t, "NotCreator", decodeRevert(sel[:], &parsed))
	assert.Equal(t, "custom error 0x"+hexutil.Encode(sel[:])[2:], decodeRevert(sel[:], nil))
}

func TestAsRevertLeavesTransportErrors(t *testing.T) {
	plain := errors.New("dial tcp: connection refused")
	assert.Same(t, plain, asRevert(plain, nil))

	rpcErr := &chain.RPCError{Code: -32000, Message: "nonce too low"}
	assert.False(t, errors.Is(asRevert(rpcErr, nil), ErrReverted))
}

func TestAsRevertFromMessageOnly(t *testing.T) {
	err := asRevert(&chain.RPCError{Code: -32000, Message: "execution reverted: Campaign not active"}, nil)
	var rev *RevertError
	require.ErrorAs(t, err, &rev)
	assert.Equal(t, "Campaign not active", rev.Reason)
	assert.ErrorIs(t, err, ErrReverted)
}

// ---------------------------------------------------------------------------
// Caller
// ---------------------------------------------------------------------------

func TestCallerReadAllowance(t *testing.T) {
	node := &fakeNode{callOut: common.LeftPadBytes(big.NewInt(50).Bytes(), 32)}
	c := NewCaller(node, common.Address{})
	token := NewContract(BuiltinERC20, tokenAddr)

	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	out, err := c.Read(context.Background(), token, "allowance", owner, platformAddr)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(50), out[0].(*big.Int).Int64())

	assert.Equal(t, tokenAddr, node.lastCall.To)
	assert.Equal(t, "0xdd62ed3e", hexutil.Encode(node.lastCall.Data[:4]))
}

func TestCallerRejectsWriteFunctions(t *testing.T) {
	c := NewCaller(&fakeNode{}, common.Address{})
	_, err := c.Read(context.Background(), NewContract(BuiltinERC20, tokenAddr), "approve", platformAddr, big.NewInt(1))
	assert.ErrorContains(t, err, "not a read function")
}

func TestCallerUnknownMethod(t *testing.T) {
	c := NewCaller(&fakeNode{}, common.Address{})
	_, err := c.Read(context.Background(), NewContract(BuiltinERC20, tokenAddr), "mint")
	assert.ErrorContains(t, err, "not found")
}

func TestCallerEmptyResult(t *testing.T) {
	c := NewCaller(&fakeNode{callOut: []byte{}}, common.Address{})
	_, err := c.Read(context.Background(), NewContract(BuiltinERC20, tokenAddr), "decimals")
	assert.ErrorContains(t, err, "empty result")
}

func TestCallerRevert(t *testing.T) {
	data, _ := json.Marshal(hexutil.Encode(revertPayload(t, "bad id")))
	node := &fakeNode{callErr: &chain.RPCError{Code: 3, Message: "execution reverted", Data: data}}
	c := NewCaller(node, common.Address{})

	_, err := c.Read(context.Background(), NewContract(BuiltinCrowdfunding, platformAddr),
		"getContributionByUser", big.NewInt(1), common.Address{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReverted)
	assert.Contains(t, err.Error(), "bad id")
}

// ---------------------------------------------------------------------------
// Sender
// ---------------------------------------------------------------------------

func TestSenderWriteBuildsSignedTx(t *testing.T) {
	node := &fakeNode{estimate: 55_000, status: 1}
	signer := testSigner(t)
	var broadcast common.Hash
	s := NewSender(node, signer, big.NewInt(84532), OnBroadcast(func(h common.Hash) { broadcast = h }))

	hash, err := s.Write(context.Background(), NewContract(BuiltinCrowdfunding, platformAddr),
		"contribute", big.NewInt(1), big.NewInt(100))
	require.NoError(t, err)
	require.Len(t, node.sent, 1)

	tx := node.sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, hash, broadcast)
	assert.Equal(t, platformAddr, *tx.To())
	assert.Equal(t, uint64(55_000), tx.Gas())
	assert.Equal(t, uint64(4), tx.Nonce())
	assert.Equal(t, int64(84532), tx.ChainId().Int64())

	from, err := types.Sender(types.NewLondonSigner(big.NewInt(84532)), tx)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)

	want, err := MustABI(BuiltinCrowdfunding).Pack("contribute", big.NewInt(1), big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, want, tx.Data())
}

func TestSenderUserRejects(t *testing.T) {
	node := &fakeNode{estimate: 50_000, status: 1}
	var seen Preview
	s := NewSender(node, testSigner(t), big.NewInt(1), WithConfirm(func(p Preview) bool {
		seen = p
		return false
	}))

	_, err := s.Write(context.Background(), NewContract(BuiltinERC20, tokenAddr), "approve", platformAddr, big.NewInt(100))
	assert.ErrorIs(t, err, ErrUserRejected)
	assert.Empty(t, node.sent)
	assert.Equal(t, "approve", seen.Method)
	assert.Equal(t, tokenAddr, seen.To)
}

func TestSenderRevertedReceipt(t *testing.T) {
	node := &fakeNode{estimate: 50_000, status: 0}
	s := NewSender(node, testSigner(t), big.NewInt(1))

	hash, err := s.Write(context.Background(), NewContract(BuiltinCrowdfunding, platformAddr), "withdraw", big.NewInt(2))
	assert.ErrorIs(t, err, ErrReverted)
	assert.NotEqual(t, common.Hash{}, hash)

	var rev *RevertError
	require.ErrorAs(t, err, &rev)
	assert.Equal(t, hash, rev.TxHash)
}

func TestSenderSimulationRevertSkipsBroadcast(t *testing.T) {
	node := &fakeNode{estimateErr: &chain.RPCError{Code: 3, Message: "execution reverted: Not the creator"}}
	s := NewSender(node, testSigner(t), big.NewInt(1))

	_, err := s.Write(context.Background(), NewContract(BuiltinCrowdfunding, platformAddr), "withdraw", big.NewInt(2))
	assert.ErrorIs(t, err, ErrReverted)
	assert.Contains(t, err.Error(), "Not the creator")
	assert.Empty(t, node.sent)
}

func TestSenderEstimateFailureFallsBack(t *testing.T) {
	node := &fakeNode{estimateErr: errors.New("method not supported"), status: 1}
	s := NewSender(node, testSigner(t), big.NewInt(1))

	_, err := s.Write(context.Background(), NewContract(BuiltinCrowdfunding, platformAddr), "withdraw", big.NewInt(2))
	require.NoError(t, err)
	require.Len(t, node.sent, 1)
	assert.Equal(t, GasLimitContractCall, node.sent[0].Gas())
}

func TestSenderRejectsReadFunctions(t *testing.T) {
	s := NewSender(&fakeNode{}, testSigner(t), big.NewInt(1))
	_, err := s.Write(context.Background(), NewContract(BuiltinCrowdfunding, platformAddr), "getCampaigns")
	assert.ErrorContains(t, err, "not a write function")
}
