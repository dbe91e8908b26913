package wallet

import (
	"math/big"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known Anvil test account #0; never fund on mainnet.
const (
	testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSignerAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// testKeystore returns a file-backed Keystore isolated to a temp directory,
// which avoids OS keychain prompts in CI.
func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "w3fund-test",
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("testpass"),
	})
	require.NoError(t, err)
	return NewKeystore(ring)
}

func signingWallet(ref string) *Wallet {
	return &Wallet{Name: "w", Address: testSignerAddr, Type: TypeSigning, KeyRef: ref}
}

func dynamicTx() *types.Transaction {
	to := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(84532),
		Nonce:     3,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2_000_000_000),
		Gas:       60_000,
		To:        &to,
		Data:      []byte{0x09, 0x5e, 0xa7, 0xb3},
	})
}

// ---------------------------------------------------------------------------
// Keystore
// ---------------------------------------------------------------------------

func TestKeystoreRoundTrip(t *testing.T) {
	ks := testKeystore(t)

	ref, err := ks.Store("main", testPrivKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "w3fund.main", ref)

	got, err := ks.Retrieve(ref)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, got)

	require.NoError(t, ks.Delete(ref))
	_, err = ks.Retrieve(ref)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NoError(t, ks.Delete(ref), "deleting a missing key is fine")
}

func TestNilKeystore(t *testing.T) {
	ks := NewKeystore(nil)
	_, err := ks.Store("x", testPrivKeyHex)
	assert.Error(t, err)
	_, err = ks.Retrieve("w3fund.x")
	assert.ErrorContains(t, err, "not available")
	assert.NoError(t, ks.Delete("w3fund.x"))
}

// ---------------------------------------------------------------------------
// Signer
// ---------------------------------------------------------------------------

func TestSignerAddress(t *testing.T) {
	s := NewSigner(signingWallet("w3fund.w"), NewInMemoryKeystore(), nil)
	assert.Equal(t, common.HexToAddress(testSignerAddr), s.Address())
}

func TestSignTxWatchOnly(t *testing.T) {
	w := &Wallet{Name: "watcher", Address: testSignerAddr, Type: TypeWatchOnly}
	_, err := NewSigner(w, NewInMemoryKeystore(), nil).SignTx(dynamicTx(), big.NewInt(84532))
	assert.ErrorIs(t, err, ErrWatchOnly)
}

func TestSignTxMissingKey(t *testing.T) {
	_, err := NewSigner(signingWallet("w3fund.none"), NewInMemoryKeystore(), nil).SignTx(dynamicTx(), big.NewInt(84532))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSignTxFromKeystore(t *testing.T) {
	ks := testKeystore(t)
	ref, err := ks.Store("w", testPrivKeyHex)
	require.NoError(t, err)

	raw, err := NewSigner(signingWallet(ref), ks, nil).SignTx(dynamicTx(), big.NewInt(84532))
	require.NoError(t, err)

	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(raw))
	from, err := types.Sender(types.NewLondonSigner(big.NewInt(84532)), &tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testSignerAddr), from)
	assert.Equal(t, uint64(3), tx.Nonce())
}

func TestSignTxPrefersSession(t *testing.T) {
	session := testSession(t)
	require.NoError(t, session.Put("w3fund.w", "0x"+testPrivKeyHex))

	// The keystore is empty; the session alone must be enough.
	raw, err := NewSigner(signingWallet("w3fund.w"), NewInMemoryKeystore(), session).SignTx(dynamicTx(), big.NewInt(84532))
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestSignTxKeyAddressMismatch(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("w", strings.Repeat("1", 64))

	_, err := NewSigner(signingWallet(ref), ks, nil).SignTx(dynamicTx(), big.NewInt(84532))
	assert.ErrorContains(t, err, "does not match")
}

func TestUnlockCachesKey(t *testing.T) {
	ks := NewInMemoryKeystore()
	ref, _ := ks.Store("w", testPrivKeyHex)
	session := testSession(t)

	s := NewSigner(signingWallet(ref), ks, session)
	require.NoError(t, s.Unlock())

	v, ok := session.Get(ref)
	assert.True(t, ok)
	assert.Equal(t, testPrivKeyHex, v)

	assert.Error(t, NewSigner(signingWallet(ref), ks, nil).Unlock())
}
