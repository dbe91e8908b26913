package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs EVM transactions for a signing wallet. Keys are looked up in
// the session cache first, then in the keystore.
type Signer struct {
	wallet  *Wallet
	ks      KeystoreBackend
	session *Session
}

// NewSigner creates a signer for w. session may be nil.
func NewSigner(w *Wallet, ks KeystoreBackend, session *Session) *Signer {
	return &Signer{wallet: w, ks: ks, session: session}
}

// Address returns the wallet's address.
func (s *Signer) Address() common.Address {
	return s.wallet.Account()
}

// SignTx signs tx with the London signer and returns the raw encoding.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	privKey, err := s.key()
	if err != nil {
		return nil, err
	}

	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}
	return raw, nil
}

// Unlock reads the key from the keystore and caches it in the session.
func (s *Signer) Unlock() error {
	if s.session == nil {
		return fmt.Errorf("no session configured")
	}
	hexKey, err := s.retrieve()
	if err != nil {
		return err
	}
	return s.session.Put(s.wallet.KeyRef, hexKey)
}

func (s *Signer) key() (*ecdsa.PrivateKey, error) {
	if !s.wallet.CanSign() {
		return nil, fmt.Errorf("%w: %q cannot sign", ErrWatchOnly, s.wallet.Name)
	}

	hexKey, ok := "", false
	if s.session != nil {
		hexKey, ok = s.session.Get(s.wallet.KeyRef)
	}
	if !ok {
		var err error
		if hexKey, err = s.retrieve(); err != nil {
			return nil, err
		}
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if crypto.PubkeyToAddress(privKey.PublicKey) != s.wallet.Account() {
		return nil, fmt.Errorf("stored key for %q does not match address %s", s.wallet.Name, s.wallet.Address)
	}
	return privKey, nil
}

func (s *Signer) retrieve() (string, error) {
	if !s.wallet.CanSign() {
		return "", fmt.Errorf("%w: %q cannot sign", ErrWatchOnly, s.wallet.Name)
	}
	hexKey, err := s.ks.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return "", fmt.Errorf("retrieving key: %w", err)
	}
	return hexKey, nil
}
