package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrReceiptPending is returned by TransactionReceipt while a tx is unmined.
var ErrReceiptPending = errors.New("transaction receipt not available yet")

// EVMClient is a minimal JSON-RPC client for EVM chains.
type EVMClient struct {
	url    string
	client *http.Client
	nextID atomic.Int64
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
//
// The HTTP client carries no timeout; callers bound requests with their
// context.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{url: url, client: &http.Client{}}
}

// URL returns the endpoint the client talks to.
func (c *EVMClient) URL() string { return c.url }

// RPCError is a JSON-RPC error object. Data holds revert payloads when the
// node returns them.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// RevertData returns the hex-decoded revert bytes carried in Data, if any.
func (e *RPCError) RevertData() []byte {
	if len(e.Data) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err != nil {
		// Some nodes nest the payload: {"data": "0x..."}.
		var nested struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(e.Data, &nested); err != nil {
			return nil
		}
		s = nested.Data
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil
	}
	return b
}

// ChainID returns the chain's ID.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_chainId")
}

// BlockNumber returns the latest block number.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.callBig(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// CallMsg is the subset of eth_call / eth_estimateGas parameters w3fund uses.
type CallMsg struct {
	From common.Address
	To   common.Address
	Data []byte
}

func (m CallMsg) params() map[string]string {
	p := map[string]string{"to": m.To.Hex()}
	if m.From != (common.Address{}) {
		p["from"] = m.From.Hex()
	}
	if len(m.Data) > 0 {
		p["data"] = hexutil.Encode(m.Data)
	}
	return p
}

// CallContract executes eth_call against the latest block.
func (c *EVMClient) CallContract(ctx context.Context, msg CallMsg) ([]byte, error) {
	var out hexutil.Bytes
	if err := c.call(ctx, &out, "eth_call", msg.params(), "latest"); err != nil {
		return nil, err
	}
	return out, nil
}

// EstimateGas estimates gas for msg.
func (c *EVMClient) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_estimateGas", msg.params(), "latest"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// GasPrice returns the current gas price.
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_gasPrice")
}

// PendingNonce returns the account nonce including queued transactions.
func (c *EVMClient) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	var out hexutil.Uint64
	if err := c.call(ctx, &out, "eth_getTransactionCount", addr.Hex(), "pending"); err != nil {
		return 0, err
	}
	return uint64(out), nil
}

// SendRawTransaction broadcasts a signed raw transaction.
func (c *EVMClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// TxReceipt holds the on-chain receipt of a mined transaction.
type TxReceipt struct {
	Hash        common.Hash
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
}

// TransactionReceipt fetches the receipt for hash. It returns
// ErrReceiptPending while the transaction is not yet mined.
func (c *EVMClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*TxReceipt, error) {
	var r *struct {
		Status      hexutil.Uint64 `json:"status"`
		BlockNumber hexutil.Uint64 `json:"blockNumber"`
		GasUsed     hexutil.Uint64 `json:"gasUsed"`
	}
	if err := c.call(ctx, &r, "eth_getTransactionReceipt", hash.Hex()); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReceiptPending
	}
	return &TxReceipt{
		Hash:        hash,
		Status:      uint64(r.Status),
		BlockNumber: uint64(r.BlockNumber),
		GasUsed:     uint64(r.GasUsed),
	}, nil
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. Reverted receipts are returned as-is; the caller decides.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash, interval time.Duration) (*TxReceipt, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ErrReceiptPending) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int64         `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func (c *EVMClient) callBig(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	var out hexutil.Big
	if err := c.call(ctx, &out, method, params...); err != nil {
		return nil, err
	}
	return out.ToInt(), nil
}

func (c *EVMClient) call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("RPC HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if len(rpcResp.Result) == 0 {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}
