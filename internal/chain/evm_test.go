package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock serves a fixed JSON-RPC result per method. Unknown methods get a
// "method not found" error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int64  `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func rpcErrorServer(t *testing.T, code int, msg string, data interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		body := map[string]interface{}{"code": code, "message": msg}
		if data != nil {
			body["data"] = data
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   body,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

func TestChainID(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_chainId": "0x14a34"})
	id, err := NewEVMClient(srv.URL).ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(84532), id.Int64())
}

func TestBlockNumber(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x10"})
	n, err := NewEVMClient(srv.URL).BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)
}

func TestCallContractDecodesBytes(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_call": "0x00ff"})
	out, err := NewEVMClient(srv.URL).CallContract(context.Background(), CallMsg{
		To:   common.HexToAddress("0x01"),
		Data: []byte{0xdd, 0x62, 0xed, 0x3e},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff}, out)
}

func TestCallContractSendsParams(t *testing.T) {
	var got []json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params []json.RawMessage `json:"params"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		got = req.Params
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":"0x"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	from := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	to := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	_, err := NewEVMClient(srv.URL).CallContract(context.Background(), CallMsg{From: from, To: to, Data: []byte{1}})
	require.NoError(t, err)
	require.Len(t, got, 2)

	var msg map[string]string
	require.NoError(t, json.Unmarshal(got[0], &msg))
	assert.Equal(t, to.Hex(), msg["to"])
	assert.Equal(t, from.Hex(), msg["from"])
	assert.Equal(t, "0x01", msg["data"])
	assert.JSONEq(t, `"latest"`, string(got[1]))
}

func TestGasPriceAndNonce(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_gasPrice":            "0x3b9aca00",
		"eth_getTransactionCount": "0x7",
		"eth_estimateGas":         "0x5208",
	})
	c := NewEVMClient(srv.URL)
	ctx := context.Background()

	gp, err := c.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), gp.Int64())

	n, err := c.PendingNonce(ctx, common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	gas, err := c.EstimateGas(ctx, CallMsg{To: common.HexToAddress("0x01")})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
}

// ---------------------------------------------------------------------------
// errors
// ---------------------------------------------------------------------------

func TestRPCErrorIsTyped(t *testing.T) {
	srv := rpcErrorServer(t, 3, "execution reverted: not creator", "0x08c379a0")
	_, err := NewEVMClient(srv.URL).CallContract(context.Background(), CallMsg{To: common.HexToAddress("0x01")})
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, 3, rpcErr.Code)
	assert.Equal(t, "execution reverted: not creator", rpcErr.Message)
	assert.Equal(t, []byte{0x08, 0xc3, 0x79, 0xa0}, rpcErr.RevertData())
}

func TestRPCErrorNestedData(t *testing.T) {
	e := &RPCError{Data: json.RawMessage(`{"data":"0xabcd"}`)}
	assert.Equal(t, []byte{0xab, 0xcd}, e.RevertData())

	assert.Nil(t, (&RPCError{}).RevertData())
	assert.Nil(t, (&RPCError{Data: json.RawMessage(`"not hex"`)}).RevertData())
}

func TestUnreachableEndpoint(t *testing.T) {
	_, err := NewEVMClient("http://127.0.0.1:1").BlockNumber(context.Background())
	assert.Error(t, err)
}

func TestBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
	defer srv.Close()
	_, err := NewEVMClient(srv.URL).BlockNumber(context.Background())
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// receipts
// ---------------------------------------------------------------------------

func TestTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	_, err := NewEVMClient(srv.URL).TransactionReceipt(context.Background(), common.Hash{})
	assert.ErrorIs(t, err, ErrReceiptPending)
}

func TestWaitForReceiptPollsUntilMined(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"status":"0x1","blockNumber":"0x2a","gasUsed":"0xc350"}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	hash := common.HexToHash("0xabc")
	r, err := NewEVMClient(srv.URL).WaitForReceipt(context.Background(), hash, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.Status)
	assert.Equal(t, uint64(42), r.BlockNumber)
	assert.Equal(t, uint64(50000), r.GasUsed)
	assert.Equal(t, hash, r.Hash)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitForReceiptHonoursContext(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_getTransactionReceipt": nil})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewEVMClient(srv.URL).WaitForReceipt(ctx, common.Hash{}, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPing(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x100"})
	latency, block, err := NewEVMClient(srv.URL).Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(256), block)
	assert.Greater(t, latency, time.Duration(0))
}
