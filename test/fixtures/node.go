// Package fixtures provides an in-memory EVM JSON-RPC node running the
// crowdfunding platform and its ERC-20 token, for tests that exercise the
// real client, caller, sender and signer end to end.
package fixtures

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/w3fund/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Campaign status values as stored by the platform contract.
const (
	StatusActive uint8 = iota
	StatusCompleted
	StatusClaimed
)

// Campaign is one platform record.
type Campaign struct {
	Creator      common.Address
	Title        string
	Description  string
	Goal         *big.Int
	AmountRaised *big.Int
	Status       uint8
}

type allowanceKey struct{ owner, spender common.Address }

type rpcErr struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// Node is the fake chain. Transactions are mined on receipt of
// eth_sendRawTransaction.
type Node struct {
	Platform common.Address
	Token    common.Address
	ChainID  *big.Int

	srv         *httptest.Server
	platformABI abi.ABI
	tokenABI    abi.ABI

	mu            sync.Mutex
	campaigns     []*Campaign
	allowances    map[allowanceKey]*big.Int
	balances      map[common.Address]*big.Int
	contributions map[uint64]map[common.Address]*big.Int
	nonces        map[common.Address]uint64
	receipts      map[common.Hash]uint64
	block         uint64
	calls         map[string]int
	sent          []string
	failReads     bool
	revertOnMine  map[string]bool
}

// NewNode starts a node on an httptest server closed at test cleanup.
func NewNode(t *testing.T) *Node {
	t.Helper()
	n := &Node{
		Platform:      common.HexToAddress("0x00000000000000000000000000000000000F0ED1"),
		Token:         common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
		ChainID:       big.NewInt(84532),
		platformABI:   contract.MustABI(contract.BuiltinCrowdfunding),
		tokenABI:      contract.MustABI(contract.BuiltinERC20),
		allowances:    make(map[allowanceKey]*big.Int),
		balances:      make(map[common.Address]*big.Int),
		contributions: make(map[uint64]map[common.Address]*big.Int),
		nonces:        make(map[common.Address]uint64),
		receipts:      make(map[common.Hash]uint64),
		block:         1000,
		calls:         make(map[string]int),
		revertOnMine:  make(map[string]bool),
	}
	n.srv = httptest.NewServer(http.HandlerFunc(n.serveHTTP))
	t.Cleanup(n.srv.Close)
	return n
}

// URL is the JSON-RPC endpoint.
func (n *Node) URL() string { return n.srv.URL }

// Close stops the server; later requests fail at the transport.
func (n *Node) Close() { n.srv.Close() }

// AddCampaign appends a campaign and returns its one-based id.
func (n *Node) AddCampaign(c Campaign) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if c.Goal == nil {
		c.Goal = new(big.Int)
	}
	if c.AmountRaised == nil {
		c.AmountRaised = new(big.Int)
	}
	n.campaigns = append(n.campaigns, &c)
	return uint64(len(n.campaigns))
}

// Campaign returns a copy of campaign id.
func (n *Node) Campaign(id uint64) Campaign {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := *n.campaigns[id-1]
	c.Goal = new(big.Int).Set(c.Goal)
	c.AmountRaised = new(big.Int).Set(c.AmountRaised)
	return c
}

// Fund credits amount tokens to addr.
func (n *Node) Fund(addr common.Address, amount *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.balances[addr] = new(big.Int).Add(n.balanceOf(addr), amount)
}

// Balance returns addr's token balance.
func (n *Node) Balance(addr common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return new(big.Int).Set(n.balanceOf(addr))
}

// SetAllowance sets owner's allowance for the platform.
func (n *Node) SetAllowance(owner common.Address, amount *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.allowances[allowanceKey{owner, n.Platform}] = new(big.Int).Set(amount)
}

// Allowance returns owner's allowance for the platform.
func (n *Node) Allowance(owner common.Address) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return new(big.Int).Set(n.allowanceOf(owner, n.Platform))
}

// Sent lists the contract methods of every broadcast transaction in order.
func (n *Node) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

// Calls counts eth_call requests for a contract method.
func (n *Node) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// FailReads makes every eth_call return a server error.
func (n *Node) FailReads(fail bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failReads = fail
}

// RevertOnMine makes transactions calling method pass simulation but mine
// with status 0.
func (n *Node) RevertOnMine(method string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.revertOnMine[method] = true
}

// --- JSON-RPC ---

func (n *Node) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	result, e := n.dispatch(req.Method, req.Params)
	n.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if e != nil {
		resp["error"] = e
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

type callParams struct {
	From string `json:"from"`
	To   string `json:"to"`
	Data string `json:"data"`
}

func (n *Node) dispatch(method string, params []json.RawMessage) (interface{}, *rpcErr) {
	switch method {
	case "eth_chainId":
		return hexutil.EncodeBig(n.ChainID), nil
	case "eth_blockNumber":
		return hexutil.EncodeUint64(n.block), nil
	case "eth_gasPrice":
		return "0x3b9aca00", nil
	case "eth_getTransactionCount":
		var addr string
		if err := param(params, 0, &addr); err != nil {
			return nil, err
		}
		return hexutil.EncodeUint64(n.nonces[common.HexToAddress(addr)]), nil
	case "eth_call", "eth_estimateGas":
		var p callParams
		if err := param(params, 0, &p); err != nil {
			return nil, err
		}
		data, derr := hexutil.Decode(p.Data)
		if derr != nil {
			return nil, &rpcErr{Code: -32602, Message: derr.Error()}
		}
		if method == "eth_call" && n.failReads {
			return nil, &rpcErr{Code: -32000, Message: "upstream unavailable"}
		}
		out, name, reason := n.execute(common.HexToAddress(p.From), common.HexToAddress(p.To), data, false)
		if method == "eth_call" {
			n.calls[name]++
		}
		if reason != "" {
			return nil, revert(reason)
		}
		if method == "eth_estimateGas" {
			return "0x30d40", nil
		}
		return hexutil.Encode(out), nil
	case "eth_sendRawTransaction":
		var s string
		if err := param(params, 0, &s); err != nil {
			return nil, err
		}
		return n.mine(s)
	case "eth_getTransactionReceipt":
		var s string
		if err := param(params, 0, &s); err != nil {
			return nil, err
		}
		status, ok := n.receipts[common.HexToHash(s)]
		if !ok {
			return nil, nil
		}
		return map[string]string{
			"status":      hexutil.EncodeUint64(status),
			"blockNumber": hexutil.EncodeUint64(n.block),
			"gasUsed":     "0x5208",
		}, nil
	}
	return nil, &rpcErr{Code: -32601, Message: fmt.Sprintf("method %s not supported", method)}
}

func (n *Node) mine(rawHex string) (interface{}, *rpcErr) {
	raw, err := hexutil.Decode(rawHex)
	if err != nil {
		return nil, &rpcErr{Code: -32602, Message: err.Error()}
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, &rpcErr{Code: -32602, Message: err.Error()}
	}
	from, err := types.Sender(types.LatestSignerForChainID(n.ChainID), tx)
	if err != nil {
		return nil, &rpcErr{Code: -32000, Message: "invalid sender: " + err.Error()}
	}
	if tx.Nonce() != n.nonces[from] {
		return nil, &rpcErr{Code: -32000, Message: "nonce too low"}
	}
	n.nonces[from]++
	n.block++

	status := uint64(1)
	to := common.Address{}
	if tx.To() != nil {
		to = *tx.To()
	}
	name := n.methodName(to, tx.Data())
	if n.revertOnMine[name] {
		status = 0
	} else if _, _, reason := n.execute(from, to, tx.Data(), true); reason != "" {
		status = 0
	}
	n.sent = append(n.sent, name)
	n.receipts[tx.Hash()] = status
	return tx.Hash().Hex(), nil
}

func (n *Node) methodName(to common.Address, data []byte) string {
	parsed, ok := n.abiFor(to)
	if !ok || len(data) < 4 {
		return ""
	}
	m, err := parsed.MethodById(data[:4])
	if err != nil {
		return ""
	}
	return m.Name
}

func (n *Node) abiFor(to common.Address) (abi.ABI, bool) {
	switch to {
	case n.Platform:
		return n.platformABI, true
	case n.Token:
		return n.tokenABI, true
	}
	return abi.ABI{}, false
}

// execute runs one call. With commit unset state is left untouched. A
// non-empty reason means the call reverted.
func (n *Node) execute(from, to common.Address, data []byte, commit bool) ([]byte, string, string) {
	parsed, ok := n.abiFor(to)
	if !ok || len(data) < 4 {
		return nil, "", "no contract at " + to.Hex()
	}
	m, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, "", "unknown selector"
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, m.Name, "bad calldata"
	}

	var out []interface{}
	var reason string
	if to == n.Platform {
		out, reason = n.platformCall(from, m.Name, args, commit)
	} else {
		out, reason = n.tokenCall(from, m.Name, args, commit)
	}
	if reason != "" {
		return nil, m.Name, reason
	}
	packed, err := m.Outputs.Pack(out...)
	if err != nil {
		return nil, m.Name, "packing output: " + err.Error()
	}
	return packed, m.Name, ""
}

type campaignTuple struct {
	Creator      common.Address
	Title        string
	Description  string
	Goal         *big.Int
	AmountRaised *big.Int
	Status       uint8
}

func (n *Node) platformCall(from common.Address, method string, args []interface{}, commit bool) ([]interface{}, string) {
	switch method {
	case "getCampaigns":
		list := make([]campaignTuple, len(n.campaigns))
		for i, c := range n.campaigns {
			list[i] = campaignTuple(*c)
		}
		return []interface{}{list}, ""
	case "getContributionByUser":
		id, user := args[0].(*big.Int).Uint64(), args[1].(common.Address)
		v := new(big.Int)
		if m, ok := n.contributions[id]; ok && m[user] != nil {
			v.Set(m[user])
		}
		return []interface{}{v}, ""
	case "contribute":
		id, amount := args[0].(*big.Int).Uint64(), args[1].(*big.Int)
		c, reason := n.lookup(id)
		if reason != "" {
			return nil, reason
		}
		if c.Status != StatusActive {
			return nil, "campaign is not active"
		}
		if n.allowanceOf(from, n.Platform).Cmp(amount) < 0 {
			return nil, "ERC20: insufficient allowance"
		}
		if n.balanceOf(from).Cmp(amount) < 0 {
			return nil, "ERC20: transfer amount exceeds balance"
		}
		if !commit {
			return nil, ""
		}
		key := allowanceKey{from, n.Platform}
		n.allowances[key] = new(big.Int).Sub(n.allowanceOf(from, n.Platform), amount)
		n.balances[from] = new(big.Int).Sub(n.balanceOf(from), amount)
		c.AmountRaised = new(big.Int).Add(c.AmountRaised, amount)
		if n.contributions[id] == nil {
			n.contributions[id] = make(map[common.Address]*big.Int)
		}
		prev := n.contributions[id][from]
		if prev == nil {
			prev = new(big.Int)
		}
		n.contributions[id][from] = new(big.Int).Add(prev, amount)
		if c.AmountRaised.Cmp(c.Goal) >= 0 {
			c.Status = StatusCompleted
		}
		return nil, ""
	case "withdraw":
		id := args[0].(*big.Int).Uint64()
		c, reason := n.lookup(id)
		if reason != "" {
			return nil, reason
		}
		if c.Creator != from {
			return nil, "only the creator can withdraw"
		}
		if c.Status != StatusCompleted {
			return nil, "campaign is not completed"
		}
		if !commit {
			return nil, ""
		}
		c.Status = StatusClaimed
		n.balances[from] = new(big.Int).Add(n.balanceOf(from), c.AmountRaised)
		return nil, ""
	}
	return nil, "unsupported platform method " + method
}

func (n *Node) tokenCall(from common.Address, method string, args []interface{}, commit bool) ([]interface{}, string) {
	switch method {
	case "symbol", "name":
		return []interface{}{"USDC"}, ""
	case "decimals":
		return []interface{}{uint8(6)}, ""
	case "balanceOf":
		return []interface{}{new(big.Int).Set(n.balanceOf(args[0].(common.Address)))}, ""
	case "allowance":
		return []interface{}{new(big.Int).Set(n.allowanceOf(args[0].(common.Address), args[1].(common.Address)))}, ""
	case "approve":
		if commit {
			n.allowances[allowanceKey{from, args[0].(common.Address)}] = new(big.Int).Set(args[1].(*big.Int))
		}
		return []interface{}{true}, ""
	}
	return nil, "unsupported token method " + method
}

func (n *Node) lookup(id uint64) (*Campaign, string) {
	if id == 0 || id > uint64(len(n.campaigns)) {
		return nil, "campaign does not exist"
	}
	return n.campaigns[id-1], ""
}

func (n *Node) balanceOf(addr common.Address) *big.Int {
	if b := n.balances[addr]; b != nil {
		return b
	}
	return new(big.Int)
}

func (n *Node) allowanceOf(owner, spender common.Address) *big.Int {
	if a := n.allowances[allowanceKey{owner, spender}]; a != nil {
		return a
	}
	return new(big.Int)
}

func param(params []json.RawMessage, i int, v interface{}) *rpcErr {
	if i >= len(params) {
		return &rpcErr{Code: -32602, Message: fmt.Sprintf("missing param %d", i)}
	}
	if err := json.Unmarshal(params[i], v); err != nil {
		return &rpcErr{Code: -32602, Message: err.Error()}
	}
	return nil
}

// revert encodes reason the way nodes report Error(string) reverts.
func revert(reason string) *rpcErr {
	typ, _ := abi.NewType("string", "", nil)
	payload, _ := abi.Arguments{{Type: typ}}.Pack(reason)
	sel := contract.Selector("Error(string)")
	return &rpcErr{
		Code:    3,
		Message: "execution reverted: " + reason,
		Data:    hexutil.Encode(append(sel[:], payload...)),
	}
}
