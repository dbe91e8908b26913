package chain

import (
	"errors"
	"sort"
	"strings"
)

// ErrChainNotFound is returned when a chain is not in the registry.
var ErrChainNotFound = errors.New("chain not found")

// Network modes.
const (
	ModeMainnet = "mainnet"
	ModeTestnet = "testnet"
)

// Chain holds the metadata w3fund needs for one EVM chain.
type Chain struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	ChainID         int64    `json:"chain_id"`
	TestnetChainID  int64    `json:"testnet_chain_id"`
	NativeCurrency  string   `json:"native_currency"`
	MainnetRPCs     []string `json:"mainnet_rpcs"`
	TestnetRPCs     []string `json:"testnet_rpcs"`
	MainnetExplorer string   `json:"mainnet_explorer"`
	TestnetExplorer string   `json:"testnet_explorer"`
	TestnetName     string   `json:"testnet_name"`
	// DefaultUSDC is Circle's USDC deployment per mode, keyed by mode.
	DefaultUSDC map[string]string `json:"default_usdc,omitempty"`
}

// Registry is the chain registry.
type Registry struct {
	chains []Chain
	byName map[string]*Chain
	byID   map[int64]*Chain
}

// NewRegistry returns the registry of supported chains.
func NewRegistry() *Registry {
	chains := allChains()
	r := &Registry{
		chains: chains,
		byName: make(map[string]*Chain, len(chains)),
		byID:   make(map[int64]*Chain, len(chains)*2),
	}
	for i := range r.chains {
		c := &r.chains[i]
		r.byName[c.Name] = c
		r.byID[c.ChainID] = c
		if c.TestnetChainID != 0 {
			r.byID[c.TestnetChainID] = c
		}
	}
	return r
}

// All returns every chain, sorted by name.
func (r *Registry) All() []Chain {
	out := make([]Chain, len(r.chains))
	copy(out, r.chains)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetByName finds a chain by its slug (e.g. "base").
func (r *Registry) GetByName(name string) (*Chain, error) {
	c, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// GetByChainID finds a chain by either its mainnet or testnet chain ID.
func (r *Registry) GetByChainID(id int64) (*Chain, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrChainNotFound
	}
	return c, nil
}

// RPCs returns the RPC list for mode.
func (c *Chain) RPCs(mode string) []string {
	if mode == ModeTestnet {
		return c.TestnetRPCs
	}
	return c.MainnetRPCs
}

// Explorer returns the block explorer base URL for mode.
func (c *Chain) Explorer(mode string) string {
	if mode == ModeTestnet {
		return c.TestnetExplorer
	}
	return c.MainnetExplorer
}

// ID returns the chain ID for mode.
func (c *Chain) ID(mode string) int64 {
	if mode == ModeTestnet && c.TestnetChainID != 0 {
		return c.TestnetChainID
	}
	return c.ChainID
}

// USDC returns Circle's USDC address for mode, or "" when none is known.
func (c *Chain) USDC(mode string) string {
	return c.DefaultUSDC[mode]
}

// --- chain data ---

func allChains() []Chain {
	return []Chain{
		{
			Name: "base", DisplayName: "Base", ChainID: 8453, TestnetChainID: 84532,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			TestnetRPCs:     []string{"https://sepolia.base.org", "https://base-sepolia-rpc.publicnode.com"},
			MainnetExplorer: "https://basescan.org",
			TestnetExplorer: "https://sepolia.basescan.org",
			TestnetName:     "Base Sepolia",
			DefaultUSDC: map[string]string{
				ModeMainnet: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
				ModeTestnet: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
			},
		},
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1, TestnetChainID: 11155111,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://sepolia.gateway.tenderly.co"},
			MainnetExplorer: "https://etherscan.io",
			TestnetExplorer: "https://sepolia.etherscan.io",
			TestnetName:     "Sepolia",
			DefaultUSDC: map[string]string{
				ModeMainnet: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
				ModeTestnet: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238",
			},
		},
		{
			Name: "optimism", DisplayName: "Optimism", ChainID: 10, TestnetChainID: 11155420,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"https://mainnet.optimism.io", "https://optimism-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://sepolia.optimism.io"},
			MainnetExplorer: "https://optimistic.etherscan.io",
			TestnetExplorer: "https://sepolia-optimism.etherscan.io",
			TestnetName:     "OP Sepolia",
			DefaultUSDC: map[string]string{
				ModeMainnet: "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
				ModeTestnet: "0x5fd84259d66Cd46123540766Be93DFE6D43130D7",
			},
		},
		{
			Name: "arbitrum", DisplayName: "Arbitrum One", ChainID: 42161, TestnetChainID: 421614,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"https://arb1.arbitrum.io/rpc", "https://arbitrum-one-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://sepolia-rollup.arbitrum.io/rpc"},
			MainnetExplorer: "https://arbiscan.io",
			TestnetExplorer: "https://sepolia.arbiscan.io",
			TestnetName:     "Arbitrum Sepolia",
			DefaultUSDC: map[string]string{
				ModeMainnet: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
				ModeTestnet: "0x75faf114eafb1BDbe2F0316DF893fd58CE46AA4d",
			},
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137, TestnetChainID: 80002,
			NativeCurrency:  "POL",
			MainnetRPCs:     []string{"https://polygon-rpc.com", "https://polygon-bor-rpc.publicnode.com"},
			TestnetRPCs:     []string{"https://rpc-amoy.polygon.technology"},
			MainnetExplorer: "https://polygonscan.com",
			TestnetExplorer: "https://amoy.polygonscan.com",
			TestnetName:     "Amoy",
			DefaultUSDC: map[string]string{
				ModeMainnet: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
				ModeTestnet: "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582",
			},
		},
		{
			// Anvil / Hardhat node. Both modes point at the same endpoint.
			Name: "localhost", DisplayName: "Localhost", ChainID: 31337,
			NativeCurrency:  "ETH",
			MainnetRPCs:     []string{"http://127.0.0.1:8545"},
			TestnetRPCs:     []string{"http://127.0.0.1:8545"},
			TestnetName:     "Localhost",
		},
	}
}
