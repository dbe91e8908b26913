package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

const (
	defaultNetwork   = "base"
	defaultMode      = "testnet"
	defaultAlgorithm = "fastest"
	defaultDecimals  = 6
	defaultInterval  = 10
	defaultLogLevel  = "warn"

	configFile  = "config.json"
	walletsFile = "wallets.json"
	keysDir     = "keys"
)

// ErrUnknownKey is returned by Set and Get for keys that do not exist.
var ErrUnknownKey = errors.New("unknown config key")

// ResolveDir picks the config directory: the explicit flag value, then
// $W3FUND_CONFIG_DIR, then ~/.w3fund.
func ResolveDir(flagDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".w3fund"), nil
}

// Load reads config from dir, or returns defaults when no file exists yet.
// An empty dir is resolved with ResolveDir.
func Load(dir string) (*Config, error) {
	dir, err := ResolveDir(dir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string { return c.configDir }

// WalletsPath is where wallet metadata is stored.
func (c *Config) WalletsPath() string { return filepath.Join(c.configDir, walletsFile) }

// KeysDir is where the file keyring backend keeps encrypted keys.
func (c *Config) KeysDir() string { return filepath.Join(c.configDir, keysDir) }

// Testnet reports whether the network mode is testnet.
func (c *Config) Testnet() bool { return c.NetworkMode == "testnet" }

// Platform returns the configured platform contract address, zero if unset.
func (c *Config) Platform() common.Address {
	if !common.IsHexAddress(c.PlatformAddress) {
		return common.Address{}
	}
	return common.HexToAddress(c.PlatformAddress)
}

// Token returns the configured token address, zero if unset.
func (c *Config) Token() common.Address {
	if !common.IsHexAddress(c.TokenAddress) {
		return common.Address{}
	}
	return common.HexToAddress(c.TokenAddress)
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[chain]
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{
		"default_network",
		"network_mode",
		"default_wallet",
		"platform_address",
		"token_address",
		"token_decimals",
		"rpc_algorithm",
		"watch_interval",
		"log_level",
	}
}

// Get returns the string form of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "default_network":
		return c.DefaultNetwork, nil
	case "network_mode":
		return c.NetworkMode, nil
	case "default_wallet":
		return c.DefaultWallet, nil
	case "platform_address":
		return c.PlatformAddress, nil
	case "token_address":
		return c.TokenAddress, nil
	case "token_decimals":
		return strconv.Itoa(int(c.TokenDecimals)), nil
	case "rpc_algorithm":
		return c.RPCAlgorithm, nil
	case "watch_interval":
		return strconv.Itoa(c.WatchInterval), nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set validates value and assigns it to key. It does not save.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "default_network":
		c.DefaultNetwork = strings.ToLower(value)
	case "network_mode":
		v := strings.ToLower(value)
		if v != "mainnet" && v != "testnet" {
			return fmt.Errorf("network_mode must be mainnet or testnet, got %q", value)
		}
		c.NetworkMode = v
	case "default_wallet":
		c.DefaultWallet = value
	case "platform_address", "token_address":
		if value != "" && !common.IsHexAddress(value) {
			return fmt.Errorf("%s: invalid address %q", key, value)
		}
		addr := ""
		if value != "" {
			addr = common.HexToAddress(value).Hex()
		}
		if key == "platform_address" {
			c.PlatformAddress = addr
		} else {
			c.TokenAddress = addr
		}
	case "token_decimals":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil || n > 77 {
			return fmt.Errorf("token_decimals must be an integer between 0 and 77, got %q", value)
		}
		c.TokenDecimals = uint8(n)
	case "rpc_algorithm":
		v := strings.ToLower(value)
		if v != "fastest" && v != "failover" {
			return fmt.Errorf("rpc_algorithm must be fastest or failover, got %q", value)
		}
		c.RPCAlgorithm = v
	case "watch_interval":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("watch_interval must be a positive number of seconds, got %q", value)
		}
		c.WatchInterval = n
	case "log_level":
		lvl, err := logrus.ParseLevel(value)
		if err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
		c.LogLevel = lvl.String()
	default:
		return fmt.Errorf("%w: %s (valid: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Pairs returns every key with its current value, plus custom RPCs.
func (c *Config) Pairs() [][2]string {
	out := make([][2]string, 0, len(Keys())+len(c.CustomRPCs))
	for _, k := range Keys() {
		v, _ := c.Get(k)
		out = append(out, [2]string{k, v})
	}
	chains := make([]string, 0, len(c.CustomRPCs))
	for name := range c.CustomRPCs {
		chains = append(chains, name)
	}
	sort.Strings(chains)
	for _, name := range chains {
		out = append(out, [2]string{"custom_rpcs." + name, strings.Join(c.CustomRPCs[name], ", ")})
	}
	return out
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		NetworkMode:    defaultMode,
		TokenDecimals:  defaultDecimals,
		RPCAlgorithm:   defaultAlgorithm,
		WatchInterval:  defaultInterval,
		LogLevel:       defaultLogLevel,
		CustomRPCs:     make(map[string][]string),
		configDir:      dir,
	}
}
