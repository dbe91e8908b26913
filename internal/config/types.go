package config

// Config holds all w3fund configuration.
type Config struct {
	DefaultNetwork  string              `json:"default_network"`
	NetworkMode     string              `json:"network_mode"` // "mainnet" | "testnet"
	DefaultWallet   string              `json:"default_wallet"`
	PlatformAddress string              `json:"platform_address"`
	TokenAddress    string              `json:"token_address"` // empty: the chain's USDC
	TokenDecimals   uint8               `json:"token_decimals"`
	RPCAlgorithm    string              `json:"rpc_algorithm"`  // "fastest" | "failover"
	WatchInterval   int                 `json:"watch_interval"` // seconds
	LogLevel        string              `json:"log_level"`
	CustomRPCs      map[string][]string `json:"custom_rpcs"`

	// internal: config dir path used for Save()
	configDir string
}
