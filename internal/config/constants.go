package config

import "time"

// Timeouts and intervals shared by commands.
const (
	RPCSelectTimeout    = 10 * time.Second // benchmark / RPC selection
	ReceiptPollInterval = 2 * time.Second
)

// EnvConfigDir overrides the config directory.
const EnvConfigDir = "W3FUND_CONFIG_DIR"
