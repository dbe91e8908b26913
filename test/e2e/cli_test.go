package e2e_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "w3fund-e2e-test")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmp, "w3fund")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "W3FUND_CONFIG_DIR="+configDir, "XDG_CACHE_HOME="+filepath.Join(configDir, "cache"))
	out, err := cmd.CombinedOutput()
	return string(out), err
}

const watchAddr = "0x1234567890abcdef1234567890abcdef12345678"

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "w3fund")
}

func TestHelpListsCommands(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--help")
	require.NoError(t, err)
	for _, c := range []string{"campaigns", "contribute", "claim", "allowance", "watch", "wallet", "network", "rpc", "config", "init"} {
		assert.Contains(t, out, c)
	}
	assert.Contains(t, out, "--testnet")
	assert.Contains(t, out, "--mainnet")
	assert.Contains(t, out, "--yes")
}

func TestNetworkList(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "network", "list")
	require.NoError(t, err)
	for _, c := range []string{"base", "ethereum"} {
		assert.Contains(t, strings.ToLower(out), c)
	}
}

func TestNetworkUseUnknown(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "network", "use", "unknownchain99")
	assert.Error(t, err)
}

func TestConfigSetAndShow(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set", "platform_address", "0x00000000000000000000000000000000000f0ed1")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "get", "platform_address")
	require.NoError(t, err)
	assert.True(t, strings.EqualFold("0x00000000000000000000000000000000000f0ed1", strings.TrimSpace(out)), out)

	out, err = runCLI(t, dir, "config", "show", "--json")
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	assert.Equal(t, "testnet", raw["network_mode"])
	assert.Equal(t, "base", raw["default_network"])
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	for _, kv := range [][2]string{
		{"network_mode", "devnet"},
		{"platform_address", "0xnothex"},
		{"token_decimals", "abc"},
		{"no_such_key", "1"},
	} {
		_, err := runCLI(t, dir, "config", "set", kv[0], kv[1])
		assert.Error(t, err, "%s=%s", kv[0], kv[1])
	}
}

func TestModeFlagDoesNotPersist(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "--mainnet", "config", "set", "log_level", "info")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "get", "network_mode")
	require.NoError(t, err)
	assert.Equal(t, "testnet", strings.TrimSpace(out))
}

func TestTestnetMainnetMutuallyExclusive(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "--testnet", "--mainnet", "config", "show")
	assert.Error(t, err)
}

func TestWalletLifecycle(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "wallet", "add", "watcher", watchAddr)
	require.NoError(t, err)

	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "watcher")
	assert.Contains(t, out, "watch-only")

	_, err = runCLI(t, dir, "wallet", "use", "watcher")
	require.NoError(t, err)
	out, _ = runCLI(t, dir, "config", "get", "default_wallet")
	assert.Equal(t, "watcher", strings.TrimSpace(out))

	_, err = runCLI(t, dir, "wallet", "remove", "watcher", "--yes")
	require.NoError(t, err)
	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "watcher")
	out, _ = runCLI(t, dir, "config", "get", "default_wallet")
	assert.Empty(t, strings.TrimSpace(out))
}

func TestWalletAddInvalidAddress(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "wallet", "add", "bad", "0x123")
	assert.Error(t, err)
}

func TestWalletLockWithoutSession(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "wallet", "lock")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to clear")
}

func TestRPCAddAndList(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "rpc", "add", "base", "https://custom.rpc.url")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "rpc", "list", "base")
	require.NoError(t, err)
	assert.Contains(t, out, "custom.rpc.url")
}

func TestCampaignCommandsNeedPlatform(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{
		{"campaigns"},
		{"allowance"},
		{"watch"},
		{"claim", "1"},
		{"contribute", "1", "100"},
	} {
		out, err := runCLI(t, dir, args...)
		assert.Error(t, err, "%v", args)
		assert.Contains(t, out, "platform_address", "%v", args)
	}
}

func TestContributeRejectsBadCampaignID(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "contribute", "abc", "100")
	assert.Error(t, err)
	assert.Contains(t, out, "invalid campaign id")
}

func TestUnknownCommandShowsError(t *testing.T) {
	out, _ := runCLI(t, t.TempDir(), "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}

func TestSubcommandHelpShowsGlobalFlags(t *testing.T) {
	for _, c := range []string{"campaigns", "contribute", "claim", "watch"} {
		out, err := runCLI(t, t.TempDir(), c, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "--testnet", c)
		assert.Contains(t, out, "--wallet", c)
	}
}
