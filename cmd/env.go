package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3fund/internal/chain"
	"github.com/Mohsinsiddi/w3fund/internal/config"
	"github.com/Mohsinsiddi/w3fund/internal/contract"
	"github.com/Mohsinsiddi/w3fund/internal/logger"
	"github.com/Mohsinsiddi/w3fund/internal/platform"
	"github.com/Mohsinsiddi/w3fund/internal/rpc"
	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/Mohsinsiddi/w3fund/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// connection is everything a campaign command needs after startup.
type connection struct {
	chain  *chain.Chain
	mode   string
	client *chain.EVMClient
	wallet *wallet.Wallet // nil when no wallet is configured
	env    platform.Env
}

// explorerTx returns a block explorer link for hash, or "" when the chain
// has no explorer for the current mode.
func (c *connection) explorerTx(hash common.Hash) string {
	base := c.chain.Explorer(c.mode)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/tx/" + hash.Hex()
}

// connect resolves chain, RPC, wallet and contract addresses from config
// and flags. With signing set the resolved wallet must be able to sign and
// the returned Env carries a Writer.
func connect(ctx context.Context, signing bool) (*connection, error) {
	chainName := networkFlag
	if chainName == "" {
		chainName = cfg.DefaultNetwork
	}
	c, err := chain.NewRegistry().GetByName(chainName)
	if err != nil {
		return nil, fmt.Errorf("unknown chain %q: run `w3fund network list` to see supported chains", chainName)
	}
	mode := cfg.NetworkMode

	rpcURL, err := pickBestRPC(ctx, c, mode)
	if err != nil {
		return nil, err
	}
	client := chain.NewEVMClient(rpcURL)

	conn := &connection{chain: c, mode: mode, client: client}
	conn.env = platform.Env{
		ChainID:  c.ID(mode),
		Platform: cfg.Platform(),
		Token:    tokenAddress(c, mode),
	}

	mgr := newWalletManager()
	w, err := mgr.Resolve(walletName())
	switch {
	case err == nil:
		conn.wallet = w
		conn.env.Account = w.Account()
	case signing || walletFlag != "":
		return nil, err
	}

	conn.env.Reader = contract.NewCaller(client, conn.env.Account)

	if signing {
		signer, err := mgr.Signer(w, newSession())
		if err != nil {
			return nil, fmt.Errorf("%w\n  To add a signing wallet: w3fund wallet add <name> --key <private-key>", err)
		}
		opts := []contract.SenderOption{
			contract.WithPollInterval(config.ReceiptPollInterval),
			contract.OnBroadcast(func(h common.Hash) {
				fmt.Println(ui.Info("Submitted " + ui.Addr(h.Hex())))
				if link := conn.explorerTx(h); link != "" {
					fmt.Println(ui.Hint(link))
				}
				fmt.Println(ui.Meta("Waiting for receipt…"))
			}),
		}
		if !assumeYes {
			opts = append(opts, contract.WithConfirm(ui.ConfirmTx))
		}
		conn.env.Writer = contract.NewSender(client, signer, big.NewInt(conn.env.ChainID), opts...)
	}

	logger.For(ctx).WithFields(logrus.Fields{
		"chain":    c.Name,
		"mode":     mode,
		"rpc":      rpcURL,
		"account":  conn.env.Account.Hex(),
		"platform": conn.env.Platform.Hex(),
		"token":    conn.env.Token.Hex(),
	}).Debug("connected")
	return conn, nil
}

// requirePlatform fails early with a setup hint when no platform contract
// address is configured.
func requirePlatform() error {
	if cfg.Platform() == (common.Address{}) {
		return errors.New("no platform contract configured\n  Set one with: w3fund config set platform_address 0x...")
	}
	return nil
}

// pickBestRPC merges custom and built-in RPCs and selects one with the
// configured algorithm.
func pickBestRPC(ctx context.Context, c *chain.Chain, mode string) (string, error) {
	rpcs := c.RPCs(mode)
	if custom := cfg.GetRPCs(c.Name); len(custom) > 0 {
		rpcs = append(append([]string(nil), custom...), rpcs...)
	}
	if len(rpcs) == 0 {
		return "", fmt.Errorf("no RPCs configured for %s (%s): add one with `w3fund rpc add %s <url>`", c.Name, mode, c.Name)
	}
	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	return rpc.SelectBest(ctx, rpcs, cfg.RPCAlgorithm)
}

// tokenAddress is the configured token, or the chain's USDC for mode.
func tokenAddress(c *chain.Chain, mode string) common.Address {
	if t := cfg.Token(); t != (common.Address{}) {
		return t
	}
	if usdc := c.USDC(mode); common.IsHexAddress(usdc) {
		return common.HexToAddress(usdc)
	}
	return common.Address{}
}

// walletName is --wallet, falling back to the configured default.
func walletName() string {
	if walletFlag != "" {
		return walletFlag
	}
	return cfg.DefaultWallet
}

// tokenMeta reads symbol and decimals, falling back to config when the
// token cannot be read.
func tokenMeta(ctx context.Context, env platform.Env) (string, uint8) {
	symbol, decimals := "", cfg.TokenDecimals
	if !env.HasToken() {
		return symbol, decimals
	}
	tok := env.TokenContract()
	if s, err := tok.Symbol(ctx); err == nil {
		symbol = s
	} else {
		logger.For(ctx).WithError(err).Debug("reading token symbol")
	}
	if d, err := tok.Decimals(ctx); err == nil {
		decimals = d
	} else {
		logger.For(ctx).WithError(err).Debug("reading token decimals")
	}
	return symbol, decimals
}

// errLine renders a command error for stderr.
func errLine(err error) string {
	return ui.Err(err.Error())
}
