package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3fund/internal/ui"
	"github.com/Mohsinsiddi/w3fund/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag   string
	walletUnlockAll bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a watch-only wallet by address, or a signing wallet by private key.

Watch-only wallets can list campaigns with your contribution and show
allowances. Contributing and claiming need a signing wallet; its key is
stored in the OS keychain (or an encrypted file under the config dir when
no keychain is available).

Examples:
  w3fund wallet add alice 0xAbC...
  w3fund wallet add creator --key 0x...`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
		} else {
			if len(args) < 2 {
				return fmt.Errorf("address required for watch-only wallet\n  Usage: w3fund wallet add <name> <address>\n  Or for signing: w3fund wallet add <name> --key <private-key>")
			}
			if err := mgr.AddWatchOnly(name, args[1]); err != nil {
				return err
			}
			w, _ := mgr.Get(name)
			fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		}
		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: w3fund wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		wallets := mgr.List()

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: w3fund wallet add myWallet 0xYourAddress"))
			return nil
		}

		session := newSession()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
			{Title: "Session", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault || w.Name == cfg.DefaultWallet {
				def = ui.StyleSuccess.Render("✓")
			}
			cached := ""
			if _, ok := session.Get(w.KeyRef); ok && w.CanSign() {
				cached = ui.Meta("cached")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address),
				ui.Meta(walletTypeLabel(w.Type)),
				def,
				cached,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		if !assumeYes && !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if w.KeyRef != "" {
			if err := newSession().Remove(w.KeyRef); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not clear cached key: %v", err)))
			}
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Long:  "Set the default wallet. Without a name an interactive picker opens.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			wallets := mgr.List()
			if len(wallets) == 0 {
				fmt.Println(ui.Info("No wallets configured yet."))
				return nil
			}
			items := make([]ui.PickerItem, len(wallets))
			for i, w := range wallets {
				items[i] = ui.PickerItem{
					Label:    w.Name,
					SubLabel: ui.TruncateAddr(w.Address) + "  " + walletTypeLabel(w.Type),
					Value:    w.Name,
				}
			}
			picked, err := ui.PickItem("Default Wallet  ·  select to use", items, cfg.DefaultWallet)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		fmt.Println(ui.Hint("This wallet will be used for all commands when --wallet is not specified."))
		return nil
	},
}

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock [name]",
	Short: "Cache wallet key(s) for the session (skips future keychain prompts)",
	Long: `Read private keys from the keychain once and cache them in a restricted
session file, so contributions and claims run without keychain prompts.

  w3fund wallet unlock          # the default (or --wallet) wallet
  w3fund wallet unlock creator  # a specific wallet
  w3fund wallet unlock --all    # every signing wallet

Clear the cache with: w3fund wallet lock`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		session := newSession()

		var targets []*wallet.Wallet
		switch {
		case walletUnlockAll:
			for _, w := range mgr.List() {
				if w.CanSign() {
					targets = append(targets, w)
				}
			}
		default:
			name := walletName()
			if len(args) == 1 {
				name = args[0]
			}
			w, err := mgr.Resolve(name)
			if err != nil {
				return err
			}
			targets = append(targets, w)
		}
		if len(targets) == 0 {
			fmt.Println(ui.Info("No signing wallets found."))
			fmt.Println(ui.Hint("Add one with: w3fund wallet add <name> --key <private-key>"))
			return nil
		}

		fmt.Println(ui.Info("Your keychain may prompt once per wallet being unlocked."))
		var unlocked int
		for _, w := range targets {
			if _, ok := session.Get(w.KeyRef); ok {
				fmt.Println(ui.Meta(fmt.Sprintf("  %-20s already cached", w.Name)))
				continue
			}
			signer, err := mgr.Signer(w, session)
			if err == nil {
				err = signer.Unlock()
			}
			if err != nil {
				fmt.Println(ui.Err(fmt.Sprintf("  %-20s %v", w.Name, err)))
				continue
			}
			fmt.Println(ui.Success(fmt.Sprintf("  %-20s unlocked", w.Name)))
			unlocked++
		}
		if unlocked > 0 {
			fmt.Println(ui.Success(fmt.Sprintf("%d wallet(s) cached until 'w3fund wallet lock'.", unlocked)))
		}
		return nil
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Clear the session cache (re-enables keychain prompts)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session := newSession()
		if !session.Active() {
			fmt.Println(ui.Meta("No active session, nothing to clear."))
			return nil
		}
		if err := session.Clear(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
		fmt.Println(ui.Success("Session cleared. Keychain will be used on next access."))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the keychain)")
	walletUnlockCmd.Flags().BoolVar(&walletUnlockAll, "all", false, "unlock all signing wallets")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd, walletUnlockCmd, walletLockCmd)
}

// walletTypeLabel converts an internal wallet type to a user-facing label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t
	}
}

// newWalletManager creates a Manager backed by the config-dir JSON store
// and the keychain.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.KeysDir())),
	)
}

func newSession() *wallet.Session {
	return wallet.NewSession(wallet.DefaultSessionPath())
}
