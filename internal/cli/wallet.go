package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/aibtcdev/aibtc-core/internal/config"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/keystore"
	"github.com/aibtcdev/aibtc-core/internal/output"
	"github.com/aibtcdev/aibtc-core/internal/session"
)

// walletListing renders []keystore.WalletMeta as a table in text mode while
// staying a plain JSON array under -o json.
type walletListing []keystore.WalletMeta

func (w walletListing) String() string {
	table := output.NewTable("ID", "NAME", "NETWORK", "STX ADDRESS", "BTC ADDRESS")
	for _, m := range w {
		table.AddRow(m.ID, m.Name, m.Network, m.StxAddress, m.BtcAddress)
	}
	return table.String()
}

func (w walletListing) MarshalJSON() ([]byte, error) {
	return json.Marshal([]keystore.WalletMeta(w))
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage encrypted HD wallets",
}

var walletNetworkFlag string

func networkFromFlag() hdwallet.Network {
	if walletNetworkFlag == "mainnet" {
		return hdwallet.Mainnet
	}
	return hdwallet.Testnet
}

var walletCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new wallet from a freshly generated mnemonic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		password, err := promptNewPassword()
		if err != nil {
			return err
		}

		mgr := keystore.New(ctx.Vault)
		result, err := mgr.CreateWallet(args[0], password, networkFromFlag())
		if err != nil {
			return err
		}

		if setErr := config.SetActiveWallet(ctx.Vault, ctx.Cfg, result.Meta.ID); setErr != nil {
			return setErr
		}

		return ctx.Fmt.Print(map[string]any{
			"id":             result.Meta.ID,
			"name":           result.Meta.Name,
			"network":        result.Meta.Network,
			"stxAddress":     result.Meta.StxAddress,
			"btcAddress":     result.Meta.BtcAddress,
			"taprootAddress": result.Meta.TaprootAddress,
			"mnemonic":       result.Mnemonic,
		})
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a wallet from an existing mnemonic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)

		mnemonic, ok := config.ClientMnemonic()
		if !ok {
			m, err := promptPassword("Enter mnemonic: ")
			if err != nil {
				return err
			}
			defer zeroBytes(m)
			mnemonic = string(m)
		}

		password, err := promptNewPassword()
		if err != nil {
			return err
		}

		mgr := keystore.New(ctx.Vault)
		result, err := mgr.ImportWallet(args[0], mnemonic, password, networkFromFlag())
		if err != nil {
			return err
		}

		return ctx.Fmt.Print(map[string]any{
			"id":             result.Meta.ID,
			"name":           result.Meta.Name,
			"network":        result.Meta.Network,
			"stxAddress":     result.Meta.StxAddress,
			"btcAddress":     result.Meta.BtcAddress,
			"taprootAddress": result.Meta.TaprootAddress,
		})
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets in the index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := GetCmdContext(cmd)
		wallets, err := keystore.New(ctx.Vault).ListWallets()
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(walletListing(wallets))
	},
}

var unlockTTLMinutes int

var walletUnlockCmd = &cobra.Command{
	Use:   "unlock <wallet-id>",
	Short: "Unlock a wallet into the in-memory session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		password, err := promptPassword("Enter password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(password)

		unlocked, err := keystore.New(ctx.Vault).Unlock(args[0], string(password))
		if err != nil {
			return err
		}

		account, err := session.FromKeystoreAccount(args[0], networkFromWalletMeta(unlocked.Meta.Network), unlocked.Account)
		if err != nil {
			return err
		}

		ttl := time.Duration(unlockTTLMinutes) * time.Minute
		if ctx.Cfg.AutoLockTimeoutMinutes > 0 && unlockTTLMinutes == 0 {
			ttl = time.Duration(ctx.Cfg.AutoLockTimeoutMinutes) * time.Minute
		}
		ctx.Session.UnlockFromKeystore(account, ttl)

		if setErr := config.SetActiveWallet(ctx.Vault, ctx.Cfg, args[0]); setErr != nil {
			return setErr
		}

		return ctx.Fmt.Print(map[string]string{
			"status":         "unlocked",
			"stxAddress":     account.StxAddress,
			"btcAddress":     account.BtcAddress,
			"taprootAddress": account.TaprootAddress,
		})
	},
}

var walletLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the active session, zeroizing key material",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := GetCmdContext(cmd)
		ctx.Session.Lock()
		return ctx.Fmt.Print(map[string]string{"status": "locked"})
	},
}

var exportConfirm string

var walletExportMnemonicCmd = &cobra.Command{
	Use:   "export-mnemonic <wallet-id>",
	Short: "Export a wallet's mnemonic (requires password and explicit confirmation)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		password, err := promptPassword("Enter password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(password)

		mnemonic, err := keystore.New(ctx.Vault).ExportMnemonic(args[0], string(password), exportConfirm)
		if err != nil {
			return err
		}
		output.Warn("anyone with this mnemonic can recover every address in this wallet")
		return ctx.Fmt.Print(map[string]string{"mnemonic": mnemonic})
	},
}

var deleteConfirm string

var walletDeleteCmd = &cobra.Command{
	Use:   "delete <wallet-id>",
	Short: "Delete a wallet's keystore and index row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		password, err := promptPassword("Enter password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(password)

		if err := keystore.New(ctx.Vault).DeleteWallet(args[0], string(password), deleteConfirm); err != nil {
			return err
		}

		if account := ctx.Session.GetAccount(); account != nil && account.WalletID == args[0] {
			ctx.Session.Lock()
		}
		if ctx.Cfg.ActiveWalletID != nil && *ctx.Cfg.ActiveWalletID == args[0] {
			if clearErr := config.SetActiveWallet(ctx.Vault, ctx.Cfg, ""); clearErr != nil {
				return clearErr
			}
		}

		output.Success("wallet deleted")
		return ctx.Fmt.Print(map[string]string{"status": "deleted"})
	},
}

var walletSwitchCmd = &cobra.Command{
	Use:   "switch <wallet-id>",
	Short: "Change the active wallet pointer, locking any unlocked session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		ctx.Session.Lock()
		if err := config.SetActiveWallet(ctx.Vault, ctx.Cfg, args[0]); err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"status": "switched", "activeWalletId": args[0]})
	},
}

var walletRotatePasswordCmd = &cobra.Command{
	Use:   "rotate-password <wallet-id>",
	Short: "Change a wallet's encryption password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		oldPassword, err := promptPassword("Current password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(oldPassword)

		newPassword, err := promptNewPassword()
		if err != nil {
			return err
		}

		// The session is locked whether or not the rotation succeeds: any
		// plaintext material derived under the old password goes away.
		defer ctx.Session.Lock()

		if err := keystore.New(ctx.Vault).RotatePassword(args[0], string(oldPassword), newPassword); err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"status": "rotated"})
	},
}

func networkFromWalletMeta(s string) hdwallet.Network {
	if s == "mainnet" {
		return hdwallet.Mainnet
	}
	return hdwallet.Testnet
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag/subcommand wiring
func init() {
	walletCreateCmd.Flags().StringVar(&walletNetworkFlag, "network", "testnet", "mainnet or testnet")
	walletImportCmd.Flags().StringVar(&walletNetworkFlag, "network", "testnet", "mainnet or testnet")
	walletUnlockCmd.Flags().IntVar(&unlockTTLMinutes, "ttl-minutes", 0, "session TTL override in minutes (0 uses the configured auto-lock timeout)")
	walletExportMnemonicCmd.Flags().StringVar(&exportConfirm, "confirm", "", "must equal "+keystore.ExportConfirmToken)
	walletDeleteCmd.Flags().StringVar(&deleteConfirm, "confirm", "", "must equal "+keystore.DeleteConfirmToken)

	walletCmd.AddCommand(walletCreateCmd)
	walletCmd.AddCommand(walletImportCmd)
	walletCmd.AddCommand(walletListCmd)
	walletCmd.AddCommand(walletUnlockCmd)
	walletCmd.AddCommand(walletLockCmd)
	walletCmd.AddCommand(walletExportMnemonicCmd)
	walletCmd.AddCommand(walletDeleteCmd)
	walletCmd.AddCommand(walletSwitchCmd)
	walletCmd.AddCommand(walletRotatePasswordCmd)
}
