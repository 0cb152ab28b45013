package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aibtcdev/aibtc-core/internal/config"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and edit the aibtc configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := GetCmdContext(cmd)
		return ctx.Fmt.Print(ctx.Cfg)
	},
}

var configSetActiveWalletCmd = &cobra.Command{
	Use:   "set-active-wallet <wallet-id>",
	Short: "Set the wallet used by default when no session is unlocked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		if err := config.SetActiveWallet(ctx.Vault, ctx.Cfg, args[0]); err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"activeWalletId": args[0]})
	},
}

var configSetAutoLockCmd = &cobra.Command{
	Use:   "set-autolock <minutes>",
	Short: "Set the auto-lock timeout in minutes (0 disables auto-lock)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		minutes, err := strconv.Atoi(args[0])
		if err != nil || minutes < 0 {
			return coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{"minutes": args[0]})
		}
		if err := config.SetAutoLockTimeout(ctx.Vault, ctx.Cfg, minutes); err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]int{"autoLockTimeoutMinutes": minutes})
	},
}

var configSetHiroKeyCmd = &cobra.Command{
	Use:   "set-hiro-key <api-key>",
	Short: "Set the Hiro API key used for Stacks API requests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		if err := config.SetHiroAPIKey(ctx.Vault, ctx.Cfg, args[0]); err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"status": "saved"})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for subcommand wiring
func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetActiveWalletCmd)
	configCmd.AddCommand(configSetAutoLockCmd)
	configCmd.AddCommand(configSetHiroKeyCmd)
}
