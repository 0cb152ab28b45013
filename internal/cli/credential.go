package cli

import (
	"github.com/spf13/cobra"

	"github.com/aibtcdev/aibtc-core/internal/credential"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage encrypted API credentials",
}

var (
	credentialLabel    string
	credentialCategory string
)

var credentialSetCmd = &cobra.Command{
	Use:   "set <id> <value>",
	Short: "Add or overwrite a credential",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		password, err := promptPassword("Enter credential password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(password)

		store := credential.New(ctx.Vault)
		if err := store.Add(string(password), args[0], args[1], credentialLabel, credentialCategory); err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"status": "saved", "id": credential.NormalizeID(args[0])})
	},
}

var credentialGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Decrypt and print a credential's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		password, err := promptPassword("Enter credential password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(password)

		cred, err := credential.New(ctx.Vault).Get(string(password), args[0])
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(cred)
	},
}

var credentialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List credential metadata without decrypting values",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := GetCmdContext(cmd)
		list, err := credential.New(ctx.Vault).List()
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(list)
	},
}

var credentialDeleteConfirm string

var credentialDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		password, err := promptPassword("Enter credential password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(password)

		if err := credential.New(ctx.Vault).Delete(string(password), args[0], credentialDeleteConfirm); err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"status": "deleted"})
	},
}

var credentialRotatePasswordCmd = &cobra.Command{
	Use:   "rotate-password",
	Short: "Re-encrypt every stored credential under a new password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := GetCmdContext(cmd)
		oldPassword, err := promptPassword("Current credential password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(oldPassword)

		newPassword, err := promptNewPassword()
		if err != nil {
			return err
		}

		if err := credential.New(ctx.Vault).RotatePassword(string(oldPassword), newPassword); err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"status": "rotated"})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag/subcommand wiring
func init() {
	credentialSetCmd.Flags().StringVar(&credentialLabel, "label", "", "human-readable label")
	credentialSetCmd.Flags().StringVar(&credentialCategory, "category", "", "free-form category tag")
	credentialDeleteCmd.Flags().StringVar(&credentialDeleteConfirm, "confirm", "", "must equal "+credential.DeleteConfirmToken)

	credentialCmd.AddCommand(credentialSetCmd)
	credentialCmd.AddCommand(credentialGetCmd)
	credentialCmd.AddCommand(credentialListCmd)
	credentialCmd.AddCommand(credentialDeleteCmd)
	credentialCmd.AddCommand(credentialRotatePasswordCmd)
}
