package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/aibtcdev/aibtc-core/internal/applog"
	"github.com/aibtcdev/aibtc-core/internal/config"
	"github.com/aibtcdev/aibtc-core/internal/output"
	"github.com/aibtcdev/aibtc-core/internal/session"
	"github.com/aibtcdev/aibtc-core/internal/vault"
)

type contextKey string

const cmdCtxKey contextKey = "aibtc-cmd-ctx"

// SetCmdContext stores the CommandContext in the cobra command's context.
func SetCmdContext(cmd *cobra.Command, ctx *CommandContext) {
	cmd.SetContext(context.WithValue(cmd.Context(), cmdCtxKey, ctx))
}

// GetCmdContext retrieves the CommandContext from the cobra command's
// context. Returns nil if no context is set.
func GetCmdContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	if c, ok := ctx.Value(cmdCtxKey).(*CommandContext); ok {
		return c
	}
	return nil
}

// CommandContext holds the dependencies every command needs: the vault
// (filesystem substrate), the loaded config, the logger, the output
// formatter, and the process-lifetime session manager.
type CommandContext struct {
	Vault   *vault.Vault
	Cfg     *config.Config
	Log     *applog.Logger
	Fmt     *output.Formatter
	Session *session.Manager
}

// NewCommandContext creates a context with the given dependencies.
func NewCommandContext(v *vault.Vault, cfg *config.Config, logger *applog.Logger, formatter *output.Formatter, sess *session.Manager) *CommandContext {
	return &CommandContext{
		Vault:   v,
		Cfg:     cfg,
		Log:     logger,
		Fmt:     formatter,
		Session: sess,
	}
}

// NetworkName resolves the active network: the NETWORK env var if set,
// otherwise the network of the unlocked session's wallet, defaulting to
// testnet.
func (c *CommandContext) NetworkName() string {
	if _, ok := os.LookupEnv(config.EnvNetwork); ok {
		return config.NetworkFromEnv()
	}
	if c.Session != nil {
		if account := c.Session.GetAccount(); account != nil {
			if account.Network == 0 {
				return "mainnet"
			}
			return "testnet"
		}
	}
	return config.NetworkFromEnv()
}
