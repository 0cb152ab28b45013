// Package cli implements the aibtc-core command-line interface: a thin
// cobra command tree that exercises the wallet, credential, signature, and
// transaction-builder packages from a terminal. Detailed flag surface and
// output formatting are a convenience, not the product; the commands exist
// to prove the core is wired end-to-end.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aibtcdev/aibtc-core/internal/applog"
	"github.com/aibtcdev/aibtc-core/internal/config"
	"github.com/aibtcdev/aibtc-core/internal/output"
	"github.com/aibtcdev/aibtc-core/internal/session"
	"github.com/aibtcdev/aibtc-core/internal/vault"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

var (
	homeDir      string
	outputFormat string
	verbose      bool

	cmdCtx *CommandContext
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "aibtc",
	Short: "Agent toolkit for Bitcoin L1 and Stacks L2",
	Long: `aibtc is a command-line substrate for autonomous agents operating on
Bitcoin L1 and Stacks L2: encrypted wallets, message/structured-data
signing, Bitcoin and Stacks transaction construction, ordinal inscriptions,
and x402 micropayments.

Example:
  aibtc wallet create main
  aibtc wallet unlock <wallet-id>
  aibtc tx stx-transfer ST... 1000000`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		formatErr(err)
		return err
	}
	return nil
}

func formatErr(err error) {
	format := output.FormatText
	if cmdCtx != nil && cmdCtx.Fmt != nil {
		format = cmdCtx.Fmt.Format()
	}
	if fmtErr := output.FormatError(os.Stderr, err, format); fmtErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (formatting failed: %v)\n", err, fmtErr)
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return coreerrors.ExitCode(err)
}

func initGlobals(cmd *cobra.Command) error {
	v, err := vault.New(homeDir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if envErr := config.ApplyEnvironment(cfg); envErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", envErr)
	}

	logLevel := applog.ParseLogLevel("error")
	if verbose {
		logLevel = applog.LogLevelDebug
	}
	logPath := v.Path("aibtc.log")
	logger, err := applog.NewLogger(logLevel, logPath)
	if err != nil {
		logger = applog.NullLogger()
	}

	explicitFormat := output.ParseFormat(outputFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter := output.NewFormatter(detectedFormat, os.Stdout)

	cmdCtx = NewCommandContext(v, cfg, logger, formatter, session.New())
	SetCmdContext(cmd, cmdCtx)

	return nil
}

func cleanup() {
	if cmdCtx != nil && cmdCtx.Log != nil {
		_ = cmdCtx.Log.Close()
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration and command wiring
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "aibtc data directory (default: ~/.aibtc)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(x402Cmd)
	rootCmd.AddCommand(configCmd)
}
