package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/aibtcdev/aibtc-core/internal/feeresolver"
	"github.com/aibtcdev/aibtc-core/internal/stxtx"
	"github.com/aibtcdev/aibtc-core/internal/x402"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

var x402Cmd = &cobra.Command{
	Use:   "x402",
	Short: "Fetch a paid resource, settling an x402 micropayment challenge automatically",
}

var (
	x402Method      string
	x402ExplorerURL string
)

var x402PayCmd = &cobra.Command{
	Use:   "pay <url>",
	Short: "Request url, paying any x402 402-challenge with the session's Stacks key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		req, rerr := http.NewRequestWithContext(cmd.Context(), x402Method, args[0], nil)
		if rerr != nil {
			return coreerrors.Wrap(rerr, "building request")
		}

		chain := stacksClientFor(ctx)
		client := &x402.Client{
			HTTPClient:      http.DefaultClient,
			Chain:           chain,
			Fees:            feeresolver.New(chain, ctx.Log.Structured()),
			ExplorerBaseURL: x402ExplorerURL,
		}

		signer := stxtx.Signer{Network: account.Network, Address: account.StxAddress, PrivateKey: account.StxPrivateKey}
		result, err := client.Do(cmd.Context(), req, signer)
		if err != nil {
			return err
		}

		out := map[string]any{
			"statusCode": result.StatusCode,
			"paid":       result.Paid,
			"body":       string(result.Body),
		}
		if result.Settlement != nil {
			out["settlement"] = result.Settlement
		}
		if result.Recovery != nil {
			out["recovery"] = result.Recovery
		}
		return ctx.Fmt.Print(out)
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag/subcommand wiring
func init() {
	x402PayCmd.Flags().StringVar(&x402Method, "method", http.MethodGet, "HTTP method")
	x402PayCmd.Flags().StringVar(&x402ExplorerURL, "explorer-url", "", "base URL to build a recovery explorer link (txid is appended)")

	x402Cmd.AddCommand(x402PayCmd)
}
