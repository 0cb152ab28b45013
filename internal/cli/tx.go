package cli

import (
	"encoding/hex"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aibtcdev/aibtc-core/internal/btctx"
	"github.com/aibtcdev/aibtc-core/internal/config"
	"github.com/aibtcdev/aibtc-core/internal/feeresolver"
	"github.com/aibtcdev/aibtc-core/internal/gateway"
	"github.com/aibtcdev/aibtc-core/internal/stxtx"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Build, sign, and broadcast Bitcoin and Stacks transactions",
}

func bitcoinClientFor(ctx *CommandContext) *gateway.BitcoinClient {
	return gateway.NewBitcoinClient(config.MempoolAPIURLFor(ctx.NetworkName()))
}

func stacksClientFor(ctx *CommandContext) *gateway.StacksClient {
	return gateway.NewStacksClient(ctx.Cfg.StacksAPIURLFor(ctx.NetworkName()), ctx.Cfg.HiroAPIKey)
}

var (
	btcSendAmount  int64
	btcFeeRate     float64
	btcSpendPolicy string
)

var txBTCSendCmd = &cobra.Command{
	Use:   "btc-send <recipient-address>",
	Short: "Build, sign, and broadcast a P2WPKH Bitcoin payment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		client := bitcoinClientFor(ctx)
		cmdCtx := cmd.Context()

		remoteUTXOs, err := client.GetUTXOs(cmdCtx, account.BtcAddress)
		if err != nil {
			return err
		}
		utxos := make([]btctx.UTXO, 0, len(remoteUTXOs))
		for _, u := range remoteUTXOs {
			utxos = append(utxos, btctx.UTXO{TxID: u.TxID, Vout: u.Vout, Amount: u.Value})
		}

		feeRate := btcFeeRate
		if feeRate == 0 {
			estimates, ferr := client.GetFeeEstimates(cmdCtx)
			if ferr != nil {
				return ferr
			}
			feeRate = estimates.HalfHourFee
		}

		policy := btctx.SpendCardinalOnly
		if btcSpendPolicy == "include-ordinals" {
			policy = btctx.SpendIncludeOrdinals
		}

		result, err := btctx.BuildP2WPKHTransaction(
			utxos, args[0], btcSendAmount, feeRate, account.BtcAddress,
			account.BtcPrivateKey, account.BtcPublicKey, btcHRP(account.Network), policy,
		)
		if err != nil {
			return err
		}

		txid, err := client.BroadcastRawTx(cmdCtx, result.TxHex)
		if err != nil {
			return err
		}

		return ctx.Fmt.Print(map[string]any{
			"txid": txid, "fee": result.Fee, "vsize": result.Vsize, "change": result.Change,
		})
	},
}

var (
	stxTransferMemo string
	stxTransferFee  string
	stxSponsored    bool
)

var txSTXTransferCmd = &cobra.Command{
	Use:   "stx-transfer <recipient-address> <amount-ustx>",
	Short: "Build, sign, and broadcast a native STX transfer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		amount, perr := strconv.ParseUint(args[1], 10, 64)
		if perr != nil {
			return coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{"amount": args[1]})
		}

		chain := stacksClientFor(ctx)
		fees := feeresolver.New(chain, ctx.Log.Structured())
		signer := stxtx.Signer{Network: account.Network, Address: account.StxAddress, PrivateKey: account.StxPrivateKey}

		result, err := stxtx.Transfer(cmd.Context(), chain, fees, signer, args[0], amount, stxtx.TransferOptions{
			Memo: stxTransferMemo, Fee: stxTransferFee, Sponsored: stxSponsored,
		})
		if err != nil {
			return err
		}

		return ctx.Fmt.Print(map[string]any{
			"txid": result.Txid, "txHex": result.TxHex, "nonce": result.Nonce, "fee": result.Fee,
		})
	},
}

var (
	inscriptionContentType string
	inscriptionFeeRate     float64
)

var txInscribeCommitCmd = &cobra.Command{
	Use:   "inscribe-commit <body-hex>",
	Short: "Plan and broadcast the commit transaction funding an ordinal inscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		body, derr := decodeBodyHex(args[0])
		if derr != nil {
			return derr
		}

		client := bitcoinClientFor(ctx)
		cmdCtx := cmd.Context()

		plan, err := btctx.PlanCommit(account.TaprootInternalPubKey, btctx.Inscription{
			ContentType: inscriptionContentType, Body: body,
		}, inscriptionFeeRate, btcHRP(account.Network))
		if err != nil {
			return err
		}

		remoteUTXOs, err := client.GetUTXOs(cmdCtx, account.BtcAddress)
		if err != nil {
			return err
		}
		utxos := make([]btctx.UTXO, 0, len(remoteUTXOs))
		for _, u := range remoteUTXOs {
			utxos = append(utxos, btctx.UTXO{TxID: u.TxID, Vout: u.Vout, Amount: u.Value})
		}

		result, err := btctx.BuildCommitTransaction(
			plan, utxos, inscriptionFeeRate, account.BtcAddress,
			account.BtcPrivateKey, account.BtcPublicKey, btcHRP(account.Network), btctx.SpendCardinalOnly,
		)
		if err != nil {
			return err
		}

		txid, err := client.BroadcastRawTx(cmdCtx, result.TxHex)
		if err != nil {
			return err
		}

		return ctx.Fmt.Print(map[string]any{
			"commitTxid":    txid,
			"commitAmount":  plan.CommitAmount,
			"commitAddress": plan.CommitAddress,
			"revealFee":     plan.RevealFee,
		})
	},
}

var txInscribeRevealCmd = &cobra.Command{
	Use:   "inscribe-reveal <commit-txid> <commit-amount> <body-hex> <recipient-taproot-address>",
	Short: "Build and broadcast the reveal transaction for a previously committed inscription",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		commitAmount, perr := strconv.ParseInt(args[1], 10, 64)
		if perr != nil {
			return coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{"commitAmount": args[1]})
		}
		body, derr := decodeBodyHex(args[2])
		if derr != nil {
			return derr
		}

		plan, err := btctx.PlanCommit(account.TaprootInternalPubKey, btctx.Inscription{
			ContentType: inscriptionContentType, Body: body,
		}, inscriptionFeeRate, btcHRP(account.Network))
		if err != nil {
			return err
		}

		result, err := btctx.BuildRevealTransaction(
			plan, args[0], commitAmount, args[3], account.TaprootPrivateKey, btcHRP(account.Network),
		)
		if err != nil {
			return err
		}

		client := bitcoinClientFor(ctx)
		txid, err := client.BroadcastRawTx(cmd.Context(), result.TxHex)
		if err != nil {
			return err
		}

		return ctx.Fmt.Print(map[string]any{"revealTxid": txid, "fee": result.Fee, "vsize": result.Vsize})
	},
}

var (
	contractCallContractAddr string
	contractCallContractName string
	contractCallFunctionName string
	contractCallFee          string
)

var txContractCallCmd = &cobra.Command{
	Use:   "contract-call",
	Short: "Build, sign, and broadcast a Stacks contract-call transaction with no arguments",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		chain := stacksClientFor(ctx)
		fees := feeresolver.New(chain, ctx.Log.Structured())
		signer := stxtx.Signer{Network: account.Network, Address: account.StxAddress, PrivateKey: account.StxPrivateKey}

		result, err := stxtx.CallContract(cmd.Context(), chain, fees, signer, stxtx.ContractCallOptions{
			ContractAddress: contractCallContractAddr,
			ContractName:    contractCallContractName,
			FunctionName:    contractCallFunctionName,
			Fee:             contractCallFee,
		})
		if err != nil {
			return err
		}

		return ctx.Fmt.Print(map[string]any{
			"txid": result.Txid, "txHex": result.TxHex, "nonce": result.Nonce, "fee": result.Fee,
		})
	},
}

func decodeBodyHex(s string) ([]byte, error) {
	body, err := hex.DecodeString(s)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding inscription body hex")
	}
	return body, nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag/subcommand wiring
func init() {
	txBTCSendCmd.Flags().Int64Var(&btcSendAmount, "amount", 0, "amount to send, in satoshis")
	txBTCSendCmd.Flags().Float64Var(&btcFeeRate, "fee-rate", 0, "sat/vByte (0 fetches the current half-hour estimate)")
	txBTCSendCmd.Flags().StringVar(&btcSpendPolicy, "spend-policy", "cardinal-only", "cardinal-only or include-ordinals")

	txSTXTransferCmd.Flags().StringVar(&stxTransferMemo, "memo", "", "transfer memo")
	txSTXTransferCmd.Flags().StringVar(&stxTransferFee, "fee", "medium", "fee expression: low, medium, high, or a literal uSTX amount")
	txSTXTransferCmd.Flags().BoolVar(&stxSponsored, "sponsored", false, "mark the transaction sponsor-paid and return it unsigned-by-sponsor")

	txInscribeCommitCmd.Flags().StringVar(&inscriptionContentType, "content-type", "text/plain;charset=utf-8", "inscription content MIME type")
	txInscribeCommitCmd.Flags().Float64Var(&inscriptionFeeRate, "fee-rate", 0, "sat/vByte for both commit and reveal")
	txInscribeRevealCmd.Flags().StringVar(&inscriptionContentType, "content-type", "text/plain;charset=utf-8", "inscription content MIME type")
	txInscribeRevealCmd.Flags().Float64Var(&inscriptionFeeRate, "fee-rate", 0, "sat/vByte used when the commit was planned")

	txContractCallCmd.Flags().StringVar(&contractCallContractAddr, "contract-address", "", "deploying address of the target contract")
	txContractCallCmd.Flags().StringVar(&contractCallContractName, "contract-name", "", "name of the target contract")
	txContractCallCmd.Flags().StringVar(&contractCallFunctionName, "function", "", "public function to invoke")
	txContractCallCmd.Flags().StringVar(&contractCallFee, "fee", "medium", "fee expression: low, medium, high, or a literal uSTX amount")

	txCmd.AddCommand(txBTCSendCmd)
	txCmd.AddCommand(txSTXTransferCmd)
	txCmd.AddCommand(txInscribeCommitCmd)
	txCmd.AddCommand(txInscribeRevealCmd)
	txCmd.AddCommand(txContractCallCmd)
}
