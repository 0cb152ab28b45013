package cli

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	"github.com/aibtcdev/aibtc-core/internal/clarity"
	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
	"github.com/aibtcdev/aibtc-core/internal/sigservice"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign and verify messages with the active session's keys",
}

// verifyNetworkFlag selects the address encoding (bech32 hrp / c32 version)
// the stateless verify-* subcommands check a signature against; the signing
// subcommands instead read the network off the unlocked session account.
var verifyNetworkFlag string

func verifyNetwork() hdwallet.Network {
	if verifyNetworkFlag == "mainnet" {
		return hdwallet.Mainnet
	}
	return hdwallet.Testnet
}

func btcHRP(network hdwallet.Network) string {
	if network == hdwallet.Testnet {
		return "tb"
	}
	return "bc"
}

func stxAddressVersion(network hdwallet.Network) byte {
	if network == hdwallet.Testnet {
		return cryptoprim.StacksTestnetP2PKH
	}
	return cryptoprim.StacksMainnetP2PKH
}

var signBitcoinMessageCmd = &cobra.Command{
	Use:   "bitcoin-message <message>",
	Short: "Sign a message with BIP-137 using the session's Bitcoin key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		sig, err := sigservice.SignBitcoinMessage(account.BtcPrivateKey, args[0])
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"signature": sig, "address": account.BtcAddress})
	},
}

var verifyBitcoinMessageCmd = &cobra.Command{
	Use:   "verify-bitcoin-message <message> <signature> <address>",
	Short: "Verify a BIP-137 Bitcoin message signature",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		ok, err := sigservice.VerifyBitcoinMessage(args[0], args[1], args[2], btcHRP(verifyNetwork()))
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]bool{"valid": ok})
	},
}

var signStacksMessageCmd = &cobra.Command{
	Use:   "stacks-message <message>",
	Short: "Sign a plain-text message with the session's Stacks key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		sig, err := sigservice.SignStacksMessage(account.StxPrivateKey, args[0])
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"signature": sig, "address": account.StxAddress})
	},
}

var verifyStacksMessageCmd = &cobra.Command{
	Use:   "verify-stacks-message <message> <signature> <address>",
	Short: "Verify a Stacks plain-text RSV message signature",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		ok, err := sigservice.VerifyStacksMessage(args[0], args[1], args[2], stxAddressVersion(verifyNetwork()))
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]bool{"valid": ok})
	},
}

var (
	sip018DomainName    string
	sip018DomainVersion string
	sip018ChainID       uint32
)

var signStructuredCmd = &cobra.Command{
	Use:   "structured <ascii-message>",
	Short: "Sign a SIP-018 structured-data string message with the session's Stacks key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		domain := sigservice.SIP018Domain{Name: sip018DomainName, Version: sip018DomainVersion, ChainID: sip018ChainID}
		value := clarity.StringASCII{V: args[0]}

		sig, err := sigservice.SignSIP018(account.StxPrivateKey, domain, value)
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"signature": sig, "address": account.StxAddress})
	},
}

var verifyStructuredCmd = &cobra.Command{
	Use:   "verify-structured <ascii-message> <signature> <address>",
	Short: "Verify a SIP-018 structured-data signature",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		domain := sigservice.SIP018Domain{Name: sip018DomainName, Version: sip018DomainVersion, ChainID: sip018ChainID}
		value := clarity.StringASCII{V: args[0]}

		ok, err := sigservice.VerifySIP018(domain, value, args[1], args[2], stxAddressVersion(verifyNetwork()))
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]bool{"valid": ok})
	},
}

var signTaprootCmd = &cobra.Command{
	Use:   "taproot-hash <32-byte-hex-hash>",
	Short: "Sign a precomputed 32-byte hash with BIP-340 Schnorr using the session's taproot key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := GetCmdContext(cmd)
		account, err := ctx.Session.RequireUnlocked()
		if err != nil {
			return err
		}

		hash, err := decodeHash32(args[0])
		if err != nil {
			return err
		}

		sig, err := sigservice.SignTaprootKeyPath(account.TaprootPrivateKey, hash[:], nil)
		if err != nil {
			return err
		}
		return ctx.Fmt.Print(map[string]string{"signature": sig, "address": account.TaprootAddress})
	},
}

func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return out, coreerrors.Wrap(err, "decoding hash hex")
	}
	if len(decoded) != 32 {
		return out, coreerrors.New("VALIDATION_ERROR", "hash must be 32 bytes")
	}
	copy(out[:], decoded)
	return out, nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag/subcommand wiring
func init() {
	signStructuredCmd.Flags().StringVar(&sip018DomainName, "domain-name", "aibtc", "SIP-018 domain name")
	signStructuredCmd.Flags().StringVar(&sip018DomainVersion, "domain-version", "1.0.0", "SIP-018 domain version")
	signStructuredCmd.Flags().Uint32Var(&sip018ChainID, "chain-id", 1, "SIP-018 chain id")
	verifyStructuredCmd.Flags().StringVar(&sip018DomainName, "domain-name", "aibtc", "SIP-018 domain name")
	verifyStructuredCmd.Flags().StringVar(&sip018DomainVersion, "domain-version", "1.0.0", "SIP-018 domain version")
	verifyStructuredCmd.Flags().Uint32Var(&sip018ChainID, "chain-id", 1, "SIP-018 chain id")

	verifyBitcoinMessageCmd.Flags().StringVar(&verifyNetworkFlag, "network", "testnet", "mainnet or testnet")
	verifyStacksMessageCmd.Flags().StringVar(&verifyNetworkFlag, "network", "testnet", "mainnet or testnet")
	verifyStructuredCmd.Flags().StringVar(&verifyNetworkFlag, "network", "testnet", "mainnet or testnet")

	signCmd.AddCommand(signBitcoinMessageCmd)
	signCmd.AddCommand(verifyBitcoinMessageCmd)
	signCmd.AddCommand(signStacksMessageCmd)
	signCmd.AddCommand(verifyStacksMessageCmd)
	signCmd.AddCommand(signStructuredCmd)
	signCmd.AddCommand(verifyStructuredCmd)
	signCmd.AddCommand(signTaprootCmd)
}
