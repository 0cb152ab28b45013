// Package hdwallet derives Stacks, Bitcoin SegWit, and Bitcoin Taproot
// accounts from a BIP-39 mnemonic, following BIP-32/44/84/86 derivation
// paths. It is a pure function of (mnemonic, passphrase, network); it holds
// no state and performs no I/O.
package hdwallet

import (
	"fmt"

	"github.com/decred/dcrd/hdkeychain/v3"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// Network selects mainnet or testnet derivation paths and address prefixes.
type Network int

const (
	Mainnet Network = iota
	Testnet
)

// BIP-44-style coin types for each derivation path family (SLIP-44 registry).
const (
	coinTypeStacksMainnet  = 5757
	coinTypeBitcoinMainnet = 0
	coinTypeBitcoinTestnet = 1
)

// Account bundles the three addresses a wallet exposes for a single index,
// plus their private keys (32-byte scalars) for signing. Callers zero the
// private key fields after use.
type Account struct {
	Index uint32

	StacksAddress    string
	StacksPrivateKey []byte
	StacksPath       string

	BitcoinAddress    string // P2WPKH, bech32
	BitcoinPrivateKey []byte
	BitcoinPath       string

	TaprootAddress    string // P2TR, bech32m, key-path spend only
	TaprootPrivateKey []byte
	TaprootPath       string
}

// hdMainnetParams satisfies hdkeychain.NetworkParams with the standard
// Bitcoin mainnet extended-key version bytes. The same version bytes are
// used regardless of which chain a derived key addresses, since BIP-32
// extended keys are chain-agnostic; only the address encoding downstream
// differs by network.
type hdParams struct{}

func (hdParams) HDPrivKeyVersion() [4]byte { return [4]byte{0x04, 0x88, 0xAD, 0xE4} }
func (hdParams) HDPubKeyVersion() [4]byte  { return [4]byte{0x04, 0x88, 0xB2, 0x1E} }

// Derive computes the Account at addressIndex from seed for the given
// network. account is almost always 0; it exists to let callers derive
// multiple independent accounts from a single mnemonic.
func Derive(seed []byte, network Network, account, addressIndex uint32) (*Account, error) {
	master, err := hdkeychain.NewMaster(seed, hdParams{})
	if err != nil {
		return nil, coreerrors.Wrap(err, "deriving master key")
	}

	stacksKey, stacksPath, err := deriveChild(master, 44, coinTypeStacksMainnet, account, addressIndex)
	if err != nil {
		return nil, err
	}
	stacksAddr, stacksPriv, err := deriveStacksAccount(stacksKey, network)
	if err != nil {
		return nil, err
	}

	btcCoinType := btcoinCoinType(network)

	segwitKey, segwitPath, err := deriveChild(master, 84, btcCoinType, account, addressIndex)
	if err != nil {
		return nil, err
	}
	segwitAddr, segwitPriv, err := deriveSegwitAccount(segwitKey, network)
	if err != nil {
		return nil, err
	}

	taprootKey, taprootPath, err := deriveChild(master, 86, btcCoinType, account, addressIndex)
	if err != nil {
		return nil, err
	}
	taprootAddr, taprootPriv, err := deriveTaprootAccount(taprootKey, network)
	if err != nil {
		return nil, err
	}

	return &Account{
		Index:             addressIndex,
		StacksAddress:     stacksAddr,
		StacksPrivateKey:  stacksPriv,
		StacksPath:        stacksPath,
		BitcoinAddress:    segwitAddr,
		BitcoinPrivateKey: segwitPriv,
		BitcoinPath:       segwitPath,
		TaprootAddress:    taprootAddr,
		TaprootPrivateKey: taprootPriv,
		TaprootPath:       taprootPath,
	}, nil
}

func btcoinCoinType(network Network) uint32 {
	if network == Testnet {
		return coinTypeBitcoinTestnet
	}
	return coinTypeBitcoinMainnet
}

// deriveChild walks m/purpose'/coinType'/account'/0/addressIndex, returning
// the leaf key and the path string it was derived from.
func deriveChild(master *hdkeychain.ExtendedKey, purpose, coinType, account, addressIndex uint32) (*hdkeychain.ExtendedKey, string, error) {
	purposeKey, err := master.ChildBIP32Std(hdkeychain.HardenedKeyStart + purpose)
	if err != nil {
		return nil, "", coreerrors.Wrap(err, "deriving purpose key")
	}
	coinKey, err := purposeKey.ChildBIP32Std(hdkeychain.HardenedKeyStart + coinType)
	if err != nil {
		return nil, "", coreerrors.Wrap(err, "deriving coin type key")
	}
	accountKey, err := coinKey.ChildBIP32Std(hdkeychain.HardenedKeyStart + account)
	if err != nil {
		return nil, "", coreerrors.Wrap(err, "deriving account key")
	}
	changeKey, err := accountKey.ChildBIP32Std(0)
	if err != nil {
		return nil, "", coreerrors.Wrap(err, "deriving change key")
	}
	indexKey, err := changeKey.ChildBIP32Std(addressIndex)
	if err != nil {
		return nil, "", coreerrors.Wrap(err, "deriving address index key")
	}

	path := fmt.Sprintf("m/%d'/%d'/%d'/0/%d", purpose, coinType, account, addressIndex)
	return indexKey, path, nil
}

func privKeyBytes(key *hdkeychain.ExtendedKey) ([]byte, error) {
	serialized, err := key.SerializedPrivKey()
	if err != nil {
		return nil, coreerrors.Wrap(err, "serializing private key")
	}
	priv := make([]byte, 32)
	copy(priv, serialized)
	return priv, nil
}

func deriveStacksAccount(key *hdkeychain.ExtendedKey, network Network) (address string, priv []byte, err error) {
	priv, err = privKeyBytes(key)
	if err != nil {
		return "", nil, err
	}

	pubKey := key.SerializedPubKey()
	hash160 := cryptoprim.Hash160(pubKey)

	version := cryptoprim.StacksMainnetP2PKH
	if network == Testnet {
		version = cryptoprim.StacksTestnetP2PKH
	}

	address = cryptoprim.C32CheckEncode(version, hash160)
	return address, priv, nil
}

func deriveSegwitAccount(key *hdkeychain.ExtendedKey, network Network) (address string, priv []byte, err error) {
	priv, err = privKeyBytes(key)
	if err != nil {
		return "", nil, err
	}

	pubKey := key.SerializedPubKey()
	program := cryptoprim.Hash160(pubKey)

	hrp := "bc"
	if network == Testnet {
		hrp = "tb"
	}

	address, err = cryptoprim.EncodeSegwitAddress(hrp, 0, program)
	if err != nil {
		return "", nil, err
	}
	return address, priv, nil
}

func deriveTaprootAccount(key *hdkeychain.ExtendedKey, network Network) (address string, priv []byte, err error) {
	priv, err = privKeyBytes(key)
	if err != nil {
		return "", nil, err
	}

	internalXOnly, err := cryptoprim.XOnlyPubKey(priv)
	if err != nil {
		return "", nil, err
	}

	// Key-path-only output: tweak with an empty merkle root, per BIP-341.
	outputKey, err := cryptoprim.TweakedOutputKey(internalXOnly, nil)
	if err != nil {
		return "", nil, err
	}

	hrp := "bc"
	if network == Testnet {
		hrp = "tb"
	}

	address, err = cryptoprim.EncodeSegwitAddress(hrp, 1, outputKey)
	if err != nil {
		return "", nil, err
	}
	return address, priv, nil
}
