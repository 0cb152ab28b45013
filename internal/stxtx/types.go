// Package stxtx builds, signs, and serializes Stacks transactions: the
// token-transfer, contract-call, and smart-contract-deploy payloads, standard
// and sponsored authorization, and the post-condition list that guards a
// contract call's asset movements.
package stxtx

import (
	"github.com/aibtcdev/aibtc-core/internal/hdwallet"
)

// chainID selects the mainnet/testnet transaction-signing domain, distinct
// from the address version byte.
const (
	chainIDMainnet uint32 = 0x00000001
	chainIDTestnet uint32 = 0x80000000
)

func chainIDFor(network hdwallet.Network) uint32 {
	if network == hdwallet.Testnet {
		return chainIDTestnet
	}
	return chainIDMainnet
}

// versionByte is the leading transaction-format byte, separate from the
// address version byte used by c32 encoding.
func versionByte(network hdwallet.Network) byte {
	if network == hdwallet.Testnet {
		return 0x80
	}
	return 0x00
}

// AnchorMode controls whether a transaction may be mined in an anchored
// (on-chain) block, a microblock, or either.
type AnchorMode byte

// Anchor modes, per the Stacks transaction wire format.
const (
	AnchorModeOnChainOnly  AnchorMode = 0x01
	AnchorModeOffChainOnly AnchorMode = 0x02
	AnchorModeAny          AnchorMode = 0x03
)

// PostConditionMode controls whether unlisted asset transfers are allowed
// (Allow) or cause the transaction to abort (Deny, the safer default).
type PostConditionMode byte

// Post-condition modes.
const (
	PostConditionModeAllow PostConditionMode = 0x01
	PostConditionModeDeny  PostConditionMode = 0x02
)

// hashMode selects how a standard principal's signer hash is computed; this
// core only ever produces single-sig P2PKH spending conditions (signer hash =
// hash160 of the compressed public key), matching the P2PKH Stacks addresses
// internal/hdwallet derives.
type hashMode byte

const (
	hashModeP2PKHNonSequential  hashMode = 0x00
	hashModeP2WPKHNonSequential hashMode = 0x02
)

// keyEncoding marks whether the public key recovered from a signature should
// be treated as compressed or uncompressed; this core always signs with
// compressed keys.
type keyEncoding byte

const (
	keyEncodingCompressed   keyEncoding = 0x00
	keyEncodingUncompressed keyEncoding = 0x01
)

// authType distinguishes a standalone transaction from one whose fee is paid
// by a separate sponsor.
type authType byte

const (
	authTypeStandard  authType = 0x04
	authTypeSponsored authType = 0x05
)

// payloadType identifies which of the three payload encodings follows the
// common transaction header.
type payloadType byte

const (
	payloadTypeTokenTransfer payloadType = 0x00
	payloadTypeSmartContract payloadType = 0x01
	payloadTypeContractCall  payloadType = 0x02
)

// principalType tags a Clarity principal as standard (address only) or
// contract (address + contract name), used by token-transfer recipients.
// Post conditions use their own 0x01-0x03 principal codes (Principal.encode).
type principalType byte

const (
	principalTypeStandard principalType = 0x05
	principalTypeContract principalType = 0x06
)

// assetType tags the asset class a post condition restricts: native STX, a
// SIP-010 fungible token, or a SIP-009 non-fungible token.
type assetType byte

const (
	assetTypeSTX         assetType = 0x00
	assetTypeFungible    assetType = 0x01
	assetTypeNonFungible assetType = 0x02
)
