package stxtx

import (
	"github.com/aibtcdev/aibtc-core/internal/clarity"
	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// Comparator is a post condition's semantic comparison operator.
type Comparator string

// Comparators accepted by every post-condition constructor.
const (
	Eq  Comparator = "eq"
	Gt  Comparator = "gt"
	Gte Comparator = "gte"
	Lt  Comparator = "lt"
	Lte Comparator = "lte"
)

func (c Comparator) fungibleCode() (byte, error) {
	switch c {
	case Eq:
		return 0x01, nil
	case Gt:
		return 0x02, nil
	case Gte:
		return 0x03, nil
	case Lt:
		return 0x04, nil
	case Lte:
		return 0x05, nil
	default:
		return 0, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{"comparator": string(c)})
	}
}

// PrincipalKind distinguishes the account a post condition or transfer
// recipient refers to.
type PrincipalKind byte

// Principal kinds.
const (
	PrincipalOrigin PrincipalKind = iota
	PrincipalStandard
	PrincipalContract
)

// Principal names an account: the tx sender (Origin), an arbitrary Stacks
// address (Standard), or a contract identifier (Contract).
type Principal struct {
	Kind         PrincipalKind
	Address      string // c32 address, required for Standard and Contract
	ContractName string // required for Contract
}

func (p Principal) encode(b *buffer) error {
	switch p.Kind {
	case PrincipalOrigin:
		b.u8(0x01)
		return nil
	case PrincipalStandard:
		b.u8(0x02)
		return encodeAddress(b, p.Address)
	case PrincipalContract:
		b.u8(0x03)
		if err := encodeAddress(b, p.Address); err != nil {
			return err
		}
		return b.lpString(p.ContractName)
	default:
		return coreerrors.New("INVALID_PRINCIPAL", "unknown principal kind")
	}
}

func encodeAddress(b *buffer, address string) error {
	version, payload, err := cryptoprim.C32CheckDecode(address)
	if err != nil {
		return coreerrors.Wrap(err, "decoding Stacks address %q", address)
	}
	b.u8(version)
	b.raw(payload)
	return nil
}

// AssetInfo identifies a SIP-010/SIP-009 asset by its defining contract and
// asset name, e.g. contract "SP...token-contract" exposing asset "my-token".
type AssetInfo struct {
	ContractAddress string
	ContractName    string
	AssetName       string
}

func (a AssetInfo) encode(b *buffer) error {
	if err := encodeAddress(b, a.ContractAddress); err != nil {
		return err
	}
	if err := b.lpString(a.ContractName); err != nil {
		return err
	}
	return b.lpString(a.AssetName)
}

// PostCondition is a single guard on one asset movement made by a
// transaction; the condition aborts the transaction if violated.
type PostCondition interface {
	encode(b *buffer) error
}

// STXPostCondition guards the amount of native STX a principal may transfer.
type STXPostCondition struct {
	Principal  Principal
	Comparator Comparator
	AmountUSTX uint64
}

func (p STXPostCondition) encode(b *buffer) error {
	b.u8(byte(assetTypeSTX))
	if err := p.Principal.encode(b); err != nil {
		return err
	}
	code, err := p.Comparator.fungibleCode()
	if err != nil {
		return err
	}
	b.u8(code)
	b.u64(p.AmountUSTX)
	return nil
}

// FungiblePostCondition guards the amount of a SIP-010 token a principal may
// transfer.
type FungiblePostCondition struct {
	Principal  Principal
	Asset      AssetInfo
	Comparator Comparator
	Amount     uint64
}

func (p FungiblePostCondition) encode(b *buffer) error {
	b.u8(byte(assetTypeFungible))
	if err := p.Principal.encode(b); err != nil {
		return err
	}
	if err := p.Asset.encode(b); err != nil {
		return err
	}
	code, err := p.Comparator.fungibleCode()
	if err != nil {
		return err
	}
	b.u8(code)
	b.u64(p.Amount)
	return nil
}

// NFTComparator is the restricted comparator set valid for NFT post
// conditions: the asset either is or is not sent.
type NFTComparator string

// NFT comparators.
const (
	Sent    NFTComparator = "sent"
	NotSent NFTComparator = "not-sent"
)

// NonFungiblePostCondition guards whether a specific SIP-009 token instance
// is (or is not) sent by a principal.
type NonFungiblePostCondition struct {
	Principal  Principal
	Asset      AssetInfo
	TokenID    clarity.Value
	Comparator NFTComparator
}

func (p NonFungiblePostCondition) encode(b *buffer) error {
	b.u8(byte(assetTypeNonFungible))
	if err := p.Principal.encode(b); err != nil {
		return err
	}
	if err := p.Asset.encode(b); err != nil {
		return err
	}
	b.raw(p.TokenID.Encode())
	switch p.Comparator {
	case Sent:
		b.u8(0x10)
	case NotSent:
		b.u8(0x11)
	default:
		return coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{"comparator": string(p.Comparator)})
	}
	return nil
}

func encodePostConditions(b *buffer, conditions []PostCondition) error {
	b.u32(uint32(len(conditions)))
	for _, pc := range conditions {
		if err := pc.encode(b); err != nil {
			return err
		}
	}
	return nil
}
