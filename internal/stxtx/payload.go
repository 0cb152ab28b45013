package stxtx

import (
	"github.com/aibtcdev/aibtc-core/internal/clarity"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

const memoLength = 34

// Payload is one of the three transaction bodies this core builds.
type Payload interface {
	encode(b *buffer) error
}

// TokenTransferPayload moves native STX from the transaction's origin to
// Recipient.
type TokenTransferPayload struct {
	Recipient  Principal
	AmountUSTX uint64
	Memo       string // up to 34 bytes, null-padded
}

func (p TokenTransferPayload) encode(b *buffer) error {
	if len(p.Memo) > memoLength {
		return coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
			"field":  "memo",
			"reason": "exceeds 34 bytes",
		})
	}
	b.u8(byte(payloadTypeTokenTransfer))
	switch p.Recipient.Kind {
	case PrincipalStandard:
		b.u8(byte(principalTypeStandard))
	case PrincipalContract:
		b.u8(byte(principalTypeContract))
	default:
		return coreerrors.New("INVALID_PRINCIPAL", "token-transfer recipient must be a standard or contract principal")
	}
	if err := encodeAddress(b, p.Recipient.Address); err != nil {
		return err
	}
	if p.Recipient.Kind == PrincipalContract {
		if err := b.lpString(p.Recipient.ContractName); err != nil {
			return err
		}
	}
	b.u64(p.AmountUSTX)
	memo := make([]byte, memoLength)
	copy(memo, p.Memo)
	b.raw(memo)
	return nil
}

// ContractCallPayload invokes a public function on a deployed contract.
type ContractCallPayload struct {
	ContractAddress string
	ContractName    string
	FunctionName    string
	FunctionArgs    []clarity.Value
}

func (p ContractCallPayload) encode(b *buffer) error {
	b.u8(byte(payloadTypeContractCall))
	if err := encodeAddress(b, p.ContractAddress); err != nil {
		return err
	}
	if err := b.lpString(p.ContractName); err != nil {
		return err
	}
	if err := b.lpString(p.FunctionName); err != nil {
		return err
	}
	b.u32(uint32(len(p.FunctionArgs)))
	for _, arg := range p.FunctionArgs {
		b.raw(arg.Encode())
	}
	return nil
}

// SmartContractPayload deploys a new contract under ContractName, owned by
// the transaction's origin.
type SmartContractPayload struct {
	ContractName string
	CodeBody     string
}

func (p SmartContractPayload) encode(b *buffer) error {
	b.u8(byte(payloadTypeSmartContract))
	if err := b.lpString(p.ContractName); err != nil {
		return err
	}
	b.u32(uint32(len(p.CodeBody)))
	b.WriteString(p.CodeBody)
	return nil
}
