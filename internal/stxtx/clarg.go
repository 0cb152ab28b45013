package stxtx

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/aibtcdev/aibtc-core/internal/clarity"
	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// ParseClarityArg parses either shorthand ("uint:100", "buff:0xdead",
// "principal:SP...") or an explicit {type, value} pair into a clarity.Value.
func ParseClarityArg(typeName string, value any) (clarity.Value, error) {
	switch strings.ToLower(typeName) {
	case "uint":
		n, err := toBigInt(value)
		if err != nil {
			return nil, err
		}
		return clarity.UInt{V: n}, nil
	case "int":
		n, err := toBigInt(value)
		if err != nil {
			return nil, err
		}
		return clarity.Int{V: n}, nil
	case "bool":
		b, err := toBool(value)
		if err != nil {
			return nil, err
		}
		return clarity.Bool{V: b}, nil
	case "buff", "buffer":
		raw, err := toBuffer(value)
		if err != nil {
			return nil, err
		}
		return clarity.Buffer{V: raw}, nil
	case "ascii", "string-ascii":
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		return clarity.StringASCII{V: s}, nil
	case "utf8", "string-utf8":
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		return clarity.StringUTF8{V: s}, nil
	case "principal":
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		return principalValue(s)
	case "none":
		return clarity.OptionalNone{}, nil
	default:
		return nil, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
			"argType": typeName,
		})
	}
}

// ParseClarityArgShorthand parses the "type:value" compact form, e.g.
// "uint:100" or "principal:SP000000000000000000002Q6VF78".
func ParseClarityArgShorthand(expr string) (clarity.Value, error) {
	typeName, raw, ok := strings.Cut(expr, ":")
	if !ok {
		return nil, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{
			"argExpression": expr,
			"reason":        "expected TYPE:VALUE",
		})
	}
	return ParseClarityArg(typeName, raw)
}

func principalValue(address string) (clarity.Value, error) {
	contractAddr, contractName, isContract := strings.Cut(address, ".")
	version, payload, err := cryptoprim.C32CheckDecode(contractAddr)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding principal %q", address)
	}
	if isContract {
		return clarity.ContractPrincipal{Version: version, Hash160: payload, ContractName: contractName}, nil
	}
	return clarity.StandardPrincipal{Version: version, Hash160: payload}, nil
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case string:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok {
			return nil, coreerrors.WithDetails(coreerrors.ErrValidation, map[string]string{"value": v})
		}
		return n, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case float64:
		return big.NewInt(int64(v)), nil
	case *big.Int:
		return v, nil
	default:
		return nil, coreerrors.New("VALIDATION_ERROR", "unsupported numeric argument type")
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, coreerrors.New("VALIDATION_ERROR", "unsupported boolean argument type")
	}
}

func toBuffer(value any) ([]byte, error) {
	s, err := toString(value)
	if err != nil {
		return nil, err
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, coreerrors.Wrap(err, "decoding buffer hex")
	}
	return raw, nil
}

func toString(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", coreerrors.New("VALIDATION_ERROR", "expected a string value")
	}
	return s, nil
}
