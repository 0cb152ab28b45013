package hdwallet

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/cosmos/go-bip39"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// MnemonicWordCount is the only word count this module generates or accepts:
// a 24-word BIP-39 phrase (256 bits of entropy).
const MnemonicWordCount = 24

var (
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	numberedListRegex = regexp.MustCompile(`(?m)(?:^|\s)\d+[.):]\s*`)
	bulletListRegex   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
)

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", coreerrors.Wrap(err, "generating entropy")
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", coreerrors.Wrap(err, "generating mnemonic")
	}
	return mnemonic, nil
}

// ValidateMnemonic checks word count, word-list membership, and checksum.
func ValidateMnemonic(mnemonic string) error {
	if mnemonic == "" {
		return coreerrors.ErrInvalidMnemonic
	}

	normalized := NormalizeMnemonicInput(mnemonic)
	if len(strings.Fields(normalized)) != MnemonicWordCount {
		return coreerrors.ErrInvalidMnemonic
	}
	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		return coreerrors.ErrInvalidMnemonic
	}
	return nil
}

// NormalizeMnemonicInput lowercases the phrase, strips numbered-list and
// bullet prefixes a user might paste in from a backup note, replaces commas
// with spaces, and collapses whitespace.
func NormalizeMnemonicInput(input string) string {
	input = strings.ToLower(input)
	input = numberedListRegex.ReplaceAllString(input, " ")
	input = bulletListRegex.ReplaceAllString(input, " ")
	input = strings.ReplaceAll(input, ",", " ")
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// MnemonicToSeed converts a validated 24-word mnemonic and optional
// passphrase into a 64-byte BIP-39 seed.
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	normalized := NormalizeMnemonicInput(mnemonic)
	if err := ValidateMnemonic(normalized); err != nil {
		return nil, err
	}
	return bip39.NewSeed(normalized, passphrase), nil
}

// IsValidWord reports whether word appears in the BIP-39 English word list.
func IsValidWord(word string) bool {
	word = strings.ToLower(word)
	for _, w := range bip39.WordList {
		if w == word {
			return true
		}
	}
	return false
}

// MaxTypoDistance is the largest Levenshtein distance considered close
// enough to suggest as a correction.
const MaxTypoDistance = 2

// TypoInfo describes one misspelled word and its nearest BIP-39 candidate.
type TypoInfo struct {
	Index      int
	Word       string
	Suggestion string
	Distance   int
}

// SuggestWord returns the closest BIP-39 word to input, or "" if the nearest
// match is farther than MaxTypoDistance.
func SuggestWord(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var suggestion string
	for _, word := range bip39.WordList {
		dist := levenshtein.ComputeDistance(input, word)
		if dist == 0 {
			return word
		}
		if dist < minDist {
			minDist = dist
			suggestion = word
		}
	}
	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

// DetectTypos scans a mnemonic for words outside the BIP-39 list and
// suggests corrections, so a keystore import can guide the user to the
// single mistyped word instead of a bare InvalidMnemonic error.
func DetectTypos(mnemonic string) []TypoInfo {
	if mnemonic == "" {
		return nil
	}

	words := strings.Fields(NormalizeMnemonicInput(mnemonic))
	var typos []TypoInfo
	for i, word := range words {
		if IsValidWord(word) {
			continue
		}
		suggestion := SuggestWord(word)
		distance := 0
		if suggestion != "" {
			distance = levenshtein.ComputeDistance(word, suggestion)
		}
		typos = append(typos, TypoInfo{Index: i, Word: word, Suggestion: suggestion, Distance: distance})
	}
	return typos
}

// FormatTypoSuggestions renders DetectTypos output as human-readable lines.
func FormatTypoSuggestions(typos []TypoInfo) string {
	if len(typos) == 0 {
		return ""
	}

	var b strings.Builder
	for i, typo := range typos {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("Word ")
		b.WriteString(strconv.Itoa(typo.Index + 1))
		b.WriteString(": '")
		b.WriteString(typo.Word)
		b.WriteByte('\'')
		if typo.Suggestion != "" {
			b.WriteString(" - did you mean '")
			b.WriteString(typo.Suggestion)
			b.WriteString("'?")
		} else {
			b.WriteString(" is not a valid BIP39 word")
		}
	}
	return b.String()
}
