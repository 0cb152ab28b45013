// Package errors provides structured error handling for the aibtc core.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// Exit codes for CLI consumers of the core.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
)

// CoreError is the structured error type returned by every core package.
type CoreError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for the caller
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI consumers
}

// redactPattern matches detail keys whose values must never be surfaced verbatim.
var redactPattern = regexp.MustCompile(`(?i)(password|mnemonic|secret|privatekey)`)

func (e *CoreError) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CoreError, matching on Code.
func (e *CoreError) Is(target error) bool {
	var t *CoreError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Redact returns a copy of details with any sensitive-looking value replaced.
func Redact(details map[string]string) map[string]string {
	if details == nil {
		return nil
	}
	out := make(map[string]string, len(details))
	for k, v := range details {
		if redactPattern.MatchString(k) {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

// Sentinel errors, one per error kind the core distinguishes.
var (
	ErrGeneral = &CoreError{Code: "GENERAL_ERROR", Message: "an error occurred", ExitCode: ExitGeneral}

	// ConfigError
	ErrConfigInvalid  = &CoreError{Code: "CONFIG_INVALID", Message: "configuration is malformed or contradictory", ExitCode: ExitInput}
	ErrConfigNotFound = &CoreError{Code: "CONFIG_NOT_FOUND", Message: "configuration file not found", ExitCode: ExitNotFound}

	// WalletError subcases
	ErrWalletNotFound  = &CoreError{Code: "WALLET_NOT_FOUND", Message: "wallet not found", ExitCode: ExitNotFound}
	ErrInvalidPassword = &CoreError{Code: "INVALID_PASSWORD", Message: "invalid password", ExitCode: ExitAuth}
	ErrInvalidMnemonic = &CoreError{Code: "INVALID_MNEMONIC", Message: "invalid mnemonic phrase", ExitCode: ExitInput}
	ErrWalletLocked    = &CoreError{Code: "WALLET_LOCKED", Message: "wallet is locked", ExitCode: ExitAuth}
	ErrWalletExists    = &CoreError{Code: "WALLET_EXISTS", Message: "wallet already exists", ExitCode: ExitInput}

	// InsufficientBalance
	ErrInsufficientBalance = &CoreError{Code: "INSUFFICIENT_BALANCE", Message: "insufficient balance for transaction", ExitCode: ExitPermission}

	// TransactionError
	ErrTransaction = &CoreError{Code: "TRANSACTION_ERROR", Message: "transaction failed", ExitCode: ExitGeneral}

	// ContractError
	ErrContract = &CoreError{Code: "CONTRACT_ERROR", Message: "contract call failed", ExitCode: ExitGeneral}

	// ApiError
	ErrAPI = &CoreError{Code: "API_ERROR", Message: "remote API call failed", ExitCode: ExitGeneral}

	// AuthFailed
	ErrAuthFailed = &CoreError{Code: "AUTH_FAILED", Message: "authentication tag mismatch", ExitCode: ExitAuth}

	// ValidationError
	ErrValidation = &CoreError{Code: "VALIDATION_ERROR", Message: "validation failed", ExitCode: ExitInput}

	// Misc reused sentinels
	ErrNotFound       = &CoreError{Code: "NOT_FOUND", Message: "resource not found", ExitCode: ExitNotFound}
	ErrNoUTXOs        = &CoreError{Code: "NO_UTXOS", Message: "no UTXOs available", ExitCode: ExitInput}
	ErrDustOutput     = &CoreError{Code: "DUST_OUTPUT", Message: "output amount is below the dust limit", ExitCode: ExitInput}
	ErrInvalidAddress = &CoreError{Code: "INVALID_ADDRESS", Message: "invalid address format", ExitCode: ExitInput}
)

// New creates a new CoreError with the given code and message.
func New(code, message string) *CoreError {
	return &CoreError{Code: code, Message: message, ExitCode: ExitGeneral}
}

// Wrap wraps an error with additional context while preserving its code/suggestion.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ce *CoreError
	if errors.As(err, &ce) {
		return &CoreError{
			Code:       ce.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ce.Message),
			Details:    ce.Details,
			Suggestion: ce.Suggestion,
			Cause:      err,
			ExitCode:   ce.ExitCode,
		}
	}

	return &CoreError{Code: "GENERAL_ERROR", Message: msg, Cause: err, ExitCode: ExitGeneral}
}

// WithDetails attaches structured context to an error, redacting sensitive keys.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}
	details = Redact(details)

	var ce *CoreError
	if errors.As(err, &ce) {
		return &CoreError{
			Code:       ce.Code,
			Message:    ce.Message,
			Details:    details,
			Suggestion: ce.Suggestion,
			Cause:      ce.Cause,
			ExitCode:   ce.ExitCode,
		}
	}

	return &CoreError{Code: "GENERAL_ERROR", Message: err.Error(), Details: details, Cause: err, ExitCode: ExitGeneral}
}

// WithSuggestion attaches an actionable, human-facing suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ce *CoreError
	if errors.As(err, &ce) {
		return &CoreError{
			Code:       ce.Code,
			Message:    ce.Message,
			Details:    ce.Details,
			Suggestion: suggestion,
			Cause:      ce.Cause,
			ExitCode:   ce.ExitCode,
		}
	}

	return &CoreError{Code: "GENERAL_ERROR", Message: err.Error(), Suggestion: suggestion, Cause: err, ExitCode: ExitGeneral}
}

// ExitCode returns the exit code a CLI consumer should use for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.ExitCode
	}
	return ExitGeneral
}

// Code returns the machine-readable error code for err.
func Code(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool { return errors.Is(err, target) }

// As wraps errors.As for convenience.
func As(err error, target any) bool { return errors.As(err, target) }
