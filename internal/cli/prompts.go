package cli

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// promptPassword prompts for a password with hidden input. The caller is
// responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, coreerrors.Wrap(err, "reading password")
	}
	return password, nil
}

// promptNewPassword prompts for a new password with confirmation.
func promptNewPassword() (string, error) {
	password, err := promptPassword("Enter encryption password: ")
	if err != nil {
		return "", err
	}
	defer zeroBytes(password)

	if len(password) < 8 {
		return "", coreerrors.WithSuggestion(coreerrors.ErrValidation, "password must be at least 8 characters")
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	defer zeroBytes(confirm)

	if string(password) != string(confirm) {
		return "", coreerrors.WithSuggestion(coreerrors.ErrValidation, "passwords do not match")
	}

	return string(password), nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
