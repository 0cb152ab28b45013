package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

func TestWrap_PreservesCodeAndExitCode(t *testing.T) {
	t.Parallel()

	wrapped := coreerrors.Wrap(coreerrors.ErrWalletNotFound, "unlocking wallet %s", "main")
	require.Error(t, wrapped)
	assert.Equal(t, "WALLET_NOT_FOUND", coreerrors.Code(wrapped))
	assert.Equal(t, coreerrors.ExitNotFound, coreerrors.ExitCode(wrapped))
	assert.True(t, errors.Is(wrapped, coreerrors.ErrWalletNotFound))
}

func TestWrap_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, coreerrors.Wrap(nil, "anything"))
}

func TestWithDetails_RedactsSensitiveKeys(t *testing.T) {
	t.Parallel()

	err := coreerrors.WithDetails(coreerrors.ErrInvalidPassword, map[string]string{
		"password":    "hunter2",
		"mnemonicKey": "abandon abandon",
		"walletId":    "123",
	})

	var ce *coreerrors.CoreError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "[REDACTED]", ce.Details["password"])
	assert.Equal(t, "[REDACTED]", ce.Details["mnemonicKey"])
	assert.Equal(t, "123", ce.Details["walletId"])
}

func TestWithSuggestion(t *testing.T) {
	t.Parallel()

	err := coreerrors.WithSuggestion(coreerrors.ErrWalletLocked, "Unlock the wallet first")
	var ce *coreerrors.CoreError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Unlock the wallet first", ce.Suggestion)
}

func TestExitCode_UnknownError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, coreerrors.ExitGeneral, coreerrors.ExitCode(errors.New("boom")))
	assert.Equal(t, coreerrors.ExitSuccess, coreerrors.ExitCode(nil))
}

func TestCode_UnknownError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "GENERAL_ERROR", coreerrors.Code(errors.New("boom")))
}
