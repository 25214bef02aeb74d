// nolint:forbidigo,depguard // This test file needs the standard errors package for testing the custom errors package
package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewCustomError tests the creation of custom errors.
func TestNewCustomError(t *testing.T) {
	err := New(ERR_CONFIGURATION, "store not configured")
	require.NotNil(t, err)
	require.Equal(t, ERR_CONFIGURATION, err.code)
	require.Equal(t, "store not configured", err.message)

	secondErr := New(ERR_INVALID_ARGUMENT, "[FreezeTXOConsensus][%s] failed to write batch: ", "_teststring_", err)
	thirdErr := New(ERR_STORAGE_ERROR, "[FreezeTXOConsensus][%s] failed to write batch: ", "_teststring_", secondErr)
	anotherErr := New(ERR_STORAGE_ERROR, "Another ERR, batch failed")
	fourthErr := New(ERR_SERVICE_ERROR, "older error: ", thirdErr)
	fifthErr := New(ERR_TX_INPUTS_FROZEN, "frozen input", fourthErr)

	require.True(t, anotherErr.Is(thirdErr))
	require.True(t, fourthErr.Is(New(ERR_STORAGE_ERROR, "")))
	require.True(t, fourthErr.Is(ErrServiceError))

	require.True(t, fourthErr.Is(err))
	require.True(t, fifthErr.Is(thirdErr))
	require.True(t, fifthErr.Is(err))

	require.False(t, anotherErr.Is(fourthErr))
	require.False(t, fifthErr.Is(ErrBlockTxInputsFrozen))
}

func TestFmtErrorCustomError(t *testing.T) {
	err := New(ERR_STORAGE_NOT_STARTED, "registry closed")

	fmtError := fmt.Errorf("error: %w", err)
	require.NotNil(t, fmtError)

	require.True(t, errors.Is(fmtError, err))
	require.True(t, Is(fmtError, ErrStorageNotStarted))

	var tErr *Error
	require.True(t, As(fmtError, &tErr))
	require.Equal(t, ERR_STORAGE_NOT_STARTED, tErr.Code())
}

func TestWrappedStandardError(t *testing.T) {
	stdErr := errors.New("leveldb: closed")

	err := NewStorageError("[Get] failed to read key %x", []byte{1, 2}, stdErr)

	var tErr *Error
	require.True(t, As(err, &tErr))
	assert.Equal(t, ERR_STORAGE_ERROR, tErr.Code())
	assert.Equal(t, "[Get] failed to read key 0102", tErr.Message())
	assert.True(t, errors.Is(err, stdErr))
	assert.Contains(t, err.Error(), "leveldb: closed")
}

func TestInvalidCode(t *testing.T) {
	err := New(ERR(9999), "whatever")
	assert.Equal(t, "invalid error code", err.Message())
	assert.Equal(t, "ERR(9999)", err.Code().Enum())
}

func TestErrorData(t *testing.T) {
	err := NewTxInputsFrozenError("input %d frozen", 3)
	err.SetData("height", 100)
	err.SetData("outpoint", "abcd:1")

	assert.Equal(t, 100, err.GetData("height"))
	assert.Equal(t, "abcd:1", err.GetData("outpoint"))
	assert.Contains(t, err.Error(), "outpoint")
}

func TestCategories(t *testing.T) {
	assert.Equal(t, "none", GetErrorCategory(nil))
	assert.Equal(t, "frozen", GetErrorCategory(NewTxInputsFrozenError("x")))
	assert.Equal(t, "frozen", GetErrorCategory(fmt.Errorf("wrapped: %w", NewBlockTxInputsFrozenError("x"))))
	assert.Equal(t, "storage", GetErrorCategory(NewStorageError("x")))
	assert.Equal(t, "storage", GetErrorCategory(NewStorageNotStartedError("x")))
	assert.Equal(t, "context", GetErrorCategory(NewContextCanceledError("x")))
	assert.Equal(t, "context", GetErrorCategory(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.Equal(t, "other", GetErrorCategory(errors.New("plain")))
	assert.Equal(t, "other", GetErrorCategory(NewInvalidArgumentError("x")))

	assert.True(t, IsFrozenRejection(ErrTxInputsFrozen))
	assert.False(t, IsStorageError(ErrTxInputsFrozen))
}

func TestJoin(t *testing.T) {
	assert.Nil(t, Join(nil, nil))

	err := Join(NewStorageError("a"), nil, NewProcessingError("b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}
