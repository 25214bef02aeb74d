// Package errors provides the typed error used across the frozen-TXO registry and helpers to
// categorize it.
package errors

import (
	"context"
	"errors"
)

// IsStorageError reports whether err was raised by the key-value substrate.
func IsStorageError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_STORAGE_ERROR,
			ERR_STORAGE_UNAVAILABLE,
			ERR_STORAGE_NOT_STARTED:
			return true
		}
	}

	return false
}

// IsFrozenRejection reports whether err is a spend rejection caused by a frozen input,
// either for a new transaction or for a transaction inside a block.
func IsFrozenRejection(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_TX_INPUTS_FROZEN,
			ERR_BLOCK_TX_INPUTS_FROZEN:
			return true
		}
	}

	return false
}

// IsContextError determines if an error is context-related (canceled or deadline exceeded).
func IsContextError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_CONTEXT_CANCELED:
			return true
		}
	}

	return false
}

// GetErrorCategory returns a short category label, used for logging and process exit codes.
func GetErrorCategory(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsFrozenRejection(err):
		return "frozen"
	case IsStorageError(err):
		return "storage"
	case IsContextError(err):
		return "context"
	default:
		return "other"
	}
}
