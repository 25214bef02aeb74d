package errors

var (
	ErrInvalidArgument     = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrConfiguration       = New(ERR_CONFIGURATION, "configuration error")
	ErrContextCanceled     = New(ERR_CONTEXT_CANCELED, "context canceled")
	ErrServiceNotStarted   = New(ERR_SERVICE_NOT_STARTED, "service not started")
	ErrServiceError        = New(ERR_SERVICE_ERROR, "service error")
	ErrStorageNotStarted   = New(ERR_STORAGE_NOT_STARTED, "storage not started")
	ErrTxInputsFrozen      = New(ERR_TX_INPUTS_FROZEN, "bad-txns-inputs-frozen")
	ErrBlockTxInputsFrozen = New(ERR_BLOCK_TX_INPUTS_FROZEN, "bad-txns-in-block-inputs-frozen")
)

func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}

func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}

func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}

func NewContextCanceledError(message string, params ...interface{}) error {
	return New(ERR_CONTEXT_CANCELED, message, params...)
}

func NewServiceNotStartedError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_NOT_STARTED, message, params...)
}

func NewServiceError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_ERROR, message, params...)
}

func NewStorageUnavailableError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_UNAVAILABLE, message, params...)
}

func NewStorageNotStartedError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_NOT_STARTED, message, params...)
}

func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}

// NewTxInputsFrozenError returns a *Error (not error) so callers can attach data before returning it.
func NewTxInputsFrozenError(message string, params ...interface{}) *Error {
	return New(ERR_TX_INPUTS_FROZEN, message, params...)
}

func NewBlockTxInputsFrozenError(message string, params ...interface{}) *Error {
	return New(ERR_BLOCK_TX_INPUTS_FROZEN, message, params...)
}
