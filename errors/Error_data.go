package errors

import (
	"fmt"
)

// ErrDataI is an interface for error data that can be set and retrieved.
type ErrDataI interface {
	Error() string
	GetData(key string) interface{}
	SetData(key string, value interface{})
}

// ErrData is a generic error data structure that implements the ErrDataI interface.
type ErrData map[string]interface{}

// Error returns a string representation of the error data.
func (e *ErrData) Error() string {
	return fmt.Sprintf(" %v", *e)
}

// SetData sets a key-value pair in the error data.
func (e *ErrData) SetData(key string, value interface{}) {
	if e == nil {
		return
	}

	(*e)[key] = value
}

// GetData retrieves the value associated with a key in the error data.
func (e *ErrData) GetData(key string) interface{} {
	if e == nil {
		return nil
	}

	return (*e)[key]
}
