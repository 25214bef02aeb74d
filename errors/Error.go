package errors

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

type Error struct {
	code       ERR
	message    string
	wrappedErr error
	data       ErrDataI
}

func (e *Error) Error() string {
	// Error() can be called on wrapped errors, which can be nil, for example predefined errors
	if e == nil {
		return "<nil>"
	}

	dataMsg := ""
	if e.Data() != nil {
		dataMsg = e.data.Error()
	}

	if e.WrappedErr() == nil {
		if dataMsg == "" {
			return fmt.Sprintf("Error: %s (error code: %d), Message: %v", e.code.Enum(), e.code, e.message)
		}

		return fmt.Sprintf("%d: %v, data: %s", e.code, e.message, dataMsg)
	}

	if dataMsg == "" {
		return fmt.Sprintf("Error: %s (error code: %d), Message: %v, Wrapped err: %v", e.code.Enum(), e.code, e.message, e.wrappedErr)
	}

	return fmt.Sprintf("Error: %s (error code: %d), Message: %v, Wrapped err: %v, Data: %s", e.code.Enum(), e.code, e.message, e.wrappedErr, dataMsg)
}

// Is reports whether error codes match.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}

	targetError, ok := target.(*Error)
	if !ok {
		return strings.Contains(e.Error(), target.Error())
	}

	if e.code == targetError.code {
		return true
	}

	if e.wrappedErr == nil {
		return false
	}

	if unwrapped := errors.Unwrap(e); unwrapped != nil {
		if ue, ok := unwrapped.(*Error); ok {
			return ue.Is(target)
		}
	}

	return false
}

func (e *Error) As(target interface{}) bool {
	if e == nil {
		return false
	}

	if targetErr, ok := target.(**Error); ok {
		*targetErr = e
		return true
	}

	// check if Data matches the target type
	if e.data != nil {
		if data, ok := e.data.(error); ok {
			return errors.As(data, target)
		}
	}

	if e.wrappedErr != nil {
		// a typed nil wrapped in an interface is not a match
		if reflect.ValueOf(e.wrappedErr).IsNil() {
			return false
		}

		return errors.As(e.wrappedErr, target)
	}

	return false
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

func (e *Error) Code() ERR {
	if e == nil {
		return ERR_UNKNOWN
	}

	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}

	return e.message
}

func (e *Error) WrappedErr() error {
	if e == nil {
		return nil
	}

	return e.wrappedErr
}

func (e *Error) Data() ErrDataI {
	if e == nil {
		return nil
	}

	return e.data
}

func (e *Error) SetData(key string, value interface{}) {
	if e.data == nil {
		e.data = &ErrData{}
	}

	var data *ErrData
	if errors.As(e.data, &data) {
		data.SetData(key, value)
	}
}

func (e *Error) GetData(key string) interface{} {
	if e.data == nil {
		return nil
	}

	return e.data.GetData(key)
}

// New creates a new *Error. If the last param is an error it is wrapped, the remaining params
// are used to format the message.
func New(code ERR, message string, params ...interface{}) *Error {
	var wErr error

	if len(params) > 0 {
		lastParam := params[len(params)-1]

		switch err := lastParam.(type) {
		case *Error:
			wErr = err
			params = params[:len(params)-1]
		case error:
			wErr = err
			params = params[:len(params)-1]
		}
	}

	if len(params) > 0 {
		//nolint:forbidigo
		message = fmt.Sprintf(message, params...)
	}

	if _, ok := ERR_name[int32(code)]; !ok {
		return &Error{
			code:       code,
			message:    "invalid error code",
			wrappedErr: wErr,
		}
	}

	return &Error{
		code:       code,
		message:    message,
		wrappedErr: wErr,
	}
}

func Join(errs ...error) error {
	var messages []string

	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}

	if len(messages) == 0 {
		return nil
	}

	return errors.New(strings.Join(messages, ", "))
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
