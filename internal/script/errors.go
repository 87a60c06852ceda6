package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Errors for script operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is raised when a record callback is not a function.
	ErrNotFunction = errors.New("record callback is not a function")

	// ErrExecutionTimeout is returned when a script runs past its timeout.
	ErrExecutionTimeout = errors.New("lua execution timeout")
)

// CallbackError is a Lua error raised inside a record callback.
type CallbackError struct {
	// Record is the record name.
	Record string
	// Callback is the failing field, such as "undo".
	Callback string
	// Message is the Lua error value as a string.
	Message string
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Record, e.Callback, e.Message)
}

func newCallbackError(record, callback string, err error) *CallbackError {
	msg := err.Error()
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	return &CallbackError{Record: record, Callback: callback, Message: msg}
}

// errorMessage returns the text handed to a Lua on_error callback.
func errorMessage(err error) string {
	var cbErr *CallbackError
	if errors.As(err, &cbErr) {
		return cbErr.Message
	}
	return err.Error()
}
