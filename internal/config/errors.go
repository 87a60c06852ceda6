package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrUnknownFormat indicates a config file extension with no parser.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrInvalidLogLevel indicates an unrecognised logging.level value.
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidSceneSize indicates a non-positive spawn area.
	ErrInvalidSceneSize = errors.New("invalid scene size")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path or source that failed to parse.
	Path string
	// Err is the underlying parser error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
