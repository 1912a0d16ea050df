package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInstructionNotFound is returned by LoadInstructionSet when one of the
// three instruction documents does not exist.
var ErrInstructionNotFound = errors.New("instruction document not found")

// ParseError is returned when a YAML file exists but cannot be unmarshalled.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError lists every invalid setting found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}
