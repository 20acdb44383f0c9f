package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrNotLoaded       = errors.New("catalog is not loaded")
	ErrEmptyResult     = errors.New("empty result")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	ErrUnauthorized    = errors.New("unauthorized")
)

// A SchemaError reports requested columns absent from a source.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf(
		"source %q: missing columns: %s",
		e.Source, strings.Join(e.Missing, ", "),
	)
}
