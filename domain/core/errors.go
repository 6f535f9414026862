package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Ingestion errors
	ErrDecodeFailed = errors.New("content could not be decoded as a workbook")
	ErrNoValidData  = errors.New("no valid data found")

	// Store errors
	ErrEmptyInput = errors.New("refusing to replace records with an empty set")

	// Report-fetch errors
	ErrNotAuthenticated = errors.New("not authenticated with search console")
)

// NewDecodeError wraps a decoder failure with the file it came from
func NewDecodeError(filename string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDecodeFailed, filename)
	}
	return fmt.Errorf("%w: %s: %v", ErrDecodeFailed, filename, err)
}
