package core

import (
	"errors"
	"fmt"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

// TestHashShort tests fingerprint truncation
func TestHashShort(t *testing.T) {
	h := NewHash([]byte("Queries"))
	if len(h.String()) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(h.String()))
	}
	if h.Short() != h.String()[:12] {
		t.Errorf("Expected Short() to be a prefix, got %s", h.Short())
	}
}

// TestDecodeErrorMatchesSentinel tests that wrapped decode errors keep their identity
func TestDecodeErrorMatchesSentinel(t *testing.T) {
	err := NewDecodeError("report.xlsx", fmt.Errorf("zip: not a valid zip file"))
	if !errors.Is(err, ErrDecodeFailed) {
		t.Error("Expected decode error to match ErrDecodeFailed")
	}
	if errors.Is(err, ErrNoValidData) {
		t.Error("Expected decode error not to match ErrNoValidData")
	}
}
