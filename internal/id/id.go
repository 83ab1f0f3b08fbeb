// Package id generates identifiers for binders and user-added roster entries.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// shortAlphabet keeps suffixes safe inside slot keys, which are compared case-sensitively
// and embedded after hyphens.
const shortAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "bnd-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Short returns a random lowercase alphanumeric string of length n.
func Short(n int) (string, error) {
	s, err := gonanoid.Generate(shortAlphabet, n)
	if err != nil {
		return "", fmt.Errorf("generate short id: %w", err)
	}
	return s, nil
}
