// Package utils provides utility functions for the legame library.
//
// This package contains helper functions for various operations including:
//   - Vector math and top-K selection (vector.go)
//   - Identifier generation and environment helpers (helpers.go)
//   - Tolerant YAML decoding for loosely structured input (helpers.go)
//
// The utilities are designed to support the core legame operations without
// pulling domain logic into a shared package.
package utils
