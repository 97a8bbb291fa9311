// Package util provides utility functions and common error types.
package util

import "errors"

// Sentinel errors for precondition failures shared by the packages
// that sit outside pkg/lsdn's own closed error set (pkg/lsdn.errors.go
// covers the object-graph/commit domain; these cover everything
// around it: config loading, backend device lookups).
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidConfig = errors.New("invalid configuration")
)
