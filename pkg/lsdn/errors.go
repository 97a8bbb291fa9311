package lsdn

import "errors"

// Sentinel errors returned by the core's public surface, so callers
// can branch with errors.Is. Not every error wraps one: ParseIP and
// ParseMAC return plain parse errors, and a Commit failure wraps both
// ErrCommit and the backend's own error. The set is closed, matching
// the lsdn_err_t enum this package is modeled on.
var (
	// ErrNoMem reports an allocation failure. No function in this
	// package returns it; NewContext installs AbortOnNoMem as the
	// no-mem callback.
	ErrNoMem = errors.New("lsdn: out of memory")

	// ErrDuplicate is returned by name-scope and identity operations
	// that would create a collision (duplicate name, duplicate
	// (nettype, vnet_id) pair, etc. — the last case is instead
	// surfaced as a validation Problem, since it spans the whole
	// graph rather than a single call site).
	ErrDuplicate = errors.New("lsdn: duplicate")

	// ErrValidate is returned by Commit when Validate found one or
	// more problems; no kernel mutation was attempted.
	ErrValidate = errors.New("lsdn: validation failed")

	// ErrCommit is returned by Commit when a problem was reported
	// after kernel mutations were already issued. The caller must
	// correct the topology and commit again; there is no rollback.
	ErrCommit = errors.New("lsdn: commit failed")

	// ErrNetlink is returned when an effector call fails.
	ErrNetlink = errors.New("lsdn: netlink operation failed")

	// ErrNoIf is returned when a virt's connected interface name
	// cannot be resolved to an interface index.
	ErrNoIf = errors.New("lsdn: interface not found")

	// ErrBusy is returned by Commit/Validate when called while a
	// Commit is already in progress on the same Context. Nesting
	// commits is forbidden because the problem buffer would be
	// overwritten mid-use.
	ErrBusy = errors.New("lsdn: commit already in progress")
)
