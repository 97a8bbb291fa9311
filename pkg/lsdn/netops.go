package lsdn

import "context"

// NetOps is the vtable a per-nettype backend implements to drive
// kernel mutation during commit. Every method except NetTypeName is
// optional: a backend that has nothing to do for a given step simply
// does not implement that method, and the commit engine skips it via
// a type assertion rather than requiring a dummy no-op. This mirrors
// the original library's lsdn_net_ops, whose callback pointers may be
// left NULL.
//
// Methods are grouped into small single-method interfaces so a
// backend only declares the capabilities it actually has. NetOps
// itself carries only NetTypeName: the commit and validate engines probe
// for each capability with a type assertion (see hasCreatePA and
// friends below) instead of requiring every backend to implement a
// full fixed vtable with no-op stubs for what it doesn't need.
type NetOps interface {
	// NetTypeName identifies the backend for logging and problem
	// formatting; every backend implements at least this.
	NetTypeName() string
}

// paCreator creates whatever kernel object represents a local
// attachment of a network to a phys (e.g. a bridge, a VXLAN device).
type paCreator interface {
	CreatePA(ctx context.Context, pa *Attachment) error
}

// paDestroyer tears down what CreatePA made.
type paDestroyer interface {
	DestroyPA(ctx context.Context, pa *Attachment) error
}

// virtAdder attaches a local virt's interface to its PA's bridge.
type virtAdder interface {
	AddVirt(ctx context.Context, v *Virt) error
}

// virtRemover detaches a local virt's interface from its PA's bridge.
type virtRemover interface {
	RemoveVirt(ctx context.Context, v *Virt) error
}

// remotePAAdder registers a remote phys attachment discovered out of
// band (e.g. a VXLAN e2e/static FDB entry for the remote VTEP).
type remotePAAdder interface {
	AddRemotePA(ctx context.Context, rpa *RemotePA) error
}

// remotePARemover undoes AddRemotePA.
type remotePARemover interface {
	RemoveRemotePA(ctx context.Context, rpa *RemotePA) error
}

// remoteVirtAdder installs a static FDB entry for a remote virt's MAC
// (StaticE2E switch type only).
type remoteVirtAdder interface {
	AddRemoteVirt(ctx context.Context, rv *RemoteVirt) error
}

// remoteVirtRemover undoes AddRemoteVirt.
type remoteVirtRemover interface {
	RemoveRemoteVirt(ctx context.Context, rv *RemoteVirt) error
}

// paValidator lets a backend reject a PA during validation (e.g. a
// VLAN backend rejecting an ID out of range for the attached phys).
type paValidator interface {
	ValidatePA(ctx *Context, pa *Attachment)
}

// virtValidator lets a backend reject a virt during validation.
type virtValidator interface {
	ValidateVirt(ctx *Context, v *Virt)
}

// hasCreatePA and friends are small helpers the commit/validate
// engine uses to probe for optional capability without repeating the
// type assertion pattern at every call site.

func hasCreatePA(ops NetOps) (paCreator, bool)         { c, ok := ops.(paCreator); return c, ok }
func hasDestroyPA(ops NetOps) (paDestroyer, bool)      { c, ok := ops.(paDestroyer); return c, ok }
func hasAddVirt(ops NetOps) (virtAdder, bool)          { c, ok := ops.(virtAdder); return c, ok }
func hasRemoveVirt(ops NetOps) (virtRemover, bool)     { c, ok := ops.(virtRemover); return c, ok }
func hasAddRemotePA(ops NetOps) (remotePAAdder, bool)  { c, ok := ops.(remotePAAdder); return c, ok }
func hasRemoveRemotePA(ops NetOps) (remotePARemover, bool) {
	c, ok := ops.(remotePARemover)
	return c, ok
}
func hasAddRemoteVirt(ops NetOps) (remoteVirtAdder, bool) {
	c, ok := ops.(remoteVirtAdder)
	return c, ok
}
func hasRemoveRemoteVirt(ops NetOps) (remoteVirtRemover, bool) {
	c, ok := ops.(remoteVirtRemover)
	return c, ok
}
func hasValidatePA(ops NetOps) (paValidator, bool)     { c, ok := ops.(paValidator); return c, ok }
func hasValidateVirt(ops NetOps) (virtValidator, bool) { c, ok := ops.(virtValidator); return c, ok }

// UserHooks lets an orchestrator observe commit without participating
// in the NetOps vtable itself.
type UserHooks struct {
	// StartupHook fires once per local (phys, net) pair at the top of
	// every Commit, before any decommit or recommit work, whether or
	// not that pair actually changed. It is the hook the original
	// library's per-network "user hook" concept was generalized from
	// (see original_source/netmodel/lsdn.c, settings user-data
	// callback fired from lsdn_commit).
	StartupHook func(net *Network, phys *Phys)
}
