// Package lsdn is a declarative topology engine for overlay virtual
// networks over a fleet of Linux hosts.
//
// An orchestrator builds an object graph — Settings, Network, Phys,
// Attachment, Virt — describing the complete topology on every
// participating host, mutates it incrementally, and calls Commit to
// reconcile kernel state against the declared topology. The graph, its
// per-object lifecycle, the validator, and the commit engine are the
// only things this package implements; netlink message construction,
// bridge management, and the concrete per-network-type operations live
// in sibling packages (pkg/effector, pkg/netops) behind the NetOps
// interface.
package lsdn
