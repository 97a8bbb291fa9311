// Package effector implements the kernel-facing side of a NetOps
// backend: bridge and tunnel device management via netlink, and
// interface name resolution. pkg/netops backends are built against
// the Effector interface so they can run against Netlink in
// production or Mock in tests without change.
package effector

import (
	"net"

	"github.com/newtron-network/netfabric/pkg/util"
)

// Effector is the full set of kernel operations a NetOps backend
// needs. It is deliberately wider than pkg/lsdn.Effector: that
// interface is the sliver the core engine itself might someday touch
// directly, while this one is the complete surface pkg/netops drives.
type Effector interface {
	// LinkBridgeCreate creates a new Linux bridge device named name.
	LinkBridgeCreate(name string) error
	// LinkSet brings an interface named name up or down.
	LinkSet(name string, up bool) error
	// LinkSetMaster enrolls iface into the bridge named master, or
	// detaches it if master is "".
	LinkSetMaster(iface, master string) error
	// LinkDelete removes the interface named name.
	LinkDelete(name string) error

	// TunnelVXLANCreate creates a VXLAN device named name with the
	// given VNI, bound to localIP, listening on port, joining group
	// if non-nil (multicast mode) and otherwise relying on explicitly
	// added FDB entries (e2e/static mode).
	TunnelVXLANCreate(name string, vni uint32, localIP net.IP, port uint16, group net.IP) error

	// FDBAdd installs a static forwarding database entry mapping mac
	// to remoteIP on the device named dev. Used for VXLAN e2e/static
	// remote PA and remote virt bindings.
	FDBAdd(dev string, mac net.HardwareAddr, remoteIP net.IP) error
	// FDBDelete removes an entry installed by FDBAdd.
	FDBDelete(dev string, mac net.HardwareAddr, remoteIP net.IP) error

	// ResolveIface maps an interface name to its kernel index,
	// returning an error satisfying errors.Is(err, util.ErrNotFound)
	// if the name does not resolve.
	ResolveIface(name string) (ifIndex int, err error)

	// Close releases any handle (netlink socket) held by the
	// effector.
	Close() error
}

// notFoundError adapts a lookup miss to util.ErrNotFound so backends
// built against different Effector implementations (Netlink vs Mock)
// raise the same sentinel.
type notFoundError struct {
	what string
}

func (e *notFoundError) Error() string { return e.what + " not found" }
func (e *notFoundError) Unwrap() error { return util.ErrNotFound }

func newNotFoundError(what string) error { return &notFoundError{what: what} }
