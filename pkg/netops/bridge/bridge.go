// Package bridge holds the Linux bridge device management shared by
// every NetOps backend: creating the per-attachment bridge, enslaving
// and releasing virt interfaces, and naming both consistently.
package bridge

import (
	"context"
	"fmt"

	"github.com/newtron-network/netfabric/pkg/effector"
	"github.com/newtron-network/netfabric/pkg/lsdn"
)

// Name returns the bridge device name for one network's attachment to
// one phys: "br-<network>-<phys>" built from their full names. The
// names are not shortened, so long names can exceed the kernel's
// IFNAMSIZ limit.
func Name(pa *lsdn.Attachment) string {
	return fmt.Sprintf("br-%s-%s", pa.Network().Name(), pa.Phys().Name())
}

// Create brings up the bridge device for pa.
func Create(ctx context.Context, eff effector.Effector, pa *lsdn.Attachment) error {
	name := Name(pa)
	if err := eff.LinkBridgeCreate(name); err != nil {
		return err
	}
	return eff.LinkSet(name, true)
}

// Destroy removes the bridge device for pa.
func Destroy(ctx context.Context, eff effector.Effector, pa *lsdn.Attachment) error {
	return eff.LinkDelete(Name(pa))
}

// Enslave attaches v's interface to its attachment's bridge.
func Enslave(ctx context.Context, eff effector.Effector, v *lsdn.Virt) error {
	if v.Iface() == "" {
		return fmt.Errorf("virt %s has no interface to enslave", v.Name())
	}
	if err := eff.LinkSet(v.Iface(), true); err != nil {
		return err
	}
	return eff.LinkSetMaster(v.Iface(), Name(v.Attachment()))
}

// Release detaches v's interface from its attachment's bridge.
func Release(ctx context.Context, eff effector.Effector, v *lsdn.Virt) error {
	if v.Iface() == "" {
		return nil
	}
	return eff.LinkSetMaster(v.Iface(), "")
}
