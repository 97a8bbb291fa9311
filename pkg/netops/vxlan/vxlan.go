// Package vxlan implements lsdn.NetOps for the three VXLAN NetType
// variants (Mcast, E2E, Static): a VXLAN device plus bridge per
// attachment, with the network's vnet id as the VNI, and explicit FDB
// management — a flood entry per remote PA on Static networks, and a
// MAC entry per remote virt on every variant.
package vxlan

import (
	"context"
	"fmt"
	"net"

	"github.com/newtron-network/netfabric/pkg/effector"
	"github.com/newtron-network/netfabric/pkg/lsdn"
	"github.com/newtron-network/netfabric/pkg/netops/bridge"
)

// Backend is the VXLAN NetOps implementation, shared across all three
// VXLAN NetType variants; netTypeName distinguishes which one a given
// instance was registered for (see NewMcast, NewE2E, NewStatic).
type Backend struct {
	Eff         effector.Effector
	netTypeName string
}

func NewMcast(eff effector.Effector) *Backend {
	return &Backend{Eff: eff, netTypeName: lsdn.VXLANMcast{}.Name()}
}

func NewE2E(eff effector.Effector) *Backend {
	return &Backend{Eff: eff, netTypeName: lsdn.VXLANE2E{}.Name()}
}

func NewStatic(eff effector.Effector) *Backend {
	return &Backend{Eff: eff, netTypeName: lsdn.VXLANStatic{}.Name()}
}

func (b *Backend) NetTypeName() string { return b.netTypeName }

func vxlanDevName(pa *lsdn.Attachment) string {
	return "vx-" + pa.Network().Name() + "-" + pa.Phys().Name()
}

func (b *Backend) CreatePA(ctx context.Context, pa *lsdn.Attachment) error {
	vni, _ := pa.Network().VnetID()
	localIP, hasIP := pa.Phys().IP()
	if !hasIP {
		return fmt.Errorf("vxlan attachment on phys %s has no local IP", pa.Phys().Name())
	}

	var port uint16
	var group net.IP
	switch nt := pa.Network().Settings().NetType().(type) {
	case lsdn.VXLANMcast:
		port = nt.Port
		group = nt.McastIP.NetIP()
	case lsdn.VXLANE2E:
		port = nt.Port
	case lsdn.VXLANStatic:
		port = nt.Port
	}

	dev := vxlanDevName(pa)
	if err := b.Eff.TunnelVXLANCreate(dev, vni, localIP.NetIP(), port, group); err != nil {
		return err
	}
	if err := b.Eff.LinkSet(dev, true); err != nil {
		return err
	}
	if err := bridge.Create(ctx, b.Eff, pa); err != nil {
		return err
	}
	return b.Eff.LinkSetMaster(dev, bridge.Name(pa))
}

func (b *Backend) DestroyPA(ctx context.Context, pa *lsdn.Attachment) error {
	if err := b.Eff.LinkDelete(vxlanDevName(pa)); err != nil {
		return err
	}
	return bridge.Destroy(ctx, b.Eff, pa)
}

func (b *Backend) AddVirt(ctx context.Context, v *lsdn.Virt) error {
	return bridge.Enslave(ctx, b.Eff, v)
}

func (b *Backend) RemoveVirt(ctx context.Context, v *lsdn.Virt) error {
	return bridge.Release(ctx, b.Eff, v)
}

// remotePAIP resolves the reachability address of rpa's remote side —
// the peer phys a RemotePA mirror was materialized for, local or
// genuinely remote.
func remotePAIP(rpa *lsdn.RemotePA) (net.IP, error) {
	ip, ok := rpa.Remote().Phys().IP()
	if !ok {
		return nil, fmt.Errorf("vxlan remote pa on phys %s has no IP", rpa.Remote().Phys().Name())
	}
	return ip.NetIP(), nil
}

// AddRemotePA installs no FDB entry by itself — a remote PA alone only
// matters for E2E/Static networks where it seeds which peers traffic
// of unknown destination may be flooded to; most VXLAN device
// implementations handle that flood list entry-free (BUM traffic is
// flooded to every FDB peer added for any MAC), so the real work
// happens in AddRemoteVirt once a concrete MAC binding is known. For
// Static networks, though, there is no MAC learning at all, so a
// generic all-zero-MAC "flood to this peer" entry is installed here,
// keyed off the local side's own VXLAN device.
func (b *Backend) AddRemotePA(ctx context.Context, rpa *lsdn.RemotePA) error {
	if !isStaticNetwork(rpa.Network()) {
		return nil
	}
	peerIP, err := remotePAIP(rpa)
	if err != nil {
		return err
	}
	return b.Eff.FDBAdd(vxlanDevName(rpa.Local()), floodMAC, peerIP)
}

func (b *Backend) RemoveRemotePA(ctx context.Context, rpa *lsdn.RemotePA) error {
	if !isStaticNetwork(rpa.Network()) {
		return nil
	}
	peerIP, err := remotePAIP(rpa)
	if err != nil {
		return err
	}
	return b.Eff.FDBDelete(vxlanDevName(rpa.Local()), floodMAC, peerIP)
}

func (b *Backend) AddRemoteVirt(ctx context.Context, rv *lsdn.RemoteVirt) error {
	mac, hasMAC := rv.Virt().MAC()
	if !hasMAC {
		return fmt.Errorf("vxlan remote virt %s has no MAC", rv.Virt().Name())
	}
	peerIP, err := remotePAIP(rv.RemotePA())
	if err != nil {
		return err
	}
	return b.Eff.FDBAdd(vxlanDevName(rv.RemotePA().Local()), mac.NetHardwareAddr(), peerIP)
}

func (b *Backend) RemoveRemoteVirt(ctx context.Context, rv *lsdn.RemoteVirt) error {
	mac, hasMAC := rv.Virt().MAC()
	if !hasMAC {
		return fmt.Errorf("vxlan remote virt %s has no MAC", rv.Virt().Name())
	}
	peerIP, err := remotePAIP(rv.RemotePA())
	if err != nil {
		return err
	}
	return b.Eff.FDBDelete(vxlanDevName(rv.RemotePA().Local()), mac.NetHardwareAddr(), peerIP)
}

var floodMAC = net.HardwareAddr{0, 0, 0, 0, 0, 0}

func isStaticNetwork(n *lsdn.Network) bool {
	_, ok := n.Settings().NetType().(lsdn.VXLANStatic)
	return ok
}
