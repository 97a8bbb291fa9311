package effector

import (
	"fmt"
	"net"

	vnl "github.com/vishvananda/netlink"
)

// Netlink is the production Effector, backed by a real netlink
// socket via vishvananda/netlink (the library moby-moby uses for the
// same purpose: bridge and tunnel device management from Go without
// shelling out to iproute2).
type Netlink struct{}

// NewNetlink opens the effector. There is no persistent socket to
// hold open — vishvananda/netlink's package-level helpers open one
// per call — but the constructor is kept so callers don't need to
// know that, and so a future pooled-handle implementation can replace
// it without changing pkg/netops.
func NewNetlink() (*Netlink, error) {
	return &Netlink{}, nil
}

func (n *Netlink) Close() error { return nil }

func (n *Netlink) LinkBridgeCreate(name string) error {
	br := &vnl.Bridge{LinkAttrs: vnl.LinkAttrs{Name: name}}
	if err := vnl.LinkAdd(br); err != nil {
		return fmt.Errorf("create bridge %s: %w", name, err)
	}
	return nil
}

func (n *Netlink) LinkSet(name string, up bool) error {
	link, err := vnl.LinkByName(name)
	if err != nil {
		return newNotFoundError("interface " + name)
	}
	if up {
		return vnl.LinkSetUp(link)
	}
	return vnl.LinkSetDown(link)
}

func (n *Netlink) LinkSetMaster(iface, master string) error {
	link, err := vnl.LinkByName(iface)
	if err != nil {
		return newNotFoundError("interface " + iface)
	}
	if master == "" {
		return vnl.LinkSetNoMaster(link)
	}
	br, err := vnl.LinkByName(master)
	if err != nil {
		return newNotFoundError("bridge " + master)
	}
	return vnl.LinkSetMaster(link, br)
}

func (n *Netlink) LinkDelete(name string) error {
	link, err := vnl.LinkByName(name)
	if err != nil {
		return newNotFoundError("interface " + name)
	}
	return vnl.LinkDel(link)
}

func (n *Netlink) TunnelVXLANCreate(name string, vni uint32, localIP net.IP, port uint16, group net.IP) error {
	vx := &vnl.Vxlan{
		LinkAttrs: vnl.LinkAttrs{Name: name},
		VxlanId:   int(vni),
		SrcAddr:   localIP,
		Port:      int(port),
		Learning:  group != nil,
	}
	if group != nil {
		vx.Group = group
	}
	if err := vnl.LinkAdd(vx); err != nil {
		return fmt.Errorf("create vxlan %s: %w", name, err)
	}
	return nil
}

func (n *Netlink) FDBAdd(dev string, mac net.HardwareAddr, remoteIP net.IP) error {
	link, err := vnl.LinkByName(dev)
	if err != nil {
		return newNotFoundError("interface " + dev)
	}
	neigh := &vnl.Neigh{
		LinkIndex:    link.Attrs().Index,
		Family:       vnl.FAMILY_V4,
		State:        vnl.NUD_PERMANENT,
		Flags:        vnl.NTF_SELF,
		IP:           remoteIP,
		HardwareAddr: mac,
	}
	if err := vnl.NeighAppend(neigh); err != nil {
		return fmt.Errorf("add fdb entry on %s: %w", dev, err)
	}
	return nil
}

func (n *Netlink) FDBDelete(dev string, mac net.HardwareAddr, remoteIP net.IP) error {
	link, err := vnl.LinkByName(dev)
	if err != nil {
		return newNotFoundError("interface " + dev)
	}
	neigh := &vnl.Neigh{
		LinkIndex:    link.Attrs().Index,
		Family:       vnl.FAMILY_V4,
		Flags:        vnl.NTF_SELF,
		IP:           remoteIP,
		HardwareAddr: mac,
	}
	if err := vnl.NeighDel(neigh); err != nil {
		return fmt.Errorf("delete fdb entry on %s: %w", dev, err)
	}
	return nil
}

func (n *Netlink) ResolveIface(name string) (int, error) {
	link, err := vnl.LinkByName(name)
	if err != nil {
		return 0, newNotFoundError("interface " + name)
	}
	return link.Attrs().Index, nil
}
