// Package topoconfig loads a declarative topology — settings,
// networks, physicals, attachments, virts — from YAML into a
// pkg/lsdn object graph.
package topoconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/netfabric/pkg/lsdn"
	"github.com/newtron-network/netfabric/pkg/util"
)

// Document is the top-level shape of a topology file.
type Document struct {
	Context    string              `yaml:"context"`
	Settings   []SettingsSpec      `yaml:"settings"`
	Networks   []NetworkSpec       `yaml:"networks"`
	Physicals  []PhysSpec          `yaml:"physicals"`
	Attachments []AttachmentSpec   `yaml:"attachments"`
}

// SettingsSpec describes one Settings object.
type SettingsSpec struct {
	Name    string `yaml:"name"`
	Nettype string `yaml:"nettype"`
	Port    uint16 `yaml:"port,omitempty"`
	Mcast   string `yaml:"mcast_ip,omitempty"`
}

// NetworkSpec describes one Network and its virts.
type NetworkSpec struct {
	Name     string     `yaml:"name"`
	Settings string     `yaml:"settings"`
	VnetID   uint32     `yaml:"vnet_id"`
	Virts    []VirtSpec `yaml:"virts"`
}

// VirtSpec describes one Virt, identified by which Phys it connects
// through.
type VirtSpec struct {
	Name  string `yaml:"name"`
	Phys  string `yaml:"phys"`
	Iface string `yaml:"iface"`
	MAC   string `yaml:"mac,omitempty"`
}

// PhysSpec describes one Phys.
type PhysSpec struct {
	Name  string `yaml:"name"`
	Iface string `yaml:"iface,omitempty"`
	IP    string `yaml:"ip,omitempty"`
	Local bool   `yaml:"local,omitempty"`
}

// AttachmentSpec records an explicit (network, phys) attachment —
// only needed when a phys carries no virt on that network but should
// still be treated as attached (e.g. a transit-only bridge member).
type AttachmentSpec struct {
	Network string `yaml:"network"`
	Phys    string `yaml:"phys"`
}

// Load parses path and applies it to ctx (see Apply), returning the
// first read, parse or build error.
func Load(ctx *lsdn.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read topology file: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse topology file: %w", err)
	}
	return Apply(ctx, &doc)
}

// Apply builds the object graph described by doc onto ctx.
func Apply(ctx *lsdn.Context, doc *Document) error {
	settingsByName := make(map[string]*lsdn.Settings)
	for _, s := range doc.Settings {
		nt, err := parseNetType(s)
		if err != nil {
			return fmt.Errorf("settings %q: %w", s.Name, err)
		}
		obj, err := lsdn.NewSettings(ctx, s.Name, nt)
		if err != nil {
			return fmt.Errorf("settings %q: %w", s.Name, err)
		}
		settingsByName[s.Name] = obj
	}

	physByName := make(map[string]*lsdn.Phys)
	for _, p := range doc.Physicals {
		obj, err := lsdn.NewPhys(ctx, p.Name)
		if err != nil {
			return fmt.Errorf("phys %q: %w", p.Name, err)
		}
		if p.Iface != "" {
			obj.SetIface(p.Iface)
		}
		if p.IP != "" {
			ip, err := lsdn.ParseIP(p.IP)
			if err != nil {
				return fmt.Errorf("phys %q: %w", p.Name, err)
			}
			obj.SetIP(ip)
		}
		if p.Local {
			obj.ClaimLocal()
		}
		physByName[p.Name] = obj
	}

	netByName := make(map[string]*lsdn.Network)
	for _, n := range doc.Networks {
		settings, ok := settingsByName[n.Settings]
		if !ok {
			return fmt.Errorf("network %q: unknown settings %q", n.Name, n.Settings)
		}
		obj, err := lsdn.NewNetwork(ctx, settings, n.Name)
		if err != nil {
			return fmt.Errorf("network %q: %w", n.Name, err)
		}
		obj.SetVnetID(n.VnetID)
		netByName[n.Name] = obj
	}

	for _, a := range doc.Attachments {
		net, ok := netByName[a.Network]
		if !ok {
			return fmt.Errorf("attachment: unknown network %q", a.Network)
		}
		phys, ok := physByName[a.Phys]
		if !ok {
			return fmt.Errorf("attachment: unknown phys %q", a.Phys)
		}
		if _, err := phys.Attach(net); err != nil {
			return fmt.Errorf("attachment %s/%s: %w", a.Network, a.Phys, err)
		}
	}

	for _, n := range doc.Networks {
		net := netByName[n.Name]
		for _, v := range n.Virts {
			phys, ok := physByName[v.Phys]
			if !ok {
				return fmt.Errorf("virt %q: unknown phys %q", v.Name, v.Phys)
			}
			pa, err := phys.Attach(net)
			if err != nil {
				return fmt.Errorf("virt %q: %w", v.Name, err)
			}
			virt, err := pa.Connect(v.Name, v.Iface)
			if err != nil {
				return fmt.Errorf("virt %q: %w", v.Name, err)
			}
			if v.MAC != "" {
				mac, err := lsdn.ParseMAC(v.MAC)
				if err != nil {
					return fmt.Errorf("virt %q: %w", v.Name, err)
				}
				virt.SetMAC(mac)
			}
		}
	}

	return nil
}

// parseNetType dispatches on the "nettype" key. A recognized key with
// a missing required field (e.g. vxlan-mcast with no mcast_ip) fails
// with util.ErrInvalidConfig, distinct from ErrUnknownKey for a key
// that matches no case at all.
func parseNetType(s SettingsSpec) (lsdn.NetType, error) {
	switch s.Nettype {
	case "direct":
		return lsdn.Direct{}, nil
	case "vlan":
		return lsdn.VLAN{}, nil
	case "vxlan-mcast":
		if s.Mcast == "" {
			return nil, fmt.Errorf("%w: vxlan-mcast requires mcast_ip", util.ErrInvalidConfig)
		}
		ip, err := lsdn.ParseIP(s.Mcast)
		if err != nil {
			return nil, err
		}
		return lsdn.VXLANMcast{Port: s.Port, McastIP: ip}, nil
	case "vxlan-e2e":
		return lsdn.VXLANE2E{Port: s.Port}, nil
	case "vxlan-static":
		return lsdn.VXLANStatic{Port: s.Port}, nil
	default:
		return nil, fmt.Errorf("%w: unknown nettype %q", ErrUnknownKey, s.Nettype)
	}
}
