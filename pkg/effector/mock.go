package effector

import (
	"fmt"
	"net"
	"sync"
)

// Mock is an in-memory Effector recording every call it receives, for
// assertions in pkg/netops and pkg/lsdn tests that need to observe
// exactly what kernel operations a commit would have issued without a
// real network namespace.
type Mock struct {
	mu sync.Mutex

	Calls []string

	bridges  map[string]bool
	vxlans   map[string]bool
	masters  map[string]string
	up       map[string]bool
	fdb      map[string]bool
	nextIdx  int
	ifIndex  map[string]int
}

// NewMock returns an empty Mock effector.
func NewMock() *Mock {
	return &Mock{
		bridges: make(map[string]bool),
		vxlans:  make(map[string]bool),
		masters: make(map[string]string),
		up:      make(map[string]bool),
		fdb:     make(map[string]bool),
		ifIndex: make(map[string]int),
	}
}

func (m *Mock) record(format string, args ...any) {
	m.Calls = append(m.Calls, fmt.Sprintf(format, args...))
}

func (m *Mock) Close() error { return nil }

func (m *Mock) allocIndex(name string) int {
	if idx, ok := m.ifIndex[name]; ok {
		return idx
	}
	m.nextIdx++
	m.ifIndex[name] = m.nextIdx
	return m.nextIdx
}

func (m *Mock) LinkBridgeCreate(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("bridge-create %s", name)
	m.bridges[name] = true
	m.allocIndex(name)
	return nil
}

func (m *Mock) LinkSet(name string, up bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("link-set %s up=%v", name, up)
	m.up[name] = up
	return nil
}

func (m *Mock) LinkSetMaster(iface, master string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("link-set-master %s -> %q", iface, master)
	m.masters[iface] = master
	return nil
}

func (m *Mock) LinkDelete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("link-delete %s", name)
	delete(m.bridges, name)
	delete(m.vxlans, name)
	delete(m.ifIndex, name)
	return nil
}

func (m *Mock) TunnelVXLANCreate(name string, vni uint32, localIP net.IP, port uint16, group net.IP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("vxlan-create %s vni=%d local=%s port=%d group=%s", name, vni, localIP, port, group)
	m.vxlans[name] = true
	m.allocIndex(name)
	return nil
}

func (m *Mock) FDBAdd(dev string, mac net.HardwareAddr, remoteIP net.IP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dev + "|" + mac.String() + "|" + remoteIP.String()
	m.record("fdb-add %s", key)
	m.fdb[key] = true
	return nil
}

func (m *Mock) FDBDelete(dev string, mac net.HardwareAddr, remoteIP net.IP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dev + "|" + mac.String() + "|" + remoteIP.String()
	m.record("fdb-delete %s", key)
	delete(m.fdb, key)
	return nil
}

func (m *Mock) ResolveIface(name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok := m.ifIndex[name]; ok {
		return idx, nil
	}
	// A Mock treats any name it hasn't already allocated an index for
	// as a pre-existing host interface (e.g. an uplink NIC), so tests
	// don't have to pre-seed every interface name a Virt connects to.
	return m.allocIndex(name), nil
}

// HasFDBEntry reports whether FDBAdd was called for (dev, mac, ip)
// without a matching later FDBDelete.
func (m *Mock) HasFDBEntry(dev string, mac net.HardwareAddr, remoteIP net.IP) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fdb[dev+"|"+mac.String()+"|"+remoteIP.String()]
}

// HasBridge reports whether a bridge named name currently exists.
func (m *Mock) HasBridge(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bridges[name]
}

// MasterOf returns the bridge iface is currently enslaved to, if any.
func (m *Mock) MasterOf(iface string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.masters[iface]
}
