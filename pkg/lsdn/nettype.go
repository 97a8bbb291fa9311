package lsdn

// NetType selects the concrete overlay mechanism a Network uses. The
// original library represents this as a tagged union (a
// lsdn_nettype_t enum plus a payload struct picked by the tag); a
// closed Go interface with an unexported marker method gives the same
// exhaustiveness guarantee (only this package can add a case) without
// a separate discriminant field that the payload could disagree with.
type NetType interface {
	isNetType()
	// Name identifies the variant for problem formatting and config
	// round-tripping (e.g. "direct", "vlan", "vxlan/mcast").
	Name() string
}

// Direct is a plain Linux bridge with no encapsulation: every
// attached phys sees every other phys's virts untagged.
type Direct struct{}

func (Direct) isNetType()   {}
func (Direct) Name() string { return "direct" }

// VLAN tags traffic on a shared trunk with a single 802.1Q ID.
type VLAN struct {
	ID uint16
}

func (VLAN) isNetType()   {}
func (VLAN) Name() string { return "vlan" }

// VXLANMcast encapsulates in VXLAN and discovers remote PAs by
// joining a multicast group; the kernel learns remote virt MACs from
// received traffic (SwitchType Learning).
type VXLANMcast struct {
	Port    uint16
	McastIP IP
	VNI     uint32
}

func (VXLANMcast) isNetType()   {}
func (VXLANMcast) Name() string { return "vxlan/mcast" }

// VXLANE2E encapsulates in VXLAN with an explicit, orchestrator-fed
// list of remote PAs (no multicast); the kernel still learns remote
// virt MACs from traffic (SwitchType LearningE2E).
type VXLANE2E struct {
	Port uint16
	VNI  uint32
}

func (VXLANE2E) isNetType()   {}
func (VXLANE2E) Name() string { return "vxlan/e2e" }

// VXLANStatic encapsulates in VXLAN with both remote PAs and remote
// virt MAC/PA bindings fed explicitly by the orchestrator — no kernel
// MAC learning occurs (SwitchType StaticE2E).
type VXLANStatic struct {
	Port uint16
	VNI  uint32
}

func (VXLANStatic) isNetType()   {}
func (VXLANStatic) Name() string { return "vxlan/static" }

// SwitchType classifies how a network type resolves unknown
// destination MACs, independent of its encapsulation. Two VXLAN
// networks sharing a local attachment and UDP port must agree closely
// enough in SwitchType or their traffic would be misinterpreted (see
// NetBadNettype).
type SwitchType int

const (
	// Learning: kernel bridge MAC learning from received traffic,
	// remote PAs discovered via multicast.
	Learning SwitchType = iota
	// LearningE2E: kernel bridge MAC learning from received traffic,
	// remote PAs fed explicitly.
	LearningE2E
	// StaticE2E: no MAC learning; both remote PAs and remote virt
	// bindings are fed explicitly.
	StaticE2E
)

func (s SwitchType) String() string {
	switch s {
	case Learning:
		return "learning"
	case LearningE2E:
		return "learning-e2e"
	case StaticE2E:
		return "static-e2e"
	default:
		return "unknown"
	}
}

// switchTypeOf derives the SwitchType implied by a NetType. Direct and
// VLAN networks have no meaningful switch type distinct from ordinary
// kernel bridging and report Learning.
func switchTypeOf(nt NetType) SwitchType {
	switch nt.(type) {
	case VXLANE2E:
		return LearningE2E
	case VXLANStatic:
		return StaticE2E
	default:
		return Learning
	}
}

// vxlanPort reports the UDP port a NetType uses, and whether it uses
// one at all (Direct and VLAN do not).
func vxlanPort(nt NetType) (port uint16, ok bool) {
	switch t := nt.(type) {
	case VXLANMcast:
		return t.Port, true
	case VXLANE2E:
		return t.Port, true
	case VXLANStatic:
		return t.Port, true
	default:
		return 0, false
	}
}
