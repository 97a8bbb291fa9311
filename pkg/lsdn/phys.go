package lsdn

// Phys is one participating Linux host. Most Contexts carry exactly
// one Phys representing the local machine plus one Phys per remote
// peer the orchestrator knows about, but the model does not enforce
// that — a Context could in principle model an entire fleet from a
// single control point.
type Phys struct {
	ctx   *Context
	name  string
	state State

	// ifaceName is the name of the underlying kernel interface used
	// to reach this phys (e.g. the uplink NIC for encapsulated
	// traffic). Validation requires it for every local Phys with an
	// explicit attachment, whatever the network type (Direct
	// included), and reports PhysNoAttr when it is empty.
	ifaceName string

	// ip is the address remote peers use to reach this phys. Validation
	// does not require it; the VXLAN backend fails at commit time when
	// a Phys it needs has none.
	ip    IP
	hasIP bool

	// isLocal marks this Phys as the (or a) machine the commit engine
	// actually mutates: commitPA only issues CreatePA/AddVirt for a
	// locally-claimed Phys, and validate only requires the iface
	// attribute for one. A Phys representing a remote peer is never
	// claimed local; it is reached by its ip, not mutated directly.
	isLocal bool

	// committedAsLocal mirrors isLocal as of the last recommit sweep.
	// decommit consults this, not isLocal, so that unclaiming a Phys
	// between commits still issues the DestroyPA/RemoveVirt calls
	// needed to tear down what was actually brought up, and so that a
	// Phys that was never locally committed is never torn down.
	committedAsLocal bool

	attachments []*Attachment
}

// NewPhys registers a new Phys under ctx, named name (must be unique
// among the Context's physicals).
func NewPhys(ctx *Context, name string) (*Phys, error) {
	p := &Phys{ctx: ctx, state: StateNew}
	if err := ctx.physScope.set(p, &p.name, name); err != nil {
		return nil, err
	}
	ctx.physicals = append(ctx.physicals, p)
	return p, nil
}

// Name returns the Phys' unique name within its Context.
func (p *Phys) Name() string { return p.name }

// Rename changes the Phys' name, validated for uniqueness.
func (p *Phys) Rename(name string) error {
	return p.ctx.physScope.set(p, &p.name, name)
}

// SetIface records the kernel interface used to reach this phys and
// marks the Phys for renewal so the next commit re-validates it. A
// write that doesn't change the value is a no-op.
func (p *Phys) SetIface(name string) {
	if name == p.ifaceName {
		return
	}
	p.ifaceName = name
	renew(&p.state)
}

// Iface returns the kernel interface name set by SetIface.
func (p *Phys) Iface() string { return p.ifaceName }

// SetIP records the address remote peers use to reach this phys. A
// write that doesn't change the value is a no-op.
func (p *Phys) SetIP(ip IP) {
	if p.hasIP && p.ip.Equal(ip) {
		return
	}
	p.ip = ip
	p.hasIP = true
	renew(&p.state)
}

// IP returns the address set by SetIP and whether one was ever set.
func (p *Phys) IP() (IP, bool) { return p.ip, p.hasIP }

// ClaimLocal marks this Phys as the (or a) machine the commit engine
// mutates directly, and renews it so the next commit brings up any
// attachments it already has.
func (p *Phys) ClaimLocal() {
	if p.isLocal {
		return
	}
	p.isLocal = true
	renew(&p.state)
}

// UnclaimLocal reverses ClaimLocal. The next commit tears down
// whatever was locally committed for this Phys (via committedAsLocal)
// and stops issuing local kernel calls for it thereafter.
func (p *Phys) UnclaimLocal() {
	if !p.isLocal {
		return
	}
	p.isLocal = false
	renew(&p.state)
}

// IsLocal reports whether this Phys is currently claimed as local.
func (p *Phys) IsLocal() bool { return p.isLocal }

// CommittedAsLocal reports whether this Phys was local as of the last
// recommit sweep, independent of its current IsLocal value.
func (p *Phys) CommittedAsLocal() bool { return p.committedAsLocal }

// Attach creates (or returns the existing) Attachment binding net to
// p, marking it explicit — meaning a virt connected through this
// (net, phys) pair is expected and will not raise PhysNotAttached.
func (p *Phys) Attach(net *Network) (*Attachment, error) {
	pa := p.attachmentFor(net)
	if !pa.explicit {
		pa.explicit = true
		renew(&pa.state)
	}
	return pa, nil
}

// Detach marks net's Attachment to p non-explicit again. If the
// Attachment has no connected virts, it is auto-freed.
func (p *Phys) Detach(net *Network) {
	for _, pa := range p.attachments {
		if pa.network == net {
			if pa.explicit {
				pa.explicit = false
				renew(&pa.state)
			}
			pa.maybeAutoFree()
			return
		}
	}
}

// attachmentFor finds or creates the (p, net) Attachment, without
// forcing it explicit — used both by Attach and by Virt.ConnectTo,
// which needs an implicitly-attached pa to move a virt onto.
func (p *Phys) attachmentFor(net *Network) *Attachment {
	for _, pa := range p.attachments {
		if pa.network == net {
			return pa
		}
	}
	pa := &Attachment{phys: p, network: net, state: StateNew}
	p.attachments = append(p.attachments, pa)
	net.attachments = append(net.attachments, pa)
	return pa
}

// Delete marks the Phys for removal on the next commit. All of its
// attachments are implicitly deleted first, over a snapshot of the
// attachment list since a NEW attachment's Delete unlinks itself from
// p.attachments as it runs.
func (p *Phys) Delete() {
	attachments := append([]*Attachment(nil), p.attachments...)
	for _, pa := range attachments {
		pa.Delete()
	}
	p.state = StateDelete
}
