package lsdn

// Network is one overlay virtual network: a set of Virts connected
// through Attachments to the Physicals that carry them. Its NetType
// and SwitchType are inherited from its Settings.
type Network struct {
	ctx      *Context
	settings *Settings
	name     string
	state    State

	vnetID    uint32
	hasVnetID bool

	attachments []*Attachment
	remotePAs   []*RemotePA

	virtScope *nameScope
}

// NewNetwork registers a new Network under ctx, named name (must be
// unique among the Context's networks), backed by settings.
func NewNetwork(ctx *Context, settings *Settings, name string) (*Network, error) {
	n := &Network{
		ctx:       ctx,
		settings:  settings,
		state:     StateNew,
		virtScope: newNameScope(),
	}
	if err := ctx.netScope.set(n, &n.name, name); err != nil {
		return nil, err
	}
	ctx.networks = append(ctx.networks, n)
	return n, nil
}

// Name returns the Network's unique name within its Context.
func (n *Network) Name() string { return n.name }

// Settings returns the backend configuration this Network uses.
func (n *Network) Settings() *Settings { return n.settings }

// Attachments returns the network's current Attachments (PAs). The
// returned slice is owned by Network and must not be modified.
func (n *Network) Attachments() []*Attachment { return n.attachments }

// RemotePAs returns the remote-attachment mirrors commit has
// materialized for this network so far. The returned slice is owned
// by Network and must not be modified.
func (n *Network) RemotePAs() []*RemotePA { return n.remotePAs }

// Rename changes the Network's name, validated for uniqueness.
func (n *Network) Rename(name string) error {
	return n.ctx.netScope.set(n, &n.name, name)
}

// SetVnetID records the numeric network identifier (VLAN ID or VXLAN
// VNI depending on NetType) used to distinguish this Network from
// others sharing the same Settings. Required for every NetType except
// Direct.
func (n *Network) SetVnetID(id uint32) {
	if n.hasVnetID && id == n.vnetID {
		return
	}
	n.vnetID = id
	n.hasVnetID = true
	renew(&n.state)
}

// VnetID returns the id set by SetVnetID and whether one was ever set.
func (n *Network) VnetID() (uint32, bool) { return n.vnetID, n.hasVnetID }

// Connect creates a Virt bound to phys on this Network, finding or
// creating the (phys, n) Attachment implicitly — unlike Phys.Attach,
// this never marks the Attachment explicit. An implicit Attachment
// that is never later confirmed by Phys.Attach is reported as
// PhysNotAttached during validation.
func (n *Network) Connect(phys *Phys, name, ifaceName string) (*Virt, error) {
	pa := phys.attachmentFor(n)
	return pa.Connect(name, ifaceName)
}

// Delete marks the Network for removal on the next commit. Every
// Attachment and RemotePA belonging to it is implicitly deleted first,
// over a snapshot of the attachment list since a NEW attachment's
// Delete unlinks itself from n.attachments as it runs.
func (n *Network) Delete() {
	attachments := append([]*Attachment(nil), n.attachments...)
	for _, pa := range attachments {
		pa.Delete()
	}
	for _, rpa := range n.remotePAs {
		rpa.Delete()
	}
	n.state = StateDelete
}
