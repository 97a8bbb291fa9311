package lsdn

// Virt is one virtual network interface connected to a Network
// through an Attachment — typically a container or VM's veth end.
type Virt struct {
	pa    *Attachment
	name  string
	state State

	// ifaceName is the local kernel interface this Virt is bound to.
	// Validation raises VirtNoIf when it is empty on an explicit
	// attachment of a local phys; the name is not resolved to an
	// interface index.
	ifaceName string

	mac    MAC
	hasMAC bool
}

// Attachment returns the Attachment (and transitively, the Network
// and Phys) this Virt is connected through.
func (v *Virt) Attachment() *Attachment { return v.pa }

// Name returns the Virt's unique name within its Network.
func (v *Virt) Name() string { return v.name }

// Iface returns the local kernel interface name this Virt is bound
// to.
func (v *Virt) Iface() string { return v.ifaceName }

// Rename changes the Virt's name, validated for uniqueness within its
// Network.
func (v *Virt) Rename(name string) error {
	return v.pa.network.virtScope.set(v, &v.name, name)
}

// SetMAC records the Virt's hardware address, required for networks
// whose SwitchType is StaticE2E (no MAC learning to fall back on) and
// optional otherwise. A write that doesn't change the value is a
// no-op.
func (v *Virt) SetMAC(mac MAC) {
	if v.hasMAC && v.mac.Equal(mac) {
		return
	}
	v.mac = mac
	v.hasMAC = true
	renew(&v.state)
}

// MAC returns the address set by SetMAC and whether one was ever set.
func (v *Virt) MAC() (MAC, bool) { return v.mac, v.hasMAC }

// ConnectTo moves v onto the (phys, net) Attachment, finding or
// creating it implicitly. The old Attachment is marked for possible
// auto-free: if it was only holding v and was never explicitly
// attached, it is torn down too.
func (v *Virt) ConnectTo(phys *Phys, ifaceName string) error {
	newPA := phys.attachmentFor(v.pa.network)
	oldPA := v.pa
	if newPA == oldPA {
		v.ifaceName = ifaceName
		renew(&v.state)
		return nil
	}
	oldPA.removeVirt(v)
	v.pa = newPA
	v.ifaceName = ifaceName
	newPA.virts = append(newPA.virts, v)
	renew(&v.state)
	oldPA.maybeAutoFree()
	return nil
}

// Disconnect removes v from its Network. It is equivalent to Delete:
// a Virt with no Attachment to move to can only be torn down.
func (v *Virt) Disconnect() {
	v.Delete()
}

// markDeleted sets v's state to DELETE without triggering its
// Attachment's maybeAutoFree — used by Attachment.Delete's own virt
// cascade, which is already tearing pa down itself.
func (v *Virt) markDeleted() {
	v.state = StateDelete
}

// Delete marks the Virt for removal on the next commit, or drops it
// immediately if it was never committed. If this leaves its
// Attachment with no live virts and not explicitly attached, the
// Attachment is auto-freed too.
func (v *Virt) Delete() {
	wasNew := v.state == StateNew
	v.markDeleted()
	if wasNew {
		v.pa.removeVirt(v)
	}
	v.pa.maybeAutoFree()
}
