package lsdn

// Attachment (a "PA", phys attachment, in the original library's
// terminology) is the binding of one Network onto one Phys: the
// bridge or VXLAN device that actually carries the network's traffic
// on that host.
type Attachment struct {
	network *Network
	phys    *Phys
	state   State

	// explicit is true when Phys.Attach was called directly for this
	// (net, phys) pair, as opposed to the Attachment having been
	// created implicitly because a Virt was connected through it.
	// Only explicit attachments require a local phys to carry an
	// interface name; an implicit one that never gained an explicit
	// Attach call is reported as PhysNotAttached during validation.
	explicit bool

	ops   NetOps
	virts []*Virt
}

// Network returns the Network this Attachment carries.
func (pa *Attachment) Network() *Network { return pa.network }

// Phys returns the Phys this Attachment runs on.
func (pa *Attachment) Phys() *Phys { return pa.phys }

// Explicit reports whether this Attachment was created by an explicit
// Phys.Attach call.
func (pa *Attachment) Explicit() bool { return pa.explicit }

// Virts returns the Virts currently connected through this
// Attachment. The returned slice is owned by Attachment and must not
// be modified.
func (pa *Attachment) Virts() []*Virt { return pa.virts }

// Connect creates a Virt on this Attachment, connected to the given
// local interface name. name must be unique within the Attachment's
// Network.
func (pa *Attachment) Connect(name, ifaceName string) (*Virt, error) {
	v := &Virt{pa: pa, state: StateNew, ifaceName: ifaceName}
	if err := pa.network.virtScope.set(v, &v.name, name); err != nil {
		return nil, err
	}
	pa.virts = append(pa.virts, v)
	return v, nil
}

// Delete marks the Attachment for removal on the next commit. Every
// Virt connected through it is implicitly deleted first, via
// markDeleted rather than Delete — the latter would trigger
// maybeAutoFree on this very Attachment and recurse back into this
// cascade.
func (pa *Attachment) Delete() {
	for _, v := range pa.virts {
		v.markDeleted()
	}
	wasNew := pa.state == StateNew
	pa.state = StateDelete
	if wasNew {
		removeAttachment(&pa.phys.attachments, pa)
		removeAttachment(&pa.network.attachments, pa)
	}
}

// removeVirt drops v from pa's virt list, e.g. once its deletion has
// been committed or it has moved to a different Attachment.
func (pa *Attachment) removeVirt(v *Virt) {
	for i, ov := range pa.virts {
		if ov == v {
			pa.virts = append(pa.virts[:i], pa.virts[i+1:]...)
			return
		}
	}
}

// hasLiveVirts reports whether pa still carries a virt that isn't
// itself already marked for deletion.
func (pa *Attachment) hasLiveVirts() bool {
	for _, v := range pa.virts {
		if !willBeDeleted(v.state) {
			return true
		}
	}
	return false
}

// maybeAutoFree frees pa if it is not explicitly attached and carries
// no live virts, matching the rule that an implicit Attachment only
// exists to carry the virts connected through it.
func (pa *Attachment) maybeAutoFree() {
	if pa.explicit || pa.hasLiveVirts() || willBeDeleted(pa.state) {
		return
	}
	pa.Delete()
}

// removeAttachment drops pa from a phys' or network's attachment list,
// used to unlink a still-NEW Attachment immediately on Delete rather
// than leaving it for the next commit's decommit sweep — a NEW object
// that never reached the kernel has nothing to decommit.
func removeAttachment(list *[]*Attachment, pa *Attachment) {
	for i, op := range *list {
		if op == pa {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}
