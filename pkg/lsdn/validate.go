package lsdn

// validate runs the four-step validator described in spec.md §4.4
// over every object that shouldValidate (new or changed since the
// last commit), reporting problems through ctx.report. It returns the
// number of problems it raised; the caller decides what that means
// for the overall Commit/Validate return value.
func (ctx *Context) validate() int {
	before := ctx.problemCount

	ctx.propagateStates()
	ctx.validatePhysicals()
	ctx.validateNetworks()
	ctx.validateAttachments()
	ctx.validateVirts()

	return ctx.problemCount - before
}

// propagateStates is the state-propagation pre-pass described in
// spec.md §4.4 step 1: a RENEW phys or network pushes its attachments
// to RENEW, and a RENEW attachment in turn pushes its virts, so that
// changing an already-committed object's attributes re-validates
// everything hanging off it, not just the object itself.
func (ctx *Context) propagateStates() {
	for _, p := range ctx.physicals {
		for _, pa := range p.attachments {
			propagate(&p.state, &pa.state)
		}
	}
	for _, n := range ctx.networks {
		for _, pa := range n.attachments {
			propagate(&n.state, &pa.state)
		}
	}
	for _, n := range ctx.networks {
		for _, pa := range n.attachments {
			for _, v := range pa.virts {
				propagate(&pa.state, &v.state)
			}
		}
	}
}

// validatePhysicals checks PHYS_NOATTR (an explicitly attached phys
// missing a required attribute) and PHYS_DUPATTR (two physicals
// sharing an IP that must be unique).
func (ctx *Context) validatePhysicals() {
	seenIP := make(map[string]*Phys)
	for _, p := range ctx.physicals {
		if willBeDeleted(p.state) {
			continue
		}
		needsAttrs := false
		for _, pa := range p.attachments {
			if p.isLocal && pa.explicit && !willBeDeleted(pa.state) {
				needsAttrs = true
			}
		}
		if needsAttrs && shouldValidate(p.state) {
			if p.ifaceName == "" {
				for _, pa := range p.attachments {
					if pa.explicit {
						ctx.report(PhysNoAttr, RefPhys(p), RefAttr("iface"), RefNet(pa.network))
						break
					}
				}
			}
		}
		if p.hasIP {
			key := p.ip.String()
			if other, dup := seenIP[key]; dup {
				if shouldValidate(p.state) || shouldValidate(other.state) {
					ctx.report(PhysDupAttr, RefPhys(other), RefPhys(p), RefAttr("ip"))
				}
			} else {
				seenIP[key] = p
			}
		}
	}
}

// validateNetworks checks NET_DUPID (two networks of the same network
// type sharing a vnet id) and NET_BAD_NETTYPE (two VXLAN networks
// sharing a local attachment and UDP port but disagreeing in switch
// type).
func (ctx *Context) validateNetworks() {
	type idKey struct {
		netType string
		id      uint32
	}
	seenID := make(map[idKey]*Network)

	for _, n := range ctx.networks {
		if willBeDeleted(n.state) || !n.hasVnetID {
			continue
		}
		key := idKey{n.settings.netType.Name(), n.vnetID}
		if other, dup := seenID[key]; dup {
			if shouldValidate(n.state) || shouldValidate(other.state) {
				ctx.report(NetDupID, RefNet(other), RefNet(n), RefNetID(n.vnetID))
			}
		} else {
			seenID[key] = n
		}
	}

	type portKey struct {
		phys *Phys
		port uint16
	}
	seenPort := make(map[portKey]*Network)
	for _, n := range ctx.networks {
		if willBeDeleted(n.state) {
			continue
		}
		port, ok := vxlanPort(n.settings.netType)
		if !ok {
			continue
		}
		for _, pa := range n.attachments {
			if willBeDeleted(pa.state) || !pa.phys.isLocal {
				continue
			}
			key := portKey{pa.phys, port}
			other, dup := seenPort[key]
			if !dup {
				seenPort[key] = n
				continue
			}
			if other == n {
				continue
			}
			if (n.settings.switchType == StaticE2E) != (other.settings.switchType == StaticE2E) {
				ctx.report(NetBadNettype, RefNet(other), RefNet(n))
			}
		}
	}
}

// validateAttachments checks PHYS_NOT_ATTACHED (an implicit
// Attachment carrying virts that was never explicitly attached) and
// defers to the NetOps backend's own ValidatePA, if it implements
// one.
func (ctx *Context) validateAttachments() {
	for _, n := range ctx.networks {
		for _, pa := range n.attachments {
			if willBeDeleted(pa.state) {
				continue
			}
			if !shouldValidate(pa.state) {
				continue
			}
			if !pa.explicit && len(pa.virts) > 0 {
				ctx.report(PhysNotAttached, RefVirt(pa.virts[0]), RefPhys(pa.phys), RefNet(n))
			}
			ops := pa.ops
			if ops == nil {
				ops = ctx.resolveOps(n)
			}
			if v, ok := hasValidatePA(ops); ok {
				v.ValidatePA(ctx, pa)
			}
		}
	}
}

// validateVirts checks VIRT_NOIF (no interface name) and
// VIRT_DUPATTR (two virts in the same network sharing a MAC), and
// defers to the NetOps backend's own ValidateVirt, if any.
func (ctx *Context) validateVirts() {
	for _, n := range ctx.networks {
		seenMAC := make(map[string]*Virt)
		for _, pa := range n.attachments {
			for _, v := range pa.virts {
				if willBeDeleted(v.state) {
					continue
				}
				check := shouldValidate(v.state)
				if check && v.ifaceName == "" && pa.phys.isLocal && pa.explicit {
					ctx.report(VirtNoIf, RefVirt(v), RefIf(v.ifaceName))
				}
				if v.hasMAC {
					key := v.mac.String()
					if other, dup := seenMAC[key]; dup {
						if check || shouldValidate(other.state) {
							ctx.report(VirtDupAttr, RefVirt(other), RefVirt(v), RefNet(n), RefAttr("mac"))
						}
					} else {
						seenMAC[key] = v
					}
				}
				if !check {
					continue
				}
				ops := pa.ops
				if ops == nil {
					ops = ctx.resolveOps(n)
				}
				if vv, ok := hasValidateVirt(ops); ok {
					vv.ValidateVirt(ctx, v)
				}
			}
		}
	}
}

// Validate runs the validator without attempting any kernel mutation.
// Returns ErrValidate if one or more problems were reported.
func (ctx *Context) Validate() error {
	if err := ctx.lock(); err != nil {
		return err
	}
	defer ctx.unlock()

	if n := ctx.validate(); n > 0 {
		return ErrValidate
	}
	return nil
}
