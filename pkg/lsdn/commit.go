package lsdn

import "context"

// Commit reconciles kernel state against the declared topology graph.
// It runs, in order: the startup hook for every local (network, phys)
// attachment, validation (aborting with ErrValidate and no
// kernel mutation if anything is wrong), a decommit sweep tearing down
// whatever changed or was deleted (in reverse dependency order: remote
// virts, remote PAs, virts, PAs), a recommit sweep bringing up
// whatever is new or changed (forward dependency order), and finally
// an ack sweep that advances every surviving object to OK and drops
// every object that reached DELETE.
//
// Nesting — calling Commit or Validate again before this call returns
// — is forbidden and reported as ErrBusy; this can only happen if
// Commit is invoked from a callback this package calls, since the
// package is otherwise single-threaded per Context.
func (ctx *Context) Commit(stdctx context.Context) error {
	if err := ctx.lock(); err != nil {
		return err
	}
	defer ctx.unlock()

	if ctx.hooks.StartupHook != nil {
		for _, n := range ctx.networks {
			for _, pa := range n.attachments {
				if pa.phys.isLocal {
					ctx.hooks.StartupHook(n, pa.phys)
				}
			}
		}
	}

	if n := ctx.validate(); n > 0 {
		return ErrValidate
	}

	if err := ctx.decommitSweep(stdctx); err != nil {
		return err
	}
	if err := ctx.recommitSweep(stdctx); err != nil {
		return err
	}
	ctx.ackSweep()
	return nil
}

// decommitSweep tears down kernel state for everything in DELETE or
// RENEW, in reverse dependency order: a renewed/deleted virt's remote
// counterpart first (remote virts have no local analogue, so this
// starts with remote virts/PAs belonging to renewed/deleted networks),
// then local virts, then PAs. Local teardown is gated on
// committedAsLocal, as recorded by the previous recommit sweep — not
// on the phys' current isLocal — so that a PA is only torn down if it
// was actually brought up, and unclaiming a phys between commits still
// tears down what was committed while it was local.
func (ctx *Context) decommitSweep(stdctx context.Context) error {
	for _, n := range ctx.networks {
		for _, rpa := range n.remotePAs {
			for _, rv := range rpa.remoteVirts {
				if !ackUncommit(&rv.state) {
					continue
				}
				if rpa.local.ops != nil {
					if rem, ok := hasRemoveRemoteVirt(rpa.local.ops); ok {
						if err := rem.RemoveRemoteVirt(stdctx, rv); err != nil {
							return wrapCommitErr(err)
						}
					}
				}
			}
			if !ackUncommit(&rpa.state) {
				continue
			}
			if rpa.local.ops != nil {
				if rem, ok := hasRemoveRemotePA(rpa.local.ops); ok {
					if err := rem.RemoveRemotePA(stdctx, rpa); err != nil {
						return wrapCommitErr(err)
					}
				}
			}
		}

		for _, pa := range n.attachments {
			if !pa.phys.committedAsLocal {
				continue
			}
			for _, v := range pa.virts {
				if !ackUncommit(&v.state) {
					continue
				}
				if pa.ops != nil {
					if rem, ok := hasRemoveVirt(pa.ops); ok {
						if err := rem.RemoveVirt(stdctx, v); err != nil {
							return wrapCommitErr(err)
						}
					}
				}
			}
			if !ackUncommit(&pa.state) {
				continue
			}
			if pa.ops != nil {
				if rem, ok := hasDestroyPA(pa.ops); ok {
					if err := rem.DestroyPA(stdctx, pa); err != nil {
						return wrapCommitErr(err)
					}
				}
			}
		}
	}
	return nil
}

// recommitSweep brings up kernel state for every attachment of every
// locally-claimed phys (objects in RENEW were reset to NEW by the
// decommit sweep's ackUncommit), via commitPA. A phys that isn't
// locally claimed is skipped entirely — its attachments are only ever
// observed as the "other" side of a local phys' remote-view
// materialization, never committed directly.
func (ctx *Context) recommitSweep(stdctx context.Context) error {
	for _, p := range ctx.physicals {
		p.committedAsLocal = p.isLocal
		if !p.isLocal {
			continue
		}
		for _, pa := range p.attachments {
			if err := ctx.commitPA(stdctx, pa); err != nil {
				return err
			}
		}
	}
	return nil
}

// commitPA implements the per-attachment commit step for a locally
// claimed phys: create the PA if it's NEW, add each of its NEW virts,
// then — regardless of whether pa itself is NEW — materialize a
// RemotePA mirror for every other NEW attachment sharing the network
// (local or genuinely remote), plus a RemoteVirt mirror for each of
// that other attachment's NEW virts. Because this only runs for
// locally claimed phys, a remote phys' own attachments never get this
// treatment, so the materialization is asymmetric by construction: a
// local phys sees a newly-appearing remote peer, but the peer (having
// no local commit of its own on this Context) never sees it back.
func (ctx *Context) commitPA(stdctx context.Context, pa *Attachment) error {
	if pa.state == StateNew {
		if pa.ops == nil {
			pa.ops = ctx.resolveOps(pa.network)
		}
		if c, ok := hasCreatePA(pa.ops); ok {
			if err := c.CreatePA(stdctx, pa); err != nil {
				return wrapCommitErr(err)
			}
		}
	}
	for _, v := range pa.virts {
		if v.state != StateNew {
			continue
		}
		if pa.ops != nil {
			if a, ok := hasAddVirt(pa.ops); ok {
				if err := a.AddVirt(stdctx, v); err != nil {
					return wrapCommitErr(err)
				}
			}
		}
	}

	for _, other := range pa.network.attachments {
		if other == pa || other.state != StateNew {
			continue
		}
		rpa := &RemotePA{network: pa.network, local: pa, remote: other, state: StateNew}
		pa.network.remotePAs = append(pa.network.remotePAs, rpa)
		if pa.ops != nil {
			if a, ok := hasAddRemotePA(pa.ops); ok {
				if err := a.AddRemotePA(stdctx, rpa); err != nil {
					return wrapCommitErr(err)
				}
			}
		}
		for _, v := range other.virts {
			if v.state != StateNew {
				continue
			}
			rv := &RemoteVirt{pa: rpa, virt: v, state: StateNew}
			rpa.remoteVirts = append(rpa.remoteVirts, rv)
			if pa.ops != nil {
				if a, ok := hasAddRemoteVirt(pa.ops); ok {
					if err := a.AddRemoteVirt(stdctx, rv); err != nil {
						return wrapCommitErr(err)
					}
				}
			}
		}
	}
	return nil
}

// ackSweep advances every surviving NEW/RENEW object to OK and drops
// every object left in DELETE from its owning slices.
func (ctx *Context) ackSweep() {
	for _, n := range ctx.networks {
		live := n.attachments[:0]
		for _, pa := range n.attachments {
			lv := pa.virts[:0]
			for _, v := range pa.virts {
				if v.state == StateDelete {
					continue
				}
				ackState(&v.state)
				lv = append(lv, v)
			}
			pa.virts = lv
			if pa.state == StateDelete {
				continue
			}
			ackState(&pa.state)
			live = append(live, pa)
		}
		n.attachments = live

		liveRPA := n.remotePAs[:0]
		for _, rpa := range n.remotePAs {
			lrv := rpa.remoteVirts[:0]
			for _, rv := range rpa.remoteVirts {
				if rv.state == StateDelete {
					continue
				}
				ackState(&rv.state)
				lrv = append(lrv, rv)
			}
			rpa.remoteVirts = lrv
			if rpa.state == StateDelete {
				continue
			}
			ackState(&rpa.state)
			liveRPA = append(liveRPA, rpa)
		}
		n.remotePAs = liveRPA
		ackState(&n.state)
	}

	liveNets := ctx.networks[:0]
	for _, n := range ctx.networks {
		if n.state == StateDelete {
			continue
		}
		liveNets = append(liveNets, n)
	}
	ctx.networks = liveNets

	for _, p := range ctx.physicals {
		live := p.attachments[:0]
		for _, pa := range p.attachments {
			if pa.state == StateDelete {
				continue
			}
			live = append(live, pa)
		}
		p.attachments = live
		ackState(&p.state)
	}
	livePhys := ctx.physicals[:0]
	for _, p := range ctx.physicals {
		if p.state == StateDelete {
			continue
		}
		livePhys = append(livePhys, p)
	}
	ctx.physicals = livePhys

	liveSettings := ctx.settings[:0]
	for _, s := range ctx.settings {
		if s.state == StateDelete {
			continue
		}
		ackState(&s.state)
		liveSettings = append(liveSettings, s)
	}
	ctx.settings = liveSettings
}

// resolveOps looks up the NetOps backend registered for a network's
// NetType. Backend registration (pkg/netops) lives outside this
// package; see Context.RegisterNetOps.
func (ctx *Context) resolveOps(n *Network) NetOps {
	return ctx.netOpsFor(n.settings.netType)
}

func wrapCommitErr(err error) error {
	if err == nil {
		return nil
	}
	return joinErrCommit(err)
}

func joinErrCommit(err error) error {
	return &commitError{cause: err}
}

type commitError struct {
	cause error
}

func (e *commitError) Error() string {
	return ErrCommit.Error() + ": " + e.cause.Error()
}

func (e *commitError) Unwrap() []error {
	return []error{ErrCommit, e.cause}
}

// decommitPABestEffort tears down a PA ignoring any error, used by
// Cleanup where the process is exiting and there is no one left to
// report failures to.
func decommitPABestEffort(n *Network, pa *Attachment) {
	if pa.ops == nil {
		return
	}
	for _, v := range pa.virts {
		if rem, ok := hasRemoveVirt(pa.ops); ok {
			_ = rem.RemoveVirt(context.Background(), v)
		}
	}
	if rem, ok := hasDestroyPA(pa.ops); ok {
		_ = rem.DestroyPA(context.Background(), pa)
	}
}
