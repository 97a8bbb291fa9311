package lsdn

// RemotePA mirrors, from the point of view of one local Attachment,
// another Attachment on the same Network — local or remote — as seen
// during commit. It is never constructed by the caller: commitPA
// materializes one for every other NEW Attachment sharing the
// Network at the moment a local PA is brought up, so that a VXLAN
// e2e/static backend can drive AddRemotePA/RemoveRemotePA against the
// peer's reachability address. The peer is itself a full Attachment
// on a full Phys (see Remote), whose IP gives that address.
type RemotePA struct {
	network *Network
	local   *Attachment
	remote  *Attachment
	state   State

	remoteVirts []*RemoteVirt
}

// Network returns the Network this remote attachment belongs to.
func (rpa *RemotePA) Network() *Network { return rpa.network }

// Local returns the locally-committed Attachment this mirror was
// materialized from.
func (rpa *RemotePA) Local() *Attachment { return rpa.local }

// Remote returns the other Attachment this mirror observes — the
// peer's side, which may itself be local (if both phys are claimed
// local on this Context) or genuinely remote.
func (rpa *RemotePA) Remote() *Attachment { return rpa.remote }

// Delete marks the RemotePA for removal on the next commit. Every
// RemoteVirt bound to it is implicitly deleted first, directly rather
// than through RemoteVirt.Delete, since there is no auto-free chain to
// protect against here.
func (rpa *RemotePA) Delete() {
	for _, rv := range rpa.remoteVirts {
		rv.state = StateDelete
	}
	rpa.state = StateDelete
}

// RemoteVirt mirrors one virt connected through a RemotePA's remote
// Attachment, materialized alongside the RemotePA itself during
// commit for every NEW virt on that remote side.
type RemoteVirt struct {
	pa    *RemotePA
	virt  *Virt
	state State
}

// RemotePA returns the remote attachment this binding belongs to.
func (rv *RemoteVirt) RemotePA() *RemotePA { return rv.pa }

// Virt returns the virt this binding mirrors.
func (rv *RemoteVirt) Virt() *Virt { return rv.virt }

// Delete marks the RemoteVirt for removal on the next commit.
func (rv *RemoteVirt) Delete() {
	rv.state = StateDelete
}
