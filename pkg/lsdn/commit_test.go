package lsdn

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// recordingOps is a minimal in-package NetOps used only by this
// file's tests, so they can assert call order without depending on
// pkg/lsdn/lsdntest (which imports this package and would create an
// import cycle from inside it).
type recordingOps struct {
	calls        []string
	failCreatePA bool
}

func (r *recordingOps) NetTypeName() string { return "direct" }

func (r *recordingOps) CreatePA(ctx context.Context, pa *Attachment) error {
	if r.failCreatePA {
		return errors.New("boom")
	}
	r.calls = append(r.calls, fmt.Sprintf("create-pa %s/%s", pa.network.name, pa.phys.name))
	return nil
}
func (r *recordingOps) DestroyPA(ctx context.Context, pa *Attachment) error {
	r.calls = append(r.calls, fmt.Sprintf("destroy-pa %s/%s", pa.network.name, pa.phys.name))
	return nil
}
func (r *recordingOps) AddVirt(ctx context.Context, v *Virt) error {
	r.calls = append(r.calls, fmt.Sprintf("add-virt %s", v.name))
	return nil
}
func (r *recordingOps) RemoveVirt(ctx context.Context, v *Virt) error {
	r.calls = append(r.calls, fmt.Sprintf("remove-virt %s", v.name))
	return nil
}
func (r *recordingOps) AddRemotePA(ctx context.Context, rpa *RemotePA) error {
	r.calls = append(r.calls, fmt.Sprintf("add-remote-pa %s/%s->%s", rpa.network.name, rpa.local.phys.name, rpa.remote.phys.name))
	return nil
}
func (r *recordingOps) RemoveRemotePA(ctx context.Context, rpa *RemotePA) error {
	r.calls = append(r.calls, fmt.Sprintf("remove-remote-pa %s/%s->%s", rpa.network.name, rpa.local.phys.name, rpa.remote.phys.name))
	return nil
}
func (r *recordingOps) AddRemoteVirt(ctx context.Context, rv *RemoteVirt) error {
	r.calls = append(r.calls, fmt.Sprintf("add-remote-virt %s", rv.virt.name))
	return nil
}
func (r *recordingOps) RemoveRemoteVirt(ctx context.Context, rv *RemoteVirt) error {
	r.calls = append(r.calls, fmt.Sprintf("remove-remote-virt %s", rv.virt.name))
	return nil
}

func newDirectScenario(t *testing.T) (*Context, *Network, *Phys, *Phys, *recordingOps) {
	t.Helper()
	ctx := NewContext("t")
	ops := &recordingOps{}
	ctx.RegisterNetOps(Direct{}.Name(), ops)

	settings, err := NewSettings(ctx, "s1", Direct{})
	if err != nil {
		t.Fatalf("NewSettings: %v", err)
	}
	net, err := NewNetwork(ctx, settings, "net1")
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	physA, err := NewPhys(ctx, "physA")
	if err != nil {
		t.Fatalf("NewPhys: %v", err)
	}
	physA.SetIface("eth0")
	physA.ClaimLocal()
	physB, err := NewPhys(ctx, "physB")
	if err != nil {
		t.Fatalf("NewPhys: %v", err)
	}
	physB.SetIface("eth0")
	physB.ClaimLocal()

	return ctx, net, physA, physB, ops
}

func TestCommitBringsUpNewTopology(t *testing.T) {
	ctx, net, physA, physB, ops := newDirectScenario(t)

	paA, err := physA.Attach(net)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	paB, err := physB.Attach(net)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, err := paA.Connect("v1", "veth0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := paB.Connect("v2", "veth1"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := ctx.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	// 2 create-pa + 2 add-virt for the local PAs themselves, plus each
	// of physA/physB's commitPA materializing a RemotePA/RemoteVirt
	// mirror of the other (both are claimed local here): 2 add-remote-pa
	// + 2 add-remote-virt.
	if len(ops.calls) != 8 {
		t.Fatalf("expected 8 calls, got %d: %v", len(ops.calls), ops.calls)
	}
	if paA.state != StateOK || paB.state != StateOK {
		t.Errorf("PAs should be OK after commit, got %v %v", paA.state, paB.state)
	}
	if net.state != StateOK {
		t.Errorf("network should be OK after commit, got %v", net.state)
	}
}

// TestCommitIsIdempotent exercises invariant 6: committing twice with
// no intervening changes issues no further kernel calls.
func TestCommitIsIdempotent(t *testing.T) {
	ctx, net, physA, _, ops := newDirectScenario(t)
	pa, err := physA.Attach(net)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, err := pa.Connect("v1", "veth0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := ctx.Commit(context.Background()); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	before := len(ops.calls)

	if err := ctx.Commit(context.Background()); err != nil {
		t.Fatalf("second Commit: %v", err)
	}
	if len(ops.calls) != before {
		t.Errorf("second commit issued %d new calls, want 0: %v", len(ops.calls)-before, ops.calls[before:])
	}
}

// TestCommitTearsDownDeletedVirt exercises the decommit sweep.
func TestCommitTearsDownDeletedVirt(t *testing.T) {
	ctx, net, physA, _, ops := newDirectScenario(t)
	pa, _ := physA.Attach(net)
	v, _ := pa.Connect("v1", "veth0")

	if err := ctx.Commit(context.Background()); err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	v.Delete()
	if err := ctx.Commit(context.Background()); err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	found := false
	for _, c := range ops.calls {
		if c == "remove-virt v1" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected remove-virt call, got %v", ops.calls)
	}
	if len(pa.virts) != 0 {
		t.Errorf("deleted virt should be dropped from attachment, got %d remaining", len(pa.virts))
	}
}

// TestFreeSkipsDecommit exercises invariant 7: Free tears down the
// object graph without issuing any kernel calls.
func TestFreeSkipsDecommit(t *testing.T) {
	ctx, net, physA, _, ops := newDirectScenario(t)
	pa, _ := physA.Attach(net)
	if _, err := pa.Connect("v1", "veth0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := ctx.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	before := len(ops.calls)
	ctx.Free()
	if len(ops.calls) != before {
		t.Errorf("Free issued %d kernel calls, want 0: %v", len(ops.calls)-before, ops.calls[before:])
	}
	if len(ctx.networks) != 0 || len(ctx.physicals) != 0 {
		t.Error("Free should clear the object graph")
	}
}

// TestCommitRejectsNesting exercises invariant: a Commit called while
// one is in flight on the same Context fails with ErrBusy rather than
// blocking or corrupting the problem buffer.
func TestCommitRejectsNesting(t *testing.T) {
	ctx, net, physA, _, _ := newDirectScenario(t)
	pa, _ := physA.Attach(net)
	if _, err := pa.Connect("v1", "veth0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := ctx.lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer ctx.unlock()

	if err := ctx.Commit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("Commit while busy = %v, want ErrBusy", err)
	}
}

// TestCommitSurfacesBackendFailure exercises the ErrCommit wrapping
// path: a NetOps failure during the recommit sweep is reported, not
// swallowed, and leaves the object graph for the caller to retry.
func TestCommitSurfacesBackendFailure(t *testing.T) {
	ctx, net, physA, _, ops := newDirectScenario(t)
	ops.failCreatePA = true
	pa, _ := physA.Attach(net)
	if _, err := pa.Connect("v1", "veth0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := ctx.Commit(context.Background()); !errors.Is(err, ErrCommit) {
		t.Fatalf("Commit() = %v, want ErrCommit", err)
	}
}

// TestRemotePALifecycle exercises invariant 9 and the S4 scenario: a
// local phys commits a RemotePA/RemoteVirt mirror for a remote peer's
// attachment and virt, asymmetrically — the remote phys never commits
// its own side, so its virt is never locally added, only mirrored.
func TestRemotePALifecycle(t *testing.T) {
	ctx := NewContext("t")
	ops := &recordingOps{}
	ctx.RegisterNetOps(VXLANStatic{}.Name(), ops)

	settings, _ := NewSettings(ctx, "s1", VXLANStatic{Port: 4789})
	net, _ := NewNetwork(ctx, settings, "net1")
	net.SetVnetID(42)

	local, _ := NewPhys(ctx, "local")
	local.SetIface("vxlan0")
	localIP, err := ParseIP("10.0.0.1")
	if err != nil {
		t.Fatalf("ParseIP: %v", err)
	}
	local.SetIP(localIP)
	local.ClaimLocal()

	remote, _ := NewPhys(ctx, "remote")
	remoteIP, _ := ParseIP("10.0.0.2")
	remote.SetIP(remoteIP)

	localPA, err := local.Attach(net)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	remotePA, err := remote.Attach(net)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	rv, err := remotePA.Connect("vr", "veth0")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	mac, _ := ParseMAC("aa:bb:cc:dd:ee:ff")
	rv.SetMAC(mac)

	if err := ctx.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(net.remotePAs) != 1 {
		t.Fatalf("expected one remote PA mirror, got %d", len(net.remotePAs))
	}
	rpa := net.remotePAs[0]
	if rpa.Local() != localPA || rpa.Remote() != remotePA {
		t.Errorf("remote PA mirrors local=%v remote=%v, want local=%v remote=%v", rpa.Local(), rpa.Remote(), localPA, remotePA)
	}
	if rpa.state != StateOK {
		t.Errorf("remote PA should be OK after commit, got %v", rpa.state)
	}
	if len(rpa.remoteVirts) != 1 || rpa.remoteVirts[0].virt != rv {
		t.Fatalf("expected one remote virt mirroring vr, got %+v", rpa.remoteVirts)
	}

	for _, c := range ops.calls {
		if c == "add-virt vr" {
			t.Errorf("remote phys' virt should never be locally added, got %v", ops.calls)
		}
	}
	foundAddRemoteVirt := false
	for _, c := range ops.calls {
		if c == "add-remote-virt vr" {
			foundAddRemoteVirt = true
		}
	}
	if !foundAddRemoteVirt {
		t.Errorf("expected add-remote-virt call, got %v", ops.calls)
	}

	rpa.Delete()
	if err := ctx.Commit(context.Background()); err != nil {
		t.Fatalf("second Commit: %v", err)
	}
	if len(net.remotePAs) != 0 {
		t.Error("deleted remote PA should be dropped")
	}

	foundRemove := false
	for _, c := range ops.calls {
		if c == "remove-remote-virt vr" {
			foundRemove = true
		}
	}
	if !foundRemove {
		t.Errorf("expected a remove-remote-virt vr call, got %v", ops.calls)
	}
}
