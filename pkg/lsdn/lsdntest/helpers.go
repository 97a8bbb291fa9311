// Package lsdntest provides shared scaffolding for pkg/lsdn's tests:
// a context wired with a recording NetOps backend so tests can assert
// on exactly what kernel operations a commit would have issued.
package lsdntest

import (
	"context"
	"fmt"
	"sync"

	"github.com/newtron-network/netfabric/pkg/lsdn"
)

// Recorder is an in-memory NetOps implementation that logs every call
// it receives instead of touching the kernel, used the same way
// effector.Mock lets pkg/netops backends be tested without a real
// network namespace, but at the NetOps layer itself so pkg/lsdn's own
// tests don't need to pull in any pkg/netops backend.
type Recorder struct {
	mu    sync.Mutex
	Calls []string

	netTypeName string

	FailCreatePA func(*lsdn.Attachment) error
}

// NewRecorder returns a Recorder that answers NetTypeName with name.
func NewRecorder(name string) *Recorder {
	return &Recorder{netTypeName: name}
}

func (r *Recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) NetTypeName() string { return r.netTypeName }

func (r *Recorder) CreatePA(ctx context.Context, pa *lsdn.Attachment) error {
	if r.FailCreatePA != nil {
		if err := r.FailCreatePA(pa); err != nil {
			return err
		}
	}
	r.record("create-pa %s/%s", pa.Network().Name(), pa.Phys().Name())
	return nil
}

func (r *Recorder) DestroyPA(ctx context.Context, pa *lsdn.Attachment) error {
	r.record("destroy-pa %s/%s", pa.Network().Name(), pa.Phys().Name())
	return nil
}

func (r *Recorder) AddVirt(ctx context.Context, v *lsdn.Virt) error {
	r.record("add-virt %s/%s", v.Attachment().Network().Name(), v.Name())
	return nil
}

func (r *Recorder) RemoveVirt(ctx context.Context, v *lsdn.Virt) error {
	r.record("remove-virt %s/%s", v.Attachment().Network().Name(), v.Name())
	return nil
}

func (r *Recorder) AddRemotePA(ctx context.Context, rpa *lsdn.RemotePA) error {
	r.record("add-remote-pa %s/%s->%s", rpa.Network().Name(), rpa.Local().Phys().Name(), rpa.Remote().Phys().Name())
	return nil
}

func (r *Recorder) RemoveRemotePA(ctx context.Context, rpa *lsdn.RemotePA) error {
	r.record("remove-remote-pa %s/%s->%s", rpa.Network().Name(), rpa.Local().Phys().Name(), rpa.Remote().Phys().Name())
	return nil
}

func (r *Recorder) AddRemoteVirt(ctx context.Context, rv *lsdn.RemoteVirt) error {
	r.record("add-remote-virt %s/%s", rv.RemotePA().Network().Name(), rv.Virt().Name())
	return nil
}

func (r *Recorder) RemoveRemoteVirt(ctx context.Context, rv *lsdn.RemoteVirt) error {
	r.record("remove-remote-virt %s/%s", rv.RemotePA().Network().Name(), rv.Virt().Name())
	return nil
}

// NewTestContext returns an empty Context with no NetOps registered.
// Individual tests register a Recorder for whichever NetType names
// they exercise.
func NewTestContext() *lsdn.Context {
	return lsdn.NewContext("test")
}

// Scenario holds the commonly-reused objects of a small topology: two
// physicals on a single Direct network, one virt on each. Tests
// extend it or build their own graph directly on top of
// NewTestContext when they need a different shape.
type Scenario struct {
	Ctx      *lsdn.Context
	Settings *lsdn.Settings
	Net      *lsdn.Network
	PhysA    *lsdn.Phys
	PhysB    *lsdn.Phys
	VirtA    *lsdn.Virt
	VirtB    *lsdn.Virt
	Ops      *Recorder
}

// NewDirectScenario builds two physicals connected by one Direct
// network, each carrying one virt, with a Recorder registered as the
// network's backend.
func NewDirectScenario() (*Scenario, error) {
	ctx := NewTestContext()
	ops := NewRecorder(lsdn.Direct{}.Name())
	ctx.RegisterNetOps(lsdn.Direct{}.Name(), ops)

	settings, err := lsdn.NewSettings(ctx, "s1", lsdn.Direct{})
	if err != nil {
		return nil, err
	}
	net, err := lsdn.NewNetwork(ctx, settings, "net1")
	if err != nil {
		return nil, err
	}

	physA, err := lsdn.NewPhys(ctx, "physA")
	if err != nil {
		return nil, err
	}
	physA.SetIface("eth0")
	physA.ClaimLocal()
	physB, err := lsdn.NewPhys(ctx, "physB")
	if err != nil {
		return nil, err
	}
	physB.SetIface("eth0")
	physB.ClaimLocal()

	paA, err := physA.Attach(net)
	if err != nil {
		return nil, err
	}
	paB, err := physB.Attach(net)
	if err != nil {
		return nil, err
	}

	virtA, err := paA.Connect("vmA", "veth0")
	if err != nil {
		return nil, err
	}
	virtB, err := paB.Connect("vmB", "veth0")
	if err != nil {
		return nil, err
	}

	return &Scenario{
		Ctx: ctx, Settings: settings, Net: net,
		PhysA: physA, PhysB: physB, VirtA: virtA, VirtB: virtB, Ops: ops,
	}, nil
}
