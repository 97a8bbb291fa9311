// Package direct implements lsdn.NetOps for lsdn.Direct networks: a
// plain Linux bridge per (network, phys) attachment, with every
// connected virt enslaved to it untagged.
package direct

import (
	"context"

	"github.com/newtron-network/netfabric/pkg/effector"
	"github.com/newtron-network/netfabric/pkg/lsdn"
	"github.com/newtron-network/netfabric/pkg/netops/bridge"
)

// Backend is the Direct NetOps implementation. Register one per
// Context with ctx.RegisterNetOps(lsdn.Direct{}.Name(), backend).
type Backend struct {
	Eff effector.Effector
}

func New(eff effector.Effector) *Backend { return &Backend{Eff: eff} }

func (b *Backend) NetTypeName() string { return lsdn.Direct{}.Name() }

func (b *Backend) CreatePA(ctx context.Context, pa *lsdn.Attachment) error {
	return bridge.Create(ctx, b.Eff, pa)
}

func (b *Backend) DestroyPA(ctx context.Context, pa *lsdn.Attachment) error {
	return bridge.Destroy(ctx, b.Eff, pa)
}

func (b *Backend) AddVirt(ctx context.Context, v *lsdn.Virt) error {
	return bridge.Enslave(ctx, b.Eff, v)
}

func (b *Backend) RemoveVirt(ctx context.Context, v *lsdn.Virt) error {
	return bridge.Release(ctx, b.Eff, v)
}
