// Package vlan implements lsdn.NetOps for lsdn.VLAN networks: like
// Direct, a bridge per attachment, but the network's vnet id must fit
// a 12-bit 802.1Q tag and is validated here rather than in the core
// engine (the core doesn't know what range is valid for a given
// NetType).
package vlan

import (
	"context"
	"fmt"

	"github.com/newtron-network/netfabric/pkg/effector"
	"github.com/newtron-network/netfabric/pkg/lsdn"
	"github.com/newtron-network/netfabric/pkg/netops/bridge"
)

const vlanMin, vlanMax = 1, 4094

// Backend is the VLAN NetOps implementation.
type Backend struct {
	Eff effector.Effector
}

func New(eff effector.Effector) *Backend { return &Backend{Eff: eff} }

func (b *Backend) NetTypeName() string { return lsdn.VLAN{}.Name() }

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

// ValidatePA rejects a vnet id outside the 802.1Q 1-4094 range. 0 and
// 4095 are reserved by the standard.
func (b *Backend) ValidatePA(lctx *lsdn.Context, pa *lsdn.Attachment) {
	id, ok := pa.Network().VnetID()
	if !ok {
		return
	}
	if id < vlanMin || id > vlanMax {
		lctx.Reject(lsdn.RefNet(pa.Network()), fmt.Sprintf("vlan id %d out of range %d-%d", id, vlanMin, vlanMax))
	}
}
