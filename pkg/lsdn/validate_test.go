package lsdn

import (
	"errors"
	"testing"
)

func TestValidatePhysNoAttr(t *testing.T) {
	ctx := NewContext("t")
	settings, _ := NewSettings(ctx, "s1", Direct{})
	net, _ := NewNetwork(ctx, settings, "net1")
	phys, _ := NewPhys(ctx, "phys1")
	phys.ClaimLocal()
	// Explicitly attached but never given an iface.
	if _, err := phys.Attach(net); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	var problems []Problem
	ctx.SetProblemCallback(func(p Problem, user any) { problems = append(problems, p) }, nil)

	if err := ctx.Validate(); !errors.Is(err, ErrValidate) {
		t.Fatalf("Validate() = %v, want ErrValidate", err)
	}
	if len(problems) != 1 || problems[0].Code != PhysNoAttr {
		t.Fatalf("expected one PhysNoAttr problem, got %+v", problems)
	}
}

func TestValidatePhysNotAttached(t *testing.T) {
	ctx := NewContext("t")
	settings, _ := NewSettings(ctx, "s1", Direct{})
	net, _ := NewNetwork(ctx, settings, "net1")
	phys, _ := NewPhys(ctx, "phys1")
	phys.SetIface("eth0")
	phys.ClaimLocal()

	// Connect through an implicit attachment: no phys.Attach call.
	if _, err := net.Connect(phys, "v1", "veth0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	var problems []Problem
	ctx.SetProblemCallback(func(p Problem, user any) { problems = append(problems, p) }, nil)

	if err := ctx.Validate(); !errors.Is(err, ErrValidate) {
		t.Fatalf("Validate() = %v, want ErrValidate", err)
	}
	if len(problems) != 1 || problems[0].Code != PhysNotAttached {
		t.Fatalf("expected one PhysNotAttached problem, got %+v", problems)
	}
}

func TestValidateNetDupID(t *testing.T) {
	ctx := NewContext("t")
	settings, _ := NewSettings(ctx, "s1", VLAN{})
	n1, _ := NewNetwork(ctx, settings, "net1")
	n2, _ := NewNetwork(ctx, settings, "net2")
	n1.SetVnetID(100)
	n2.SetVnetID(100)

	var problems []Problem
	ctx.SetProblemCallback(func(p Problem, user any) { problems = append(problems, p) }, nil)

	if err := ctx.Validate(); !errors.Is(err, ErrValidate) {
		t.Fatalf("Validate() = %v, want ErrValidate", err)
	}
	if len(problems) != 1 || problems[0].Code != NetDupID {
		t.Fatalf("expected one NetDupID problem, got %+v", problems)
	}
}

func TestValidateVirtDupAttr(t *testing.T) {
	ctx := NewContext("t")
	settings, _ := NewSettings(ctx, "s1", Direct{})
	net, _ := NewNetwork(ctx, settings, "net1")
	phys, _ := NewPhys(ctx, "phys1")
	phys.SetIface("eth0")
	pa, _ := phys.Attach(net)

	v1, _ := pa.Connect("v1", "veth0")
	v2, _ := pa.Connect("v2", "veth1")
	mac, _ := ParseMAC("aa:bb:cc:dd:ee:ff")
	v1.SetMAC(mac)
	v2.SetMAC(mac)

	var problems []Problem
	ctx.SetProblemCallback(func(p Problem, user any) { problems = append(problems, p) }, nil)

	if err := ctx.Validate(); !errors.Is(err, ErrValidate) {
		t.Fatalf("Validate() = %v, want ErrValidate", err)
	}
	if len(problems) != 1 || problems[0].Code != VirtDupAttr {
		t.Fatalf("expected one VirtDupAttr problem, got %+v", problems)
	}
}

func TestValidateCleanTopologyPasses(t *testing.T) {
	ctx := NewContext("t")
	settings, _ := NewSettings(ctx, "s1", Direct{})
	net, _ := NewNetwork(ctx, settings, "net1")
	phys, _ := NewPhys(ctx, "phys1")
	phys.SetIface("eth0")
	pa, _ := phys.Attach(net)
	if _, err := pa.Connect("v1", "veth0"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := ctx.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
