package lsdn

import (
	"fmt"
	"os"
	"strings"
)

// MaxProblemRefs bounds the number of subject references a single
// Problem may carry. Reporting beyond this is a programming error in
// the validator and panics, matching the original library's assert on
// the equivalent LSDN_MAX_PROBLEM_REFS bound.
const MaxProblemRefs = 4

// ProblemCode identifies a class of diagnostic. Each code has exactly
// one format template (see problemTemplates) and a fixed arity of
// subject references.
type ProblemCode int

const (
	// PhysNoAttr: an explicitly-attached local phys is missing a
	// required attribute (currently only "iface").
	PhysNoAttr ProblemCode = iota
	// PhysNotAttached: a virt is connected through a phys/net pair
	// that was never explicitly attached.
	PhysNotAttached
	// PhysDupAttr: two physicals share the same value for an
	// attribute that must be unique (currently only "ip").
	PhysDupAttr
	// VirtNoIf: a virt connected through an explicit attachment on a
	// local phys has no interface name. The name is not looked up in
	// the kernel.
	VirtNoIf
	// VirtDupAttr: two virts in the same network share the same
	// value for an attribute that must be unique (currently only
	// "mac").
	VirtDupAttr
	// NetDupID: two networks share the same (nettype, vnet_id) pair.
	NetDupID
	// NetBadNettype: two VXLAN networks sharing a local attachment
	// and a UDP port disagree in a way that would make one
	// interpret the other's traffic incorrectly (STATIC_E2E vs a
	// non-STATIC_E2E switch type on the same port).
	NetBadNettype
	// BackendRejected is raised by a NetOps backend's ValidatePA or
	// ValidateVirt when it rejects an object for a reason specific to
	// its NetType (e.g. a VLAN id out of range) that the core engine
	// has no template for.
	BackendRejected
)

// problemTemplates maps each code to a format string. Each "%o"
// placeholder consumes one subject reference, substituted by its
// stringified form (see ProblemRef.String).
var problemTemplates = map[ProblemCode]string{
	PhysNoAttr:      "physical %o is missing required attribute %o for network %o",
	PhysNotAttached: "virt %o is connected through phys %o on network %o, but the phys was never explicitly attached",
	PhysDupAttr:     "physicals %o and %o share the same %o",
	VirtNoIf:        "virt %o's interface %o could not be resolved",
	VirtDupAttr:     "virts %o and %o in network %o share the same %o",
	NetDupID:        "networks %o and %o share the same network id %o",
	NetBadNettype:   "networks %o and %o use incompatible VXLAN switch types on the same port",
	BackendRejected: "%o rejected: %o",
}

// ProblemRefKind tags what kind of subject a ProblemRef points to.
type ProblemRefKind int

const (
	RefKindIf ProblemRefKind = iota
	RefKindNet
	RefKindVirt
	RefKindPhys
	RefKindAttr
	RefKindNetID
)

// ProblemRef is one typed subject reference attached to a Problem.
type ProblemRef struct {
	Kind ProblemRefKind
	// Exactly one of the following is meaningful, selected by Kind.
	ifName string
	net    *Network
	virt   *Virt
	phys   *Phys
	attr   string
	netID  uint32
}

// String renders the subject the way the original library's
// format_subject did: the object's name if it has one, its interface
// name for RefKindIf, the raw string for RefKindAttr, the numeric id
// for RefKindNetID, or a fallback placeholder.
func (r ProblemRef) String() string {
	switch r.Kind {
	case RefKindIf:
		return r.ifName
	case RefKindNet:
		if r.net != nil && r.net.name != "" {
			return r.net.name
		}
		return "<unnamed net>"
	case RefKindVirt:
		if r.virt != nil && r.virt.name != "" {
			return r.virt.name
		}
		return "<unnamed virt>"
	case RefKindPhys:
		if r.phys != nil && r.phys.name != "" {
			return r.phys.name
		}
		return "<unnamed phys>"
	case RefKindAttr:
		return r.attr
	case RefKindNetID:
		return fmt.Sprintf("%d", r.netID)
	default:
		return "<unknown>"
	}
}

// RefIf builds a subject reference to an interface name.
func RefIf(name string) ProblemRef { return ProblemRef{Kind: RefKindIf, ifName: name} }

// RefNet builds a subject reference to a network.
func RefNet(n *Network) ProblemRef { return ProblemRef{Kind: RefKindNet, net: n} }

// RefVirt builds a subject reference to a virt.
func RefVirt(v *Virt) ProblemRef { return ProblemRef{Kind: RefKindVirt, virt: v} }

// RefPhys builds a subject reference to a physical host.
func RefPhys(p *Phys) ProblemRef { return ProblemRef{Kind: RefKindPhys, phys: p} }

// RefAttr builds a subject reference to an attribute name.
func RefAttr(name string) ProblemRef { return ProblemRef{Kind: RefKindAttr, attr: name} }

// RefNetID builds a subject reference to a numeric network id.
func RefNetID(id uint32) ProblemRef { return ProblemRef{Kind: RefKindNetID, netID: id} }

// Problem is a single diagnostic: a code plus its subject references.
type Problem struct {
	Code ProblemCode
	Refs []ProblemRef
}

// Format renders a Problem by substituting each "%o" in its code's
// template with the corresponding subject reference, in order.
func Format(p Problem) string {
	tmpl, ok := problemTemplates[p.Code]
	if !ok {
		return fmt.Sprintf("<unknown problem code %d>", p.Code)
	}
	var sb strings.Builder
	refIdx := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '%' && i+1 < len(tmpl) && tmpl[i+1] == 'o' {
			if refIdx >= len(p.Refs) {
				panic("lsdn: problem template references more subjects than were reported")
			}
			sb.WriteString(p.Refs[refIdx].String())
			refIdx++
			i++
			continue
		}
		sb.WriteByte(tmpl[i])
	}
	return sb.String()
}

// ProblemCB is invoked once per reported problem during a single
// Validate/Commit call. It must not retain subj references past its
// return.
type ProblemCB func(p Problem, user any)

// StderrHandler is a ready-made problem callback: it formats the
// problem and writes it, prefixed with "lsdn: ", to standard error.
func StderrHandler(p Problem, user any) {
	fmt.Fprintln(os.Stderr, "lsdn: "+Format(p))
}

// Reject lets a NetOps backend raise a BackendRejected problem for a
// NetType-specific reason the core engine has no dedicated code for
// (see ValidatePA/ValidateVirt on NetOps).
func (ctx *Context) Reject(subject ProblemRef, reason string) {
	ctx.report(BackendRejected, subject, RefAttr(reason))
}

// report builds a Problem from code and refs (at most MaxProblemRefs
// references per problem; the codes defined above take 2-4 refs, so
// VirtDupAttr sits exactly at the bound), increments the problem
// count, and invokes the currently bound callback, if any. Problems
// are not stored on the Context.
func (ctx *Context) report(code ProblemCode, refs ...ProblemRef) {
	if len(refs) > MaxProblemRefs {
		panic("lsdn: too many problem refs reported")
	}
	p := Problem{Code: code, Refs: refs}
	ctx.problemCount++
	if ctx.problemCB != nil {
		ctx.problemCB(p, ctx.problemCBUser)
	}
}
