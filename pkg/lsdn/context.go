package lsdn

import (
	"fmt"
	"sync"
)

// Effector is the narrow set of kernel-facing operations the core
// engine itself needs directly (as opposed to the per-nettype NetOps
// backends, which need a much richer surface and live behind
// pkg/effector.Effector instead). Today that is nothing — the core
// never touches the kernel on its own, and Context holds no Effector.
// Backends receive the richer pkg/effector.Effector directly at
// construction time.
type Effector interface {
	Close() error
}

// NoMemCB is invoked when an allocation inside the library fails,
// mirroring the original library's lsdn_nomem_callback. Go's
// allocator does not fail recoverably the way C's malloc does, and no
// code path in this package invokes the installed callback.
type NoMemCB func(ctx *Context, user any)

// AbortOnNoMem is a NoMemCB that terminates the process, matching the
// original library's lsdn_abort_on_nomem helper. It is the default
// installed by NewContext, since failing to allocate a handful of
// bytes for topology bookkeeping is not a condition most orchestrators
// can usefully recover from.
func AbortOnNoMem(ctx *Context, user any) {
	panic("lsdn: out of memory")
}

// Context is the root of a topology graph and the synchronization
// point for Commit/Validate. One Context typically corresponds to one
// participating host.
type Context struct {
	name string

	nomemCB     NoMemCB
	nomemCBUser any

	problemCB     ProblemCB
	problemCBUser any
	problemCount  int

	ifNameCounter int

	// disableDecommit short-circuits the decommit sweep during Free's
	// teardown path (see Free/Cleanup): objects are unlinked and freed
	// without issuing any kernel teardown calls, because the process
	// holding the kernel state is usually going away anyway and a best
	// effort decommit would only slow shutdown down.
	disableDecommit bool

	physScope    *nameScope
	netScope     *nameScope
	settingsScope *nameScope

	physicals []*Phys
	networks  []*Network
	settings  []*Settings

	hooks UserHooks

	// netOpsRegistry maps a NetType's Name() to the backend
	// implementation that drives it, populated by RegisterNetOps. The
	// concrete backends (pkg/netops/direct, /vlan, /vxlan) register
	// themselves by name rather than this package importing them
	// directly, keeping pkg/lsdn free of any per-nettype dependency.
	netOpsRegistry map[string]NetOps

	// busy guards against nested Commit/Validate calls on the same
	// Context. The original library used a single-threaded event loop
	// where reentrancy could only happen from within a callback; a
	// mutex generalizes that guarantee to a Go program where Commit
	// might be called concurrently from goroutines sharing a Context,
	// which the original never had to consider.
	busy sync.Mutex

	// allocFail is a fault-injection slot for the no-mem callback
	// path. No allocation point in this package reads it.
	allocFail func() bool
}

// NewContext creates an empty topology graph. name is used only for
// diagnostics (e.g. distinguishing contexts in multi-host test
// scenarios); it need not be unique.
func NewContext(name string) *Context {
	return &Context{
		name:           name,
		nomemCB:        AbortOnNoMem,
		physScope:      newNameScope(),
		netScope:       newNameScope(),
		settingsScope:  newNameScope(),
		netOpsRegistry: make(map[string]NetOps),
	}
}

// RegisterNetOps binds the NetOps backend that drives every Network
// whose Settings use a NetType with the given name (see NetType.Name).
// Backends register themselves from an init function or explicit
// setup call in pkg/netops; pkg/lsdn never imports a concrete backend.
func (ctx *Context) RegisterNetOps(netTypeName string, ops NetOps) {
	ctx.netOpsRegistry[netTypeName] = ops
}

// netOpsFor resolves the backend registered for nt's name, or nil if
// none was registered — in which case commit silently skips every
// optional NetOps call for networks of that type, which is only
// correct for NetType Direct (a plain bridge needs no backend-specific
// kernel calls beyond what pkg/netops/bridge already issues at PA
// creation time via the Direct backend itself).
func (ctx *Context) netOpsFor(nt NetType) NetOps {
	return ctx.netOpsRegistry[nt.Name()]
}

// Name returns the diagnostic name given to NewContext.
func (ctx *Context) Name() string { return ctx.name }

// Networks returns every Network currently registered on the
// Context. The returned slice is owned by Context and must not be
// modified.
func (ctx *Context) Networks() []*Network { return ctx.networks }

// Physicals returns every Phys currently registered on the Context.
// The returned slice is owned by Context and must not be modified.
func (ctx *Context) Physicals() []*Phys { return ctx.physicals }

// SetNoMemCallback installs cb to be invoked on allocation failure, in
// place of the default AbortOnNoMem.
func (ctx *Context) SetNoMemCallback(cb NoMemCB, user any) {
	ctx.nomemCB = cb
	ctx.nomemCBUser = user
}

// SetProblemCallback installs cb to be invoked once per diagnostic
// raised by Validate/Commit. Passing nil disables reporting; problems
// are still counted and still fail validation.
func (ctx *Context) SetProblemCallback(cb ProblemCB, user any) {
	ctx.problemCB = cb
	ctx.problemCBUser = user
}

// SetUserHooks installs hooks consulted during Commit.
func (ctx *Context) SetUserHooks(hooks UserHooks) {
	ctx.hooks = hooks
}

func (ctx *Context) nextIfName(prefix string) string {
	ctx.ifNameCounter++
	return fmt.Sprintf("%s%d", prefix, ctx.ifNameCounter)
}

func (ctx *Context) noMem() {
	if ctx.nomemCB != nil {
		ctx.nomemCB(ctx, ctx.nomemCBUser)
	}
}

// lock acquires the busy guard without blocking, returning ErrBusy if
// a Commit or Validate is already in progress. Unlike sync.Mutex.Lock,
// it never blocks the caller — the original library's single-threaded
// model means a "busy" Context is a caller error, not a queue to wait
// on.
func (ctx *Context) lock() error {
	if !ctx.busy.TryLock() {
		return ErrBusy
	}
	return nil
}

func (ctx *Context) unlock() {
	ctx.busy.Unlock()
}

// Cleanup releases every object owned by the Context after issuing
// decommit calls for anything currently committed, invoking abortCB
// (if non-nil) before each decommit step so a caller can log or audit
// the teardown. Unlike Free, Cleanup always attempts decommit.
func (ctx *Context) Cleanup(abortCB func(stage string), user any) {
	for _, net := range ctx.networks {
		for _, pa := range net.attachments {
			if abortCB != nil {
				abortCB("decommit-pa")
			}
			if !ctx.disableDecommit {
				decommitPABestEffort(net, pa)
			}
		}
	}
	ctx.physicals = nil
	ctx.networks = nil
	ctx.settings = nil
}

// Free releases every object owned by the Context without attempting
// kernel teardown — disableDecommit short-circuits Cleanup's decommit
// calls, matching the original library's lsdn_free, which is used
// when the process is exiting and best-effort decommit would only add
// latency to shutdown for no observable benefit.
func (ctx *Context) Free() {
	ctx.disableDecommit = true
	ctx.Cleanup(nil, nil)
}
