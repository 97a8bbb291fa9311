package lsdn

// Settings groups the shared backend configuration for one or more
// Networks of the same NetType — the UDP port and switch type for a
// family of VXLAN networks, for instance. Splitting this out of
// Network itself mirrors the original library's lsdn_settings, which
// exists so that networks sharing infrastructure (one VXLAN socket
// serving many VNIs) can be validated for mutual compatibility
// without re-deriving that infrastructure from every Network.
type Settings struct {
	ctx   *Context
	name  string
	state State

	netType    NetType
	switchType SwitchType
}

// NewSettings registers a new Settings object under ctx, named name
// (must be unique among the Context's settings), with the given
// NetType. Returns ErrDuplicate if the name is taken.
func NewSettings(ctx *Context, name string, nt NetType) (*Settings, error) {
	s := &Settings{
		ctx:        ctx,
		state:      StateNew,
		netType:    nt,
		switchType: switchTypeOf(nt),
	}
	if err := ctx.settingsScope.set(s, &s.name, name); err != nil {
		return nil, err
	}
	ctx.settings = append(ctx.settings, s)
	return s, nil
}

// Name returns the Settings' unique name within its Context.
func (s *Settings) Name() string { return s.name }

// NetType returns the network type these settings configure.
func (s *Settings) NetType() NetType { return s.netType }

// SwitchType returns the switch type implied by NetType.
func (s *Settings) SwitchType() SwitchType { return s.switchType }

// Rename changes the Settings' name, validated for uniqueness.
func (s *Settings) Rename(name string) error {
	return s.ctx.settingsScope.set(s, &s.name, name)
}

// Delete marks the Settings for removal on the next commit. Every
// Network backed by it is implicitly deleted first, cascading down to
// that network's attachments and virts.
func (s *Settings) Delete() {
	for _, n := range s.ctx.networks {
		if n.settings == s {
			n.Delete()
		}
	}
	s.state = StateDelete
}
