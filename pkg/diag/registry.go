package diag

import "sync"

// ModeRegistry maps session mode ids to descriptors for one protocol
// instance. Modes are upserted by id and never deleted.
type ModeRegistry struct {
	mu    sync.RWMutex
	modes map[byte]SessionMode
	basic byte
}

// NewModeRegistry seeds a registry. basic is the id of the default/normal
// mode and should be among the seeded modes.
func NewModeRegistry(basic byte, modes ...SessionMode) *ModeRegistry {
	r := &ModeRegistry{
		modes: make(map[byte]SessionMode, len(modes)),
		basic: basic,
	}
	for _, m := range modes {
		r.modes[m.ID] = m
	}
	return r
}

func (r *ModeRegistry) Register(mode SessionMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes[mode.ID] = mode
}

func (r *ModeRegistry) Lookup(id byte) (SessionMode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modes[id]
	return m, ok
}

func (r *ModeRegistry) Basic() (SessionMode, bool) {
	return r.Lookup(r.basic)
}

func (r *ModeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modes)
}

// All returns a copy of the registry contents.
func (r *ModeRegistry) All() map[byte]SessionMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[byte]SessionMode, len(r.modes))
	for id, m := range r.modes {
		out[id] = m
	}
	return out
}

// InterpretRequest is the shared request classification both dialects use:
// a session-control request resolves its target mode against the registry,
// anything else is a plain service call.
func InterpretRequest(reg *ModeRegistry, payload []byte) Action {
	if len(payload) == 0 {
		return Action{Kind: ActionService}
	}
	if payload[0] == ServiceSessionControl && len(payload) >= 2 {
		mode, ok := reg.Lookup(payload[1])
		if !ok {
			mode = UnknownSessionMode(payload[1])
		}
		return Action{
			Kind:      ActionSetSessionMode,
			Mode:      mode,
			ServiceID: payload[0],
			Args:      payload[1:],
		}
	}
	return Action{
		Kind:      ActionService,
		ServiceID: payload[0],
		Args:      payload[1:],
	}
}

// DecodeResponse implements the shared response framing: anything not
// starting with the negative response marker passes through verbatim, a
// marker frame is [0x7F, echoed sid, code] classified via classify.
func DecodeResponse(protocol string, raw []byte, classify func(code byte) NRC) ([]byte, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Protocol: protocol, Reason: "empty response"}
	}
	if raw[0] != NegativeResponseID {
		return raw, nil
	}
	if len(raw) < 3 {
		return nil, &DecodeError{Protocol: protocol, Raw: raw, Reason: "short negative response"}
	}
	return nil, &NegativeResponseError{
		Protocol:  protocol,
		ServiceID: raw[1],
		Code:      classify(raw[2]),
	}
}
