// Package diag holds the protocol-agnostic pieces of the diagnostic
// session layer: payloads, session modes, the protocol contract both
// KWP2000 and UDS satisfy, and the server that runs request/response
// exchanges and tester-present traffic over one channel.
package diag

import "fmt"

// Service ids shared by both dialects.
const (
	ServiceSessionControl byte = 0x10
	ServiceTesterPresent  byte = 0x3E

	NegativeResponseID byte = 0x7F
	PositiveResponse   byte = 0x40 // added to the request sid in positive replies
)

// Payload is one outgoing request: a service id plus parameter bytes.
type Payload struct {
	ServiceID byte
	Args      []byte
}

func NewPayload(sid byte, args ...byte) Payload {
	return Payload{ServiceID: sid, Args: args}
}

func (p Payload) Bytes() []byte {
	out := make([]byte, 0, 1+len(p.Args))
	out = append(out, p.ServiceID)
	return append(out, p.Args...)
}

func (p Payload) String() string {
	return fmt.Sprintf("[% X]", p.Bytes())
}

// SessionMode identifies one diagnostic session an ECU can be placed in.
// TPRequire marks modes that drop back to default unless tester-present
// messages keep arriving.
type SessionMode struct {
	ID        byte
	Name      string
	TPRequire bool
}

// UnknownSessionMode synthesizes a descriptor for a mode id that is not in
// the registry. Keep-alive is assumed required; a non-standard mode that
// times out back to default is worse than a few spare tester-present frames.
func UnknownSessionMode(id byte) SessionMode {
	return SessionMode{
		ID:        id,
		Name:      fmt.Sprintf("Unknown (0x%02X)", id),
		TPRequire: true,
	}
}

type ActionKind int

const (
	// ActionService is a plain service call with no session side effects.
	ActionService ActionKind = iota
	// ActionSetSessionMode switches the ECU to Action.Mode on success.
	ActionSetSessionMode
)

// Action is the classification of an outgoing request payload, used by the
// server to decide whether a successful exchange changes the session mode.
type Action struct {
	Kind      ActionKind
	Mode      SessionMode
	ServiceID byte
	Args      []byte
}

// NRC classifies one negative response byte. Only recognized standard codes
// answer true to any of the three questions; unknown bytes are hard failures.
type NRC interface {
	Description() string
	// IsBusy reports "request correctly received, response pending": keep
	// waiting on the same read, do not resend.
	IsBusy() bool
	// IsWrongMode reports "service not supported in active session": switch
	// session mode before retrying.
	IsWrongMode() bool
	// IsRepeatRequest reports "ECU busy, repeat request": resend after a
	// short delay.
	IsRepeatRequest() bool
}

// Protocol is the contract each concrete dialect implements. Everything a
// session orchestrator needs from a protocol funnels through here so the
// layers above can be written once for both dialects.
type Protocol interface {
	Name() string
	// BasicSessionMode returns the protocol's default/normal mode, or
	// ok=false if the registry was never seeded with one.
	BasicSessionMode() (SessionMode, bool)
	// InterpretRequest classifies a raw outgoing payload.
	InterpretRequest(payload []byte) Action
	// TesterPresent builds the protocol's keep-alive message.
	TesterPresent(respond bool) Payload
	// DecodeResponse splits a raw response into payload bytes or a typed
	// *NegativeResponseError / *DecodeError.
	DecodeResponse(raw []byte) ([]byte, error)
	SessionModes() map[byte]SessionMode
	RegisterSessionMode(mode SessionMode)
}
