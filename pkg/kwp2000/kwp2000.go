// Package kwp2000 implements the KWP2000 (ISO 14230) side of the
// diagnostic session layer.
package kwp2000

import (
	"context"

	"github.com/roffe/ecudiag/pkg/channel"
	"github.com/roffe/ecudiag/pkg/diag"
)

// SessionType is a KWP2000 diagnostic session mode id.
type SessionType byte

const (
	Normal              SessionType = 0x81
	Reprogramming       SessionType = 0x85
	Standby             SessionType = 0x89
	Passive             SessionType = 0x90
	ExtendedDiagnostics SessionType = 0x92
)

// Protocol is the KWP2000 implementation of the diag.Protocol contract.
type Protocol struct {
	reg *diag.ModeRegistry
}

func NewProtocol() *Protocol {
	return &Protocol{
		reg: diag.NewModeRegistry(byte(Normal),
			diag.SessionMode{ID: byte(Normal), Name: "Normal", TPRequire: false},
			diag.SessionMode{ID: byte(Reprogramming), Name: "Reprogramming", TPRequire: true},
			diag.SessionMode{ID: byte(Standby), Name: "Standby", TPRequire: true},
			diag.SessionMode{ID: byte(Passive), Name: "Passive", TPRequire: true},
			diag.SessionMode{ID: byte(ExtendedDiagnostics), Name: "ExtendedDiagnostics", TPRequire: true},
		),
	}
}

func (p *Protocol) Name() string {
	return "KWP2000"
}

func (p *Protocol) BasicSessionMode() (diag.SessionMode, bool) {
	return p.reg.Basic()
}

func (p *Protocol) InterpretRequest(payload []byte) diag.Action {
	return diag.InterpretRequest(p.reg, payload)
}

func (p *Protocol) TesterPresent(respond bool) diag.Payload {
	if respond {
		return diag.NewPayload(TESTER_PRESENT, 0x00)
	}
	return diag.NewPayload(TESTER_PRESENT, 0x80)
}

func (p *Protocol) DecodeResponse(raw []byte) ([]byte, error) {
	return diag.DecodeResponse(p.Name(), raw, func(code byte) diag.NRC {
		return ErrorByte(code)
	})
}

func (p *Protocol) SessionModes() map[byte]diag.SessionMode {
	return p.reg.All()
}

func (p *Protocol) RegisterSessionMode(mode diag.SessionMode) {
	p.reg.Register(mode)
}

// Server drives a KWP2000 session over one exclusively owned channel.
type Server struct {
	*diag.Server
}

func NewServer(ch channel.Channel, opts diag.ServerOptions) (*Server, error) {
	srv, err := diag.NewServer(NewProtocol(), ch, opts)
	if err != nil {
		return nil, err
	}
	return &Server{Server: srv}, nil
}

// SetSessionMode requests a switch to the given diagnostic session.
func (s *Server) SetSessionMode(ctx context.Context, mode SessionType) error {
	_, err := s.Exchange(ctx, diag.NewPayload(START_DIAGNOSTIC_SESSION, byte(mode)))
	return err
}
