// Package uds implements the UDS (ISO 14229) side of the diagnostic
// session layer.
package uds

import (
	"context"

	"github.com/roffe/ecudiag/pkg/channel"
	"github.com/roffe/ecudiag/pkg/diag"
)

// SessionType is a UDS diagnostic session mode id.
type SessionType byte

const (
	Default      SessionType = 0x01
	Programming  SessionType = 0x02
	Extended     SessionType = 0x03
	SafetySystem SessionType = 0x04
)

// Protocol is the UDS implementation of the diag.Protocol contract.
type Protocol struct {
	reg *diag.ModeRegistry
}

func NewProtocol() *Protocol {
	return &Protocol{
		reg: diag.NewModeRegistry(byte(Default),
			diag.SessionMode{ID: byte(Default), Name: "Default", TPRequire: false},
			diag.SessionMode{ID: byte(Programming), Name: "Programming", TPRequire: true},
			diag.SessionMode{ID: byte(Extended), Name: "Extended", TPRequire: true},
			diag.SessionMode{ID: byte(SafetySystem), Name: "SafetySystem", TPRequire: true},
		),
	}
}

func (p *Protocol) Name() string {
	return "UDS"
}

func (p *Protocol) BasicSessionMode() (diag.SessionMode, bool) {
	return p.reg.Basic()
}

func (p *Protocol) InterpretRequest(payload []byte) diag.Action {
	return diag.InterpretRequest(p.reg, payload)
}

func (p *Protocol) TesterPresent(respond bool) diag.Payload {
	if respond {
		return diag.NewPayload(ServiceTesterPresent, 0x00)
	}
	return diag.NewPayload(ServiceTesterPresent, 0x80)
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

// Server drives a UDS session over one exclusively owned channel.
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
	_, err := s.Exchange(ctx, diag.NewPayload(ServiceDiagnosticSessionControl, byte(mode)))
	return err
}

// SetExtendedMode puts the ECU into the extended diagnostic session.
func (s *Server) SetExtendedMode(ctx context.Context) error {
	return s.SetSessionMode(ctx, Extended)
}

// SetDefaultMode returns the ECU to its normal operating session.
func (s *Server) SetDefaultMode(ctx context.Context) error {
	return s.SetSessionMode(ctx, Default)
}
