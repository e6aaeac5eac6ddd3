// Package dyndiag negotiates a diagnostic session with an ECU whose
// protocol is not known up front. KWP2000 is probed first, then UDS; the
// probe is a real extended-session switch since neither protocol is
// self-describing at the framing level.
package dyndiag

import (
	"context"
	"fmt"

	"github.com/roffe/ecudiag/pkg/channel"
	"github.com/roffe/ecudiag/pkg/diag"
	"github.com/roffe/ecudiag/pkg/dtc"
	"github.com/roffe/ecudiag/pkg/kwp2000"
	"github.com/roffe/ecudiag/pkg/uds"
	"github.com/rs/zerolog"
)

type protocolKind int

const (
	kindKWP protocolKind = iota
	kindUDS
)

// Session holds whichever protocol server the ECU accepted and exposes the
// operations that have the same shape on both.
type Session struct {
	kind protocolKind
	kwp  *kwp2000.Server
	uds  *uds.Server
	log  zerolog.Logger
}

// Options tunes negotiation. The zero value uses the fixed timing defaults
// and no logging.
type Options struct {
	Logger *zerolog.Logger
}

// New probes the ECU at txID/rxID and returns a session over the protocol
// it accepted. Each candidate is tried on its own freshly created channel;
// a channel creation failure is fatal, any other failure falls through to
// the next candidate. When both candidates fail the last recorded error is
// returned.
func New(ctx context.Context, hw *channel.Handle, cfg channel.IsoTPSettings, txID, rxID uint32, opts Options) (*Session, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	srvOpts := diag.DefaultServerOptions()
	srvOpts.Logger = log

	var lastErr error

	ch, err := hw.CreateChannel(txID, rxID, cfg)
	if err != nil {
		return nil, err
	}

	if kwp, err := kwp2000.NewServer(ch, srvOpts); err != nil {
		lastErr = err
		ch.Close()
	} else if err := kwp.SetSessionMode(ctx, kwp2000.ExtendedDiagnostics); err != nil {
		log.Debug().Err(err).Msg("KWP2000 probe rejected")
		lastErr = fmt.Errorf("KWP2000: %w", diag.ErrNotSupported)
		kwp.Close()
	} else {
		// The ECU speaks KWP2000. Put it back into its normal mode; the
		// result is deliberately ignored, reachability is already proven.
		kwp.SetSessionMode(ctx, kwp2000.Normal)
		log.Info().Str("protocol", "KWP2000").Msg("session negotiated")
		return &Session{kind: kindKWP, kwp: kwp, log: log}, nil
	}

	ch, err = hw.CreateChannel(txID, rxID, cfg)
	if err != nil {
		return nil, err
	}

	if u, err := uds.NewServer(ch, srvOpts); err != nil {
		lastErr = err
		ch.Close()
	} else if err := u.SetExtendedMode(ctx); err != nil {
		log.Debug().Err(err).Msg("UDS probe rejected")
		lastErr = fmt.Errorf("UDS: %w", diag.ErrNotSupported)
		u.Close()
	} else {
		u.SetDefaultMode(ctx)
		log.Info().Str("protocol", "UDS").Msg("session negotiated")
		return &Session{kind: kindUDS, uds: u, log: log}, nil
	}

	return nil, lastErr
}

// ProtocolName reports which protocol the ECU accepted.
func (s *Session) ProtocolName() string {
	switch s.kind {
	case kindKWP:
		return s.kwp.Protocol().Name()
	default:
		return s.uds.Protocol().Name()
	}
}

// KWP returns the concrete KWP2000 server, or ok=false when the session
// runs UDS. Use it for operations with no protocol-agnostic shape.
func (s *Session) KWP() (*kwp2000.Server, bool) {
	if s.kind == kindKWP {
		return s.kwp, true
	}
	return nil, false
}

// UDS returns the concrete UDS server, or ok=false when the session runs
// KWP2000.
func (s *Session) UDS() (*uds.Server, bool) {
	if s.kind == kindUDS {
		return s.uds, true
	}
	return nil, false
}

// EnterExtendedMode puts the ECU into its extended diagnostic session.
func (s *Session) EnterExtendedMode(ctx context.Context) error {
	switch s.kind {
	case kindKWP:
		return s.kwp.SetSessionMode(ctx, kwp2000.ExtendedDiagnostics)
	default:
		return s.uds.SetExtendedMode(ctx)
	}
}

// EnterDefaultMode returns the ECU to its normal operating session.
func (s *Session) EnterDefaultMode(ctx context.Context) error {
	switch s.kind {
	case kindKWP:
		return s.kwp.SetSessionMode(ctx, kwp2000.Normal)
	default:
		return s.uds.SetDefaultMode(ctx)
	}
}

// ReadAllDTCs reads every stored fault code, in ECU response order.
func (s *Session) ReadAllDTCs(ctx context.Context) ([]dtc.DTC, error) {
	switch s.kind {
	case kindKWP:
		return s.kwp.ReadStoredDTCs(ctx, kwp2000.All)
	default:
		return s.uds.ReadDTCsByStatusMask(ctx, uds.StatusMaskAll)
	}
}

// ClearAllDTCs clears every stored fault code. No confirmation read-back is
// performed; call ReadAllDTCs afterwards to verify.
func (s *Session) ClearAllDTCs(ctx context.Context) error {
	switch s.kind {
	case kindKWP:
		return s.kwp.ClearDTCs(ctx, kwp2000.AllDTCs)
	default:
		return s.uds.ClearDiagnosticInformation(ctx, uds.ClearAllGroups)
	}
}

// Close stops keep-alive traffic and releases the channel.
func (s *Session) Close() error {
	switch s.kind {
	case kindKWP:
		return s.kwp.Close()
	default:
		return s.uds.Close()
	}
}
