package diag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/roffe/ecudiag/pkg/channel"
	"github.com/rs/zerolog"
)

// How long an exchange keeps waiting for the final response after the ECU
// answered "response pending".
const responsePendingTimeout = 5 * time.Second

// ServerOptions configures one protocol server. The zero value is not
// usable; start from DefaultServerOptions.
type ServerOptions struct {
	ReadTimeout                  time.Duration
	WriteTimeout                 time.Duration
	TesterPresentInterval        time.Duration
	TesterPresentRequireResponse bool
	Logger                       zerolog.Logger
}

func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		ReadTimeout:                  1500 * time.Millisecond,
		WriteTimeout:                 1500 * time.Millisecond,
		TesterPresentInterval:        2000 * time.Millisecond,
		TesterPresentRequireResponse: true,
		Logger:                       zerolog.Nop(),
	}
}

// Server owns one channel exclusively and runs request/response exchanges
// against it for one protocol. A background worker sends tester-present
// messages whenever the active session mode requires them; the worker and
// foreground exchanges share one lock so writes on the channel never
// interleave.
type Server struct {
	proto Protocol
	ch    channel.Channel
	opts  ServerOptions
	log   zerolog.Logger

	mu   sync.Mutex // serializes all channel access and guards mode
	mode SessionMode

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewServer(proto Protocol, ch channel.Channel, opts ServerOptions) (*Server, error) {
	if ch == nil {
		return nil, fmt.Errorf("%s server: nil channel", proto.Name())
	}
	if opts.ReadTimeout <= 0 || opts.WriteTimeout <= 0 || opts.TesterPresentInterval <= 0 {
		return nil, fmt.Errorf("%s server: invalid timing options", proto.Name())
	}
	basic, ok := proto.BasicSessionMode()
	if !ok {
		return nil, fmt.Errorf("%s server: protocol has no basic session mode", proto.Name())
	}
	s := &Server{
		proto: proto,
		ch:    ch,
		opts:  opts,
		log:   opts.Logger.With().Str("protocol", proto.Name()).Logger(),
		mode:  basic,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.testerPresentLoop()
	return s, nil
}

func (s *Server) Protocol() Protocol {
	return s.proto
}

// SessionMode returns the mode the ECU was last successfully switched to.
func (s *Server) SessionMode() SessionMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Server) RegisterSessionMode(mode SessionMode) {
	s.proto.RegisterSessionMode(mode)
}

// Exchange sends one request and blocks until the decoded response, an
// error, or the timeout. A successful session-control exchange updates the
// tracked session mode, which in turn drives the tester-present worker.
func (s *Server) Exchange(ctx context.Context, payload Payload) ([]byte, error) {
	select {
	case <-s.stop:
		return nil, ErrServerClosed
	default:
	}
	raw := payload.Bytes()
	action := s.proto.InterpretRequest(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	resp, err := s.exchangeLocked(ctx, raw)
	if err != nil {
		return nil, err
	}
	if action.Kind == ActionSetSessionMode {
		s.mode = action.Mode
		s.log.Debug().Str("mode", action.Mode.Name).Msg("session mode changed")
	}
	return resp, nil
}

func (s *Server) exchangeLocked(ctx context.Context, raw []byte) ([]byte, error) {
	wctx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
	err := s.ch.Send(wctx, raw)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	timeout := s.opts.ReadTimeout
	for {
		resp, err := s.ch.Receive(ctx, timeout)
		if err != nil {
			return nil, err
		}
		data, err := s.proto.DecodeResponse(resp)
		if err != nil {
			var nre *NegativeResponseError
			if errors.As(err, &nre) && nre.Code.IsBusy() {
				// Request accepted, final response still coming. Stay on
				// the same read with a longer deadline.
				s.log.Debug().Uint8("sid", nre.ServiceID).Msg("response pending")
				timeout = responsePendingTimeout
				continue
			}
			return nil, err
		}
		return data, nil
	}
}

func (s *Server) testerPresentLoop() {
	defer close(s.done)
	t := time.NewTicker(s.opts.TesterPresentInterval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			if !s.SessionMode().TPRequire {
				continue
			}
			s.sendTesterPresent()
		}
	}
}

func (s *Server) sendTesterPresent() {
	raw := s.proto.TesterPresent(s.opts.TesterPresentRequireResponse).Bytes()
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ReadTimeout+s.opts.WriteTimeout)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opts.TesterPresentRequireResponse {
		wctx, wcancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
		err := s.ch.Send(wctx, raw)
		wcancel()
		if err != nil {
			s.log.Warn().Err(err).Msg("tester present send failed")
		}
		return
	}
	if _, err := s.exchangeLocked(ctx, raw); err != nil {
		s.log.Warn().Err(err).Msg("tester present failed")
	}
}

// Close stops the tester-present worker and releases the channel. Safe to
// call more than once.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		err = s.ch.Close()
	})
	return err
}
