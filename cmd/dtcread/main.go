// Command dtcread reads or clears stored fault codes from an ECU,
// negotiating KWP2000 or UDS automatically.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avast/retry-go/v4"
	"github.com/roffe/ecudiag/pkg/channel"
	"github.com/roffe/ecudiag/pkg/diag"
	"github.com/roffe/ecudiag/pkg/dyndiag"
	"github.com/roffe/gocan"
	"github.com/roffe/gocan/adapter"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	configFile = flag.String("config", "", "path to TOML config file")
	clearCodes = flag.Bool("clear", false, "clear stored fault codes instead of reading them")
	probeOnly  = flag.Bool("probe", false, "negotiate a session, report the protocol and exit")
	verbose    = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("dtcread")
	}
}

func run(ctx context.Context, cfg Config, log zerolog.Logger) error {
	hw, cleanup, err := openHardware(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		// An ECU that rejected both protocols will keep rejecting them;
		// only transient failures (adapter hiccups, lost frames) are
		// worth another attempt.
		sess, err := retry.DoWithData(func() (*dyndiag.Session, error) {
			return dyndiag.New(ctx, hw, cfg.isoTP(), cfg.TxID, cfg.RxID, dyndiag.Options{Logger: &log})
		},
			retry.Context(ctx),
			retry.Attempts(3),
			retry.RetryIf(func(err error) bool { return !errors.Is(err, diag.ErrNotSupported) }),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			return fmt.Errorf("negotiation failed: %w", err)
		}
		defer sess.Close()
		log.Info().Str("protocol", sess.ProtocolName()).Msg("connected")

		if *probeOnly {
			fmt.Println(sess.ProtocolName())
			return nil
		}

		if *clearCodes {
			if err := sess.ClearAllDTCs(ctx); err != nil {
				return fmt.Errorf("clear failed: %w", err)
			}
			log.Info().Msg("fault codes cleared")
			return nil
		}

		codes, err := sess.ReadAllDTCs(ctx)
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		if len(codes) == 0 {
			log.Info().Msg("no stored fault codes")
			return nil
		}
		for _, d := range codes {
			fmt.Printf("%s  %s\n", d.Code, d.StatusString())
		}
		return nil
	})
	return errg.Wait()
}

func openHardware(ctx context.Context, cfg Config, log zerolog.Logger) (*channel.Handle, func(), error) {
	if cfg.Adapter == "sim" {
		log.Warn().Msg("using simulated ECU")
		return channel.NewHandle(channel.NewSimHardware(simECU)), func() {}, nil
	}

	dev, err := adapter.New(cfg.Adapter, &gocan.AdapterConfig{
		Port:          cfg.Port,
		PortBaudrate:  cfg.PortBaudrate,
		CANRate:       cfg.CANRate,
		CANFilter:     []uint32{cfg.RxID},
		UseExtendedID: cfg.ExtendedID,
		OnMessage: func(s string) {
			log.Debug().Msg(s)
		},
		OnError: func(err error) {
			log.Error().Err(err).Msg("adapter")
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create adapter: %w", err)
	}

	cl, err := gocan.New(ctx, dev)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	hw := channel.NewHandle(channel.NewCANHardware(cfg.Adapter, cl))
	return hw, func() { cl.Close() }, nil
}

// simECU emulates a UDS ECU with two stored fault codes. The KWP2000
// extended session request is rejected so negotiation falls through to UDS.
func simECU(req []byte) [][]byte {
	if len(req) == 0 {
		return nil
	}
	switch req[0] {
	case 0x10:
		if len(req) == 2 && (req[1] == 0x01 || req[1] == 0x03) {
			return [][]byte{{0x50, req[1], 0x00, 0x32, 0x01, 0xF4}}
		}
		return [][]byte{{0x7F, 0x10, 0x12}}
	case 0x3E:
		if len(req) == 2 && req[1] == 0x80 {
			return nil
		}
		return [][]byte{{0x7E, 0x00}}
	case 0x19:
		return [][]byte{{0x59, 0x02, 0xFF,
			0x01, 0x22, 0x00, 0x2F,
			0xC1, 0x03, 0x55, 0x28,
		}}
	case 0x14:
		return [][]byte{{0x54}}
	default:
		return [][]byte{{0x7F, req[0], 0x11}}
	}
}
