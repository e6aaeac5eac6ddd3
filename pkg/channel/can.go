package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/roffe/gocan"
)

// CANHardware opens diagnostic channels over a gocan client. Messages are
// carried as ISO 15765 single frames, which covers every session-layer
// request this stack produces. Payloads that would need segmentation are
// rejected with ErrFrameTooLarge rather than silently truncated; swap in a
// segmenting Channel implementation if an ECU needs multi-frame transfers.
type CANHardware struct {
	name string
	cl   *gocan.Client
}

func NewCANHardware(name string, cl *gocan.Client) *CANHardware {
	return &CANHardware{name: name, cl: cl}
}

func (h *CANHardware) Name() string {
	return h.name
}

func (h *CANHardware) CreateChannel(txID, rxID uint32, cfg IsoTPSettings) (Channel, error) {
	if h.cl == nil {
		return nil, fmt.Errorf("no CAN client on %s", h.name)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &canChannel{
		cl:     h.cl,
		txID:   txID,
		cfg:    cfg,
		sub:    h.cl.SubscribeChan(ctx, rxID),
		cancel: cancel,
	}, nil
}

var ErrFrameTooLarge = fmt.Errorf("payload exceeds single frame capacity")

type canChannel struct {
	cl     *gocan.Client
	txID   uint32
	cfg    IsoTPSettings
	sub    <-chan gocan.CANFrame
	cancel context.CancelFunc
}

func (c *canChannel) Send(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty payload")
	}
	if len(data) > 7 {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	payload := make([]byte, 1, 8)
	payload[0] = byte(len(data))
	payload = append(payload, data...)
	if c.cfg.PadFrame {
		for len(payload) < 8 {
			payload = append(payload, c.cfg.PadByte)
		}
	}
	return c.cl.Send(gocan.NewFrame(c.txID, payload, gocan.Outgoing))
}

func (c *canChannel) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg, ok := <-c.sub:
			if !ok {
				return nil, ErrClosed
			}
			data := msg.Data()
			if len(data) == 0 {
				continue
			}
			pci := data[0] >> 4
			if pci != 0 {
				return nil, fmt.Errorf("multi-frame response not supported (PCI 0x%X)", pci)
			}
			n := int(data[0] & 0x0F)
			if n == 0 || n > len(data)-1 {
				return nil, fmt.Errorf("invalid single frame length %d in %d byte frame", n, len(data))
			}
			out := make([]byte, n)
			copy(out, data[1:1+n])
			return out, nil
		case <-timer.C:
			return nil, fmt.Errorf("%w after %s", ErrReadTimeout, timeout)
		}
	}
}

func (c *canChannel) Close() error {
	c.cancel()
	return nil
}
