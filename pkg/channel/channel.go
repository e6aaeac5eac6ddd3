package channel

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrClosed      = errors.New("channel closed")
	ErrReadTimeout = errors.New("read timeout")
)

// IsoTPSettings holds the timing and padding parameters a channel is
// created with. They are fixed for the lifetime of the channel.
type IsoTPSettings struct {
	BlockSize  uint8
	STMin      uint8
	PadFrame   bool
	PadByte    byte
	CANSpeed   uint32
	ExtendedID bool
}

func DefaultIsoTPSettings() IsoTPSettings {
	return IsoTPSettings{
		BlockSize: 8,
		STMin:     20,
		PadFrame:  true,
		PadByte:   0xAA,
		CANSpeed:  500000,
	}
}

// Channel is a bidirectional framed byte-message pipe to one ECU. Send
// transmits one complete diagnostic message, Receive blocks for the next
// complete message or until the timeout elapses. Implementations do not
// need to be safe for concurrent use; the owning server serializes access.
type Channel interface {
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)
	Close() error
}

// Hardware is a physical interface that can open diagnostic channels
// keyed by a tx/rx arbitration id pair.
type Hardware interface {
	Name() string
	CreateChannel(txID, rxID uint32, cfg IsoTPSettings) (Channel, error)
}

// Handle shares one Hardware between multiple owners. Channel creation may
// need exclusive access to the physical interface, so it is serialized; the
// lock is held only while the channel is constructed, never afterwards.
type Handle struct {
	mu sync.Mutex
	hw Hardware
}

func NewHandle(hw Hardware) *Handle {
	return &Handle{hw: hw}
}

func (h *Handle) Name() string {
	return h.hw.Name()
}

func (h *Handle) CreateChannel(txID, rxID uint32, cfg IsoTPSettings) (Channel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hw.CreateChannel(txID, rxID, cfg)
}
