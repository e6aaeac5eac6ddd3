package channel

import (
	"context"
	"sync"
	"time"
)

// Responder scripts an ECU. It is called once per request with the raw
// bytes that were sent and returns zero or more responses to queue, in
// order. Returning more than one response models an ECU that answers
// "response pending" before the final message.
type Responder func(req []byte) [][]byte

// SimHardware is a scriptable stand-in for a physical interface. Channels
// it creates feed every sent request through the Responder and queue the
// scripted replies for Receive.
type SimHardware struct {
	mu        sync.Mutex
	responder Responder
	createErr error
	created   []*SimChannel
}

func NewSimHardware(r Responder) *SimHardware {
	return &SimHardware{responder: r}
}

func (h *SimHardware) Name() string {
	return "simulator"
}

// FailCreate makes every subsequent CreateChannel call return err.
func (h *SimHardware) FailCreate(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.createErr = err
}

func (h *SimHardware) CreateChannel(txID, rxID uint32, cfg IsoTPSettings) (Channel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return nil, h.createErr
	}
	ch := &SimChannel{
		responder: h.responder,
		queue:     make(chan []byte, 32),
	}
	h.created = append(h.created, ch)
	return ch, nil
}

// Channels returns every channel created so far, in creation order.
func (h *SimHardware) Channels() []*SimChannel {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*SimChannel, len(h.created))
	copy(out, h.created)
	return out
}

type SimChannel struct {
	mu        sync.Mutex
	responder Responder
	queue     chan []byte
	closed    bool
	sent      [][]byte
}

func NewSimChannel(r Responder) *SimChannel {
	return &SimChannel{responder: r, queue: make(chan []byte, 32)}
}

func (c *SimChannel) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	req := make([]byte, len(data))
	copy(req, data)
	c.sent = append(c.sent, req)
	if c.responder == nil {
		return nil
	}
	for _, resp := range c.responder(req) {
		out := make([]byte, len(resp))
		copy(out, resp)
		select {
		case c.queue <- out:
		default:
		}
	}
	return nil
}

func (c *SimChannel) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data := <-c.queue:
		return data, nil
	case <-timer.C:
		return nil, ErrReadTimeout
	}
}

func (c *SimChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Sent returns a copy of every raw request written to the channel.
func (c *SimChannel) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	for i, m := range c.sent {
		cp := make([]byte, len(m))
		copy(cp, m)
		out[i] = cp
	}
	return out
}
