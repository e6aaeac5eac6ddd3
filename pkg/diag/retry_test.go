package diag_test

import (
	"context"
	"errors"
	"testing"

	"github.com/roffe/ecudiag/pkg/channel"
	"github.com/roffe/ecudiag/pkg/diag"
)

func TestExchangeWithRetry(t *testing.T) {
	rejections := 0
	ch := channel.NewSimChannel(func(req []byte) [][]byte {
		if rejections < 2 {
			rejections++
			return [][]byte{{0x7F, req[0], 0x21}}
		}
		return [][]byte{{req[0] + 0x40, 0x00}}
	})
	s, err := diag.NewServer(newTestProtocol(), ch, fastOptions())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	defer s.Close()

	resp, err := diag.ExchangeWithRetry(context.Background(), s, diag.NewPayload(0x19, 0x02, 0xFF), 3)
	if err != nil {
		t.Fatalf("ExchangeWithRetry() failed: %v", err)
	}
	if want := []byte{0x59, 0x00}; string(resp) != string(want) {
		t.Errorf("ExchangeWithRetry() = % X, want % X", resp, want)
	}
	if rejections != 2 {
		t.Errorf("ECU rejected %d requests, want 2", rejections)
	}
}

func TestExchangeWithRetryUnrecoverable(t *testing.T) {
	calls := 0
	ch := channel.NewSimChannel(func(req []byte) [][]byte {
		calls++
		return [][]byte{{0x7F, req[0], 0x11}} // service not supported
	})
	s, err := diag.NewServer(newTestProtocol(), ch, fastOptions())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	defer s.Close()

	_, err = diag.ExchangeWithRetry(context.Background(), s, diag.NewPayload(0x19, 0x02, 0xFF), 3)
	var nre *diag.NegativeResponseError
	if !errors.As(err, &nre) {
		t.Fatalf("ExchangeWithRetry() error = %v, want *NegativeResponseError", err)
	}
	if calls != 1 {
		t.Errorf("request sent %d times, want 1 (no retry on hard rejection)", calls)
	}
}
