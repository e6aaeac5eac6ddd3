package diag

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported marks a protocol the ECU rejected during negotiation.
	ErrNotSupported = errors.New("protocol not supported by ECU")
	// ErrServerClosed is returned by exchanges on a closed server.
	ErrServerClosed = errors.New("diagnostic server closed")
)

// NegativeResponseError is an ECU rejection with its classified code.
type NegativeResponseError struct {
	Protocol  string
	ServiceID byte
	Code      NRC
}

func (e *NegativeResponseError) Error() string {
	return fmt.Sprintf("%s negative response to service 0x%02X: %s", e.Protocol, e.ServiceID, e.Code.Description())
}

// DecodeError is a response that parses as neither success nor a complete
// negative response frame.
type DecodeError struct {
	Protocol string
	Raw      []byte
	Reason   string
}

func (e *DecodeError) Error() string {
	if len(e.Raw) == 0 {
		return fmt.Sprintf("%s decode error: %s", e.Protocol, e.Reason)
	}
	return fmt.Sprintf("%s decode error: %s [% X]", e.Protocol, e.Reason, e.Raw)
}
