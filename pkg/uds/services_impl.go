package uds

import (
	"context"
	"fmt"

	"github.com/roffe/ecudiag/pkg/diag"
)

// ResetType selects how the ECU restarts on ECUReset.
type ResetType byte

const (
	HardReset               ResetType = 0x01
	KeyOffOnReset           ResetType = 0x02
	SoftReset               ResetType = 0x03
	EnableRapidPowerDown    ResetType = 0x04
	DisableRapidPowerDown   ResetType = 0x05
)

// ECUReset requests an ECU restart. The session returns to default after a
// successful reset; callers should expect to renegotiate non-default modes.
func (s *Server) ECUReset(ctx context.Context, typ ResetType) error {
	resp, err := s.Exchange(ctx, diag.NewPayload(ServiceECUReset, byte(typ)))
	if err != nil {
		return err
	}
	if len(resp) < 2 || resp[0] != ServiceECUReset+diag.PositiveResponse || resp[1] != byte(typ) {
		return fmt.Errorf("unexpected ECUReset response [% X]", resp)
	}
	return nil
}

// ReadDataByIdentifier reads one DID and returns its record bytes with the
// echo header stripped.
func (s *Server) ReadDataByIdentifier(ctx context.Context, did uint16) ([]byte, error) {
	resp, err := s.Exchange(ctx, diag.NewPayload(
		ServiceReadDataByIdentifier, byte(did>>8), byte(did),
	))
	if err != nil {
		return nil, err
	}
	if len(resp) < 3 || resp[0] != ServiceReadDataByIdentifier+diag.PositiveResponse {
		return nil, fmt.Errorf("unexpected readDataByIdentifier response [% X]", resp)
	}
	if got := uint16(resp[1])<<8 | uint16(resp[2]); got != did {
		return nil, fmt.Errorf("readDataByIdentifier echoed DID 0x%04X, requested 0x%04X", got, did)
	}
	return resp[3:], nil
}
