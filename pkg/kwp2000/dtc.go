package kwp2000

import (
	"context"
	"fmt"

	"github.com/roffe/ecudiag/pkg/diag"
	"github.com/roffe/ecudiag/pkg/dtc"
)

// DTCRange selects a groupOfDTC for read requests. 0xFF00 is the ISO 14230
// "all identified DTCs" group.
type DTCRange uint16

const (
	Powertrain DTCRange = 0x0000
	Chassis    DTCRange = 0x4000
	Body       DTCRange = 0x8000
	Network    DTCRange = 0xC000
	All        DTCRange = 0xFF00
)

// ClearDTCRange selects a groupOfDTC for clear requests.
type ClearDTCRange uint16

const (
	ClearPowertrain ClearDTCRange = 0x0000
	ClearChassis    ClearDTCRange = 0x4000
	ClearBody       ClearDTCRange = 0x8000
	ClearNetwork    ClearDTCRange = 0xC000
	AllDTCs         ClearDTCRange = 0xFF00
)

// ReadStoredDTCs reads DTCs and their status for the given group using
// readDiagnosticTroubleCodesByStatus. Codes are returned in ECU order.
func (s *Server) ReadStoredDTCs(ctx context.Context, rng DTCRange) ([]dtc.DTC, error) {
	resp, err := s.Exchange(ctx, diag.NewPayload(
		READ_DIAGNOSTIC_TROUBLE_CODES_BY_STATUS,
		0x02, byte(rng>>8), byte(rng),
	))
	if err != nil {
		return nil, err
	}
	if len(resp) < 2 || resp[0] != READ_DIAGNOSTIC_TROUBLE_CODES_BY_STATUS+diag.PositiveResponse {
		return nil, fmt.Errorf("unexpected readDTCByStatus response [% X]", resp)
	}
	count := int(resp[1])
	records := resp[2:]
	if len(records) < count*3 {
		return nil, fmt.Errorf("readDTCByStatus reports %d DTCs but carries %d bytes", count, len(records))
	}
	out := make([]dtc.DTC, 0, count)
	for i := 0; i < count; i++ {
		hi, lo, status := records[i*3], records[i*3+1], records[i*3+2]
		out = append(out, dtc.DTC{
			Code:   dtc.Decode2(hi, lo),
			Raw:    uint32(hi)<<8 | uint32(lo),
			Status: status,
		})
	}
	return out, nil
}

// ClearDTCs clears the given group using clearDiagnosticInformation. No
// read-back is performed; call ReadStoredDTCs to verify.
func (s *Server) ClearDTCs(ctx context.Context, rng ClearDTCRange) error {
	resp, err := s.Exchange(ctx, diag.NewPayload(
		CLEAR_DIAGNOSTIC_INFORMATION,
		byte(rng>>8), byte(rng),
	))
	if err != nil {
		return err
	}
	if len(resp) < 1 || resp[0] != CLEAR_DIAGNOSTIC_INFORMATION+diag.PositiveResponse {
		return fmt.Errorf("unexpected clearDiagnosticInformation response [% X]", resp)
	}
	return nil
}
