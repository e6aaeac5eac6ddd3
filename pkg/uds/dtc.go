package uds

import (
	"context"
	"fmt"

	"github.com/roffe/ecudiag/pkg/diag"
	"github.com/roffe/ecudiag/pkg/dtc"
)

// ReadDTCsByStatusMask reads every DTC whose status matches the mask via
// reportDTCByStatusMask. StatusMaskAll returns all stored codes. Codes are
// returned in ECU order, without sorting or deduplication.
func (s *Server) ReadDTCsByStatusMask(ctx context.Context, mask byte) ([]dtc.DTC, error) {
	resp, err := s.Exchange(ctx, diag.NewPayload(
		ServiceReadDTCInformation, reportDTCByStatusMask, mask,
	))
	if err != nil {
		return nil, err
	}
	if len(resp) < 3 || resp[0] != ServiceReadDTCInformation+diag.PositiveResponse || resp[1] != reportDTCByStatusMask {
		return nil, fmt.Errorf("unexpected reportDTCByStatusMask response [% X]", resp)
	}
	// resp[2] is the DTC status availability mask.
	records := resp[3:]
	if len(records)%4 != 0 {
		return nil, fmt.Errorf("reportDTCByStatusMask carries %d trailing bytes", len(records)%4)
	}
	out := make([]dtc.DTC, 0, len(records)/4)
	for i := 0; i+4 <= len(records); i += 4 {
		hi, mid, lo, status := records[i], records[i+1], records[i+2], records[i+3]
		out = append(out, dtc.DTC{
			Code:   dtc.Decode3(hi, mid, lo),
			Raw:    uint32(hi)<<16 | uint32(mid)<<8 | uint32(lo),
			Status: status,
		})
	}
	return out, nil
}

// ClearDiagnosticInformation clears the given groupOfDTC. ClearAllGroups
// (0x00FFFFFF) clears everything. No read-back is performed.
func (s *Server) ClearDiagnosticInformation(ctx context.Context, group uint32) error {
	resp, err := s.Exchange(ctx, diag.NewPayload(
		ServiceClearDiagnosticInformation,
		byte(group>>16), byte(group>>8), byte(group),
	))
	if err != nil {
		return err
	}
	if len(resp) < 1 || resp[0] != ServiceClearDiagnosticInformation+diag.PositiveResponse {
		return fmt.Errorf("unexpected clearDiagnosticInformation response [% X]", resp)
	}
	return nil
}
