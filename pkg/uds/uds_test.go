package uds_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roffe/ecudiag/pkg/channel"
	"github.com/roffe/ecudiag/pkg/diag"
	"github.com/roffe/ecudiag/pkg/uds"
)

func fastOptions() diag.ServerOptions {
	opts := diag.DefaultServerOptions()
	opts.ReadTimeout = 100 * time.Millisecond
	opts.WriteTimeout = 100 * time.Millisecond
	opts.TesterPresentInterval = time.Hour
	return opts
}

func newServer(t *testing.T, r channel.Responder) (*uds.Server, *channel.SimChannel) {
	t.Helper()
	ch := channel.NewSimChannel(r)
	s, err := uds.NewServer(ch, fastOptions())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, ch
}

func TestProtocolContract(t *testing.T) {
	p := uds.NewProtocol()
	if p.Name() != "UDS" {
		t.Errorf("Name() = %q, want UDS", p.Name())
	}
	basic, ok := p.BasicSessionMode()
	if !ok {
		t.Fatal("BasicSessionMode() not seeded")
	}
	if basic.ID != byte(uds.Default) || basic.TPRequire {
		t.Errorf("basic mode = %+v, want Default without keep-alive", basic)
	}
	ext, ok := p.SessionModes()[byte(uds.Extended)]
	if !ok || !ext.TPRequire {
		t.Errorf("Extended mode = %+v, %v, want registered with keep-alive", ext, ok)
	}
}

func TestErrorByteClassification(t *testing.T) {
	tests := []struct {
		name      string
		code      uds.ErrorByte
		busy      bool
		wrongMode bool
		repeatReq bool
	}{
		{name: "response pending", code: uds.RequestCorrectlyReceivedResponsePending, busy: true},
		{name: "wrong session", code: uds.ServiceNotSupportedInActiveSession, wrongMode: true},
		{name: "busy repeat request", code: uds.BusyRepeatRequest, repeatReq: true},
		{name: "general reject", code: uds.GeneralReject},
		{name: "security access denied", code: uds.SecurityAccessDenied},
		{name: "unknown code", code: uds.ErrorByte(0xEE)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.IsBusy(); got != tt.busy {
				t.Errorf("IsBusy() = %v, want %v", got, tt.busy)
			}
			if got := tt.code.IsWrongMode(); got != tt.wrongMode {
				t.Errorf("IsWrongMode() = %v, want %v", got, tt.wrongMode)
			}
			if got := tt.code.IsRepeatRequest(); got != tt.repeatReq {
				t.Errorf("IsRepeatRequest() = %v, want %v", got, tt.repeatReq)
			}
		})
	}
}

func TestSetSessionModes(t *testing.T) {
	s, ch := newServer(t, func(req []byte) [][]byte {
		if req[0] == 0x10 {
			return [][]byte{{0x50, req[1], 0x00, 0x32, 0x01, 0xF4}}
		}
		return [][]byte{{0x7F, req[0], 0x11}}
	})
	ctx := context.Background()

	if err := s.SetExtendedMode(ctx); err != nil {
		t.Fatalf("SetExtendedMode() failed: %v", err)
	}
	if got := s.SessionMode().ID; got != byte(uds.Extended) {
		t.Errorf("SessionMode().ID = 0x%02X, want 0x03", got)
	}
	if err := s.SetDefaultMode(ctx); err != nil {
		t.Fatalf("SetDefaultMode() failed: %v", err)
	}
	if got := s.SessionMode(); got.ID != byte(uds.Default) || got.TPRequire {
		t.Errorf("SessionMode() = %+v, want Default without keep-alive", got)
	}

	sent := ch.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent %d requests, want 2", len(sent))
	}
	if string(sent[0]) != string([]byte{0x10, 0x03}) || string(sent[1]) != string([]byte{0x10, 0x01}) {
		t.Errorf("requests = % X / % X, want 10 03 / 10 01", sent[0], sent[1])
	}
}

func TestReadDTCsByStatusMask(t *testing.T) {
	tests := []struct {
		name     string
		response []byte
		want     []string
		wantErr  bool
	}{
		{
			name: "two codes",
			response: []byte{0x59, 0x02, 0xFF,
				0x01, 0x22, 0x00, 0x2F,
				0xE1, 0x03, 0x55, 0x28,
			},
			want: []string{"P0122", "U2103-55"},
		},
		{
			name:     "no codes",
			response: []byte{0x59, 0x02, 0xFF},
			want:     []string{},
		},
		{
			name:     "truncated record",
			response: []byte{0x59, 0x02, 0xFF, 0x01, 0x22},
			wantErr:  true,
		},
		{
			name:     "wrong sub-function echo",
			response: []byte{0x59, 0x01, 0xFF, 0x00, 0x02},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ch := newServer(t, func(req []byte) [][]byte {
				return [][]byte{tt.response}
			})
			got, err := s.ReadDTCsByStatusMask(context.Background(), uds.StatusMaskAll)

			sent := ch.Sent()
			wantReq := []byte{0x19, 0x02, 0xFF}
			if len(sent) != 1 || string(sent[0]) != string(wantReq) {
				t.Errorf("request = % X, want % X", sent[0], wantReq)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("ReadDTCsByStatusMask() succeeded unexpectedly")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadDTCsByStatusMask() failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d codes, want %d", len(got), len(tt.want))
			}
			for i, code := range tt.want {
				if got[i].Code != code {
					t.Errorf("code[%d] = %q, want %q", i, got[i].Code, code)
				}
			}
		})
	}
}

func TestClearDiagnosticInformation(t *testing.T) {
	s, ch := newServer(t, func(req []byte) [][]byte {
		return [][]byte{{0x54}}
	})
	if err := s.ClearDiagnosticInformation(context.Background(), uds.ClearAllGroups); err != nil {
		t.Fatalf("ClearDiagnosticInformation() failed: %v", err)
	}
	sent := ch.Sent()
	want := []byte{0x14, 0xFF, 0xFF, 0xFF}
	if len(sent) != 1 || string(sent[0]) != string(want) {
		t.Errorf("request = % X, want % X", sent[0], want)
	}
}

func TestECUReset(t *testing.T) {
	s, ch := newServer(t, func(req []byte) [][]byte {
		return [][]byte{{0x51, req[1]}}
	})
	if err := s.ECUReset(context.Background(), uds.HardReset); err != nil {
		t.Fatalf("ECUReset() failed: %v", err)
	}
	sent := ch.Sent()
	want := []byte{0x11, 0x01}
	if len(sent) != 1 || string(sent[0]) != string(want) {
		t.Errorf("request = % X, want % X", sent[0], want)
	}
}

func TestReadDataByIdentifier(t *testing.T) {
	s, _ := newServer(t, func(req []byte) [][]byte {
		return [][]byte{{0x62, req[1], req[2], 0x31, 0x32, 0x33}}
	})
	got, err := s.ReadDataByIdentifier(context.Background(), 0xF190)
	if err != nil {
		t.Fatalf("ReadDataByIdentifier() failed: %v", err)
	}
	if want := []byte{0x31, 0x32, 0x33}; string(got) != string(want) {
		t.Errorf("record = % X, want % X", got, want)
	}
}

func TestReadDataByIdentifierWrongEcho(t *testing.T) {
	s, _ := newServer(t, func(req []byte) [][]byte {
		return [][]byte{{0x62, 0xDE, 0xAD, 0x01}}
	})
	if _, err := s.ReadDataByIdentifier(context.Background(), 0xF190); err == nil {
		t.Fatal("ReadDataByIdentifier() succeeded unexpectedly")
	}
}

func TestReadDTCsRejectedInDefaultSession(t *testing.T) {
	s, _ := newServer(t, func(req []byte) [][]byte {
		return [][]byte{{0x7F, req[0], 0x7F}}
	})
	_, err := s.ReadDTCsByStatusMask(context.Background(), uds.StatusMaskAll)
	var nre *diag.NegativeResponseError
	if !errors.As(err, &nre) {
		t.Fatalf("error = %v, want *NegativeResponseError", err)
	}
	if !nre.Code.IsWrongMode() {
		t.Errorf("IsWrongMode() = false for code 0x7F")
	}
}
