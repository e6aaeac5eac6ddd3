package kwp2000_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roffe/ecudiag/pkg/channel"
	"github.com/roffe/ecudiag/pkg/diag"
	"github.com/roffe/ecudiag/pkg/kwp2000"
)

func fastOptions() diag.ServerOptions {
	opts := diag.DefaultServerOptions()
	opts.ReadTimeout = 100 * time.Millisecond
	opts.WriteTimeout = 100 * time.Millisecond
	opts.TesterPresentInterval = time.Hour
	return opts
}

func TestProtocolContract(t *testing.T) {
	p := kwp2000.NewProtocol()
	if p.Name() != "KWP2000" {
		t.Errorf("Name() = %q, want KWP2000", p.Name())
	}
	basic, ok := p.BasicSessionMode()
	if !ok {
		t.Fatal("BasicSessionMode() not seeded")
	}
	if basic.ID != byte(kwp2000.Normal) || basic.TPRequire {
		t.Errorf("basic mode = %+v, want Normal without keep-alive", basic)
	}

	ext, ok := p.SessionModes()[byte(kwp2000.ExtendedDiagnostics)]
	if !ok || !ext.TPRequire {
		t.Errorf("ExtendedDiagnostics mode = %+v, %v, want registered with keep-alive", ext, ok)
	}
}

func TestTesterPresentPayload(t *testing.T) {
	p := kwp2000.NewProtocol()
	if got := p.TesterPresent(true).Bytes(); string(got) != string([]byte{0x3E, 0x00}) {
		t.Errorf("TesterPresent(true) = % X, want 3E 00", got)
	}
	if got := p.TesterPresent(false).Bytes(); string(got) != string([]byte{0x3E, 0x80}) {
		t.Errorf("TesterPresent(false) = % X, want 3E 80", got)
	}
}

func TestErrorByteClassification(t *testing.T) {
	tests := []struct {
		name        string
		code        kwp2000.ErrorByte
		busy        bool
		wrongMode   bool
		repeatReq   bool
		description string
	}{
		{
			name:        "response pending",
			code:        kwp2000.REQUEST_CORRECTLY_RECEIVED_RESPONSE_PENDING,
			busy:        true,
			description: "Response pending",
		},
		{
			name:      "wrong session",
			code:      kwp2000.SERVICE_NOT_SUPPORTED_IN_ACTIVE_DIAGNOSTIC_SESSION,
			wrongMode: true,
		},
		{
			name:      "busy repeat request",
			code:      kwp2000.BUSY_REPEAT_REQUEST,
			repeatReq: true,
		},
		{
			name: "general reject",
			code: kwp2000.GENERAL_REJECT,
		},
		{
			name:        "unknown code",
			code:        kwp2000.ErrorByte(0xEE),
			description: "Unknown error code 0xEE",
		},
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
			if tt.description != "" && tt.code.Description() != tt.description {
				t.Errorf("Description() = %q, want %q", tt.code.Description(), tt.description)
			}
		})
	}
}

func TestSetSessionMode(t *testing.T) {
	ch := channel.NewSimChannel(func(req []byte) [][]byte {
		if req[0] == 0x10 && req[1] == 0x92 {
			return [][]byte{{0x50, 0x92}}
		}
		return [][]byte{{0x7F, req[0], 0x12}}
	})
	s, err := kwp2000.NewServer(ch, fastOptions())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	defer s.Close()

	if err := s.SetSessionMode(context.Background(), kwp2000.ExtendedDiagnostics); err != nil {
		t.Fatalf("SetSessionMode() failed: %v", err)
	}
	if got := s.SessionMode().ID; got != byte(kwp2000.ExtendedDiagnostics) {
		t.Errorf("SessionMode().ID = 0x%02X, want 0x92", got)
	}
	sent := ch.Sent()
	if len(sent) != 1 || string(sent[0]) != string([]byte{0x10, 0x92}) {
		t.Errorf("sent = %v, want one [10 92] request", sent)
	}
}

func TestReadStoredDTCs(t *testing.T) {
	tests := []struct {
		name     string
		response []byte
		rng      kwp2000.DTCRange
		wantReq  []byte
		want     []string
		wantErr  bool
	}{
		{
			name: "two codes",
			response: []byte{0x58, 0x02,
				0x01, 0x22, 0x2F,
				0xE1, 0x03, 0x60,
			},
			rng:     kwp2000.All,
			wantReq: []byte{0x18, 0x02, 0xFF, 0x00},
			want:    []string{"P0122", "U2103"},
		},
		{
			name:     "no codes",
			response: []byte{0x58, 0x00},
			rng:      kwp2000.All,
			wantReq:  []byte{0x18, 0x02, 0xFF, 0x00},
			want:     []string{},
		},
		{
			name:     "powertrain group",
			response: []byte{0x58, 0x01, 0x01, 0x22, 0x2F},
			rng:      kwp2000.Powertrain,
			wantReq:  []byte{0x18, 0x02, 0x00, 0x00},
			want:     []string{"P0122"},
		},
		{
			name:     "count exceeds carried bytes",
			response: []byte{0x58, 0x03, 0x01, 0x22, 0x2F},
			rng:      kwp2000.All,
			wantReq:  []byte{0x18, 0x02, 0xFF, 0x00},
			wantErr:  true,
		},
		{
			name:     "wrong response id",
			response: []byte{0x59, 0x00},
			rng:      kwp2000.All,
			wantReq:  []byte{0x18, 0x02, 0xFF, 0x00},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := channel.NewSimChannel(func(req []byte) [][]byte {
				return [][]byte{tt.response}
			})
			s, err := kwp2000.NewServer(ch, fastOptions())
			if err != nil {
				t.Fatalf("NewServer() failed: %v", err)
			}
			defer s.Close()

			got, err := s.ReadStoredDTCs(context.Background(), tt.rng)
			sent := ch.Sent()
			if len(sent) != 1 || string(sent[0]) != string(tt.wantReq) {
				t.Errorf("request = % X, want % X", sent[0], tt.wantReq)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatal("ReadStoredDTCs() succeeded unexpectedly")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadStoredDTCs() failed: %v", err)
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

func TestClearDTCs(t *testing.T) {
	ch := channel.NewSimChannel(func(req []byte) [][]byte {
		return [][]byte{{0x54}}
	})
	s, err := kwp2000.NewServer(ch, fastOptions())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	defer s.Close()

	if err := s.ClearDTCs(context.Background(), kwp2000.AllDTCs); err != nil {
		t.Fatalf("ClearDTCs() failed: %v", err)
	}
	sent := ch.Sent()
	want := []byte{0x14, 0xFF, 0x00}
	if len(sent) != 1 || string(sent[0]) != string(want) {
		t.Errorf("request = % X, want % X", sent[0], want)
	}
}

func TestClearDTCsRejected(t *testing.T) {
	ch := channel.NewSimChannel(func(req []byte) [][]byte {
		return [][]byte{{0x7F, req[0], 0x22}}
	})
	s, err := kwp2000.NewServer(ch, fastOptions())
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	defer s.Close()

	err = s.ClearDTCs(context.Background(), kwp2000.AllDTCs)
	var nre *diag.NegativeResponseError
	if !errors.As(err, &nre) {
		t.Fatalf("ClearDTCs() error = %v, want *NegativeResponseError", err)
	}
	if nre.ServiceID != 0x14 {
		t.Errorf("ServiceID = 0x%02X, want 0x14", nre.ServiceID)
	}
}
