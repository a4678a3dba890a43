package worker

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/dgnsrekt/ttsbridge/tts"
)

func TestEncodeRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "init",
			req:  InitRequest("models/ljspeech"),
			want: `{"command":"init","model_path":"models/ljspeech"}`,
		},
		{
			name: "init with empty model keeps the field",
			req:  InitRequest(""),
			want: `{"command":"init","model_path":""}`,
		},
		{
			name: "synthesize with default settings",
			req:  SynthesizeRequest("Hello.", tts.VoiceSettings{Speed: 1, Pitch: 1}),
			want: `{"command":"synthesize","text":"Hello."}`,
		},
		{
			name: "synthesize with settings",
			req:  SynthesizeRequest("Hi.", tts.VoiceSettings{Voice: "p225", Speed: 1.5, Pitch: 0.8}),
			want: `{"command":"synthesize","text":"Hi.","voice":"p225","speed":1.5,"pitch":0.8}`,
		},
		{
			name: "exit",
			req:  ExitRequest(),
			want: `{"command":"exit"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRequest(tt.req)
			if err != nil {
				t.Fatalf("EncodeRequest() error = %v", err)
			}
			if !strings.HasSuffix(string(got), "\n") {
				t.Errorf("EncodeRequest() = %q, want trailing newline", got)
			}
			if strings.Count(string(got), "\n") != 1 {
				t.Errorf("EncodeRequest() = %q, want exactly one line", got)
			}
			if line := strings.TrimSuffix(string(got), "\n"); line != tt.want {
				t.Errorf("EncodeRequest() = %s, want %s", line, tt.want)
			}
		})
	}
}

func TestEncodeRequestEscapesNewlines(t *testing.T) {
	got, err := EncodeRequest(SynthesizeRequest("line one\nline two", tts.VoiceSettings{}))
	if err != nil {
		t.Fatalf("EncodeRequest() error = %v", err)
	}
	if strings.Count(string(got), "\n") != 1 {
		t.Errorf("embedded newline must be escaped, got %q", got)
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantErr     error
		wantStatus  string
		wantMessage string
		wantAudio   []float32
		audioNil    bool
	}{
		{
			name:       "success with audio",
			line:       `{"status":"success","audio":[0.0,0.5,-0.5]}` + "\n",
			wantStatus: "success",
			wantAudio:  []float32{0, 0.5, -0.5},
		},
		{
			name:       "success with empty audio",
			line:       `{"status":"success","audio":[]}`,
			wantStatus: "success",
			wantAudio:  []float32{},
		},
		{
			name:       "samples beyond float32 range saturate",
			line:       `{"status":"success","audio":[0.5,1e40,-1e40,2]}`,
			wantStatus: "success",
			wantAudio:  []float32{0.5, math.MaxFloat32, -math.MaxFloat32, 2},
		},
		{
			name:        "init success without audio",
			line:        `{"status":"success","message":"Model loaded"}` + "\r\n",
			wantStatus:  "success",
			wantMessage: "Model loaded",
			audioNil:    true,
		},
		{
			name:        "error status",
			line:        `{"status":"error","message":"boom"}`,
			wantStatus:  "error",
			wantMessage: "boom",
			audioNil:    true,
		},
		{
			name:    "missing status",
			line:    `{"message":"hi"}`,
			wantErr: tts.ErrMissingStatus,
		},
		{
			name:    "null",
			line:    `null`,
			wantErr: tts.ErrMissingStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(tt.line))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeResponse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeResponse() error = %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", resp.Message, tt.wantMessage)
			}
			if tt.audioNil {
				if resp.Audio != nil {
					t.Errorf("Audio = %v, want nil", *resp.Audio)
				}
				return
			}
			if resp.Audio == nil {
				t.Fatal("Audio = nil, want samples")
			}
			got := *resp.Audio
			if len(got) != len(tt.wantAudio) {
				t.Fatalf("len(Audio) = %d, want %d", len(got), len(tt.wantAudio))
			}
			for i := range got {
				if got[i] != tt.wantAudio[i] {
					t.Errorf("Audio[%d] = %v, want %v", i, got[i], tt.wantAudio[i])
				}
			}
		})
	}
}

// TestDecodeResponseMalformed checks that garbage never panics and is
// always reported as an error.
func TestDecodeResponseMalformed(t *testing.T) {
	lines := []string{
		"",
		"not json",
		`{"status":"success"`,
		`[1,2,3]`,
		`{"status":"success","audio":"abc"}`,
		`{"status":"success","audio":[1,"x"]}`,
		`{"status":42}`,
		"\x00\xff",
	}
	for _, line := range lines {
		if _, err := DecodeResponse([]byte(line)); err == nil {
			t.Errorf("DecodeResponse(%q) error = nil, want error", line)
		}
	}
}

func TestResponseSucceeded(t *testing.T) {
	if !(Response{Status: "success"}).Succeeded() {
		t.Error("success should succeed")
	}
	for _, s := range []string{"error", "ok", "SUCCESS"} {
		if (Response{Status: s}).Succeeded() {
			t.Errorf("status %q should not succeed", s)
		}
	}
}
