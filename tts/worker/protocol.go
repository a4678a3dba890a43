package worker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/dgnsrekt/ttsbridge/tts"
)

// Commands understood by the worker.
const (
	CommandInit       = "init"
	CommandSynthesize = "synthesize"
	CommandExit       = "exit"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request is one line sent to the worker.
type Request struct {
	Command   string  `json:"command"`
	ModelPath *string `json:"model_path,omitempty"`
	Text      *string `json:"text,omitempty"`

	// Optional synthesis settings. Zero values are left off the wire so the
	// default request is exactly {"command":"synthesize","text":...}.
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

// Response is one line received from the worker. Audio is a pointer so
// that a missing field can be told apart from an empty one.
type Response struct {
	Status  string       `json:"status"`
	Message string       `json:"message,omitempty"`
	Audio   *tts.Samples `json:"audio,omitempty"`
}

// UnmarshalJSON decodes audio at full precision and narrows it to float32,
// saturating values outside the float32 range. Range clamping to [-1, 1]
// is left to the encoder.
func (r *Response) UnmarshalJSON(b []byte) error {
	var wire struct {
		Status  string     `json:"status"`
		Message string     `json:"message"`
		Audio   *[]float64 `json:"audio"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	*r = Response{Status: wire.Status, Message: wire.Message}
	if wire.Audio != nil {
		samples := make(tts.Samples, len(*wire.Audio))
		for i, v := range *wire.Audio {
			samples[i] = float32(max(-math.MaxFloat32, min(v, math.MaxFloat32)))
		}
		r.Audio = &samples
	}
	return nil
}

// Succeeded reports whether the worker accepted the request.
func (r Response) Succeeded() bool {
	return r.Status == StatusSuccess
}

// InitRequest builds an init command for the given model.
func InitRequest(modelPath string) Request {
	return Request{Command: CommandInit, ModelPath: &modelPath}
}

// SynthesizeRequest builds a synthesize command. Settings equal to the
// defaults are omitted.
func SynthesizeRequest(text string, s tts.VoiceSettings) Request {
	req := Request{Command: CommandSynthesize, Text: &text, Voice: s.Voice}
	if s.Speed != 0 && s.Speed != 1.0 {
		req.Speed = s.Speed
	}
	if s.Pitch != 0 && s.Pitch != 1.0 {
		req.Pitch = s.Pitch
	}
	return req
}

// ExitRequest builds an exit command.
func ExitRequest() Request {
	return Request{Command: CommandExit}
}

// EncodeRequest renders a request as a single newline-terminated line.
func EncodeRequest(req Request) ([]byte, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", req.Command, err)
	}
	return append(b, '\n'), nil
}

// DecodeResponse parses one response line. A line that is not a JSON
// object or has no status is an error.
func DecodeResponse(line []byte) (Response, error) {
	var resp Response
	line = bytes.TrimRight(line, "\r\n")
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("malformed response: %w", err)
	}
	if resp.Status == "" {
		return Response{}, tts.ErrMissingStatus
	}
	return resp, nil
}
