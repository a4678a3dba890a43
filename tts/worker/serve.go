package worker

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dgnsrekt/ttsbridge/tts"
)

// Engine is the acoustic backend behind the worker side of the protocol.
type Engine interface {
	// Load prepares the model. An empty path selects the engine default.
	Load(modelPath string) error

	// Synthesize renders text with the given settings.
	Synthesize(text string, settings tts.VoiceSettings) (tts.Samples, error)
}

// Serve answers protocol requests read from r until EOF or an exit
// command. It is the worker half of Manager and lets any Engine run as a
// worker process.
func Serve(r io.Reader, w io.Writer, engine Engine) error {
	br := bufio.NewReader(r)
	enc := json.NewEncoder(w)
	loaded := false

	for {
		line, readErr := br.ReadBytes('\n')
		line = bytes.TrimSpace(line)

		if len(line) > 0 {
			resp, exit := handle(line, engine, &loaded)
			if exit {
				return nil
			}
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read request: %w", readErr)
		}
	}
}

func handle(line []byte, engine Engine, loaded *bool) (Response, bool) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return failure("Invalid request: %v", err), false
	}

	switch req.Command {
	case CommandInit:
		path := ""
		if req.ModelPath != nil {
			path = *req.ModelPath
		}
		if err := engine.Load(path); err != nil {
			*loaded = false
			return failure("Failed to load model: %v", err), false
		}
		*loaded = true
		return Response{Status: StatusSuccess, Message: "Model loaded"}, false

	case CommandSynthesize:
		if !*loaded {
			return failure("Model not initialized"), false
		}
		if req.Text == nil {
			return failure("Missing text"), false
		}
		settings := tts.VoiceSettings{Voice: req.Voice, Speed: req.Speed, Pitch: req.Pitch}
		samples, err := engine.Synthesize(*req.Text, settings)
		if err != nil {
			return failure("Synthesis failed: %v", err), false
		}
		if samples == nil {
			samples = tts.Samples{}
		}
		return Response{Status: StatusSuccess, Audio: &samples}, false

	case CommandExit:
		return Response{}, true

	default:
		return failure("Unknown command: %q", req.Command), false
	}
}

func failure(format string, args ...any) Response {
	return Response{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}
