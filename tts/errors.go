package tts

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors for the speech bridge.
var (
	// Worker errors
	ErrNotInitialized   = errors.New("synthesis worker is not initialized")
	ErrWorkerNotRunning = errors.New("synthesis worker is not running")
	ErrWorkerExited     = errors.New("synthesis worker exited")
	ErrWorkerShutdown   = errors.New("synthesis worker has been shut down")
	ErrReadTimeout      = errors.New("timed out waiting for worker response")
	ErrWriteTimeout     = errors.New("timed out writing worker request")
	ErrMissingStatus    = errors.New("response has no status")
	ErrMissingAudio     = errors.New("response has no audio")

	// Bridge errors
	ErrBridgeClosed  = errors.New("bridge has been closed")
	ErrNothingToPlay = errors.New("no audio to play")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// LaunchReason describes why the worker could not be started.
type LaunchReason int

const (
	// LaunchNotFound means no worker script was found at any candidate path.
	LaunchNotFound LaunchReason = iota
	// LaunchSpawnFailed means the process could not be created.
	LaunchSpawnFailed
	// LaunchTimeout means the process did not start in time.
	LaunchTimeout
)

func (r LaunchReason) String() string {
	switch r {
	case LaunchNotFound:
		return "not found"
	case LaunchSpawnFailed:
		return "spawn failed"
	case LaunchTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// LaunchError is returned when the worker process cannot be started.
type LaunchError struct {
	Reason LaunchReason
	Path   string   // resolved script, empty for LaunchNotFound
	Tried  []string // candidate paths probed during discovery
	Err    error
}

func (e *LaunchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "launch worker: %s", e.Reason)
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Reason == LaunchNotFound && len(e.Tried) > 0 {
		fmt.Fprintf(&b, ": tried %s", strings.Join(e.Tried, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ProtocolError covers transport failures and responses that cannot be
// understood: timeouts, dead workers, malformed lines.
type ProtocolError struct {
	Command string // request command that was in flight
	Line    string // offending response line, if any
	Err     error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("worker protocol (%s): %v", e.Command, e.Err)
	if e.Line != "" {
		msg += fmt.Sprintf(": %q", e.Line)
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// WorkerFailure is a well-formed response whose status was not success.
type WorkerFailure struct {
	Command string
	Status  string
	Message string
}

func (e *WorkerFailure) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("worker %s failed with status %q", e.Command, e.Status)
	}
	return fmt.Sprintf("worker %s failed: %s", e.Command, e.Message)
}

// IOReason describes which part of persisting audio failed.
type IOReason int

const (
	IOOpenFailed IOReason = iota
	IOShortWrite
	IOWriteFailed
)

func (r IOReason) String() string {
	switch r {
	case IOOpenFailed:
		return "open failed"
	case IOShortWrite:
		return "short write"
	case IOWriteFailed:
		return "write failed"
	default:
		return "unknown"
	}
}

// IOError is returned when audio cannot be written to its destination.
type IOError struct {
	Reason   IOReason
	Path     string
	Written  int
	Expected int
	Err      error
}

func (e *IOError) Error() string {
	if e.Reason == IOShortWrite {
		return fmt.Sprintf("save %s: short write: %d of %d bytes", e.Path, e.Written, e.Expected)
	}
	if e.Err != nil {
		return fmt.Sprintf("save %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("save %s: %s", e.Path, e.Reason)
}

func (e *IOError) Unwrap() error { return e.Err }

// PlaybackError is returned when the audio device refuses the buffer.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string { return "playback: " + e.Err.Error() }

func (e *PlaybackError) Unwrap() error { return e.Err }

// Stage names a step of the text-to-audio pipeline.
type Stage string

const (
	StageLaunch     Stage = "launch"
	StageInitialize Stage = "initialize"
	StageSynthesize Stage = "synthesize"
	StageSave       Stage = "save"
	StagePlay       Stage = "play"
	StageRead       Stage = "read"
)

// TTSError attaches pipeline context to an error.
type TTSError struct {
	Err     error
	Stage   Stage
	Segment int    // index of the failing segment, -1 when not applicable
	Input   string // file being processed in batch mode
}

func (e *TTSError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	if e.Input != "" {
		fmt.Fprintf(&b, " %s", e.Input)
	}
	if e.Segment >= 0 {
		fmt.Fprintf(&b, " segment %d", e.Segment)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *TTSError) Unwrap() error { return e.Err }

// IsRecoverable reports whether later calls may still succeed.
func (e *TTSError) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// NewTTSError wraps err with the stage it happened in.
func NewTTSError(err error, stage Stage) *TTSError {
	return &TTSError{Err: err, Stage: stage, Segment: -1}
}

// WithSegment records the index of the failing segment.
func (e *TTSError) WithSegment(i int) *TTSError {
	e.Segment = i
	return e
}

// WithInput records the file being processed.
func (e *TTSError) WithInput(path string) *TTSError {
	e.Input = path
	return e
}

// IsRecoverableError checks if an error leaves the bridge usable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	var launchErr *LaunchError
	if errors.As(err, &launchErr) {
		return false
	}

	switch {
	case errors.Is(err, ErrBridgeClosed),
		errors.Is(err, ErrWorkerShutdown),
		errors.Is(err, ErrWorkerExited),
		errors.Is(err, ErrInvalidConfig):
		return false
	}

	return true
}
