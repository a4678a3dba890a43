// Package worker supervises the external synthesis worker: a long-lived
// process that speaks a line-delimited JSON protocol over stdin/stdout.
package worker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/ttsbridge/tts"
)

// Manager owns one worker process. At most one request is outstanding at a
// time; every blocking step is bounded by a timeout and nothing is retried.
type Manager struct {
	cfg    Config
	logger *log.Logger

	// mu serializes request/response round trips.
	mu sync.Mutex

	cmd        *exec.Cmd
	stdin      io.WriteCloser
	lines      chan []byte
	quit       chan struct{}
	readerDone chan struct{}
	exited     chan struct{}
	exitErr    error
	stderr     stderrTail
	wg         sync.WaitGroup

	started  atomic.Bool
	running  atomic.Bool
	ready    atomic.Bool
	shutdown atomic.Bool

	stateMu   sync.RWMutex
	modelPath string
	settings  tts.VoiceSettings

	shutdownOnce sync.Once
	shutdownErr  error

	stats struct {
		requests atomic.Int64
		failures atomic.Int64
	}
}

var (
	_ tts.Synthesizer = (*Manager)(nil)
	_ tts.Tunable     = (*Manager)(nil)
)

// NewManager creates a manager. The process is not launched until Start.
func NewManager(cfg Config) *Manager {
	cfg.setDefaults()
	return &Manager{
		cfg:      cfg,
		logger:   cfg.Logger,
		settings: cfg.Settings,
	}
}

// Start locates the worker script and launches it. It fails with a
// *tts.LaunchError when no script is found, the process cannot be
// created, or it does not start within the startup timeout.
func (m *Manager) Start() error {
	if m.shutdown.Load() {
		return tts.ErrWorkerShutdown
	}
	if !m.started.CompareAndSwap(false, true) {
		if m.running.Load() {
			return nil
		}
		return tts.ErrWorkerNotRunning
	}

	script, tried, err := FindScript(m.cfg.Script, m.cfg.SearchPaths)
	if err != nil {
		m.logger.Warn("Worker script not found", "tried", tried)
		return &tts.LaunchError{Reason: tts.LaunchNotFound, Tried: tried, Err: err}
	}

	argv := append(slices.Clone(m.cfg.Interpreter), script)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1")
	cmd.Env = append(cmd.Env, m.cfg.Env...)
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &tts.LaunchError{Reason: tts.LaunchSpawnFailed, Path: script, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &tts.LaunchError{Reason: tts.LaunchSpawnFailed, Path: script, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &tts.LaunchError{Reason: tts.LaunchSpawnFailed, Path: script, Err: err}
	}

	startErr := make(chan error, 1)
	go func() { startErr <- cmd.Start() }()

	select {
	case err := <-startErr:
		if err != nil {
			return &tts.LaunchError{Reason: tts.LaunchSpawnFailed, Path: script, Err: err}
		}
	case <-time.After(m.cfg.StartupTimeout):
		go func() {
			if <-startErr == nil {
				_ = killProcess(cmd)
				_ = cmd.Wait()
			}
		}()
		return &tts.LaunchError{Reason: tts.LaunchTimeout, Path: script}
	}

	m.cmd = cmd
	m.stdin = stdin
	m.lines = make(chan []byte, 16)
	m.quit = make(chan struct{})
	m.readerDone = make(chan struct{})
	m.exited = make(chan struct{})
	m.running.Store(true)

	m.wg.Add(2)
	go m.readLoop(stdout)
	go func() {
		defer m.wg.Done()
		m.stderr.consume(stderr, m.logger)
	}()
	go m.waitLoop()

	m.logger.Debug("Worker started", "pid", cmd.Process.Pid, "script", script, "argv", argv)
	return nil
}

// readLoop forwards stdout lines to the request loop. Lines of any length
// are accepted; audio payloads are large. Once shutdown begins, output
// nobody will ask for is discarded so the worker can exit and be reaped.
func (m *Manager) readLoop(stdout io.Reader) {
	defer m.wg.Done()
	defer close(m.readerDone)

	br := bufio.NewReaderSize(stdout, 64*1024)
	for {
		line, err := br.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				m.logger.Debug("Dropping partial line at end of worker output", "bytes", len(line))
			}
			return
		}
		select {
		case m.lines <- line:
		case <-m.quit:
			m.logger.Debug("Discarding worker output during shutdown", "bytes", len(line))
		}
	}
}

// waitLoop reaps the process once both output streams are drained.
func (m *Manager) waitLoop() {
	m.wg.Wait()
	m.exitErr = m.cmd.Wait()
	m.running.Store(false)
	close(m.exited)

	if m.shutdown.Load() {
		m.logger.Debug("Worker exited", "err", m.exitErr)
	} else {
		m.logger.Warn("Worker exited unexpectedly", "err", m.exitErr, "stderr", m.stderr.last(3))
	}
}

// Initialize sends the init command. After the first success it returns
// nil without contacting the worker.
func (m *Manager) Initialize(modelPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready.Load() {
		return nil
	}
	return m.initLocked(modelPath)
}

func (m *Manager) initLocked(modelPath string) error {
	resp, err := m.roundTrip(InitRequest(modelPath))
	if err != nil {
		return err
	}
	if !resp.Succeeded() {
		m.stats.failures.Add(1)
		return &tts.WorkerFailure{Command: CommandInit, Status: resp.Status, Message: resp.Message}
	}

	m.stateMu.Lock()
	m.modelPath = modelPath
	m.stateMu.Unlock()
	m.ready.Store(true)

	m.logger.Info("Worker initialized", "model", modelPath, "message", resp.Message)
	return nil
}

// Synthesize converts one segment of text to samples. Before a successful
// Initialize it returns tts.ErrNotInitialized without any I/O.
func (m *Manager) Synthesize(text string) (tts.Samples, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ready.Load() {
		return nil, tts.ErrNotInitialized
	}

	m.stateMu.RLock()
	settings := m.settings
	m.stateMu.RUnlock()

	resp, err := m.roundTrip(SynthesizeRequest(text, settings))
	if err != nil {
		return nil, err
	}
	if !resp.Succeeded() {
		m.stats.failures.Add(1)
		return nil, &tts.WorkerFailure{Command: CommandSynthesize, Status: resp.Status, Message: resp.Message}
	}
	if resp.Audio == nil {
		m.stats.failures.Add(1)
		return nil, &tts.ProtocolError{Command: CommandSynthesize, Err: tts.ErrMissingAudio}
	}

	m.logger.Debug("Synthesized segment",
		"text", truncate.StringWithTail(text, 40, "..."),
		"samples", len(*resp.Audio))
	return *resp.Audio, nil
}

// LoadModel re-runs init with a different model. The manager is not ready
// until the worker accepts it.
func (m *Manager) LoadModel(modelPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ready.Store(false)
	return m.initLocked(modelPath)
}

// UnloadModel marks the manager uninitialized. The worker keeps running.
func (m *Manager) UnloadModel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ready.Store(false)
	m.stateMu.Lock()
	m.modelPath = ""
	m.stateMu.Unlock()
}

// roundTrip writes one request and reads one response line. Must be called
// with mu held.
func (m *Manager) roundTrip(req Request) (Response, error) {
	m.stats.requests.Add(1)

	if !m.running.Load() {
		m.stats.failures.Add(1)
		return Response{}, &tts.ProtocolError{Command: req.Command, Err: m.deadErr()}
	}

	m.drainStale()

	payload, err := EncodeRequest(req)
	if err != nil {
		m.stats.failures.Add(1)
		return Response{}, &tts.ProtocolError{Command: req.Command, Err: err}
	}
	if err := m.writeLine(payload); err != nil {
		m.stats.failures.Add(1)
		return Response{}, &tts.ProtocolError{Command: req.Command, Err: err}
	}

	line, err := m.readLine()
	if err != nil {
		m.stats.failures.Add(1)
		return Response{}, &tts.ProtocolError{Command: req.Command, Err: err}
	}

	resp, err := DecodeResponse(line)
	if err != nil {
		m.stats.failures.Add(1)
		return Response{}, &tts.ProtocolError{
			Command: req.Command,
			Line:    truncate.StringWithTail(string(line), 120, "..."),
			Err:     err,
		}
	}
	return resp, nil
}

// drainStale discards lines left over from a request that timed out, so
// they are not mistaken for the answer to the next one.
func (m *Manager) drainStale() {
	for {
		select {
		case line := <-m.lines:
			m.logger.Debug("Discarding stale worker output", "bytes", len(line))
		default:
			return
		}
	}
}

func (m *Manager) writeLine(payload []byte) error {
	done := make(chan error, 1)
	go func() {
		_, err := m.stdin.Write(payload)
		done <- err
	}()

	timer := time.NewTimer(m.cfg.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		// A broken pipe usually means the worker is gone; let the reader
		// confirm it so the caller sees why.
		select {
		case <-m.readerDone:
			return m.deadErr()
		case <-time.After(100 * time.Millisecond):
		}
		return fmt.Errorf("write request: %w", err)
	case <-timer.C:
		return tts.ErrWriteTimeout
	}
}

func (m *Manager) readLine() ([]byte, error) {
	timer := time.NewTimer(m.cfg.ReadTimeout)
	defer timer.Stop()

	select {
	case line := <-m.lines:
		return line, nil
	case <-m.readerDone:
		// The last response may have arrived just before EOF.
		select {
		case line := <-m.lines:
			return line, nil
		default:
		}
		return nil, m.deadErr()
	case <-timer.C:
		return nil, tts.ErrReadTimeout
	}
}

// deadErr describes why the worker cannot take requests.
func (m *Manager) deadErr() error {
	if m.shutdown.Load() {
		return tts.ErrWorkerShutdown
	}
	if m.exited == nil {
		return tts.ErrWorkerNotRunning
	}

	// Give the reaper a moment to collect the exit status.
	select {
	case <-m.exited:
	case <-time.After(500 * time.Millisecond):
	}

	var detail string
	select {
	case <-m.exited:
		if m.exitErr != nil {
			detail = m.exitErr.Error()
		} else {
			detail = "exit status 0"
		}
	default:
		detail = "output closed"
	}
	if tail := m.stderr.last(3); tail != "" {
		detail += ": " + tail
	}
	return fmt.Errorf("%w (%s)", tts.ErrWorkerExited, detail)
}

// Shutdown sends exit, waits up to the shutdown timeout and then kills the
// process group. Only the first call has any effect.
func (m *Manager) Shutdown() error {
	m.shutdownOnce.Do(func() {
		m.shutdownErr = m.stop()
	})
	return m.shutdownErr
}

func (m *Manager) stop() error {
	m.shutdown.Store(true)
	m.ready.Store(false)

	if m.cmd == nil {
		return nil
	}
	close(m.quit)

	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.exited:
		return nil
	default:
	}

	if payload, err := EncodeRequest(ExitRequest()); err == nil {
		if err := m.writeLine(payload); err != nil {
			m.logger.Debug("Could not send exit command", "err", err)
		}
	}
	_ = m.stdin.Close()

	select {
	case <-m.exited:
		m.logger.Debug("Worker stopped", "pid", m.cmd.Process.Pid)
		return nil
	case <-time.After(m.cfg.ShutdownTimeout):
	}

	m.logger.Warn("Worker did not exit in time, killing", "pid", m.cmd.Process.Pid, "timeout", m.cfg.ShutdownTimeout)
	if err := killProcess(m.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill worker: %w", err)
	}

	select {
	case <-m.exited:
	case <-time.After(time.Second):
		m.logger.Warn("Worker output still open after kill", "pid", m.cmd.Process.Pid)
	}
	return nil
}

// SetVoice selects the voice sent with synthesize requests.
func (m *Manager) SetVoice(voice string) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.settings.Voice = voice
}

// SetSpeed sets the speaking rate, clamped to [0.5, 2.0].
func (m *Manager) SetSpeed(speed float64) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.settings.Speed = tts.ClampSpeed(speed)
}

// SetPitch sets the pitch multiplier, clamped to [0.5, 2.0].
func (m *Manager) SetPitch(pitch float64) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.settings.Pitch = tts.ClampPitch(pitch)
}

// Settings returns the current voice settings.
func (m *Manager) Settings() tts.VoiceSettings {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.settings
}

// ModelPath returns the model accepted by the last successful init.
func (m *Manager) ModelPath() string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.modelPath
}

// IsReady reports whether init has succeeded and the worker is alive.
func (m *Manager) IsReady() bool { return m.ready.Load() && m.running.Load() }

// IsRunning reports whether the worker process is alive.
func (m *Manager) IsRunning() bool { return m.running.Load() }

// Stats returns request counters for monitoring.
func (m *Manager) Stats() map[string]int64 {
	return map[string]int64{
		"requests": m.stats.requests.Load(),
		"failures": m.stats.failures.Load(),
	}
}
