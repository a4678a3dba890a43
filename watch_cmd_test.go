package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFileWatcherRendersOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("First."), 0o600); err != nil {
		t.Fatal(err)
	}

	renders := make(chan struct{}, 10)
	var out syncBuffer
	w := &fileWatcher{
		path:    path,
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  log.New(&out),
		render: func() error {
			renders <- struct{}{}
			return nil
		},
		out: &out,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	select {
	case <-renders:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial render")
	}

	if err := os.WriteFile(path, []byte("Second."), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-renders:
	case <-time.After(5 * time.Second):
		t.Fatal("no render after write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() did not return after cancel")
	}

	if !strings.Contains(out.String(), path) {
		t.Errorf("output does not mention the file:\n%s", out.String())
	}
}

func TestFileWatcherReportsRenderErrors(t *testing.T) {
	var out bytes.Buffer
	w := &fileWatcher{
		path:   "notes.md",
		render: func() error { return errors.New("worker exited") },
		out:    &out,
	}
	w.renderOnce()

	if !strings.Contains(out.String(), "worker exited") {
		t.Errorf("output = %q", out.String())
	}
}
