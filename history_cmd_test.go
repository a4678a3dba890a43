package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgnsrekt/ttsbridge/internal/history"
)

func TestPrintJobs(t *testing.T) {
	jobs := []history.Job{
		{
			Time:     time.Now().Add(-2 * time.Minute),
			Kind:     "save",
			Input:    strings.Repeat("long input ", 20),
			Segments: 3,
			Bytes:    2048,
			Duration: 1234 * time.Millisecond,
		},
		{
			Time:  time.Now().Add(-time.Hour),
			Kind:  "say",
			Input: "Hello.",
			Err:   "synthesize segment 0: worker exited",
		},
	}

	var buf bytes.Buffer
	printJobs(&buf, jobs, 100)
	out := buf.String()

	for _, want := range []string{"KIND", "INPUT", "save", "2.0 kB", "1.23s", "2 minutes ago", "say", "worker exited"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if w := lipgloss.Width(line); w > 100 {
			t.Errorf("line is %d cells wide, want at most 100: %q", w, line)
		}
	}
}

func TestFill(t *testing.T) {
	if got := fill("ok", 5); got != "ok   " {
		t.Errorf("fill() = %q", got)
	}
	if got := fill("toolong", 3); got != "toolong" {
		t.Errorf("fill() = %q", got)
	}
}
