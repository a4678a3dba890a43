package worker

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

const stderrTailLines = 50

// stderrTail keeps the last lines a worker wrote to stderr so they can be
// attached to errors when the worker dies.
type stderrTail struct {
	mu    sync.Mutex
	lines []string
}

func (s *stderrTail) add(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	if len(s.lines) > stderrTailLines {
		s.lines = s.lines[1:]
	}
}

// last returns up to n of the most recent lines joined with "; ".
func (s *stderrTail) last(n int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := max(len(s.lines)-n, 0)
	return strings.Join(s.lines[start:], "; ")
}

// consume reads r line by line until EOF. Lines mentioning an error are
// logged as warnings, everything else at debug level.
func (s *stderrTail) consume(r io.Reader, logger *log.Logger) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		s.add(line)

		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") || strings.Contains(lower, "traceback") {
			logger.Warn("Worker stderr", "line", line)
		} else {
			logger.Debug("Worker stderr", "line", line)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug("Worker stderr unreadable, discarding", "err", err)
		_, _ = io.Copy(io.Discard, r)
	}
}
