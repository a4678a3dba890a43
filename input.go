package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/dgnsrekt/ttsbridge/utils"
)

var errNoInput = errors.New("no input: pass TEXT or a FILE, pipe text on stdin, or use --clipboard")

// inputSource is where text for save and say comes from.
type inputSource struct {
	stdin     io.Reader // nil when stdin is a terminal
	clipboard func() (string, error)
}

func defaultInputSource() inputSource {
	src := inputSource{clipboard: clipboard.ReadAll}
	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec
		src.stdin = os.Stdin
	}
	return src
}

// read returns the text to speak and a label for where it came from. A
// single argument naming an existing file is read from disk, with front
// matter removed from markdown; other arguments are spoken as given.
func (src inputSource) read(args []string, fromClipboard bool) (text, label string, err error) {
	switch {
	case fromClipboard:
		if len(args) > 0 {
			return "", "", errors.New("cannot combine --clipboard with arguments")
		}
		text, err := src.clipboard()
		if err != nil {
			return "", "", fmt.Errorf("unable to read clipboard: %w", err)
		}
		return text, "clipboard", nil

	case len(args) == 0 || (len(args) == 1 && args[0] == "-"):
		if src.stdin == nil {
			return "", "", errNoInput
		}
		b, err := io.ReadAll(src.stdin)
		if err != nil {
			return "", "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return string(b), "stdin", nil
	}

	if len(args) == 1 {
		if st, err := os.Stat(args[0]); err == nil && !st.IsDir() {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return "", "", fmt.Errorf("unable to open file: %w", err)
			}
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return "", "", fmt.Errorf("unable to get absolute path: %w", err)
			}
			if utils.IsMarkdownFile(abs) {
				b = utils.RemoveFrontmatter(b)
			}
			return string(b), abs, nil
		}
	}

	text = strings.Join(args, " ")
	return text, preview(text), nil
}
