package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/ttsbridge/tts/bridge"
	"github.com/dgnsrekt/ttsbridge/utils"
)

var (
	watchOutput string

	watchCmd = &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-synthesize a file whenever it changes",
		Long: paragraph(fmt.Sprintf("\n%s FILE and write its audio to the output file each time it is saved, at most once per second. Press Ctrl-C to stop.",
			keyword("Watch"))),
		Example: paragraph("ttsbridge watch notes.md -o notes.pcm"),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("unable to get absolute path: %w", err)
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := &fileWatcher{
				path:    path,
				limiter: rate.NewLimiter(rate.Every(time.Second), 1),
				logger:  log.WithPrefix("watch"),
				render: func() error {
					return s.run("watch", path, watchOutput, func(b *bridge.Bridge) error {
						return renderFile(b, path, watchOutput)
					})
				},
				out: cmd.OutOrStdout(),
			}
			return w.run(ctx)
		},
	}
)

func renderFile(b *bridge.Bridge, path, output string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}
	return b.TextToSpeech(string(utils.RemoveFrontmatter(content)), output)
}

// fileWatcher calls render once at start and again after every write to
// path, no more often than limiter allows.
type fileWatcher struct {
	path    string
	limiter *rate.Limiter
	logger  *log.Logger
	render  func() error
	out     io.Writer
}

func (w *fileWatcher) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	// Editors often replace the file, so watch its directory.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error watching %s: %w", dir, err)
	}
	w.logger.Info("watching", "file", w.path)

	w.limiter.Allow()
	w.renderOnce()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("fsnotify event", "file", event.Name, "event", event.Op)

			if err := w.limiter.Wait(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			drain(watcher.Events)
			w.renderOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

func (w *fileWatcher) renderOnce() {
	if err := w.render(); err != nil {
		fmt.Fprintf(w.out, "%s %v\n", failure("✗"), err)
		return
	}
	fmt.Fprintf(w.out, "%s %s %s\n", keyword("✓"), w.path, faint(time.Now().Format(time.TimeOnly)))
}

// drain discards events that queued up while waiting.
func drain(events <-chan fsnotify.Event) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "output file")
	_ = watchCmd.MarkFlagRequired("output")
}
