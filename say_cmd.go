package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/tts/bridge"
)

var (
	sayLimit     time.Duration
	sayClipboard bool

	sayCmd = &cobra.Command{
		Use:   "say [TEXT|FILE|-]",
		Short: "Speak text through the audio device",
		Long: paragraph(fmt.Sprintf("\n%s text aloud and wait for playback to finish. Press Ctrl-C to stop early.",
			keyword("Speak"))),
		Example: paragraph("ttsbridge say \"Hello world.\"\nttsbridge say notes.md --limit 30s\nttsbridge say --clipboard"),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCommandFlags(cmd)

			text, label, err := defaultInputSource().read(args, sayClipboard)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return tts.ErrNothingToPlay
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if sayLimit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, sayLimit)
				defer cancel()
			}

			return s.run("say", label, "", func(b *bridge.Bridge) error {
				pb, err := b.PlayText(text)
				if err != nil {
					return err
				}
				s.logger.Debug("playing", "duration", pb.Duration())
				return waitPlayback(ctx, pb.WaitContext)
			})
		},
	}
)

// waitPlayback treats an interrupt or an expired limit as a normal stop.
func waitPlayback(ctx context.Context, wait func(context.Context) error) error {
	err := wait(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func init() {
	sayCmd.Flags().DurationVar(&sayLimit, "limit", 0, "stop playback after this long (0 plays to the end)")
	sayCmd.Flags().String("model", "", "voice model path")
	sayCmd.Flags().BoolVar(&sayClipboard, "clipboard", false, "read text from the clipboard")
}
