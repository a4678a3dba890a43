package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/gitcha"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/tts/bridge"
	"github.com/dgnsrekt/ttsbridge/utils"
)

var (
	batchOutputDir string

	batchCmd = &cobra.Command{
		Use:   "batch PATH...",
		Short: "Convert files to audio, one output per input",
		Long: paragraph(fmt.Sprintf("\n%s every given file to audio in the output directory. Directories are searched for markdown and text files, honoring .gitignore. A failed file does not stop the rest.",
			keyword("Convert"))),
		Example: paragraph("ttsbridge batch docs/ -d audio/\nttsbridge batch a.md b.md -d out/"),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := collectInputs(args)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return fmt.Errorf("no markdown or text files found in %s", strings.Join(args, ", "))
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck

			err = s.run("batch", strings.Join(args, " "), batchOutputDir, func(b *bridge.Bridge) error {
				return b.ProcessBatch(inputs, batchOutputDir)
			})

			failed := failedInputs(err)
			out := cmd.OutOrStdout()
			for _, input := range inputs {
				if failed[input] {
					fmt.Fprintf(out, "%s %s\n", failure("✗"), input)
					continue
				}
				fmt.Fprintf(out, "%s %s\n", keyword("✓"), s.bridge.OutputPath(input, batchOutputDir))
			}
			return err
		},
	}
)

// collectInputs expands directories into the markdown and text files they
// contain. Files are kept as given.
func collectInputs(paths []string) ([]string, error) {
	var inputs []string
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("unable to stat %s: %w", p, err)
		}
		if !st.IsDir() {
			inputs = append(inputs, p)
			continue
		}

		dir, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("unable to get absolute path: %w", err)
		}
		ch, err := gitcha.FindFilesExcept(dir, utils.MarkdownExtensions, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to search %s: %w", p, err)
		}
		for res := range ch {
			inputs = append(inputs, res.Path)
		}
	}
	return inputs, nil
}

// failedInputs returns the inputs named by the batch errors in err.
func failedInputs(err error) map[string]bool {
	failed := map[string]bool{}
	if err == nil {
		return failed
	}

	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var ttsErr *tts.TTSError
		if errors.As(e, &ttsErr) && ttsErr.Input != "" {
			failed[ttsErr.Input] = true
		}
	}
	return failed
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "d", ".", "directory for the audio files")
}
