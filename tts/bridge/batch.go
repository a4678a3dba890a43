package bridge

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/utils"
)

// OutputPath returns where ProcessBatch writes the audio for input.
func (b *Bridge) OutputPath(input, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	ext := ".pcm"
	if b.cfg.Output.Container == tts.ContainerWAV {
		ext = ".wav"
	}
	return filepath.Join(outputDir, base+ext)
}

// ProcessBatch converts each input file, front matter removed, to an audio
// file in outputDir. It keeps going after a failure and returns every
// failure joined.
func (b *Bridge) ProcessBatch(inputs []string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return tts.NewTTSError(&tts.IOError{Reason: tts.IOOpenFailed, Path: outputDir, Err: err}, tts.StageSave)
	}

	var errs []error
	for _, input := range inputs {
		if err := b.processFile(input, outputDir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bridge) processFile(input, outputDir string) error {
	content, err := os.ReadFile(input)
	if err != nil {
		ioErr := &tts.IOError{Reason: tts.IOOpenFailed, Path: input, Err: err}
		return tts.NewTTSError(ioErr, tts.StageRead).WithInput(input)
	}

	output := b.OutputPath(input, outputDir)
	if err := b.TextToSpeech(string(utils.RemoveFrontmatter(content)), output); err != nil {
		var ttsErr *tts.TTSError
		if errors.As(err, &ttsErr) {
			return ttsErr.WithInput(input)
		}
		return tts.NewTTSError(err, tts.StageSynthesize).WithInput(input)
	}

	b.logger.Info("batch item done", "input", input, "output", output)
	return nil
}
