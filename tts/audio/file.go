package audio

import (
	"errors"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dgnsrekt/ttsbridge/tts"
)

// wavFormatPCM is the WAVE_FORMAT_PCM audio format code.
const wavFormatPCM = 1

// SaveToFile writes raw PCM bytes to path, truncating any existing file.
// Failures are reported as *tts.IOError.
func SaveToFile(pcm []byte, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &tts.IOError{Reason: tts.IOOpenFailed, Path: path, Err: err}
	}

	n, writeErr := f.Write(pcm)
	closeErr := f.Close()

	switch {
	case n != len(pcm):
		return &tts.IOError{Reason: tts.IOShortWrite, Path: path, Written: n, Expected: len(pcm), Err: writeErr}
	case writeErr != nil:
		return &tts.IOError{Reason: tts.IOWriteFailed, Path: path, Err: writeErr}
	case closeErr != nil:
		return &tts.IOError{Reason: tts.IOWriteFailed, Path: path, Err: closeErr}
	}
	return nil
}

// SaveWAV writes samples as a mono 16-bit PCM WAV file. The sample data is
// identical to what EncodePCM16LE produces.
func SaveWAV(samples tts.Samples, path string, sampleRate int) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &tts.IOError{Reason: tts.IOOpenFailed, Path: path, Err: err}
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(PCM16(s))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}

	enc := wav.NewEncoder(f, sampleRate, BitDepth, Channels, wavFormatPCM)
	writeErr := enc.Write(buf)
	encErr := enc.Close()
	closeErr := f.Close()

	if err := errors.Join(writeErr, encErr, closeErr); err != nil {
		return &tts.IOError{Reason: tts.IOWriteFailed, Path: path, Err: err}
	}
	return nil
}
