// Package audioutil extracts normalized audio from video files using an
// external encoder process.
package audioutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Extractor converts a local video file into a normalized mono WAV file at
// the requested sample rate and returns the path of the produced file.
type Extractor interface {
	Extract(ctx context.Context, videoPath string, sampleRateHz int) (string, error)
}

// ExtractionError is returned when the encoder process fails or produces no output.
type ExtractionError struct {
	Cmd    string
	Output string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("audioutil: %s failed", e.Cmd)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// FFmpeg is an Extractor that shells out to the ffmpeg binary.
type FFmpeg struct {
	path string
	// run is swapped out in tests
	run func(cmd *exec.Cmd) error
}

// NewFFmpeg returns an Extractor using the ffmpeg binary at path, or "ffmpeg"
// from PATH if empty.
func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{
		path: path,
		run:  func(cmd *exec.Cmd) error { return cmd.Run() },
	}
}

func (f *FFmpeg) Extract(ctx context.Context, videoPath string, sampleRateHz int) (string, error) {
	wavPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".wav"
	args := []string{
		"-y",
		"-i", videoPath,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRateHz),
		"-vn",
		"-f", "wav",
		wavPath,
	}
	cmd := exec.CommandContext(ctx, f.path, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	if err := f.run(cmd); err != nil {
		return "", &ExtractionError{Cmd: f.path, Output: tail(stderr.String(), 512), Err: err}
	}
	if _, err := os.Stat(wavPath); err != nil {
		return "", &ExtractionError{Cmd: f.path, Output: "no output file produced", Err: err}
	}
	return wavPath, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
