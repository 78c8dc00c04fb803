// Package converter wraps the external ffmpeg capability used to extract
// MP3 audio from video sources.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Converter is the capability the request handlers depend on. A source is
// either a local file path or a remote URL; both are passed through to the
// external tool uniformly. Each Convert call has exactly one terminal
// outcome. On failure the output path is unreliable and callers must attempt
// cleanup regardless.
type Converter interface {
	Convert(ctx context.Context, source, outputPath, bitrate string) error
	CheckAvailable(ctx context.Context) error
}

// CommandRunner abstracts process execution so the adapter can be exercised
// in tests without spawning ffmpeg.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner runs commands via os/exec, capturing stderr into the
// returned error.
type ExecCommandRunner struct{}

func (ExecCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func (ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// FFmpeg converts video sources to MP3 by invoking the ffmpeg binary, one
// process per call.
type FFmpeg struct {
	binaryPath string
	runner     CommandRunner
}

// Option configures an FFmpeg converter.
type Option func(*FFmpeg)

// WithBinaryPath sets a custom ffmpeg executable path.
func WithBinaryPath(path string) Option {
	return func(f *FFmpeg) {
		f.binaryPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner CommandRunner) Option {
	return func(f *FFmpeg) {
		f.runner = runner
	}
}

// NewFFmpeg creates an ffmpeg-backed converter.
func NewFFmpeg(opts ...Option) *FFmpeg {
	f := &FFmpeg{
		binaryPath: "ffmpeg",
		runner:     ExecCommandRunner{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Convert extracts the audio track of source into outputPath as MP3 at the
// given bitrate. The bitrate token is passed through unvalidated; an invalid
// value surfaces as a converter failure.
func (f *FFmpeg) Convert(ctx context.Context, source, outputPath, bitrate string) error {
	args := []string{
		"-i", source,
		"-vn", // drop the video stream
		"-acodec", "libmp3lame",
		"-ab", bitrate,
		"-y", // overwrite output if it exists
		outputPath,
	}

	if err := f.runner.Run(ctx, f.binaryPath, args...); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w", err)
	}

	// A zero exit code is not enough; the output must actually be there.
	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("ffmpeg finished but output file is missing: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("ffmpeg finished but output file is empty (0 bytes)")
	}
	return nil
}

// CheckAvailable probes whether ffmpeg is installed and executable.
func (f *FFmpeg) CheckAvailable(ctx context.Context) error {
	if _, err := f.runner.Output(ctx, f.binaryPath, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

var _ Converter = (*FFmpeg)(nil)
