package mediagen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Concatenator joins audio segments into one encoded file.
type Concatenator interface {
	Concat(ctx context.Context, inputs []string, output string) error
}

// FFmpeg concatenates segments with the ffmpeg concat demuxer and encodes
// the result as Opus.
type FFmpeg struct {
	Binary     string
	Bitrate    string
	SampleRate int
}

func NewFFmpeg(cfg AudioConfig) *FFmpeg {
	return &FFmpeg{Binary: cfg.FFmpeg, Bitrate: cfg.Bitrate, SampleRate: cfg.SampleRate}
}

// Args returns the ffmpeg arguments for reading listFile into output.
func (f *FFmpeg) Args(listFile, output string) []string {
	return []string{
		"-y", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", listFile,
		"-c:a", "libopus",
		"-b:a", f.Bitrate,
		"-ar", strconv.Itoa(f.SampleRate),
		output,
	}
}

func (f *FFmpeg) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no audio segments to concatenate")
	}

	list, err := os.CreateTemp(filepath.Dir(output), "concat-*.txt")
	if err != nil {
		return err
	}
	defer os.Remove(list.Name())

	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			list.Close()
			return err
		}
		fmt.Fprintf(list, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	if err := list.Close(); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, f.Binary, f.Args(list.Name(), output)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
