package mediagen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pageza/nocapcooking/backend/internal/recipefile"
)

// ErrNothingToGenerate marks a record a job has no input for.
var ErrNothingToGenerate = errors.New("nothing to generate")

// Job produces one media file per recipe record.
type Job interface {
	Kind() string
	Ext() string
	Generate(ctx context.Context, rec recipefile.Record, output string) error
}

// Synthesizer renders speech for a piece of text into a file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dest string) error
}

// ImageGenerator renders an image for a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// AudioJob narrates "<name>. <instructions>" segment by segment and joins the
// segments into one Opus file.
type AudioJob struct {
	TTS        Synthesizer
	Concat     Concatenator
	MaxSegment int
}

func NewAudioJob(cfg AudioConfig) *AudioJob {
	return &AudioJob{
		TTS:        NewTTSClient(cfg),
		Concat:     NewFFmpeg(cfg),
		MaxSegment: cfg.MaxSegment,
	}
}

func (j *AudioJob) Kind() string { return "audio" }
func (j *AudioJob) Ext() string  { return recipefile.ExtAudio }

func (j *AudioJob) Generate(ctx context.Context, rec recipefile.Record, output string) error {
	if strings.TrimSpace(rec.Instructions) == "" {
		return ErrNothingToGenerate
	}

	// Segments and the unfinished output live next to the final file and are
	// removed whatever happens; only a complete file is moved into place.
	work, err := os.MkdirTemp(filepath.Dir(output), ".segments-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(work)

	segments := SplitText(NarrationText(rec.Name, rec.Instructions), j.MaxSegment)
	files := make([]string, 0, len(segments))
	for i, segment := range segments {
		dest := filepath.Join(work, fmt.Sprintf("segment_%03d.wav", i))
		if err := j.TTS.Synthesize(ctx, segment, dest); err != nil {
			return fmt.Errorf("segment %d of %d: %w", i+1, len(segments), err)
		}
		files = append(files, dest)
	}

	partial := filepath.Join(work, "out."+j.Ext())
	if err := j.Concat.Concat(ctx, files, partial); err != nil {
		return err
	}
	return os.Rename(partial, output)
}

// ImageJob renders a dish image and stores it as JPEG.
type ImageJob struct {
	Client  ImageGenerator
	Quality int
}

func NewImageJob(cfg ImageConfig) *ImageJob {
	return &ImageJob{Client: NewImageClient(cfg), Quality: cfg.JPEGQuality}
}

func (j *ImageJob) Kind() string { return "image" }
func (j *ImageJob) Ext() string  { return recipefile.ExtImage }

func (j *ImageJob) Generate(ctx context.Context, rec recipefile.Record, output string) error {
	raw, err := j.Client.Generate(ctx, ImagePrompt(rec.Name, rec.Ingredients))
	if err != nil {
		return err
	}
	encoded, err := EncodeJPEG(raw, j.Quality)
	if err != nil {
		return err
	}
	return writeFileAtomic(output, encoded)
}

// writeFileAtomic writes data beside path and renames it into place so a
// crash never leaves a truncated file that later runs would skip.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
