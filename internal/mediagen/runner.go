package mediagen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pageza/nocapcooking/backend/internal/recipefile"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LockFile is created in the output root while a run is in progress.
const LockFile = ".mediagen.lock"

// ErrLocked is returned when another run holds the output root.
var ErrLocked = errors.New("another media generation run is using the output root")

// Failure is a record, or a whole file when Name is empty, that produced no
// media.
type Failure struct {
	File string
	Name string
	Err  error
}

// Summary reports a run.
type Summary struct {
	Files     int
	Generated int
	Skipped   int
	Uploaded  int
	Failed    []Failure
}

// Runner walks the source files and runs a job for every record whose media
// file is missing.
type Runner struct {
	cfg      Config
	logger   *zap.Logger
	limiter  *rate.Limiter
	uploader Uploader
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a Runner. uploader may be nil.
func NewRunner(cfg Config, logger *zap.Logger, uploader Uploader) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60)
	}
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		limiter:  rate.NewLimiter(limit, 1),
		uploader: uploader,
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// OutputPath is where the media of rec from the file with stem is written.
func (r *Runner) OutputPath(stem, name, ext string) string {
	return filepath.Join(r.cfg.OutputRoot, filepath.FromSlash(recipefile.MediaPath(stem, name, ext)))
}

// Run executes job over every source file in dir. Existing outputs are
// skipped, so an interrupted run can simply be started again.
func (r *Runner) Run(ctx context.Context, dir string, job Job) (*Summary, error) {
	paths, err := recipefile.Paths(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.cfg.OutputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	lock := flock.New(filepath.Join(r.cfg.OutputRoot, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release lock", zap.Error(err))
		}
	}()

	logger := r.logger.With(zap.String("job", job.Kind()))
	summary := &Summary{}
	for _, p := range paths {
		summary.Files++
		file, err := recipefile.ReadFile(p)
		if err != nil {
			logger.Error("failed to read file", zap.String("file", p), zap.Error(err))
			summary.Failed = append(summary.Failed, Failure{File: p, Err: err})
			continue
		}
		if err := os.MkdirAll(filepath.Join(r.cfg.OutputRoot, file.Stem()), 0o755); err != nil {
			return summary, fmt.Errorf("create output directory: %w", err)
		}

		for _, rec := range file.Records {
			if err := r.runRecord(ctx, logger, job, file, rec, summary); err != nil {
				return summary, err
			}
		}
	}

	logger.Info("media generation finished",
		zap.Int("generated", summary.Generated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failed)))
	return summary, nil
}

// runRecord handles one record. Only cancellation is returned; every other
// failure is recorded and the run continues.
func (r *Runner) runRecord(ctx context.Context, logger *zap.Logger, job Job, file *recipefile.File, rec recipefile.Record, summary *Summary) error {
	if rec.Name == "" {
		summary.Skipped++
		return nil
	}

	output := r.OutputPath(file.Stem(), rec.Name, job.Ext())
	if _, err := os.Stat(output); err == nil {
		summary.Skipped++
		return nil
	}

	err := r.generate(ctx, logger, job, rec, output)
	switch {
	case errors.Is(err, ErrNothingToGenerate):
		summary.Skipped++
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		logger.Error("giving up on recipe", zap.String("file", file.Path), zap.String("name", rec.Name), zap.Error(err))
		summary.Failed = append(summary.Failed, Failure{File: file.Path, Name: rec.Name, Err: err})
		return nil
	}

	summary.Generated++
	logger.Info("generated media", zap.String("output", output))

	if r.uploader != nil {
		key := recipefile.MediaPath(file.Stem(), rec.Name, job.Ext())
		if err := r.uploader.Upload(ctx, key, output); err != nil {
			logger.Error("upload failed", zap.String("key", key), zap.Error(err))
			summary.Failed = append(summary.Failed, Failure{File: file.Path, Name: rec.Name, Err: fmt.Errorf("upload: %w", err)})
			return nil
		}
		summary.Uploaded++
	}
	return nil
}

// generate runs the job with linear back-off between attempts.
func (r *Runner) generate(ctx context.Context, logger *zap.Logger, job Job, rec recipefile.Record, output string) error {
	var err error
	for attempt := 1; attempt <= r.cfg.Attempts; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		err = job.Generate(ctx, rec, output)
		if err == nil || errors.Is(err, ErrNothingToGenerate) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.Warn("attempt failed",
			zap.String("name", rec.Name),
			zap.Int("attempt", attempt),
			zap.Int("attempts", r.cfg.Attempts),
			zap.Error(err))
		if attempt < r.cfg.Attempts {
			if err := r.sleep(ctx, r.cfg.Backoff(attempt)); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", r.cfg.Attempts, err)
}
