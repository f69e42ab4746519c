package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultScanInterval = 5 * time.Minute

// DirImporter imports every pending file of a directory
type DirImporter interface {
	ImportDir(ctx context.Context, dir string) ([]*ImportResult, error)
}

// Scheduler periodically imports new files dropped into a directory
type Scheduler struct {
	importer DirImporter
	dir      string
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler scanning dir every interval. A non-positive
// interval falls back to five minutes.
func NewScheduler(importer DirImporter, dir string, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultScanInterval
	}
	return &Scheduler{
		importer: importer,
		dir:      dir,
		interval: interval,
		logger:   logger,
	}
}

// Run scans once immediately and then on every tick. It blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Import scheduler started",
		zap.String("dir", s.dir),
		zap.Duration("interval", s.interval),
	)

	s.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Import scheduler stopped")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scheduler) scan(ctx context.Context) {
	results, err := s.importer.ImportDir(ctx, s.dir)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Import scan failed", zap.String("dir", s.dir), zap.Error(err))
		}
		return
	}

	for _, result := range results {
		s.logger.Info("Imported file",
			zap.String("file", result.FileName),
			zap.String("kind", string(result.Kind)),
			zap.Int("imported", result.Imported),
			zap.Int("failed", result.Failed),
		)
	}
}
