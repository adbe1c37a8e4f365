package storage

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	sweepInterval = time.Hour
	tempMaxAge    = time.Hour
)

// Sweeper periodically deletes stale files from the temp directory.
// Temp files are intermediate uploads that never got attached to a record.
type Sweeper struct {
	dir string
	log *zap.Logger
}

func NewSweeper(dir string, log *zap.Logger) *Sweeper {
	return &Sweeper{dir: dir, log: log}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	cutoff := time.Now().Add(-tempMaxAge)
	removed := 0

	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // dir may not exist yet
		}
		if info.IsDir() || info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		s.log.Warn("temp sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.log.Info("temp files swept", zap.Int("removed", removed))
	}
}
