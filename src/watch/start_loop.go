// Package watch polls a drop directory and imports every new or changed
// export it finds.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeanalytics/src/service"
)

var ErrNoDir = errors.New("watch dir not set")

type Importer interface {
	Import(ctx context.Context, req service.ImportRequest) (service.ImportResult, error)
}

// readFile is swapped in tests.
var readFile = os.ReadFile

// Scanner remembers which files it has handed to the importer. A file is
// picked up again only when its modification time changes.
type Scanner struct {
	dir     string
	pattern string
	imp     Importer
	log     *logger.Entry
	seen    map[string]time.Time
}

func NewScanner(cfg Config, imp Importer) *Scanner {
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = "*.csv"
	}
	return &Scanner{
		dir:     cfg.Dir,
		pattern: pattern,
		imp:     imp,
		log:     logger.WithFields(map[string]interface{}{"component": "watch", "dir": cfg.Dir}),
		seen:    map[string]time.Time{},
	}
}

// Scan imports pending files in name order and returns how many were
// accepted. Files whose import fails stay pending for the next scan.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return 0, fmt.Errorf("glob %s: %w", s.pattern, err)
	}
	sort.Strings(paths)

	accepted := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if modTime, ok := s.seen[path]; ok && modTime.Equal(info.ModTime()) {
			continue
		}

		ok, err := s.importFile(ctx, path)
		if err != nil {
			s.log.WithError(err).WithField("file", path).Error("Failed to import file")
			continue
		}
		s.seen[path] = info.ModTime()
		if ok {
			accepted++
		}
	}
	return accepted, nil
}

func (s *Scanner) importFile(ctx context.Context, path string) (bool, error) {
	data, err := readFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	res, err := s.imp.Import(ctx, service.ImportRequest{
		FileName: filepath.Base(path),
		CSV:      string(data),
	})
	if err != nil {
		return false, err
	}

	s.log.WithFields(map[string]interface{}{
		"file":    res.FileName,
		"outcome": res.Outcome,
		"added":   res.Added,
		"skipped": res.Skipped,
	}).Info("Watched file processed")
	return res.OK(), nil
}

// StartLoop scans once immediately and then on every tick until ctx is done.
func StartLoop(ctx context.Context, imp Importer, cfg Config) error {
	if cfg.Dir == "" {
		return ErrNoDir
	}
	if cfg.LoopPeriod <= 0 {
		cfg.LoopPeriod = 30 * time.Second
	}

	scanner := NewScanner(cfg, imp)
	ticker := time.NewTicker(cfg.LoopPeriod)
	defer ticker.Stop()

	scan := func() {
		if _, err := scanner.Scan(ctx); err != nil && ctx.Err() == nil {
			scanner.log.WithError(err).Error("Scan failed")
		}
	}

	scan()
	for {
		select {
		case <-ctx.Done():
			scanner.log.Info("watch loop stopped")
			return nil
		case <-ticker.C:
			scanner.log.Debug("loop tick")
			scan()
		}
	}
}
