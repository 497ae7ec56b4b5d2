package reference

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Alia5/mixremap/mappings"
)

// Config selects the reference archive and the optional cache.
type Config struct {
	Path         string
	MappingsPath string
	Prefix       string
	CacheDir     string
}

// Load builds the hierarchy for cfg, consulting the cache when CacheDir is
// set. Cache failures are logged and fall back to a full scan.
func Load(ctx context.Context, cfg Config, idx *mappings.Index, logger *slog.Logger) (*mappings.Hierarchy, Stats, error) {
	var stats Stats
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}

	var cache *Cache
	var key string
	if cfg.CacheDir != "" {
		k, err := Key(cfg.Path, cfg.MappingsPath, cfg.Prefix)
		if err != nil {
			logger.Warn("Hierarchy cache disabled", "error", err)
		} else {
			cache, key = &Cache{Dir: cfg.CacheDir}, k
			edges, ok, err := cache.Load(key)
			switch {
			case err != nil:
				logger.Warn("Ignoring unreadable hierarchy cache", "error", err)
			case ok:
				logger.Debug("Hierarchy cache hit", "key", key[:12])
				stats.CacheHit = true
				stats.Classes = len(edges)
				h, err := mappings.NewHierarchy(edges)
				return h, stats, err
			}
		}
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, stats, fmt.Errorf("open reference archive: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, stats, err
	}

	edges, scanned, err := Scan(ctx, f, fi.Size(), idx, cfg.Prefix, logger)
	if err != nil {
		return nil, stats, err
	}
	stats.Scanned = scanned
	stats.Classes = len(edges)

	if cache != nil {
		if err := cache.Store(key, cfg.Prefix, edges); err != nil {
			logger.Warn("Could not write hierarchy cache", "error", err)
		}
	}
	h, err := mappings.NewHierarchy(edges)
	return h, stats, err
}
