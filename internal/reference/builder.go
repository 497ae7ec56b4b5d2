// Package reference builds the intermediary class hierarchy from the
// reference archive of runtime classes.
package reference

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/Alia5/mixremap/classfile"
	"github.com/Alia5/mixremap/internal/modjar"
	"github.com/Alia5/mixremap/mappings"
)

// DefaultPrefix is the package prefix of runtime classes.
const DefaultPrefix = "net/minecraft/"

// Stats summarises one hierarchy build.
type Stats struct {
	Scanned  int  `json:"scanned" yaml:"scanned" toml:"scanned"`
	Classes  int  `json:"classes" yaml:"classes" toml:"classes"`
	CacheHit bool `json:"cacheHit" yaml:"cacheHit" toml:"cacheHit"`
}

// Scan reads every class under prefix from the archive and records its
// in-prefix supertypes in the intermediary namespace. Classes without any
// in-prefix supertype are left out.
func Scan(ctx context.Context, r io.ReaderAt, size int64, idx *mappings.Index, prefix string, logger *slog.Logger) (map[string][]string, int, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, 0, fmt.Errorf("open reference archive: %w", err)
	}

	edges := make(map[string][]string)
	scanned := 0
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, prefix) || !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, scanned, err
		}
		data, err := modjar.Read(f)
		if err != nil {
			return nil, scanned, fmt.Errorf("reference archive: %w", err)
		}
		c, err := classfile.DecodeHeader(data)
		if err != nil {
			logger.Warn("Skipping unreadable reference class", "entry", f.Name, "error", err)
			continue
		}
		scanned++

		var supers []string
		for _, s := range append([]string{c.SuperName}, c.Interfaces...) {
			if strings.HasPrefix(s, prefix) {
				supers = append(supers, intermediary(idx, s))
			}
		}
		if len(supers) > 0 {
			edges[intermediary(idx, c.Name)] = supers
		}
	}
	logger.Debug("Scanned reference archive", "classes", scanned, "edges", len(edges))
	return edges, scanned, nil
}

func intermediary(idx *mappings.Index, name string) string {
	if e := idx.FindClass(name); e != nil {
		return e.Intermediary
	}
	return name
}
