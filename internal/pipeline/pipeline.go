// Package pipeline runs a full remap of one mod archive.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/Alia5/mixremap/accesswidener"
	"github.com/Alia5/mixremap/classfile"
	"github.com/Alia5/mixremap/internal/configpaths"
	"github.com/Alia5/mixremap/internal/log"
	"github.com/Alia5/mixremap/internal/modjar"
	"github.com/Alia5/mixremap/internal/reference"
	"github.com/Alia5/mixremap/internal/rewrite"
	"github.com/Alia5/mixremap/mappings"
	"github.com/Alia5/mixremap/mixin"
	"github.com/Alia5/mixremap/refmap"
)

// Config holds the inputs of one run.
type Config struct {
	Input     string
	Output    string
	Mappings  string
	Reference string

	RuntimePrefix string
	Loader        modjar.Loader
	CacheDir      string
	Workers       int

	// EntryLog receives one line per rewritten entry. Optional.
	EntryLog log.EntryLogger
}

// MappingStats counts the rows of the mapping table.
type MappingStats struct {
	Classes int `json:"classes" yaml:"classes" toml:"classes"`
	Fields  int `json:"fields" yaml:"fields" toml:"fields"`
	Methods int `json:"methods" yaml:"methods" toml:"methods"`
}

// Report is the outcome of a run.
type Report struct {
	Loader        string `json:"loader" yaml:"loader" toml:"loader"`
	MixinConfig   string `json:"mixinConfig" yaml:"mixinConfig" toml:"mixinConfig"`
	Package       string `json:"package" yaml:"package" toml:"package"`
	RefmapName    string `json:"refmapName" yaml:"refmapName" toml:"refmapName"`
	AccessWidener string `json:"accessWidener,omitempty" yaml:"accessWidener,omitempty" toml:"accessWidener,omitempty"`

	Mappings  MappingStats        `json:"mappings" yaml:"mappings" toml:"mappings"`
	Hierarchy reference.Stats     `json:"hierarchy" yaml:"hierarchy" toml:"hierarchy"`
	Mixins    mixin.Counts        `json:"mixins" yaml:"mixins" toml:"mixins"`
	Rewrite   rewrite.Stats       `json:"rewrite" yaml:"rewrite" toml:"rewrite"`
	Refmap    refmap.Stats        `json:"refmap" yaml:"refmap" toml:"refmap"`
	Widener   accesswidener.Stats `json:"widener" yaml:"widener" toml:"widener"`

	Copied  int               `json:"copied" yaml:"copied" toml:"copied"`
	Timings map[string]string `json:"timings" yaml:"timings" toml:"timings"`
}

func (r *Report) time(phase string, d time.Duration) {
	if r.Timings == nil {
		r.Timings = make(map[string]string)
	}
	r.Timings[phase] = d.Round(time.Millisecond).String()
}

// Run remaps cfg.Input into cfg.Output. A failed run removes the partial
// output archive.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (rep *Report, err error) {
	if cfg.RuntimePrefix == "" {
		cfg.RuntimePrefix = reference.DefaultPrefix
	}
	start := time.Now()
	rep = &Report{}

	in, err := modjar.Open(cfg.Input)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	loader := cfg.Loader
	if loader == modjar.LoaderAuto {
		loader = in.DetectLoader()
	}
	rep.Loader = loader.String()
	logger.Info("Found environment", "loader", loader)

	mc, err := in.MixinConfig(loader)
	if err != nil {
		return nil, err
	}
	rep.MixinConfig, rep.Package, rep.RefmapName = mc.Name, mc.Package, mc.Refmap
	logger.Info("Found mixin config", "config", mc.Name, "package", mc.Package, "refmap", mc.Refmap)

	awName, hasWidener := in.AccessWidener(loader)
	if hasWidener {
		rep.AccessWidener = awName
		logger.Info("Found access widener", "entry", awName)
	}

	done := log.Phase(logger, "loading mappings", "path", cfg.Mappings)
	idx, err := mappings.Load(cfg.Mappings, logger)
	if err != nil {
		return nil, err
	}
	rep.Mappings.Classes, rep.Mappings.Fields, rep.Mappings.Methods = idx.Counts()
	rep.time("mappings", done("rows", idx.Len()))

	done = log.Phase(logger, "building hierarchy", "path", cfg.Reference)
	hier, hstats, err := reference.Load(ctx, reference.Config{
		Path:         cfg.Reference,
		MappingsPath: cfg.Mappings,
		Prefix:       cfg.RuntimePrefix,
		CacheDir:     cfg.CacheDir,
	}, idx, logger)
	if err != nil {
		return nil, err
	}
	rep.Hierarchy = hstats
	rep.time("hierarchy", done("classes", hstats.Classes, "cached", hstats.CacheHit))
	res := &mappings.Resolver{Index: idx, Hierarchy: hier}

	if err := configpaths.EnsureDir(cfg.Output); err != nil {
		return nil, err
	}
	out, err := modjar.Create(cfg.Output)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		if err != nil {
			rep = nil
			_ = os.Remove(cfg.Output)
		}
	}()

	done = log.Phase(logger, "processing mixins")
	scanner := mixin.NewScanner(mc.Package, logger)
	held := make(map[string]*zip.File)
	for _, f := range in.Files() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch {
		case f.Name == mc.Refmap:
			continue
		case hasWidener && f.Name == awName:
			continue
		case scanner.Accepts(f.Name):
			outcome, err := scanEntry(scanner, f, logger)
			if err != nil {
				return nil, err
			}
			if outcome != mixin.PassThrough {
				held[f.Name] = f
				continue
			}
		}
		if err := out.Copy(f); err != nil {
			return nil, err
		}
		rep.Copied++
	}
	jobs, unmatched := scanner.Resolve()
	for _, name := range unmatched {
		if err := out.Copy(held[name]); err != nil {
			return nil, err
		}
		rep.Copied++
	}
	rep.Mixins = scanner.Counts()
	rep.time("scan", done("mixins", rep.Mixins.Mixins, "queued", len(jobs)))

	done = log.Phase(logger, "synthesizing refmap")
	rm, rstats, err := refmap.Synthesize(scanner.Mixins(), res, cfg.RuntimePrefix, logger)
	if err != nil {
		return nil, err
	}
	rep.Refmap = rstats
	rep.time("refmap", done("entries", rstats.Entries))

	done = log.Phase(logger, "remapping shadow and overridden members", "classes", len(jobs))
	read := func(name string) ([]byte, error) { return modjar.Read(held[name]) }
	results, wstats, err := rewrite.Run(ctx, jobs, read, res, rewrite.Options{Package: mc.Package, Workers: cfg.Workers}, logger)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		if err := out.Write(r.Entry, r.Data); err != nil {
			return nil, err
		}
		if cfg.EntryLog != nil {
			src, err := modjar.Read(held[r.Entry])
			if err != nil {
				logger.Debug("Entry log skipped", "entry", r.Entry, "error", err)
				continue
			}
			cfg.EntryLog.Log(r.Entry, src, r.Data)
		}
	}
	rep.Rewrite = wstats
	rep.time("rewrite", done("fields", wstats.Fields, "methods", wstats.Methods))

	if hasWidener {
		done = log.Phase(logger, "remapping access widener", "entry", awName)
		src, err := in.ReadFile(awName)
		if err != nil {
			return nil, err
		}
		data, astats, err := accesswidener.Remap(src, res, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", awName, err)
		}
		if err := out.Write(awName, data); err != nil {
			return nil, err
		}
		if cfg.EntryLog != nil {
			cfg.EntryLog.Log(awName, src, data)
		}
		rep.Widener = astats
		rep.time("accessWidener", done("classes", astats.Classes, "fields", astats.Fields, "methods", astats.Methods))
	}

	doc := []byte(rm.Render(loader.RefmapLabel()))
	if err := out.Write(mc.Refmap, doc); err != nil {
		return nil, err
	}
	logger.Info("Written refmap", "entry", mc.Refmap, "entries", rm.Len())

	rep.time("total", time.Since(start))
	return rep, nil
}

// scanEntry decodes one mixin package class. Undecodable classes are copied
// unchanged.
func scanEntry(s *mixin.Scanner, f *zip.File, logger *slog.Logger) (mixin.Outcome, error) {
	data, err := modjar.Read(f)
	if err != nil {
		return mixin.PassThrough, err
	}
	c, err := classfile.Decode(data)
	if err != nil {
		logger.Warn("Skipping unreadable class", "entry", f.Name, "error", err)
		return mixin.PassThrough, nil
	}
	for _, w := range c.Warnings {
		logger.Debug("Class decoded with warnings", "entry", f.Name, "warning", w)
	}
	return s.Scan(f.Name, c)
}
