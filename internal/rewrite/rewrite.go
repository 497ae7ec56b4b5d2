// Package rewrite renames the member references of queued mixin classes to
// their intermediary names.
package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Alia5/mixremap/classfile"
	"github.com/Alia5/mixremap/internal/log"
	"github.com/Alia5/mixremap/mappings"
	"github.com/Alia5/mixremap/mixin"
)

// Stats counts renamed references. A member referenced twice counts twice.
type Stats struct {
	Classes int `json:"classes" yaml:"classes" toml:"classes"`
	Fields  int `json:"fields" yaml:"fields" toml:"fields"`
	Methods int `json:"methods" yaml:"methods" toml:"methods"`
}

// Result is the rewritten class of one job.
type Result struct {
	Entry string
	Data  []byte
}

type counters struct {
	fields  atomic.Int64
	methods atomic.Int64
}

// Renamer renames references whose owner lies in the mixin package. Names
// are looked up against the first target of the mixin; misses keep the name.
type Renamer struct {
	pkg    string
	target string
	res    *mappings.Resolver
	count  *counters
	logger *slog.Logger
}

func (r *Renamer) FieldName(owner, name, _ string) string {
	if !strings.Contains(owner, r.pkg) {
		return name
	}
	if e := r.res.Field(name, r.target); e != nil {
		r.count.fields.Add(1)
		return e.Intermediary
	}
	return name
}

func (r *Renamer) MethodName(owner, name, desc string) string {
	if !strings.Contains(owner, r.pkg) {
		return name
	}
	e, err := r.res.Method(name+desc, r.target)
	if err != nil {
		r.logger.Debug("Keeping method with unreadable descriptor", "owner", owner, "method", name, "error", err)
		return name
	}
	if e == nil {
		return name
	}
	r.count.methods.Add(1)
	return e.Intermediary
}

// Options configure Run.
type Options struct {
	Package string
	Workers int
}

// Run rewrites every job with a bounded pool of workers. read must be safe
// for concurrent use. Results keep the order of jobs.
func Run(ctx context.Context, jobs []mixin.Job, read func(entry string) ([]byte, error), res *mappings.Resolver, opts Options, logger *slog.Logger) ([]Result, Stats, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var count counters
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := read(job.Entry)
			if err != nil {
				return err
			}
			rn := &Renamer{pkg: opts.Package, target: job.Mixin.Target(), res: res, count: &count, logger: logger}
			out, err := Class(data, rn)
			if err != nil {
				return fmt.Errorf("rewrite %s: %w", job.Entry, err)
			}
			logger.Log(ctx, log.LevelTrace, "Rewrote class", "entry", job.Entry, "size", len(out))
			results[i] = Result{Entry: job.Entry, Data: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	return results, Stats{
		Classes: len(results),
		Fields:  int(count.fields.Load()),
		Methods: int(count.methods.Load()),
	}, nil
}

// Class decodes data with rn applied and encodes it again.
func Class(data []byte, rn classfile.Renamer) ([]byte, error) {
	c, err := classfile.Decode(data, classfile.WithRenamer(rn))
	if err != nil {
		return nil, err
	}
	return classfile.Encode(c)
}
