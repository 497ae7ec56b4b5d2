package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/mixremap/internal/log"
	"github.com/Alia5/mixremap/internal/modjar"
	"github.com/Alia5/mixremap/internal/pipeline"
)

type Remap struct {
	Input     string `arg:"" type:"existingfile" help:"Mod archive compiled against named symbols"`
	Output    string `arg:"" type:"path" help:"Destination archive"`
	Mappings  string `arg:"" type:"existingfile" help:"Tiny v1 mapping table"`
	Reference string `arg:"" type:"existingfile" help:"Archive of runtime classes used for the class hierarchy"`

	RuntimePrefix string `help:"Package prefix of runtime classes" default:"net/minecraft/" env:"MIXREMAP_RUNTIME_PREFIX"`
	Loader        string `help:"Mod loader; auto detects fabric.mod.json" enum:"auto,fabric,forge" default:"auto" env:"MIXREMAP_LOADER"`
	CacheDir      string `help:"Hierarchy cache directory; caching is off when empty" type:"path" env:"MIXREMAP_CACHE_DIR"`
	Jobs          int    `help:"Classes rewritten in parallel; 0 uses every CPU" default:"0" env:"MIXREMAP_JOBS"`
	Report        string `help:"Write a run report; the format follows the extension (.json, .yaml, .toml)" type:"path" env:"MIXREMAP_REPORT"`
}

// Run is called by Kong when the remap command is executed.
func (r *Remap) Run(logger *slog.Logger, entries log.EntryLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Execute(ctx, logger, entries)
}

func (r *Remap) Execute(ctx context.Context, logger *slog.Logger, entries log.EntryLogger) error {
	loader, err := modjar.ParseLoader(r.Loader)
	if err != nil {
		return err
	}
	if r.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative: %d", r.Jobs)
	}

	rep, err := pipeline.Run(ctx, pipeline.Config{
		Input:         r.Input,
		Output:        r.Output,
		Mappings:      r.Mappings,
		Reference:     r.Reference,
		RuntimePrefix: r.RuntimePrefix,
		Loader:        loader,
		CacheDir:      r.CacheDir,
		Workers:       r.Jobs,
		EntryLog:      entries,
	}, logger)
	if err != nil {
		return err
	}

	m := rep.Mixins
	logger.Info("Processed mixins",
		"mixins", m.Mixins, "accessors", m.Accessors, "invokers", m.Invokers,
		"injects", m.Injects, "redirects", m.Redirects, "modifyArg", m.ModifyArg,
		"modifyArgs", m.ModifyArgs, "modifyVariable", m.ModifyVariable,
		"wrapWithCondition", m.WrapWithCondition)
	logger.Info("Remapped shadow and overridden members", "fields", rep.Rewrite.Fields, "methods", rep.Rewrite.Methods)
	if rep.AccessWidener != "" {
		logger.Info("Remapped access widener entries",
			"classes", rep.Widener.Classes, "fields", rep.Widener.Fields, "methods", rep.Widener.Methods)
	}
	logger.Info("Written refmap entries", "entries", rep.Refmap.Entries, "total", rep.Timings["total"])

	if r.Report != "" {
		if err := pipeline.WriteReport(r.Report, rep); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Debug("Wrote report", "path", r.Report)
	}
	return nil
}
