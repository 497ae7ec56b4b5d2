package main

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/joho/godotenv"

	"github.com/Alia5/mixremap/internal/cmd"
	"github.com/Alia5/mixremap/internal/configpaths"
	"github.com/Alia5/mixremap/internal/log"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli cmd.CLI
	ctx := kong.Parse(&cli,
		kong.Name("mixremap"),
		kong.Description("Remap the mixins, refmap and access widener of a mod archive to intermediary names"),
		kong.UsageOnError(),
		// Every abort exits with status 0 after printing the message.
		kong.Exit(func(int) { os.Exit(0) }),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(0)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var entryOut io.Writer
	if cli.Log.EntryFile != "" {
		f, err := os.OpenFile(cli.Log.EntryFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("Failed to open entry log file", "file", cli.Log.EntryFile, "error", err)
		} else {
			entryOut = f
			closeFiles = append(closeFiles, f)
		}
	} else if log.ParseLevel(cli.Log.Level) <= log.LevelTrace {
		entryOut = os.Stdout
	}

	ctx.Bind(logger)
	ctx.BindTo(log.NewEntryLogger(entryOut), (*log.EntryLogger)(nil))

	err = ctx.Run()
	if err != nil {
		_ = ctx.PrintUsage(true)
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("MIXREMAP_CONFIG")
}
