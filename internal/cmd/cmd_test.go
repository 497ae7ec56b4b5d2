package cmd_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/mixremap/internal/cmd"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	return p
}

func parser(t *testing.T, cli *cmd.CLI) *kong.Kong {
	t.Helper()
	k, err := kong.New(cli, kong.Name("mixremap"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	return k
}

func TestParseRemapDefault(t *testing.T) {
	dir := t.TempDir()
	in, maps, ref := touch(t, dir, "mod.jar"), touch(t, dir, "mappings.tiny"), touch(t, dir, "ref.jar")
	t.Setenv("MIXREMAP_JOBS", "3")

	var cli cmd.CLI
	ctx, err := parser(t, &cli).Parse([]string{in, filepath.Join(dir, "out.jar"), maps, ref, "--loader", "forge", "--log.level", "debug"})
	require.NoError(t, err)
	assert.Contains(t, ctx.Command(), "remap")
	assert.Equal(t, in, cli.Remap.Input)
	assert.Equal(t, "forge", cli.Remap.Loader)
	assert.Equal(t, "net/minecraft/", cli.Remap.RuntimePrefix)
	assert.Equal(t, 3, cli.Remap.Jobs)
	assert.Equal(t, "debug", cli.Log.Level)
}

func TestParseRemapErrors(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, dir, "mod.jar")
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing arguments", args: []string{in}},
		{name: "missing input file", args: []string{filepath.Join(dir, "gone.jar"), "out.jar", in, in}},
		{name: "unknown loader", args: []string{in, "out.jar", in, in, "--loader", "quilt"}},
		{name: "extra argument", args: []string{in, "out.jar", in, in, "more"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli cmd.CLI
			_, err := parser(t, &cli).Parse(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestTemplate(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		data, err := cmd.Template("json")
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		assert.Equal(t, "net/minecraft/", m["runtimePrefix"])
		assert.Equal(t, "auto", m["loader"])
		assert.NotContains(t, m, "input")
		assert.Equal(t, "info", m["log"].(map[string]any)["level"])
	})
	t.Run("yaml", func(t *testing.T) {
		data, err := cmd.Template("yaml")
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, yaml.Unmarshal(data, &m))
		assert.Equal(t, "auto", m["loader"])
	})
	t.Run("toml", func(t *testing.T) {
		data, err := cmd.Template("toml")
		require.NoError(t, err)
		tree, err := toml.LoadBytes(data)
		require.NoError(t, err)
		assert.Equal(t, "info", tree.Get("log.level"))
	})
	_, err := cmd.Template("ini")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "conf", "mixremap.yaml")
	c := cmd.ConfigInit{Format: "yaml", Output: dest}
	require.NoError(t, c.Run())
	assert.FileExists(t, dest)
	assert.Error(t, c.Run(), "existing file needs --force")
	c.Force = true
	assert.NoError(t, c.Run())
}
