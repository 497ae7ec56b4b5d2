package modjar_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mixremap/internal/modjar"
	th "github.com/Alia5/mixremap/internal/testing"
)

func open(t *testing.T, entries ...th.Entry) *modjar.Archive {
	t.Helper()
	path := th.WriteJar(t, t.TempDir(), "mod.jar", entries...)
	a, err := modjar.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestFabricDiscovery(t *testing.T) {
	tests := []struct {
		name   string
		mod    string
		widen  string
		refmap string
	}{
		{
			name:   "string entry",
			mod:    `{"id":"x","mixins":["x.mixins.json"],"accessWidener":"x.accesswidener"}`,
			widen:  "x.accesswidener",
			refmap: "x-refmap.json",
		},
		{
			name:   "object entry",
			mod:    `{"id":"x","mixins":[{"config":"x.mixins.json","environment":"client"}]}`,
			widen:  "other.accesswidener",
			refmap: "x-refmap.json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := open(t,
				th.Entry{Name: "fabric.mod.json", Data: []byte(tt.mod)},
				th.Entry{Name: "x.mixins.json", Data: []byte(`{"package":"com.example.mixin","refmap":"x-refmap.json"}`)},
				th.Entry{Name: "other.accesswidener", Data: []byte("accessWidener v1 named\n")},
				th.Entry{Name: "x.accesswidener", Data: []byte("accessWidener v1 named\n")},
			)
			l := a.DetectLoader()
			assert.Equal(t, modjar.LoaderFabric, l)
			assert.Equal(t, "named:intermediary", l.RefmapLabel())

			cfg, err := a.MixinConfig(l)
			require.NoError(t, err)
			assert.Equal(t, &modjar.MixinConfig{Name: "x.mixins.json", Package: "com/example/mixin", Refmap: tt.refmap}, cfg)

			aw, ok := a.AccessWidener(l)
			assert.True(t, ok)
			assert.Equal(t, tt.widen, aw)
		})
	}
}

func TestForgeDiscovery(t *testing.T) {
	manifest := "Manifest-Version: 1.0\r\n" +
		"MixinConfigs: first.mixins.json,\r\n" +
		" second.mixins.json\r\n" +
		"\r\n" +
		"Name: ignored\r\n"
	a := open(t,
		th.Entry{Name: "META-INF/MANIFEST.MF", Data: []byte(manifest)},
		th.Entry{Name: "first.mixins.json", Data: []byte(`{"package":"com.example.mixin"}`)},
		th.Entry{Name: "x.accesswidener", Data: []byte("accessWidener v1 named\n")},
	)
	l := a.DetectLoader()
	assert.Equal(t, modjar.LoaderForge, l)
	assert.Equal(t, "searge", l.RefmapLabel())

	cfg, err := a.MixinConfig(l)
	require.NoError(t, err)
	assert.Equal(t, "com/example/mixin", cfg.Package)
	assert.Equal(t, "first-refmap.json", cfg.Refmap)

	_, ok := a.AccessWidener(l)
	assert.False(t, ok)
}

func TestMixinConfigErrors(t *testing.T) {
	t.Run("no manifest", func(t *testing.T) {
		a := open(t, th.Entry{Name: "a.txt", Data: []byte("x")})
		_, err := a.MixinConfig(modjar.LoaderForge)
		assert.ErrorIs(t, err, modjar.ErrNoMixinConfig)
	})
	t.Run("no mixins", func(t *testing.T) {
		a := open(t, th.Entry{Name: "fabric.mod.json", Data: []byte(`{"id":"x"}`)})
		_, err := a.MixinConfig(modjar.LoaderFabric)
		assert.ErrorIs(t, err, modjar.ErrNoMixinConfig)
	})
	t.Run("missing config entry", func(t *testing.T) {
		a := open(t, th.Entry{Name: "fabric.mod.json", Data: []byte(`{"mixins":["gone.json"]}`)})
		_, err := a.MixinConfig(modjar.LoaderFabric)
		assert.ErrorIs(t, err, modjar.ErrNoMixinConfig)
	})
	t.Run("empty package", func(t *testing.T) {
		a := open(t,
			th.Entry{Name: "fabric.mod.json", Data: []byte(`{"mixins":["x.json"]}`)},
			th.Entry{Name: "x.json", Data: []byte(`{"refmap":"r.json"}`)},
		)
		_, err := a.MixinConfig(modjar.LoaderFabric)
		assert.ErrorIs(t, err, modjar.ErrNoMixinPackage)
	})
}

func TestParseLoader(t *testing.T) {
	for in, want := range map[string]modjar.Loader{"": modjar.LoaderAuto, "auto": modjar.LoaderAuto, "Fabric": modjar.LoaderFabric, "forge": modjar.LoaderForge} {
		got, err := modjar.ParseLoader(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := modjar.ParseLoader("quilt")
	assert.Error(t, err)
}

func TestWriterCopiesAndDedupes(t *testing.T) {
	src := open(t,
		th.Entry{Name: "a.txt", Data: []byte("alpha")},
		th.Entry{Name: "b.bin", Data: []byte{1, 2, 3}},
	)
	out := filepath.Join(t.TempDir(), "out.jar")
	w, err := modjar.Create(out)
	require.NoError(t, err)
	for _, f := range src.Files() {
		require.NoError(t, w.Copy(f))
	}
	require.NoError(t, w.Write("a.txt", []byte("replaced")))
	require.NoError(t, w.Write("new.json", []byte("{}")))
	require.NoError(t, w.Close())

	files, names := th.ReadJar(t, out)
	assert.Equal(t, []string{"a.txt", "b.bin", "new.json"}, names)
	assert.Equal(t, "alpha", string(files["a.txt"]))
	assert.Equal(t, []byte{1, 2, 3}, files["b.bin"])
	assert.Equal(t, "{}", string(files["new.json"]))
}
