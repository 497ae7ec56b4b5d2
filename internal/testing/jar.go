package testing

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Entry is one archive member.
type Entry struct {
	Name string
	Data []byte
}

// Jar builds an in-memory archive with the entries in the given order.
func Jar(t *testing.T, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("create %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close jar: %v", err)
	}
	return buf.Bytes()
}

// WriteJar writes an archive into dir and returns its path.
func WriteJar(t *testing.T, dir, name string, entries ...Entry) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Jar(t, entries...), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadJar returns the entries of an archive file keyed by name, plus the
// names in archive order.
func ReadJar(t *testing.T, path string) (map[string][]byte, []string) {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer zr.Close()

	out := make(map[string][]byte, len(zr.File))
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		var b bytes.Buffer
		if _, err := b.ReadFrom(rc); err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		rc.Close()
		out[f.Name] = b.Bytes()
		names = append(names, f.Name)
	}
	return out, names
}

// SortedNames returns the keys of m in lexical order.
func SortedNames(m map[string][]byte) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Logger returns a debug-level text logger writing into the returned buffer.
func Logger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
