package modjar

import (
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zip"
)

// Writer streams entries into the output archive.
type Writer struct {
	f  *os.File
	zw *zip.Writer

	names map[string]struct{}
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output archive: %w", err)
	}
	return &Writer{f: f, zw: zip.NewWriter(f), names: make(map[string]struct{})}, nil
}

// Copy transfers f without recompressing it.
func (w *Writer) Copy(f *zip.File) error {
	if w.seen(f.Name) {
		return nil
	}
	if err := w.zw.Copy(f); err != nil {
		return fmt.Errorf("copy %s: %w", f.Name, err)
	}
	return nil
}

// Write adds a deflated entry. A second entry with the same name is dropped.
func (w *Writer) Write(name string, data []byte) error {
	if w.seen(name) {
		return nil
	}
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate}
	out, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (w *Writer) seen(name string) bool {
	if _, ok := w.names[name]; ok {
		return true
	}
	w.names[name] = struct{}{}
	return false
}

// Close finishes the central directory and closes the file.
func (w *Writer) Close() error {
	return errors.Join(w.zw.Close(), w.f.Close())
}
