// Package modjar reads mod archives, discovers their loader metadata and
// writes the remapped archive.
package modjar

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/klauspost/compress/zip"
)

var (
	ErrNoMixinConfig  = errors.New("could not find mixin config")
	ErrNoMixinPackage = errors.New("mixin config does not declare a package")
)

// Archive is an open mod archive.
type Archive struct {
	Path string

	zr     *zip.ReadCloser
	byName map[string]*zip.File
}

func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	a := &Archive{Path: path, zr: zr, byName: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if _, ok := a.byName[f.Name]; !ok {
			a.byName[f.Name] = f
		}
	}
	return a, nil
}

func (a *Archive) Close() error { return a.zr.Close() }

// Files returns the entries in archive order.
func (a *Archive) Files() []*zip.File { return a.zr.File }

// Lookup returns the entry called name, or nil.
func (a *Archive) Lookup(name string) *zip.File { return a.byName[name] }

// ReadFile returns the content of the entry called name.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f := a.Lookup(name)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return Read(f)
}

// Read returns the uncompressed content of f.
func Read(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

// FindSuffix returns the first entry whose name ends in suffix.
func (a *Archive) FindSuffix(suffix string) *zip.File {
	for _, f := range a.zr.File {
		if strings.HasSuffix(f.Name, suffix) {
			return f
		}
	}
	return nil
}
