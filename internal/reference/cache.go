package reference

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

const cacheVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("reference: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type cacheFile struct {
	Version int                 `cbor:"1,keyasint"`
	Prefix  string              `cbor:"2,keyasint"`
	Edges   map[string][]string `cbor:"3,keyasint"`
}

// Cache stores hierarchy edge maps as canonical CBOR files.
type Cache struct {
	Dir string
}

// Key derives the cache key from the reference archive, the mapping table
// and the runtime prefix.
func Key(referencePath, mappingsPath, prefix string) (string, error) {
	h := sha256.New()
	for _, p := range []string{referencePath, mappingsPath} {
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", p, err)
		}
	}
	h.Write([]byte(prefix))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, "hierarchy-"+key+".cbor")
}

// Load returns the cached edges for key. A missing entry is not an error.
func (c *Cache) Load(key string) (map[string][]string, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cf cacheFile
	if err := cbor.Unmarshal(data, &cf); err != nil {
		return nil, false, fmt.Errorf("reference: unmarshal cache: %w", err)
	}
	if cf.Version != cacheVersion {
		return nil, false, nil
	}
	if cf.Edges == nil {
		cf.Edges = map[string][]string{}
	}
	return cf.Edges, true, nil
}

// Store writes edges under key, replacing any previous entry atomically.
func (c *Cache) Store(key, prefix string, edges map[string][]string) error {
	data, err := cborEncMode.Marshal(&cacheFile{Version: cacheVersion, Prefix: prefix, Edges: edges})
	if err != nil {
		return fmt.Errorf("reference: marshal cache: %w", err)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.Dir, "hierarchy-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}
