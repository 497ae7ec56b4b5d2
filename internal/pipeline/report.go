package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/mixremap/internal/configpaths"
)

// MarshalReport encodes r as json, yaml or toml.
func MarshalReport(r *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return json.MarshalIndent(r, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(r)
	case "toml":
		return toml.Marshal(*r)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteReport writes r to path, picking the format from the extension.
// Unknown extensions get json.
func WriteReport(path string, r *Report) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	switch strings.ToLower(format) {
	case "yaml", "yml", "toml":
	default:
		format = "json"
	}
	data, err := MarshalReport(r, format)
	if err != nil {
		return err
	}
	if err := configpaths.EnsureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
