package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/Alia5/mixremap/internal/configpaths"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file holding the remap flags and
// their defaults.
type ConfigInit struct {
	Format string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output string `help:"Destination file path (defaults to mixremap.<format> in the current directory)" type:"path"`
	Global bool   `help:"Write into the user configuration directory instead"`
	Force  bool   `help:"Overwrite if the file already exists"`
}

// Run generates the template via reflection over the command structs and tags.
func (c *ConfigInit) Run() error {
	data, err := Template(c.Format)
	if err != nil {
		return err
	}

	dest := c.Output
	switch {
	case dest != "":
	case c.Global:
		if dest, err = configpaths.DefaultNamedConfigPath("mixremap", c.Format); err != nil {
			return err
		}
	default:
		dest = "mixremap." + configpaths.Ext(c.Format)
	}

	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

// Template renders the remap flags and the log flags in format.
func Template(format string) ([]byte, error) {
	root := buildMapFromStruct(reflect.TypeOf(Remap{}))
	root["log"] = buildMapFromStruct(reflect.TypeOf(LogConfig{}))

	switch strings.ToLower(format) {
	case "json", "":
		return json.MarshalIndent(root, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// buildMapFromStruct collects flag fields with their defaults. Positional
// arguments cannot come from a config file and are left out.
func buildMapFromStruct(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("arg"); ok {
			continue
		}
		if _, ok := f.Tag.Lookup("cmd"); ok {
			continue
		}
		if val := defaultValue(f.Type, f.Tag.Get("default")); val != nil {
			out[lowerCamel(f.Name)] = val
		}
	}
	return out
}

func defaultValue(t reflect.Type, def string) any {
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Struct:
		return buildMapFromStruct(t)
	default:
		return nil
	}
}
