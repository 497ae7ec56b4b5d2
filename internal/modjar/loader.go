package modjar

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/Alia5/mixremap/refmap"
)

const (
	FabricModJSON = "fabric.mod.json"
	ManifestPath  = "META-INF/MANIFEST.MF"
)

// Loader is the mod loader an archive is built for.
type Loader int

const (
	LoaderAuto Loader = iota
	LoaderFabric
	LoaderForge
)

func (l Loader) String() string {
	switch l {
	case LoaderFabric:
		return "fabric"
	case LoaderForge:
		return "forge"
	default:
		return "auto"
	}
}

// ParseLoader accepts auto, fabric or forge.
func ParseLoader(s string) (Loader, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return LoaderAuto, nil
	case "fabric":
		return LoaderFabric, nil
	case "forge":
		return LoaderForge, nil
	}
	return LoaderAuto, fmt.Errorf("unknown loader %q", s)
}

// RefmapLabel names the data section of the refmap for this loader.
func (l Loader) RefmapLabel() string {
	if l == LoaderForge {
		return refmap.LabelForge
	}
	return refmap.LabelFabric
}

// DetectLoader reports Fabric when the archive carries fabric.mod.json and
// Forge otherwise.
func (a *Archive) DetectLoader() Loader {
	if a.Lookup(FabricModJSON) != nil {
		return LoaderFabric
	}
	return LoaderForge
}

type fabricMod struct {
	Mixins        []json.RawMessage `json:"mixins"`
	AccessWidener string            `json:"accessWidener"`
}

func (a *Archive) fabricMod() (*fabricMod, error) {
	data, err := a.ReadFile(FabricModJSON)
	if err != nil {
		return nil, err
	}
	var m fabricMod
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FabricModJSON, err)
	}
	return &m, nil
}

// MixinConfig describes the mixin configuration file of an archive.
type MixinConfig struct {
	Name    string `json:"-"`
	Package string `json:"package"`
	Refmap  string `json:"refmap"`
}

// MixinConfigName returns the entry name of the first declared mixin config.
func (a *Archive) MixinConfigName(l Loader) (string, error) {
	var name string
	switch l {
	case LoaderFabric:
		m, err := a.fabricMod()
		if err != nil {
			return "", err
		}
		if len(m.Mixins) == 0 {
			return "", ErrNoMixinConfig
		}
		name, err = fabricMixinName(m.Mixins[0])
		if err != nil {
			return "", err
		}
	default:
		data, err := a.ReadFile(ManifestPath)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoMixinConfig, err)
		}
		first, _, _ := strings.Cut(parseManifest(data)["MixinConfigs"], ",")
		name = strings.TrimSpace(first)
	}
	if name == "" || a.Lookup(name) == nil {
		return "", fmt.Errorf("%w: %q", ErrNoMixinConfig, name)
	}
	return name, nil
}

// fabricMixinName accepts both "x.mixins.json" and {"config": "x.mixins.json"}.
func fabricMixinName(raw json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}
	var obj struct {
		Config string `json:"config"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", fmt.Errorf("parse mixins entry of %s: %w", FabricModJSON, err)
	}
	return obj.Config, nil
}

// MixinConfig locates and parses the mixin config. The package is returned
// in slash form. A config without refmap gets <config stem>-refmap.json.
func (a *Archive) MixinConfig(l Loader) (*MixinConfig, error) {
	name, err := a.MixinConfigName(l)
	if err != nil {
		return nil, err
	}
	data, err := a.ReadFile(name)
	if err != nil {
		return nil, err
	}
	cfg := &MixinConfig{Name: name}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse mixin config %s: %w", name, err)
	}
	cfg.Package = strings.ReplaceAll(cfg.Package, ".", "/")
	if cfg.Package == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNoMixinPackage)
	}
	if cfg.Refmap == "" {
		stem := strings.TrimSuffix(path.Base(name), ".json")
		stem = strings.TrimSuffix(stem, ".mixins")
		cfg.Refmap = stem + "-refmap.json"
	}
	return cfg, nil
}

// AccessWidener returns the access widener entry name of a Fabric archive:
// the one named in fabric.mod.json, else the first .accesswidener entry.
func (a *Archive) AccessWidener(l Loader) (string, bool) {
	if l != LoaderFabric {
		return "", false
	}
	if m, err := a.fabricMod(); err == nil && m.AccessWidener != "" && a.Lookup(m.AccessWidener) != nil {
		return m.AccessWidener, true
	}
	if f := a.FindSuffix(".accesswidener"); f != nil {
		return f.Name, true
	}
	return "", false
}

// parseManifest returns the main section attributes of a jar manifest.
// Continuation lines start with a single space.
func parseManifest(data []byte) map[string]string {
	attrs := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	last := ""
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, " ") {
			if last != "" {
				attrs[last] += line[1:]
			}
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		last = strings.TrimSpace(k)
		attrs[last] = strings.TrimSpace(v)
	}
	return attrs
}
