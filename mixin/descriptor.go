package mixin

import (
	"strings"

	"github.com/Alia5/mixremap/classfile"
)

// Pending is a marker awaiting refmap resolution. It is either a GenEntry or
// an InjectionEntry.
type Pending interface {
	pending()
}

// GenEntry is an @Accessor or @Invoker target.
type GenEntry struct {
	Name string
	Kind GenKind
}

// InjectionEntry is an injector marker with its target methods and points.
type InjectionEntry struct {
	Methods    []string
	Ats        []At
	Descriptor string
	Kind       InjectorKind
}

func (GenEntry) pending()       {}
func (InjectionEntry) pending() {}

// Descriptor is an accepted mixin class.
type Descriptor struct {
	Class   string
	Targets []string // bare internal names, value classes first
	Pending []Pending
}

// Target returns the first target class.
func (d *Descriptor) Target() string { return d.Targets[0] }

// targets merges the typed value classes and the string targets of @Mixin.
func targets(a *classfile.Annotation) []string {
	var out []string
	if v, ok := a.Get("value"); ok {
		if classes, ok := v.AsClasses(); ok {
			for _, c := range classes {
				out = append(out, normalizeClass(c))
			}
		}
	}
	if v, ok := a.Get("targets"); ok {
		if names, ok := v.AsStrings(); ok {
			for _, n := range names {
				out = append(out, normalizeClass(n))
			}
		}
	}
	return out
}

func normalizeClass(name string) string {
	if len(name) >= 2 && name[0] == 'L' && name[len(name)-1] == ';' {
		name = name[1 : len(name)-1]
	}
	return strings.ReplaceAll(name, ".", "/")
}

// Counts tallies the markers that produced a pending entry.
type Counts struct {
	Accessors         int `json:"accessors" yaml:"accessors" toml:"accessors"`
	Invokers          int `json:"invokers" yaml:"invokers" toml:"invokers"`
	Injects           int `json:"injects" yaml:"injects" toml:"injects"`
	Redirects         int `json:"redirects" yaml:"redirects" toml:"redirects"`
	ModifyArg         int `json:"modifyArg" yaml:"modifyArg" toml:"modifyArg"`
	ModifyArgs        int `json:"modifyArgs" yaml:"modifyArgs" toml:"modifyArgs"`
	ModifyVariable    int `json:"modifyVariable" yaml:"modifyVariable" toml:"modifyVariable"`
	WrapWithCondition int `json:"wrapWithCondition" yaml:"wrapWithCondition" toml:"wrapWithCondition"`
	Mixins            int `json:"mixins" yaml:"mixins" toml:"mixins"`
	Closures          int `json:"closures" yaml:"closures" toml:"closures"`
	Rejected          int `json:"rejected" yaml:"rejected" toml:"rejected"`
	UnmatchedClosures int `json:"unmatchedClosures" yaml:"unmatchedClosures" toml:"unmatchedClosures"`
	UnsupportedAts    int `json:"unsupportedAts" yaml:"unsupportedAts" toml:"unsupportedAts"`
	MalformedMarkers  int `json:"malformedMarkers" yaml:"malformedMarkers" toml:"malformedMarkers"`
}

func (c *Counts) addGen(k GenKind) {
	switch k {
	case Accessor:
		c.Accessors++
	case Invoker:
		c.Invokers++
	}
}

func (c *Counts) addInjector(k InjectorKind) {
	switch k {
	case Inject:
		c.Injects++
	case Redirect:
		c.Redirects++
	case ModifyArg:
		c.ModifyArg++
	case ModifyArgs:
		c.ModifyArgs++
	case ModifyVariable:
		c.ModifyVariable++
	case WrapWithCondition:
		c.WrapWithCondition++
	}
}
