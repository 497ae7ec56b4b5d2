package refmap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/mixremap/mappings"
	"github.com/Alia5/mixremap/mixin"
)

// Stats counts what Synthesize produced.
type Stats struct {
	Entries    int `json:"entries" yaml:"entries" toml:"entries"`
	Classes    int `json:"classes" yaml:"classes" toml:"classes"`
	Accessors  int `json:"accessors" yaml:"accessors" toml:"accessors"`
	Invokers   int `json:"invokers" yaml:"invokers" toml:"invokers"`
	Methods    int `json:"methods" yaml:"methods" toml:"methods"`
	Invokes    int `json:"invokes" yaml:"invokes" toml:"invokes"`
	Fields     int `json:"fields" yaml:"fields" toml:"fields"`
	Fallbacks  int `json:"fallbacks" yaml:"fallbacks" toml:"fallbacks"`
	Unresolved int `json:"unresolved" yaml:"unresolved" toml:"unresolved"`
}

type synth struct {
	res    *mappings.Resolver
	out    *Refmap
	stats  Stats
	logger *slog.Logger
}

// Synthesize resolves the pending markers of every mixin. Mixins whose first
// target lies outside prefix also get a class entry. Only malformed method
// literals are reported as errors; lookup misses are logged and skipped.
func Synthesize(mixins []*mixin.Descriptor, res *mappings.Resolver, prefix string, logger *slog.Logger) (*Refmap, Stats, error) {
	s := &synth{res: res, out: New(), logger: logger}
	for _, d := range mixins {
		if err := s.mixin(d, prefix); err != nil {
			return nil, s.stats, fmt.Errorf("refmap: %s: %w", d.Class, err)
		}
	}
	s.stats.Entries = s.out.Len()
	return s.out, s.stats, nil
}

func (s *synth) put(d *mixin.Descriptor, key, value string, counter *int) {
	if s.out.Put(d.Class, key, value) {
		*counter++
	}
}

func (s *synth) mixin(d *mixin.Descriptor, prefix string) error {
	s.out.Mixin(d.Class)
	target := d.Target()
	idx := s.res.Index

	if !strings.HasPrefix(target, prefix) {
		if e := idx.FindClass(target); e != nil {
			s.put(d, mappings.Wrap(e.Named), mappings.Wrap(e.Intermediary), &s.stats.Classes)
		}
	}

	for _, p := range d.Pending {
		switch p := p.(type) {
		case mixin.GenEntry:
			if err := s.gen(d, p); err != nil {
				return err
			}
		case mixin.InjectionEntry:
			if err := s.injection(d, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *synth) gen(d *mixin.Descriptor, p mixin.GenEntry) error {
	target := d.Target()
	switch p.Kind {
	case mixin.Accessor:
		e := s.res.Index.FindField(p.Name, target)
		if e == nil {
			s.unresolved("Accessor target not found", d, p.Name)
			return nil
		}
		s.put(d, p.Name, e.Intermediary+":"+e.Descriptor, &s.stats.Accessors)
	case mixin.Invoker:
		e, err := s.res.Method(p.Name, target)
		if err != nil {
			return err
		}
		if e == nil {
			s.unresolved("Invoker target not found", d, p.Name)
			return nil
		}
		s.put(d, p.Name, e.Intermediary+e.Descriptor, &s.stats.Invokers)
	}
	return nil
}

func (s *synth) injection(d *mixin.Descriptor, p mixin.InjectionEntry) error {
	target := d.Target()
	for _, method := range p.Methods {
		lookup := method
		if p.Kind.GeneratesDescriptor() && !strings.Contains(method, "(") {
			lookup += p.Descriptor
		}
		e, err := s.res.Method(lookup, target)
		if err != nil {
			return err
		}
		if e == nil {
			s.unresolved("Couldn't find entry for injector target", d, lookup)
			continue
		}
		for _, at := range p.Ats {
			switch at.Kind {
			case mixin.AtInvoke:
				if err := s.invoke(d, at.Target); err != nil {
					return err
				}
			case mixin.AtField:
				s.field(d, at.Target)
			}
		}
		s.put(d, method, mappings.Wrap(target)+e.Intermediary+e.Descriptor, &s.stats.Methods)
	}
	return nil
}

// splitTarget splits Lowner;name<sep>rest. For INVOKE targets sep is '(' and
// stays part of rest. FIELD targets may omit the ":type" part.
func splitTarget(target string, sep byte) (owner, name, rest string, ok bool) {
	i := strings.IndexByte(target, ';')
	if i < 0 || target[0] != 'L' {
		return "", "", "", false
	}
	owner, tail := target[:i+1], target[i+1:]
	j := strings.IndexByte(tail, sep)
	if j < 0 && sep == ':' && tail != "" {
		return owner, tail, "", true
	}
	if j <= 0 {
		return "", "", "", false
	}
	if sep == '(' {
		return owner, tail[:j], tail[j:], true
	}
	return owner, tail[:j], tail[j+1:], true
}

func (s *synth) invoke(d *mixin.Descriptor, target string) error {
	owner, name, desc, ok := splitTarget(target, '(')
	if !ok {
		s.unresolved("Unparseable @At INVOKE target", d, target)
		return nil
	}
	cls := s.res.Index.FindClass(owner)
	if cls == nil {
		s.logger.Debug("@At owner not mapped", "mixin", d.Class, "target", target)
		return nil
	}
	intOwner := mappings.Wrap(cls.Intermediary)
	e, err := s.res.Method(name+desc, cls.Intermediary)
	if err != nil {
		return err
	}
	if e != nil {
		s.put(d, target, intOwner+e.Intermediary+e.Descriptor, &s.stats.Invokes)
		return nil
	}
	s.logger.Warn("Method entry for @At target not found", "mixin", d.Class, "target", target)
	mapped, err := s.res.Index.MapMethodDescriptor(desc)
	if err != nil {
		return err
	}
	s.put(d, target, intOwner+name+mapped, &s.stats.Fallbacks)
	return nil
}

func (s *synth) field(d *mixin.Descriptor, target string) {
	owner, name, _, ok := splitTarget(target, ':')
	if !ok {
		s.unresolved("Unparseable @At FIELD target", d, target)
		return
	}
	cls := s.res.Index.FindClass(owner)
	if cls == nil {
		s.logger.Debug("@At owner not mapped", "mixin", d.Class, "target", target)
		return
	}
	e := s.res.Index.FindField(name, cls.Intermediary)
	if e == nil {
		s.unresolved("Field entry for @At target not found", d, target)
		return
	}
	s.put(d, target, mappings.Wrap(cls.Intermediary)+e.Intermediary+":"+e.Descriptor, &s.stats.Fields)
}

func (s *synth) unresolved(msg string, d *mixin.Descriptor, name string) {
	s.logger.Warn(msg, "mixin", d.Class, "name", name)
	s.stats.Unresolved++
}
