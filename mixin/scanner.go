package mixin

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Alia5/mixremap/classfile"
)

// Outcome tells the caller what to do with a scanned class.
type Outcome int

const (
	// PassThrough classes are copied to the output unchanged.
	PassThrough Outcome = iota
	// Queued classes are rewritten after the scan.
	Queued
	// Deferred classes are closure candidates settled by Resolve.
	Deferred
)

func (o Outcome) String() string {
	switch o {
	case Queued:
		return "queued"
	case Deferred:
		return "deferred"
	}
	return "pass-through"
}

// Job is a class entry scheduled for member reference rewriting.
type Job struct {
	Entry string
	Mixin *Descriptor
}

type closure struct {
	entry string
	class string
}

// Scanner walks the classes of one mixin package. It is not safe for
// concurrent use.
type Scanner struct {
	pkg    string
	logger *slog.Logger

	mixins   []*Descriptor
	byClass  map[string]*Descriptor
	jobs     []Job
	closures []closure
	counts   Counts
}

// NewScanner returns a scanner for the slash-separated mixin package.
func NewScanner(pkg string, logger *slog.Logger) *Scanner {
	return &Scanner{
		pkg:     strings.TrimSuffix(strings.ReplaceAll(pkg, ".", "/"), "/"),
		logger:  logger,
		byClass: make(map[string]*Descriptor),
	}
}

// Package returns the normalised mixin package.
func (s *Scanner) Package() string { return s.pkg }

// Accepts reports whether an archive entry is a class of the mixin package.
func (s *Scanner) Accepts(entry string) bool {
	return strings.HasPrefix(entry, s.pkg+"/") && strings.HasSuffix(entry, ".class")
}

// Mixins returns the accepted mixins in scan order.
func (s *Scanner) Mixins() []*Descriptor { return s.mixins }

// Counts returns the marker tallies collected so far.
func (s *Scanner) Counts() Counts { return s.counts }

// Scan extracts the markers of one class. The returned error is fatal and
// only reports malformed handler signatures.
func (s *Scanner) Scan(entry string, c *classfile.Class) (Outcome, error) {
	ann := c.Annotation(MixinDesc)
	if ann == nil {
		if c.SuperName == LambdaBase {
			s.closures = append(s.closures, closure{entry: entry, class: c.Name})
			s.counts.Closures++
			return Deferred, nil
		}
		return PassThrough, nil
	}

	ts := targets(ann)
	if len(ts) == 0 {
		s.logger.Warn("Skipping mixin without targets", "class", c.Name)
		s.counts.Rejected++
		return PassThrough, nil
	}
	d := &Descriptor{Class: c.Name, Targets: ts}
	s.mixins = append(s.mixins, d)
	s.byClass[c.Name] = d
	s.counts.Mixins++

	flagged := false
	for _, f := range c.Fields {
		if needsRewrite(&f.Member) {
			flagged = true
		}
	}
	for _, m := range c.Methods {
		if needsRewrite(&m.Member) {
			flagged = true
		}
		for _, k := range []GenKind{Accessor, Invoker} {
			if a := m.Annotation(k.Desc()); a != nil {
				s.gen(d, m, a, k)
			}
		}
		for k := Inject; k <= WrapWithCondition; k++ {
			if a := m.Annotation(k.Desc()); a != nil {
				if err := s.injection(d, m, a, k); err != nil {
					return PassThrough, fmt.Errorf("%s.%s: %w", c.Name, m.Name, err)
				}
			}
		}
	}

	if !flagged {
		return PassThrough, nil
	}
	s.jobs = append(s.jobs, Job{Entry: entry, Mixin: d})
	return Queued, nil
}

// needsRewrite flags members that alias a target member: shadows and members
// without any mixin marker.
func needsRewrite(m *classfile.Member) bool {
	if m.Annotation(ShadowDesc) != nil {
		return true
	}
	for _, a := range m.Annotations {
		if IsMarker(a.Type) {
			return false
		}
	}
	return true
}

func remapEnabled(a *classfile.Annotation) bool {
	if v, ok := a.Get("remap"); ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return true
}

func (s *Scanner) gen(d *Descriptor, m *classfile.Method, a *classfile.Annotation, kind GenKind) {
	if !remapEnabled(a) {
		return
	}
	v, _ := a.Get("value")
	name, ok := v.AsString()
	if !ok || name == "" {
		s.logger.Warn("Marker without value skipped", "marker", kind, "class", d.Class, "method", m.Name)
		s.counts.MalformedMarkers++
		return
	}
	d.Pending = append(d.Pending, GenEntry{Name: name, Kind: kind})
	s.counts.addGen(kind)
}

func (s *Scanner) injection(d *Descriptor, m *classfile.Method, a *classfile.Annotation, kind InjectorKind) error {
	if !remapEnabled(a) {
		return nil
	}
	mv, _ := a.Get("method")
	methods, ok := mv.AsStrings()
	if !ok || len(methods) == 0 {
		s.logger.Warn("Injector without method skipped", "marker", kind, "class", d.Class, "method", m.Name)
		s.counts.MalformedMarkers++
		return nil
	}
	av, _ := a.Get("at")
	ats, ok := av.AsAnnotations()
	if !ok || len(ats) == 0 {
		s.logger.Warn("Injector without at skipped", "marker", kind, "class", d.Class, "method", m.Name)
		s.counts.MalformedMarkers++
		return nil
	}
	if kind.SingleAt() && len(ats) > 1 {
		s.logger.Warn("Injector takes a single at, extra points ignored", "marker", kind, "class", d.Class, "method", m.Name)
		ats = ats[:1]
	}

	desc, exact, err := targetDescriptor(m, kind)
	if err != nil {
		return err
	}
	if !exact {
		s.logger.Warn("CallbackInfoReturnable without type argument, assuming Object",
			"class", d.Class, "method", m.Name)
	}

	points := make([]At, 0, len(ats))
	for _, at := range ats {
		v, _ := at.Get("value")
		value, _ := v.AsString()
		ak, ok := ParseAtKind(value)
		if !ok {
			s.logger.Warn("@At value not supported", "value", value, "class", d.Class, "method", m.Name)
			s.counts.UnsupportedAts++
			continue
		}
		tv, _ := at.Get("target")
		target, _ := tv.AsString()
		points = append(points, At{Kind: ak, Target: target})
	}

	d.Pending = append(d.Pending, InjectionEntry{
		Methods:    methods,
		Ats:        points,
		Descriptor: desc,
		Kind:       kind,
	})
	s.counts.addInjector(kind)
	return nil
}

// Resolve attaches closure candidates to the mixin whose class encloses them
// and returns every rewrite job: queued mixins in scan order, then matched
// closures. Closures without a mixin are returned for pass-through.
func (s *Scanner) Resolve() (jobs []Job, unmatched []string) {
	jobs = append(jobs, s.jobs...)
	for _, cl := range s.closures {
		if d := s.enclosing(cl.class); d != nil {
			jobs = append(jobs, Job{Entry: cl.entry, Mixin: d})
			continue
		}
		s.logger.Warn("Skipping closure without mixin", "class", cl.class)
		s.counts.UnmatchedClosures++
		unmatched = append(unmatched, cl.entry)
	}
	return jobs, unmatched
}

// enclosing finds the mixin for a nested class name, trying the longest
// $-separated prefix first.
func (s *Scanner) enclosing(class string) *Descriptor {
	for name := class; ; {
		i := strings.LastIndexByte(name, '$')
		if i < 0 {
			return nil
		}
		name = name[:i]
		if d, ok := s.byClass[name]; ok {
			return d
		}
	}
}
