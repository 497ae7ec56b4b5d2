// Package refmap builds the reference map a mixin runtime uses to resolve
// named annotation targets against intermediary names.
package refmap

// Loader labels of the aliased data section.
const (
	LabelFabric = "named:intermediary"
	LabelForge  = "searge"
)

// Entry is one key/value pair of a mixin's section.
type Entry struct {
	Key   string
	Value string
}

type section struct {
	keys   []string
	values map[string]string
}

// Refmap keeps mixins and their keys in insertion order. The first value
// written for a key wins.
type Refmap struct {
	order    []string
	sections map[string]*section
}

func New() *Refmap {
	return &Refmap{sections: make(map[string]*section)}
}

// Mixin registers a mixin so it is written even without entries.
func (r *Refmap) Mixin(name string) {
	r.section(name)
}

func (r *Refmap) section(name string) *section {
	s, ok := r.sections[name]
	if !ok {
		s = &section{values: make(map[string]string)}
		r.sections[name] = s
		r.order = append(r.order, name)
	}
	return s
}

// Put records key for mixin and reports whether it was new. Duplicates are
// dropped.
func (r *Refmap) Put(mixin, key, value string) bool {
	s := r.section(mixin)
	if _, ok := s.values[key]; ok {
		return false
	}
	s.keys = append(s.keys, key)
	s.values[key] = value
	return true
}

// Get returns the value stored for key.
func (r *Refmap) Get(mixin, key string) (string, bool) {
	s, ok := r.sections[mixin]
	if !ok {
		return "", false
	}
	v, ok := s.values[key]
	return v, ok
}

// Mixins returns the mixin names in insertion order.
func (r *Refmap) Mixins() []string { return r.order }

// Entries returns the entries of one mixin in insertion order.
func (r *Refmap) Entries(mixin string) []Entry {
	s, ok := r.sections[mixin]
	if !ok {
		return nil
	}
	out := make([]Entry, len(s.keys))
	for i, k := range s.keys {
		out[i] = Entry{Key: k, Value: s.values[k]}
	}
	return out
}

// Len returns the total number of entries.
func (r *Refmap) Len() int {
	n := 0
	for _, s := range r.sections {
		n += len(s.keys)
	}
	return n
}
