package mappings

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ErrUnsupportedVersion is returned for tables whose version row is not v1.
var ErrUnsupportedVersion = errors.New("mappings: only v1 mappings are supported")

type memberKey struct {
	owner string
	name  string
}

// Index is a read-only view over a parsed mapping table. Duplicate rows are
// resolved by the first one encountered.
type Index struct {
	entries []*Entry

	classes     map[string]*Entry
	fields      map[memberKey]*Entry
	fieldsDesc  map[memberKey]*Entry
	methods     map[memberKey]*Entry
	methodsDesc map[memberKey]*Entry
}

func newIndex() *Index {
	return &Index{
		classes:     make(map[string]*Entry),
		fields:      make(map[memberKey]*Entry),
		fieldsDesc:  make(map[memberKey]*Entry),
		methods:     make(map[memberKey]*Entry),
		methodsDesc: make(map[memberKey]*Entry),
	}
}

// Load parses the mapping table at path.
func Load(path string, logger *slog.Logger) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not load mappings: %w", err)
	}
	defer f.Close()
	return Parse(f, logger)
}

// Parse reads a tab-separated tiny v1 table. Blank lines and # comments are
// skipped; the first remaining row must be the version row.
func Parse(r io.Reader, logger *slog.Logger) (*Index, error) {
	idx := newIndex()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	versioned := false
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")

		if !versioned {
			if !strings.HasPrefix(cols[0], "v") {
				return nil, fmt.Errorf("%w: missing version row, got %q", ErrUnsupportedVersion, cols[0])
			}
			if cols[0] != "v1" {
				return nil, fmt.Errorf("%w: got %q", ErrUnsupportedVersion, cols[0])
			}
			versioned = true
			continue
		}

		switch cols[0] {
		case "CLASS":
			if len(cols) < 3 {
				logger.Warn("Short mapping row skipped", "line", lineNo)
				continue
			}
			idx.add(&Entry{Kind: KindClass, Intermediary: cols[1], Named: cols[2]})
		case "FIELD", "METHOD":
			if len(cols) < 5 {
				logger.Warn("Short mapping row skipped", "line", lineNo)
				continue
			}
			kind := KindField
			if cols[0] == "METHOD" {
				kind = KindMethod
			}
			desc := cols[2]
			if strings.HasSuffix(desc, ")") {
				desc += "V"
			}
			idx.add(&Entry{Kind: kind, Owner: cols[1], Descriptor: desc, Intermediary: cols[3], Named: cols[4]})
		default:
			logger.Warn("Mapping row kind not supported", "kind", cols[0], "line", lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mappings: read: %w", err)
	}
	if !versioned {
		return nil, fmt.Errorf("%w: empty mapping table", ErrUnsupportedVersion)
	}
	return idx, nil
}

func (idx *Index) add(e *Entry) {
	idx.entries = append(idx.entries, e)
	switch e.Kind {
	case KindClass:
		if _, ok := idx.classes[e.Named]; !ok {
			idx.classes[e.Named] = e
		}
	case KindField:
		k := memberKey{e.Owner, e.Named}
		if _, ok := idx.fields[k]; !ok {
			idx.fields[k] = e
		}
		k = memberKey{e.Owner, e.Named + ":" + e.Descriptor}
		if _, ok := idx.fieldsDesc[k]; !ok {
			idx.fieldsDesc[k] = e
		}
	case KindMethod:
		k := memberKey{e.Owner, e.Named}
		if _, ok := idx.methods[k]; !ok {
			idx.methods[k] = e
		}
		k = memberKey{e.Owner, e.Named + e.Descriptor}
		if _, ok := idx.methodsDesc[k]; !ok {
			idx.methodsDesc[k] = e
		}
	}
}

// Len returns the number of accepted rows.
func (idx *Index) Len() int { return len(idx.entries) }

// Entries returns the accepted rows in table order.
func (idx *Index) Entries() []*Entry { return idx.entries }

// Counts returns the number of class, field and method rows.
func (idx *Index) Counts() (classes, fields, methods int) {
	for _, e := range idx.entries {
		switch e.Kind {
		case KindClass:
			classes++
		case KindField:
			fields++
		case KindMethod:
			methods++
		}
	}
	return classes, fields, methods
}

// FindClass looks up a class by its named form, bare or L...; wrapped.
func (idx *Index) FindClass(named string) *Entry {
	return idx.classes[Unwrap(named)]
}

// FindField returns the first field named name declared on any of owners,
// scanning owners in order.
func (idx *Index) FindField(name string, owners ...string) *Entry {
	for _, owner := range owners {
		if e, ok := idx.fields[memberKey{Unwrap(owner), name}]; ok {
			return e
		}
	}
	return nil
}

// FindFieldDesc is FindField restricted to fields with the intermediary
// descriptor desc.
func (idx *Index) FindFieldDesc(name, desc string, owners ...string) *Entry {
	for _, owner := range owners {
		if e, ok := idx.fieldsDesc[memberKey{Unwrap(owner), name + ":" + desc}]; ok {
			return e
		}
	}
	return nil
}

// FindMethod returns the first method matching nameOrSig on any of owners.
// A literal of the form name(params)ret is matched on name plus the mapped
// descriptor; a bare name matches the first overload.
func (idx *Index) FindMethod(nameOrSig string, owners ...string) (*Entry, error) {
	table := idx.methods
	key := nameOrSig
	if name, tail, ok := strings.Cut(nameOrSig, "("); ok {
		desc, err := idx.MapMethodDescriptor("(" + tail)
		if err != nil {
			return nil, err
		}
		table = idx.methodsDesc
		key = name + desc
	}
	for _, owner := range owners {
		if e, ok := table[memberKey{Unwrap(owner), key}]; ok {
			return e, nil
		}
	}
	return nil, nil
}
