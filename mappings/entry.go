// Package mappings indexes a tiny v1 mapping table and resolves named
// symbols to their intermediary counterparts, optionally walking a class
// hierarchy for inherited members.
package mappings

import "strings"

// Kind is the row kind of a mapping entry.
type Kind int

const (
	KindClass Kind = iota
	KindField
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "CLASS"
	case KindField:
		return "FIELD"
	case KindMethod:
		return "METHOD"
	}
	return "UNKNOWN"
}

// Entry is one mapping row. Class names are stored as bare internal names.
type Entry struct {
	Kind         Kind
	Owner        string // intermediary owner; empty for classes
	Intermediary string
	Named        string
	Descriptor   string // empty for classes
}

// Row renders the entry back into its tab-separated table form.
func (e *Entry) Row() string {
	if e.Kind == KindClass {
		return strings.Join([]string{e.Kind.String(), e.Intermediary, e.Named}, "\t")
	}
	return strings.Join([]string{e.Kind.String(), e.Owner, e.Descriptor, e.Intermediary, e.Named}, "\t")
}

// Unwrap strips an L...; wrapper from a class name.
func Unwrap(name string) string {
	if len(name) >= 2 && name[0] == 'L' && name[len(name)-1] == ';' {
		return name[1 : len(name)-1]
	}
	return name
}

// Wrap returns the L...; form of an internal class name.
func Wrap(name string) string {
	return "L" + name + ";"
}
