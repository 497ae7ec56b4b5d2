package mappings

import (
	"fmt"
	"strings"

	"github.com/Alia5/mixremap/classfile"
)

// MapDescriptor maps the class type inside a field or array descriptor.
// Primitive descriptors and unknown classes pass through unchanged.
func (idx *Index) MapDescriptor(desc string) string {
	dims := strings.LastIndexByte(desc, '[') + 1
	elem := desc[dims:]
	if len(elem) < 3 || elem[0] != 'L' || elem[len(elem)-1] != ';' {
		return desc
	}
	e := idx.FindClass(elem)
	if e == nil {
		return desc
	}
	return desc[:dims] + Wrap(e.Intermediary)
}

// MapMethodDescriptor maps every parameter and the return type of a method
// descriptor. Generic signatures are accepted and erased.
func (idx *Index) MapMethodDescriptor(desc string) (string, error) {
	sig, err := classfile.ParseMethodSignature(desc)
	if err != nil {
		return "", fmt.Errorf("mappings: found incorrect signature %s: %w", desc, err)
	}
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range sig.Params {
		b.WriteString(idx.MapDescriptor(p.Descriptor()))
	}
	b.WriteByte(')')
	b.WriteString(idx.MapDescriptor(sig.Return.Descriptor()))
	return b.String(), nil
}
