package testing

import (
	"testing"

	"github.com/Alia5/mixremap/classfile"
)

// Class returns a minimal Java 8 class with the given supertypes.
func Class(name, super string, interfaces ...string) *classfile.Class {
	return &classfile.Class{
		MajorVersion: 52,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		Name:         name,
		SuperName:    super,
		Interfaces:   interfaces,
	}
}

// Ann builds an invisible annotation, the retention mixin markers use.
func Ann(desc string, elems ...classfile.Element) *classfile.Annotation {
	return &classfile.Annotation{Type: desc, Elements: elems}
}

func Elem(name string, v classfile.Value) classfile.Element {
	return classfile.Element{Name: name, Value: v}
}

func Strings(ss ...string) classfile.Value {
	vs := make([]classfile.Value, len(ss))
	for i, s := range ss {
		vs[i] = classfile.StringValue(s)
	}
	return classfile.ArrayValue(vs...)
}

func Field(name, desc string, anns ...*classfile.Annotation) *classfile.Field {
	return &classfile.Field{Member: classfile.Member{
		AccessFlags: classfile.AccPrivate,
		Name:        name,
		Descriptor:  desc,
		Annotations: anns,
	}}
}

func Method(name, desc string, anns ...*classfile.Annotation) *classfile.Method {
	return &classfile.Method{Member: classfile.Member{
		AccessFlags: classfile.AccPublic,
		Name:        name,
		Descriptor:  desc,
		Annotations: anns,
	}}
}

// Encode serializes c and fails the test on error.
func Encode(t *testing.T, c *classfile.Class) []byte {
	t.Helper()
	data, err := classfile.Encode(c)
	if err != nil {
		t.Fatalf("encode %s: %v", c.Name, err)
	}
	return data
}
