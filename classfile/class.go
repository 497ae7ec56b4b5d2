// Package classfile decodes and encodes JVM class files.
//
// The codec keeps the constant pool slot layout stable across a decode/encode
// cycle: entries are only ever appended, so Code, StackMapTable and other
// attributes that embed pool indices are carried as raw bytes and stay valid.
// Signature and annotation attributes are decoded into structured form and
// regenerated on encode.
package classfile

// Magic is the class file signature.
const Magic = 0xCAFEBABE

// Access flags used by the remapper.
const (
	AccPublic    = 0x0001
	AccPrivate   = 0x0002
	AccStatic    = 0x0008
	AccFinal     = 0x0010
	AccSuper     = 0x0020
	AccInterface = 0x0200
	AccAbstract  = 0x0400
	AccSynthetic = 0x1000
)

const (
	attrSignature            = "Signature"
	attrVisibleAnnotations   = "RuntimeVisibleAnnotations"
	attrInvisibleAnnotations = "RuntimeInvisibleAnnotations"
)

// Attribute is an attribute kept verbatim.
type Attribute struct {
	Name string
	Data []byte
}

// Class is a decoded class file.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         *ConstantPool
	AccessFlags  uint16
	Name         string
	SuperName    string // empty for java/lang/Object and module-info
	Interfaces   []string
	Fields       []*Field
	Methods      []*Method
	Signature    string
	Annotations  []*Annotation
	Attributes   []Attribute

	// Warnings lists attributes that could not be decoded and were kept raw.
	Warnings []string
}

// Member holds what fields and methods have in common.
type Member struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Signature   string
	Annotations []*Annotation
	Attributes  []Attribute
}

type Field struct {
	Member
}

type Method struct {
	Member
}

// Annotation returns the first annotation of the given type descriptor,
// preferring visible annotations over invisible ones.
func (m *Member) Annotation(desc string) *Annotation {
	return findAnnotation(m.Annotations, desc)
}

// Annotation returns the class-level annotation of the given type.
func (c *Class) Annotation(desc string) *Annotation {
	return findAnnotation(c.Annotations, desc)
}

func findAnnotation(as []*Annotation, desc string) *Annotation {
	var invisible *Annotation
	for _, a := range as {
		if a.Type != desc {
			continue
		}
		if a.Visible {
			return a
		}
		if invisible == nil {
			invisible = a
		}
	}
	return invisible
}

// Params returns the parameter descriptors of the method.
func (m *Method) Params() ([]string, error) {
	sig, err := ParseMethodSignature(m.Descriptor)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		out[i] = p.Descriptor()
	}
	return out, nil
}

// Return returns the return descriptor of the method.
func (m *Method) Return() (string, error) {
	sig, err := ParseMethodSignature(m.Descriptor)
	if err != nil {
		return "", err
	}
	return sig.Return.Descriptor(), nil
}

// Field returns the declared field with the given name, or nil.
func (c *Class) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Method returns the declared method with the given name and descriptor, or nil.
// An empty descriptor matches the first method with that name.
func (c *Class) Method(name, desc string) *Method {
	for _, m := range c.Methods {
		if m.Name == name && (desc == "" || m.Descriptor == desc) {
			return m
		}
	}
	return nil
}
