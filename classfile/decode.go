package classfile

import (
	"fmt"
)

type options struct {
	renamer Renamer
}

// Option configures Decode.
type Option func(*options)

// WithRenamer renames field and method references while decoding.
func WithRenamer(r Renamer) Option {
	return func(o *options) { o.renamer = r }
}

// Decode parses a complete class file.
func Decode(data []byte, opts ...Option) (*Class, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c, r, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	n, err := r.u2()
	if err != nil {
		return nil, fmt.Errorf("classfile: %s: fields: %w", c.Name, err)
	}
	c.Fields = make([]*Field, 0, n)
	for i := 0; i < int(n); i++ {
		m, err := decodeMember(c, r)
		if err != nil {
			return nil, fmt.Errorf("classfile: %s: field %d: %w", c.Name, i, err)
		}
		c.Fields = append(c.Fields, &Field{Member: *m})
	}

	if n, err = r.u2(); err != nil {
		return nil, fmt.Errorf("classfile: %s: methods: %w", c.Name, err)
	}
	c.Methods = make([]*Method, 0, n)
	for i := 0; i < int(n); i++ {
		m, err := decodeMember(c, r)
		if err != nil {
			return nil, fmt.Errorf("classfile: %s: method %d: %w", c.Name, i, err)
		}
		c.Methods = append(c.Methods, &Method{Member: *m})
	}

	attrs, err := decodeAttributes(c.Pool, r)
	if err != nil {
		return nil, fmt.Errorf("classfile: %s: attributes: %w", c.Name, err)
	}
	c.Attributes, c.Signature, c.Annotations = splitAttributes(c, c.Name, attrs)

	if r.remaining() != 0 {
		return nil, fmt.Errorf("classfile: %s: %d trailing bytes", c.Name, r.remaining())
	}

	if o.renamer != nil {
		if err := applyRenamer(c, o.renamer); err != nil {
			return nil, fmt.Errorf("classfile: %s: rename: %w", c.Name, err)
		}
	}
	return c, nil
}

// DecodeHeader parses the class up to and including the interface table.
// Fields, methods and attributes are left empty.
func DecodeHeader(data []byte) (*Class, error) {
	c, _, err := decodeHeader(data)
	return c, err
}

func decodeHeader(data []byte) (*Class, *reader, error) {
	r := newReader(data)
	magic, err := r.u4()
	if err != nil {
		return nil, nil, err
	}
	if magic != Magic {
		return nil, nil, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}

	c := &Class{}
	if c.MinorVersion, err = r.u2(); err != nil {
		return nil, nil, err
	}
	if c.MajorVersion, err = r.u2(); err != nil {
		return nil, nil, err
	}
	if c.Pool, err = decodePool(r); err != nil {
		return nil, nil, fmt.Errorf("classfile: constant pool: %w", err)
	}
	if c.AccessFlags, err = r.u2(); err != nil {
		return nil, nil, err
	}

	this, err := r.u2()
	if err != nil {
		return nil, nil, err
	}
	if c.Name, err = c.Pool.ClassName(this); err != nil {
		return nil, nil, fmt.Errorf("classfile: this_class: %w", err)
	}
	super, err := r.u2()
	if err != nil {
		return nil, nil, err
	}
	if super != 0 {
		if c.SuperName, err = c.Pool.ClassName(super); err != nil {
			return nil, nil, fmt.Errorf("classfile: %s: super_class: %w", c.Name, err)
		}
	}

	n, err := r.u2()
	if err != nil {
		return nil, nil, err
	}
	c.Interfaces = make([]string, 0, n)
	for i := 0; i < int(n); i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, nil, err
		}
		name, err := c.Pool.ClassName(idx)
		if err != nil {
			return nil, nil, fmt.Errorf("classfile: %s: interface %d: %w", c.Name, i, err)
		}
		c.Interfaces = append(c.Interfaces, name)
	}
	return c, r, nil
}

func decodeMember(c *Class, r *reader) (*Member, error) {
	m := &Member{}
	var err error
	if m.AccessFlags, err = r.u2(); err != nil {
		return nil, err
	}
	nameIdx, err := r.u2()
	if err != nil {
		return nil, err
	}
	descIdx, err := r.u2()
	if err != nil {
		return nil, err
	}
	if m.Name, err = c.Pool.UTF8(nameIdx); err != nil {
		return nil, err
	}
	if m.Descriptor, err = c.Pool.UTF8(descIdx); err != nil {
		return nil, err
	}
	attrs, err := decodeAttributes(c.Pool, r)
	if err != nil {
		return nil, err
	}
	m.Attributes, m.Signature, m.Annotations = splitAttributes(c, c.Name+"."+m.Name, attrs)
	return m, nil
}

func decodeAttributes(p *ConstantPool, r *reader) ([]Attribute, error) {
	n, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]Attribute, 0, n)
	for i := 0; i < int(n); i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		name, err := p.UTF8(nameIdx)
		if err != nil {
			return nil, err
		}
		length, err := r.u4()
		if err != nil {
			return nil, err
		}
		data, err := r.bytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		out = append(out, Attribute{Name: name, Data: data})
	}
	return out, nil
}

// splitAttributes pulls Signature and annotation attributes out of the raw
// list. Attributes that fail to decode stay raw and are reported on the class.
func splitAttributes(c *Class, where string, attrs []Attribute) (raw []Attribute, sig string, anns []*Annotation) {
	raw = attrs[:0:0]
	for _, a := range attrs {
		switch a.Name {
		case attrSignature:
			if len(a.Data) == 2 {
				if s, err := c.Pool.UTF8(uint16(a.Data[0])<<8 | uint16(a.Data[1])); err == nil {
					sig = s
					continue
				}
			}
			c.Warnings = append(c.Warnings, fmt.Sprintf("%s: malformed Signature attribute kept raw", where))
		case attrVisibleAnnotations, attrInvisibleAnnotations:
			decoded, err := decodeAnnotations(c.Pool, a.Data, a.Name == attrVisibleAnnotations)
			if err == nil {
				anns = append(anns, decoded...)
				continue
			}
			c.Warnings = append(c.Warnings, fmt.Sprintf("%s: %s kept raw: %v", where, a.Name, err))
		}
		raw = append(raw, a)
	}
	return raw, sig, anns
}
