package classfile

import (
	"fmt"
)

// Encode serializes the class. New names, signatures and annotation values
// are interned into the pool; existing slots keep their indices.
func Encode(c *Class) ([]byte, error) {
	if c.Pool == nil {
		c.Pool = NewConstantPool()
	}
	p := c.Pool

	body := &writer{}
	body.u2(c.AccessFlags)

	this, err := p.AddClass(c.Name)
	if err != nil {
		return nil, err
	}
	body.u2(this)
	if c.SuperName == "" {
		body.u2(0)
	} else {
		super, err := p.AddClass(c.SuperName)
		if err != nil {
			return nil, err
		}
		body.u2(super)
	}

	body.u2(uint16(len(c.Interfaces)))
	for _, name := range c.Interfaces {
		idx, err := p.AddClass(name)
		if err != nil {
			return nil, err
		}
		body.u2(idx)
	}

	body.u2(uint16(len(c.Fields)))
	for _, f := range c.Fields {
		if err := encodeMember(p, body, &f.Member); err != nil {
			return nil, fmt.Errorf("classfile: %s: field %s: %w", c.Name, f.Name, err)
		}
	}
	body.u2(uint16(len(c.Methods)))
	for _, m := range c.Methods {
		if err := encodeMember(p, body, &m.Member); err != nil {
			return nil, fmt.Errorf("classfile: %s: method %s: %w", c.Name, m.Name, err)
		}
	}
	if err := encodeAttributes(p, body, c.Attributes, c.Signature, c.Annotations); err != nil {
		return nil, fmt.Errorf("classfile: %s: %w", c.Name, err)
	}

	out := &writer{buf: make([]byte, 0, len(body.buf)+p.Len()*8+10)}
	out.u4(Magic)
	out.u2(c.MinorVersion)
	out.u2(c.MajorVersion)
	p.encode(out)
	out.raw(body.buf)
	return out.buf, nil
}

func encodeMember(p *ConstantPool, w *writer, m *Member) error {
	nameIdx, err := p.AddUTF8(m.Name)
	if err != nil {
		return err
	}
	descIdx, err := p.AddUTF8(m.Descriptor)
	if err != nil {
		return err
	}
	w.u2(m.AccessFlags)
	w.u2(nameIdx)
	w.u2(descIdx)
	return encodeAttributes(p, w, m.Attributes, m.Signature, m.Annotations)
}

func encodeAttributes(p *ConstantPool, w *writer, raw []Attribute, sig string, anns []*Annotation) error {
	attrs := make([]Attribute, 0, len(raw)+3)
	attrs = append(attrs, raw...)

	if sig != "" {
		idx, err := p.AddUTF8(sig)
		if err != nil {
			return err
		}
		attrs = append(attrs, Attribute{Name: attrSignature, Data: []byte{byte(idx >> 8), byte(idx)}})
	}

	var visible, invisible []*Annotation
	for _, a := range anns {
		if a.Visible {
			visible = append(visible, a)
		} else {
			invisible = append(invisible, a)
		}
	}
	for _, group := range []struct {
		name string
		anns []*Annotation
	}{
		{attrVisibleAnnotations, visible},
		{attrInvisibleAnnotations, invisible},
	} {
		if len(group.anns) == 0 {
			continue
		}
		data, err := encodeAnnotations(p, group.anns)
		if err != nil {
			return fmt.Errorf("%s: %w", group.name, err)
		}
		attrs = append(attrs, Attribute{Name: group.name, Data: data})
	}

	w.u2(uint16(len(attrs)))
	for _, a := range attrs {
		nameIdx, err := p.AddUTF8(a.Name)
		if err != nil {
			return err
		}
		w.u2(nameIdx)
		w.u4(uint32(len(a.Data)))
		w.raw(a.Data)
	}
	return nil
}
