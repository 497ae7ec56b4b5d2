package classfile

import (
	"fmt"
)

// Element value tags as they appear in annotation attributes.
const (
	ValueByte       byte = 'B'
	ValueChar       byte = 'C'
	ValueDouble     byte = 'D'
	ValueFloat      byte = 'F'
	ValueInt        byte = 'I'
	ValueLong       byte = 'J'
	ValueShort      byte = 'S'
	ValueBoolean    byte = 'Z'
	ValueString     byte = 's'
	ValueEnum       byte = 'e'
	ValueClass      byte = 'c'
	ValueAnnotation byte = '@'
	ValueArray      byte = '['
)

// Annotation is one RuntimeVisible/RuntimeInvisible annotation.
type Annotation struct {
	Type     string // field descriptor, e.g. Lorg/spongepowered/asm/mixin/Mixin;
	Visible  bool
	Elements []Element
}

// Element is a name/value pair of an annotation.
type Element struct {
	Name  string
	Value Value
}

// Get returns the value of the named element.
func (a *Annotation) Get(name string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}
	for _, e := range a.Elements {
		if e.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Value is an annotation element value. Tag selects which field is meaningful.
type Value struct {
	Tag        byte
	Str        string // s: the string, c: the class descriptor, e: the constant name
	Enum       string // e: the enum type descriptor
	Int        int64  // B C I J S
	Float      float64
	Bool       bool
	Annotation *Annotation
	Array      []Value
}

func StringValue(s string) Value { return Value{Tag: ValueString, Str: s} }

func BoolValue(b bool) Value { return Value{Tag: ValueBoolean, Bool: b} }

func IntValue(i int32) Value { return Value{Tag: ValueInt, Int: int64(i)} }

func ClassValue(desc string) Value { return Value{Tag: ValueClass, Str: desc} }

func EnumValue(typ, name string) Value { return Value{Tag: ValueEnum, Enum: typ, Str: name} }

func AnnotationValue(a *Annotation) Value { return Value{Tag: ValueAnnotation, Annotation: a} }

func ArrayValue(vs ...Value) Value { return Value{Tag: ValueArray, Array: vs} }

func (v Value) AsString() (string, bool) {
	return v.Str, v.Tag == ValueString
}

func (v Value) AsBool() (bool, bool) {
	return v.Bool, v.Tag == ValueBoolean
}

// AsClass returns the descriptor of a class literal.
func (v Value) AsClass() (string, bool) {
	return v.Str, v.Tag == ValueClass
}

func (v Value) AsAnnotation() (*Annotation, bool) {
	return v.Annotation, v.Tag == ValueAnnotation && v.Annotation != nil
}

// AsStrings accepts a single string or an array of strings. Non-string array
// members make the whole value unusable.
func (v Value) AsStrings() ([]string, bool) {
	switch v.Tag {
	case ValueString:
		return []string{v.Str}, true
	case ValueArray:
		out := make([]string, 0, len(v.Array))
		for _, e := range v.Array {
			s, ok := e.AsString()
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// AsClasses accepts a single class literal or an array of them.
func (v Value) AsClasses() ([]string, bool) {
	switch v.Tag {
	case ValueClass:
		return []string{v.Str}, true
	case ValueArray:
		out := make([]string, 0, len(v.Array))
		for _, e := range v.Array {
			s, ok := e.AsClass()
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// AsAnnotations accepts a single nested annotation or an array of them.
func (v Value) AsAnnotations() ([]*Annotation, bool) {
	switch v.Tag {
	case ValueAnnotation:
		if v.Annotation == nil {
			return nil, false
		}
		return []*Annotation{v.Annotation}, true
	case ValueArray:
		out := make([]*Annotation, 0, len(v.Array))
		for _, e := range v.Array {
			a, ok := e.AsAnnotation()
			if !ok {
				return nil, false
			}
			out = append(out, a)
		}
		return out, true
	}
	return nil, false
}

func decodeAnnotations(p *ConstantPool, data []byte, visible bool) ([]*Annotation, error) {
	r := newReader(data)
	n, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]*Annotation, 0, n)
	for i := 0; i < int(n); i++ {
		a, err := decodeAnnotation(p, r)
		if err != nil {
			return nil, err
		}
		a.Visible = visible
		out = append(out, a)
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("classfile: %d trailing bytes after annotations", r.remaining())
	}
	return out, nil
}

func decodeAnnotation(p *ConstantPool, r *reader) (*Annotation, error) {
	typeIdx, err := r.u2()
	if err != nil {
		return nil, err
	}
	a := &Annotation{}
	if a.Type, err = p.UTF8(typeIdx); err != nil {
		return nil, err
	}
	n, err := r.u2()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		a.Elements = make([]Element, 0, n)
	}
	for i := 0; i < int(n); i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		name, err := p.UTF8(nameIdx)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(p, r)
		if err != nil {
			return nil, fmt.Errorf("element %s of %s: %w", name, a.Type, err)
		}
		a.Elements = append(a.Elements, Element{Name: name, Value: v})
	}
	return a, nil
}

func decodeValue(p *ConstantPool, r *reader) (Value, error) {
	tag, err := r.u1()
	if err != nil {
		return Value{}, err
	}
	v := Value{Tag: tag}
	switch tag {
	case ValueByte, ValueChar, ValueInt, ValueShort, ValueBoolean:
		idx, err := r.u2()
		if err != nil {
			return v, err
		}
		i, err := p.integer(idx)
		if err != nil {
			return v, err
		}
		if tag == ValueBoolean {
			v.Bool = i != 0
		} else {
			v.Int = int64(i)
		}
	case ValueLong:
		idx, err := r.u2()
		if err != nil {
			return v, err
		}
		if v.Int, err = p.long(idx); err != nil {
			return v, err
		}
	case ValueFloat:
		idx, err := r.u2()
		if err != nil {
			return v, err
		}
		f, err := p.float(idx)
		if err != nil {
			return v, err
		}
		v.Float = float64(f)
	case ValueDouble:
		idx, err := r.u2()
		if err != nil {
			return v, err
		}
		if v.Float, err = p.double(idx); err != nil {
			return v, err
		}
	case ValueString, ValueClass:
		idx, err := r.u2()
		if err != nil {
			return v, err
		}
		if v.Str, err = p.UTF8(idx); err != nil {
			return v, err
		}
	case ValueEnum:
		typeIdx, err := r.u2()
		if err != nil {
			return v, err
		}
		nameIdx, err := r.u2()
		if err != nil {
			return v, err
		}
		if v.Enum, err = p.UTF8(typeIdx); err != nil {
			return v, err
		}
		if v.Str, err = p.UTF8(nameIdx); err != nil {
			return v, err
		}
	case ValueAnnotation:
		if v.Annotation, err = decodeAnnotation(p, r); err != nil {
			return v, err
		}
	case ValueArray:
		n, err := r.u2()
		if err != nil {
			return v, err
		}
		v.Array = make([]Value, 0, n)
		for i := 0; i < int(n); i++ {
			e, err := decodeValue(p, r)
			if err != nil {
				return v, err
			}
			v.Array = append(v.Array, e)
		}
	default:
		return v, fmt.Errorf("classfile: unknown element value tag %q", tag)
	}
	return v, nil
}

func encodeAnnotations(p *ConstantPool, as []*Annotation) ([]byte, error) {
	w := &writer{}
	w.u2(uint16(len(as)))
	for _, a := range as {
		if err := encodeAnnotation(p, w, a); err != nil {
			return nil, err
		}
	}
	return w.buf, nil
}

func encodeAnnotation(p *ConstantPool, w *writer, a *Annotation) error {
	typeIdx, err := p.AddUTF8(a.Type)
	if err != nil {
		return err
	}
	w.u2(typeIdx)
	w.u2(uint16(len(a.Elements)))
	for _, e := range a.Elements {
		nameIdx, err := p.AddUTF8(e.Name)
		if err != nil {
			return err
		}
		w.u2(nameIdx)
		if err := encodeValue(p, w, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func encodeValue(p *ConstantPool, w *writer, v Value) error {
	var idx uint16
	var err error
	switch v.Tag {
	case ValueByte, ValueChar, ValueInt, ValueShort:
		idx, err = p.AddInteger(int32(v.Int))
	case ValueBoolean:
		var i int32
		if v.Bool {
			i = 1
		}
		idx, err = p.AddInteger(i)
	case ValueLong:
		idx, err = p.AddLong(v.Int)
	case ValueFloat:
		idx, err = p.AddFloat(float32(v.Float))
	case ValueDouble:
		idx, err = p.AddDouble(v.Float)
	case ValueString, ValueClass:
		idx, err = p.AddUTF8(v.Str)
	case ValueEnum:
		typeIdx, err := p.AddUTF8(v.Enum)
		if err != nil {
			return err
		}
		nameIdx, err := p.AddUTF8(v.Str)
		if err != nil {
			return err
		}
		w.u1(v.Tag)
		w.u2(typeIdx)
		w.u2(nameIdx)
		return nil
	case ValueAnnotation:
		if v.Annotation == nil {
			return fmt.Errorf("classfile: nil nested annotation")
		}
		w.u1(v.Tag)
		return encodeAnnotation(p, w, v.Annotation)
	case ValueArray:
		w.u1(v.Tag)
		w.u2(uint16(len(v.Array)))
		for _, e := range v.Array {
			if err := encodeValue(p, w, e); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("classfile: unknown element value tag %q", v.Tag)
	}
	if err != nil {
		return err
	}
	w.u1(v.Tag)
	w.u2(idx)
	return nil
}
