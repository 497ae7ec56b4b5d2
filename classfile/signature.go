package classfile

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedSignature = errors.New("classfile: malformed signature")

// TypeSig is one type of a descriptor or generic signature.
type TypeSig struct {
	Dims  int
	Base  byte      // primitive code or 'V'; zero for reference types
	Class string    // internal name; inner classes are joined with '$'
	Var   string    // type variable name
	Args  []TypeSig // type arguments in declaration order; '*' is omitted
}

// Descriptor returns the erased descriptor. Type variables erase to Object.
func (t TypeSig) Descriptor() string {
	var b strings.Builder
	for i := 0; i < t.Dims; i++ {
		b.WriteByte('[')
	}
	switch {
	case t.Base != 0:
		b.WriteByte(t.Base)
	case t.Class != "":
		b.WriteByte('L')
		b.WriteString(t.Class)
		b.WriteByte(';')
	default:
		b.WriteString("Ljava/lang/Object;")
	}
	return b.String()
}

// IsVoid reports whether t is the void return type.
func (t TypeSig) IsVoid() bool { return t.Base == 'V' && t.Dims == 0 }

// MethodSignature is a decoded method descriptor or generic method signature.
type MethodSignature struct {
	TypeParams []string
	Params     []TypeSig
	Return     TypeSig
	Throws     []TypeSig
}

// Descriptor returns the erased method descriptor.
func (s *MethodSignature) Descriptor() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range s.Params {
		b.WriteString(p.Descriptor())
	}
	b.WriteByte(')')
	b.WriteString(s.Return.Descriptor())
	return b.String()
}

// ParseMethodSignature decodes a method descriptor such as (ILjava/lang/String;)V
// or a generic method signature such as <T:Ljava/lang/Object;>(TT;)Ljava/util/List<TT;>;.
func ParseMethodSignature(s string) (*MethodSignature, error) {
	p := &sigParser{s: s}
	out := &MethodSignature{}
	if p.peek() == '<' {
		params, err := p.typeParams()
		if err != nil {
			return nil, err
		}
		out.TypeParams = params
	}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	for p.peek() != ')' {
		if p.eof() {
			return nil, p.fail("unterminated parameter list")
		}
		t, err := p.javaType(false)
		if err != nil {
			return nil, err
		}
		out.Params = append(out.Params, t)
	}
	p.pos++
	ret, err := p.javaType(true)
	if err != nil {
		return nil, err
	}
	out.Return = ret
	for p.peek() == '^' {
		p.pos++
		t, err := p.referenceType()
		if err != nil {
			return nil, err
		}
		out.Throws = append(out.Throws, t)
	}
	if !p.eof() {
		return nil, p.fail("trailing characters")
	}
	return out, nil
}

// ParseTypeSignature decodes a single field descriptor or field signature.
func ParseTypeSignature(s string) (TypeSig, error) {
	p := &sigParser{s: s}
	t, err := p.javaType(false)
	if err != nil {
		return TypeSig{}, err
	}
	if !p.eof() {
		return TypeSig{}, p.fail("trailing characters")
	}
	return t, nil
}

type sigParser struct {
	s   string
	pos int
}

func (p *sigParser) eof() bool { return p.pos >= len(p.s) }

func (p *sigParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) fail(msg string) error {
	return fmt.Errorf("%w: %q at %d: %s", ErrMalformedSignature, p.s, p.pos, msg)
}

func (p *sigParser) expect(c byte) error {
	if p.peek() != c {
		return p.fail(fmt.Sprintf("expected %q", c))
	}
	p.pos++
	return nil
}

// ident reads up to (not including) any of the stop characters.
func (p *sigParser) ident(stops string) (string, error) {
	start := p.pos
	for !p.eof() && strings.IndexByte(stops, p.s[p.pos]) < 0 {
		p.pos++
	}
	if p.pos == start || p.eof() {
		return "", p.fail("expected identifier")
	}
	return p.s[start:p.pos], nil
}

func (p *sigParser) typeParams() ([]string, error) {
	p.pos++ // '<'
	var names []string
	for p.peek() != '>' {
		name, err := p.ident(":")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		p.pos++ // ':'
		switch p.peek() {
		case 'L', 'T', '[':
			if _, err := p.referenceType(); err != nil {
				return nil, err
			}
		}
		for p.peek() == ':' {
			p.pos++
			if _, err := p.referenceType(); err != nil {
				return nil, err
			}
		}
		if p.eof() {
			return nil, p.fail("unterminated type parameters")
		}
	}
	p.pos++
	return names, nil
}

func (p *sigParser) javaType(allowVoid bool) (TypeSig, error) {
	switch c := p.peek(); c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		p.pos++
		return TypeSig{Base: c}, nil
	case 'V':
		if !allowVoid {
			return TypeSig{}, p.fail("void is only valid as a return type")
		}
		p.pos++
		return TypeSig{Base: c}, nil
	default:
		return p.referenceType()
	}
}

func (p *sigParser) referenceType() (TypeSig, error) {
	switch p.peek() {
	case '[':
		dims := 0
		for p.peek() == '[' {
			dims++
			p.pos++
		}
		t, err := p.javaType(false)
		if err != nil {
			return TypeSig{}, err
		}
		t.Dims += dims
		return t, nil
	case 'T':
		p.pos++
		name, err := p.ident(";")
		if err != nil {
			return TypeSig{}, err
		}
		p.pos++
		return TypeSig{Var: name}, nil
	case 'L':
		p.pos++
		return p.classType()
	default:
		return TypeSig{}, p.fail("expected type")
	}
}

func (p *sigParser) classType() (TypeSig, error) {
	var t TypeSig
	var name strings.Builder
	for {
		seg, err := p.ident("<.;")
		if err != nil {
			return TypeSig{}, err
		}
		name.WriteString(seg)
		if p.peek() == '<' {
			args, err := p.typeArgs()
			if err != nil {
				return TypeSig{}, err
			}
			t.Args = append(t.Args, args...)
		}
		switch p.peek() {
		case '.':
			p.pos++
			name.WriteByte('$')
		case ';':
			p.pos++
			t.Class = name.String()
			return t, nil
		default:
			return TypeSig{}, p.fail("unterminated class type")
		}
	}
}

func (p *sigParser) typeArgs() ([]TypeSig, error) {
	p.pos++ // '<'
	var args []TypeSig
	for p.peek() != '>' {
		switch p.peek() {
		case 0:
			return nil, p.fail("unterminated type arguments")
		case '*':
			p.pos++
			continue
		case '+', '-':
			p.pos++
		}
		t, err := p.referenceType()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	p.pos++
	return args, nil
}
