package classfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tag identifies a constant pool entry kind.
type Tag uint8

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// wide reports whether the entry occupies two pool slots.
func (t Tag) wide() bool { return t == TagLong || t == TagDouble }

// Constant is one constant pool slot.
//
// Layout of the index fields by tag:
//
//	Class, String, MethodType, Module, Package: A = name/string/descriptor index
//	Fieldref, Methodref, InterfaceMethodref:     A = class index, B = name-and-type index
//	NameAndType:                                  A = name index, B = descriptor index
//	MethodHandle:                                 A = reference kind, B = reference index
//	Dynamic, InvokeDynamic:                       A = bootstrap method index, B = name-and-type index
//
// Utf8 keeps its modified UTF-8 bytes in Data; Integer/Float/Long/Double keep
// their big-endian payload in Data.
type Constant struct {
	Tag  Tag
	Data []byte
	A, B uint16
}

func (c *Constant) key() string {
	return fmt.Sprintf("%d|%d|%d|%x", c.Tag, c.A, c.B, c.Data)
}

// ConstantPool holds the decoded pool. Slot 0 and the second slot of wide
// entries are nil.
type ConstantPool struct {
	entries []*Constant
	index   map[string]uint16
}

// NewConstantPool returns an empty pool with the reserved slot 0.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{entries: []*Constant{nil}}
}

// Len returns the constant_pool_count value (number of slots + 1).
func (p *ConstantPool) Len() int { return len(p.entries) }

// At returns the entry at slot i or nil.
func (p *ConstantPool) At(i uint16) *Constant {
	if int(i) >= len(p.entries) {
		return nil
	}
	return p.entries[i]
}

func (p *ConstantPool) expect(i uint16, tag Tag) (*Constant, error) {
	c := p.At(i)
	if c == nil || c.Tag != tag {
		return nil, fmt.Errorf("%w: index %d is not tag %d", ErrBadConstant, i, tag)
	}
	return c, nil
}

// UTF8 returns the string stored at a Utf8 slot.
func (p *ConstantPool) UTF8(i uint16) (string, error) {
	c, err := p.expect(i, TagUtf8)
	if err != nil {
		return "", err
	}
	return decodeMUTF8(c.Data), nil
}

// ClassName returns the internal name referenced by a Class slot.
func (p *ConstantPool) ClassName(i uint16) (string, error) {
	c, err := p.expect(i, TagClass)
	if err != nil {
		return "", err
	}
	return p.UTF8(c.A)
}

// NameAndType returns the name and descriptor of a NameAndType slot.
func (p *ConstantPool) NameAndType(i uint16) (name, desc string, err error) {
	c, err := p.expect(i, TagNameAndType)
	if err != nil {
		return "", "", err
	}
	if name, err = p.UTF8(c.A); err != nil {
		return "", "", err
	}
	desc, err = p.UTF8(c.B)
	return name, desc, err
}

// MemberRef resolves a Fieldref, Methodref or InterfaceMethodref slot.
func (p *ConstantPool) MemberRef(i uint16) (owner, name, desc string, err error) {
	c := p.At(i)
	if c == nil || (c.Tag != TagFieldref && c.Tag != TagMethodref && c.Tag != TagInterfaceMethodref) {
		return "", "", "", fmt.Errorf("%w: index %d is not a member reference", ErrBadConstant, i)
	}
	if owner, err = p.ClassName(c.A); err != nil {
		return "", "", "", err
	}
	name, desc, err = p.NameAndType(c.B)
	return owner, name, desc, err
}

func (p *ConstantPool) buildIndex() {
	p.index = make(map[string]uint16, len(p.entries))
	for i, c := range p.entries {
		if c == nil {
			continue
		}
		k := c.key()
		if _, ok := p.index[k]; !ok {
			p.index[k] = uint16(i)
		}
	}
}

// intern returns the slot of an identical entry, appending one if needed.
func (p *ConstantPool) intern(c *Constant) (uint16, error) {
	if p.index == nil {
		p.buildIndex()
	}
	k := c.key()
	if i, ok := p.index[k]; ok {
		return i, nil
	}
	slots := 1
	if c.Tag.wide() {
		slots = 2
	}
	if len(p.entries)+slots > math.MaxUint16 {
		return 0, ErrPoolOverflow
	}
	i := uint16(len(p.entries))
	p.entries = append(p.entries, c)
	if slots == 2 {
		p.entries = append(p.entries, nil)
	}
	p.index[k] = i
	return i, nil
}

// AddUTF8 interns a Utf8 entry.
func (p *ConstantPool) AddUTF8(s string) (uint16, error) {
	return p.intern(&Constant{Tag: TagUtf8, Data: encodeMUTF8(s)})
}

// AddClass interns a Class entry for an internal name.
func (p *ConstantPool) AddClass(name string) (uint16, error) {
	n, err := p.AddUTF8(name)
	if err != nil {
		return 0, err
	}
	return p.intern(&Constant{Tag: TagClass, A: n})
}

// AddNameAndType interns a NameAndType entry.
func (p *ConstantPool) AddNameAndType(name, desc string) (uint16, error) {
	n, err := p.AddUTF8(name)
	if err != nil {
		return 0, err
	}
	d, err := p.AddUTF8(desc)
	if err != nil {
		return 0, err
	}
	return p.intern(&Constant{Tag: TagNameAndType, A: n, B: d})
}

// AddMemberRef interns a Fieldref, Methodref or InterfaceMethodref entry.
func (p *ConstantPool) AddMemberRef(tag Tag, owner, name, desc string) (uint16, error) {
	if tag != TagFieldref && tag != TagMethodref && tag != TagInterfaceMethodref {
		return 0, fmt.Errorf("%w: tag %d is not a member reference", ErrBadConstant, tag)
	}
	cls, err := p.AddClass(owner)
	if err != nil {
		return 0, err
	}
	nat, err := p.AddNameAndType(name, desc)
	if err != nil {
		return 0, err
	}
	return p.intern(&Constant{Tag: tag, A: cls, B: nat})
}

// AddString interns a String entry.
func (p *ConstantPool) AddString(s string) (uint16, error) {
	u, err := p.AddUTF8(s)
	if err != nil {
		return 0, err
	}
	return p.intern(&Constant{Tag: TagString, A: u})
}

// AddInteger interns an Integer entry.
func (p *ConstantPool) AddInteger(v int32) (uint16, error) {
	return p.intern(&Constant{Tag: TagInteger, Data: binary.BigEndian.AppendUint32(nil, uint32(v))})
}

// AddLong interns a Long entry.
func (p *ConstantPool) AddLong(v int64) (uint16, error) {
	return p.intern(&Constant{Tag: TagLong, Data: binary.BigEndian.AppendUint64(nil, uint64(v))})
}

// AddFloat interns a Float entry.
func (p *ConstantPool) AddFloat(v float32) (uint16, error) {
	return p.intern(&Constant{Tag: TagFloat, Data: binary.BigEndian.AppendUint32(nil, math.Float32bits(v))})
}

// AddDouble interns a Double entry.
func (p *ConstantPool) AddDouble(v float64) (uint16, error) {
	return p.intern(&Constant{Tag: TagDouble, Data: binary.BigEndian.AppendUint64(nil, math.Float64bits(v))})
}

// integer reads an Integer slot.
func (p *ConstantPool) integer(i uint16) (int32, error) {
	c, err := p.expect(i, TagInteger)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(c.Data)), nil
}

func (p *ConstantPool) long(i uint16) (int64, error) {
	c, err := p.expect(i, TagLong)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(c.Data)), nil
}

func (p *ConstantPool) float(i uint16) (float32, error) {
	c, err := p.expect(i, TagFloat)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(c.Data)), nil
}

func (p *ConstantPool) double(i uint16) (float64, error) {
	c, err := p.expect(i, TagDouble)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(c.Data)), nil
}

func decodePool(r *reader) (*ConstantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: zero pool count", ErrBadConstant)
	}
	p := &ConstantPool{entries: make([]*Constant, 1, int(count))}
	for len(p.entries) < int(count) {
		tag, err := r.u1()
		if err != nil {
			return nil, err
		}
		c := &Constant{Tag: Tag(tag)}
		switch c.Tag {
		case TagUtf8:
			n, err := r.u2()
			if err != nil {
				return nil, err
			}
			if c.Data, err = r.bytes(int(n)); err != nil {
				return nil, err
			}
		case TagInteger, TagFloat:
			if c.Data, err = r.bytes(4); err != nil {
				return nil, err
			}
		case TagLong, TagDouble:
			if c.Data, err = r.bytes(8); err != nil {
				return nil, err
			}
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			if c.A, err = r.u2(); err != nil {
				return nil, err
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref, TagNameAndType, TagDynamic, TagInvokeDynamic:
			if c.A, err = r.u2(); err != nil {
				return nil, err
			}
			if c.B, err = r.u2(); err != nil {
				return nil, err
			}
		case TagMethodHandle:
			kind, err := r.u1()
			if err != nil {
				return nil, err
			}
			c.A = uint16(kind)
			if c.B, err = r.u2(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unknown tag %d at slot %d", ErrBadConstant, tag, len(p.entries))
		}
		p.entries = append(p.entries, c)
		if c.Tag.wide() {
			p.entries = append(p.entries, nil)
		}
	}
	if len(p.entries) != int(count) {
		return nil, fmt.Errorf("%w: wide entry overruns pool", ErrBadConstant)
	}
	return p, nil
}

func (p *ConstantPool) encode(w *writer) {
	w.u2(uint16(len(p.entries)))
	for _, c := range p.entries {
		if c == nil {
			continue
		}
		w.u1(uint8(c.Tag))
		switch c.Tag {
		case TagUtf8:
			w.u2(uint16(len(c.Data)))
			w.raw(c.Data)
		case TagInteger, TagFloat, TagLong, TagDouble:
			w.raw(c.Data)
		case TagClass, TagString, TagMethodType, TagModule, TagPackage:
			w.u2(c.A)
		case TagMethodHandle:
			w.u1(uint8(c.A))
			w.u2(c.B)
		default:
			w.u2(c.A)
			w.u2(c.B)
		}
	}
}
