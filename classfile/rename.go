package classfile

// Renamer maps member names during decode. Returning the input name leaves
// the member untouched.
type Renamer interface {
	FieldName(owner, name, desc string) string
	MethodName(owner, name, desc string) string
}

func applyRenamer(c *Class, rn Renamer) error {
	for _, f := range c.Fields {
		if name := rn.FieldName(c.Name, f.Name, f.Descriptor); name != "" {
			f.Name = name
		}
	}
	for _, m := range c.Methods {
		if m.Name == "<init>" || m.Name == "<clinit>" {
			continue
		}
		if name := rn.MethodName(c.Name, m.Name, m.Descriptor); name != "" {
			m.Name = name
		}
	}

	// Only slots present before renaming are member references; appended
	// entries are Utf8 and NameAndType.
	n := c.Pool.Len()
	for i := 1; i < n; i++ {
		e := c.Pool.At(uint16(i))
		if e == nil {
			continue
		}
		var field bool
		switch e.Tag {
		case TagFieldref:
			field = true
		case TagMethodref, TagInterfaceMethodref:
		default:
			continue
		}

		owner, name, desc, err := c.Pool.MemberRef(uint16(i))
		if err != nil {
			return err
		}
		if name == "<init>" || name == "<clinit>" {
			continue
		}
		var renamed string
		if field {
			renamed = rn.FieldName(owner, name, desc)
		} else {
			renamed = rn.MethodName(owner, name, desc)
		}
		if renamed == "" || renamed == name {
			continue
		}
		nat, err := c.Pool.AddNameAndType(renamed, desc)
		if err != nil {
			return err
		}
		c.Pool.retarget(uint16(i), nat)
	}
	return nil
}

// retarget points the member reference at slot i to another NameAndType and
// keeps the intern index consistent.
func (p *ConstantPool) retarget(i uint16, nat uint16) {
	e := p.entries[i]
	if p.index != nil {
		if k := e.key(); p.index[k] == i {
			delete(p.index, k)
		}
	}
	e.B = nat
	if p.index != nil {
		if _, ok := p.index[e.key()]; !ok {
			p.index[e.key()] = i
		}
	}
}
