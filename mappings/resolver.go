package mappings

// Resolver looks members up on an owner first and then across the owner's
// whole hierarchy walk.
type Resolver struct {
	Index     *Index
	Hierarchy *Hierarchy
}

// Field resolves a named field on owner or any of its supertypes.
func (r *Resolver) Field(name, owner string) *Entry {
	if e := r.Index.FindField(name, owner); e != nil {
		return e
	}
	if r.Hierarchy == nil {
		return nil
	}
	return r.Index.FindField(name, r.Hierarchy.Walk(owner)...)
}

// FieldDesc resolves a named field with the intermediary descriptor desc.
func (r *Resolver) FieldDesc(name, desc, owner string) *Entry {
	if e := r.Index.FindFieldDesc(name, desc, owner); e != nil {
		return e
	}
	if r.Hierarchy == nil {
		return nil
	}
	return r.Index.FindFieldDesc(name, desc, r.Hierarchy.Walk(owner)...)
}

// Method resolves a named method, or a name(params)ret literal, on owner or
// any of its supertypes.
func (r *Resolver) Method(nameOrSig, owner string) (*Entry, error) {
	e, err := r.Index.FindMethod(nameOrSig, owner)
	if err != nil || e != nil || r.Hierarchy == nil {
		return e, err
	}
	return r.Index.FindMethod(nameOrSig, r.Hierarchy.Walk(owner)...)
}
