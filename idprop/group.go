package idprop

// Get returns the child of a Group entry named name, or nil.
func (p *Property) Get(name string) *Property {
	if p == nil || p.typ != Group {
		return nil
	}
	for _, child := range p.children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Properties returns the children of a Group entry in insertion order. The
// returned slice is a copy; the entries themselves are shared.
func (p *Property) Properties() []*Property {
	if p == nil || p.typ != Group {
		return nil
	}
	out := make([]*Property, len(p.children))
	copy(out, p.children)
	return out
}

// Add appends child to a Group entry. It returns false when an entry with
// the same name already exists or p is not a group.
func (p *Property) Add(child *Property) bool {
	if p == nil || child == nil || p.typ != Group {
		return false
	}
	if p.Get(child.Name) != nil {
		return false
	}
	p.children = append(p.children, child)
	return true
}

// Replace stores child in a Group entry, replacing any same-named entry in
// place so ordering is kept.
func (p *Property) Replace(child *Property) {
	if p == nil || child == nil || p.typ != Group {
		return
	}
	for i, existing := range p.children {
		if existing.Name == child.Name {
			p.children[i] = child
			return
		}
	}
	p.children = append(p.children, child)
}

// Remove deletes the child named name from a Group entry.
func (p *Property) Remove(name string) bool {
	if p == nil || p.typ != Group {
		return false
	}
	for i, child := range p.children {
		if child.Name == name {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveEntry deletes child from a Group entry by identity.
func (p *Property) RemoveEntry(child *Property) bool {
	if p == nil || p.typ != Group {
		return false
	}
	for i, existing := range p.children {
		if existing == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns the groups of an IDPArray entry.
func (p *Property) Items() []*Property {
	if p == nil || p.typ != IDPArray {
		return nil
	}
	out := make([]*Property, len(p.children))
	copy(out, p.children)
	return out
}

// Item returns the group at index i of an IDPArray entry, or nil.
func (p *Property) Item(i int) *Property {
	if p == nil || p.typ != IDPArray || i < 0 || i >= len(p.children) {
		return nil
	}
	return p.children[i]
}

// Append adds a new empty group to an IDPArray entry and returns it.
func (p *Property) Append() *Property {
	if p == nil || p.typ != IDPArray {
		return nil
	}
	item := NewGroup("")
	p.children = append(p.children, item)
	return item
}

// RemoveAt deletes the group at index i of an IDPArray entry.
func (p *Property) RemoveAt(i int) bool {
	if p == nil || p.typ != IDPArray || i < 0 || i >= len(p.children) {
		return false
	}
	p.children = append(p.children[:i], p.children[i+1:]...)
	return true
}

// Move relocates the group at index from to index to.
func (p *Property) Move(from, to int) bool {
	if p == nil || p.typ != IDPArray {
		return false
	}
	n := len(p.children)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	item := p.children[from]
	p.children = append(p.children[:from], p.children[from+1:]...)
	p.children = append(p.children[:to], append([]*Property{item}, p.children[to:]...)...)
	return true
}

// Clear removes every child of a Group or IDPArray entry.
func (p *Property) Clear() {
	if p == nil || (p.typ != Group && p.typ != IDPArray) {
		return
	}
	p.children = nil
}
