package idprop

// MergeLayers composes groups ordered from strongest to weakest, returning a
// new group that keeps explicit entries from stronger layers while filling
// any missing entries from weaker ones. Entries contributed only by weaker
// layers are marked as ghosts so property access reports them as unset.
//
// Nested groups merge recursively. Entries of differing tags are not merged:
// the stronger entry wins as a whole. nil layers are skipped.
func MergeLayers(layers ...*Property) *Property {
	var present []*Property
	for _, layer := range layers {
		if layer != nil && layer.typ == Group {
			present = append(present, layer)
		}
	}
	if len(present) == 0 {
		return nil
	}

	if len(present) == 1 {
		return present[0].Copy()
	}

	weak := present[len(present)-1].Copy()
	for i := len(present) - 2; i >= 1; i-- {
		weak = mergeGroup(present[i], weak)
	}
	markGhost(weak)
	return mergeGroup(present[0], weak)
}

// mergeGroup merges strong over weak. weak is owned by the caller and may
// be consumed.
func mergeGroup(strong, weak *Property) *Property {
	result := NewGroup(strong.Name)
	result.Flag = strong.Flag
	result.ui = strong.ui.clone()

	for _, child := range strong.children {
		existing := weak.Get(child.Name)
		switch {
		case existing == nil:
			result.children = append(result.children, child.Copy())
		case child.typ == Group && existing.typ == Group:
			result.children = append(result.children, mergeGroup(child, existing))
		default:
			result.children = append(result.children, child.Copy())
		}
	}
	for _, child := range weak.children {
		if strong.Get(child.Name) != nil {
			continue
		}
		result.children = append(result.children, child)
	}
	return result
}

func markGhost(p *Property) {
	p.Flag |= FlagGhost
	for _, child := range p.children {
		markGhost(child)
	}
}
