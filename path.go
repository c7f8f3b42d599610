package rna

import (
	"fmt"
	"strconv"
	"strings"
)

// PathResult is the target of a resolved property path.
type PathResult struct {
	// Ptr is the instance owning Prop.
	Ptr Ptr
	// Prop is the final property. It is invalid when the path ends in a
	// collection lookup, in which case Ptr is the item.
	Prop PropertyRef
	// Index is the array element addressed by a trailing [n], or -1.
	Index int
}

// PathResolve follows path from ptr. Segments are joined by dots; each is
// an identifier or a ["name"] dynamic entry of the current instance,
// optionally followed by [n] or ["key"]:
//
//	modifiers["Bevel"].width
//	["settings"].strength
//	location[2]
//
// Pointer properties are followed between segments and collection
// subscripts select an item.
func (r *Registry) PathResolve(ptr Ptr, path string) (PathResult, error) {
	if !ptr.IsValid() {
		return PathResult{Index: -1}, fmt.Errorf("%w: %q from a null handle", ErrPathInvalid, path)
	}
	p := pathParser{path: path}
	cur := ptr
	for {
		ref, err := r.pathSegment(cur, &p)
		if err != nil {
			return PathResult{Index: -1}, err
		}

		index := -1
		if p.peek('[') {
			cur, ref, index, err = r.pathSubscript(cur, ref, &p)
			if err != nil {
				return PathResult{Index: -1}, err
			}
		}

		if p.done() {
			return PathResult{Ptr: cur, Prop: ref, Index: index}, nil
		}
		if !p.consume('.') {
			return PathResult{Index: -1}, p.errorf("expected '.'")
		}
		if index >= 0 {
			return PathResult{Index: -1}, p.errorf("array element has no properties")
		}
		if ref.IsValid() {
			if PropertyTypeOf(ref) != TypePointer {
				return PathResult{Index: -1}, p.errorf("%s is not a pointer", ref.Identifier())
			}
			next := r.PointerGet(cur, ref)
			if !next.IsValid() {
				return PathResult{Index: -1}, fmt.Errorf("%w: %s is empty in %q", ErrNotFound, ref.Identifier(), path)
			}
			cur = next
		}
	}
}

func (r *Registry) pathSegment(cur Ptr, p *pathParser) (PropertyRef, error) {
	if p.peek('[') {
		p.consume('[')
		name, err := p.quoted()
		if err != nil {
			return PropertyRef{}, err
		}
		if !p.consume(']') {
			return PropertyRef{}, p.errorf("expected ']'")
		}
		entry := findIDProperty(cur, name)
		if entry == nil {
			return PropertyRef{}, fmt.Errorf("%w: [%q] on %s", ErrNotFound, name, structIdentifier(cur.Type))
		}
		return DynamicRef(entry), nil
	}

	ident := p.ident()
	if ident == "" {
		return PropertyRef{}, p.errorf("expected identifier")
	}
	ref := r.FindProperty(cur, ident)
	if !ref.IsValid() {
		return PropertyRef{}, fmt.Errorf("%w: %s.%s", ErrNotFound, structIdentifier(cur.Type), ident)
	}
	return ref, nil
}

// pathSubscript applies [n] or ["key"] to ref. Collection lookups move to
// the item and consume ref.
func (r *Registry) pathSubscript(cur Ptr, ref PropertyRef, p *pathParser) (Ptr, PropertyRef, int, error) {
	p.consume('[')
	kind := PropertyTypeOf(ref)

	if p.peek('"') {
		key, err := p.quoted()
		if err != nil {
			return cur, ref, -1, err
		}
		if !p.consume(']') {
			return cur, ref, -1, p.errorf("expected ']'")
		}
		if kind != TypeCollection {
			return cur, ref, -1, p.errorf("%s is not a collection", ref.Identifier())
		}
		item, _, ok := r.CollectionLookupString(cur, ref, key)
		if !ok {
			return cur, ref, -1, fmt.Errorf("%w: %s[%q]", ErrNotFound, ref.Identifier(), key)
		}
		return item, PropertyRef{}, -1, nil
	}

	index, err := p.integer()
	if err != nil {
		return cur, ref, -1, err
	}
	if !p.consume(']') {
		return cur, ref, -1, p.errorf("expected ']'")
	}
	if kind == TypeCollection {
		item, ok := r.CollectionLookupInt(cur, ref, index)
		if !ok {
			return cur, ref, -1, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, ref.Identifier(), index)
		}
		return item, PropertyRef{}, -1, nil
	}
	if !ArrayCheck(ref) {
		return cur, ref, -1, p.errorf("%s is not an array", ref.Identifier())
	}
	if index < 0 || index >= r.ArrayLength(cur, ref) {
		return cur, ref, -1, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, ref.Identifier(), index)
	}
	return cur, ref, index, nil
}

type pathParser struct {
	path string
	pos  int
}

func (p *pathParser) done() bool {
	return p.pos >= len(p.path)
}

func (p *pathParser) peek(c byte) bool {
	return p.pos < len(p.path) && p.path[p.pos] == c
}

func (p *pathParser) consume(c byte) bool {
	if !p.peek(c) {
		return false
	}
	p.pos++
	return true
}

func (p *pathParser) ident() string {
	start := p.pos
	for p.pos < len(p.path) {
		c := p.path[p.pos]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || p.pos > start && c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.path[start:p.pos]
}

func (p *pathParser) integer() (int, error) {
	start := p.pos
	if p.peek('-') {
		p.pos++
	}
	for p.pos < len(p.path) && p.path[p.pos] >= '0' && p.path[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(p.path[start:p.pos])
	if err != nil {
		return 0, p.errorf("expected index")
	}
	return n, nil
}

// quoted reads a double quoted string with backslash escapes.
func (p *pathParser) quoted() (string, error) {
	if !p.peek('"') {
		return "", p.errorf("expected '\"'")
	}
	start := p.pos
	p.pos++
	for p.pos < len(p.path) {
		switch p.path[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			s, err := strconv.Unquote(p.path[start:p.pos])
			if err != nil {
				return "", p.errorf("bad string literal")
			}
			return s, nil
		}
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

func (p *pathParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %q at %d: %s", ErrPathInvalid, p.path, p.pos, fmt.Sprintf(format, args...))
}

// PathQuote returns name in the ["name"] form understood by PathResolve.
func PathQuote(name string) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strconv.Quote(name))
	b.WriteString("]")
	return b.String()
}
