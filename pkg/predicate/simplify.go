package predicate

// Simplify rewrites the tree bottom-up, removing the constant operands
// the loader's criterion folds leave behind (a rule with no os
// criterion would otherwise carry an And(True, ...) spine). The
// rewrite preserves semantics: Test returns the same value for every
// context before and after. Leaves are returned unchanged.
func (p *Predicate) Simplify() *Predicate {
	switch p.kind {
	case KindAnd:
		l := p.left.Simplify()
		r := p.right.Simplify()
		switch {
		case l.kind == KindFalse || r.kind == KindFalse:
			return falsePredicate
		case l.kind == KindTrue && r.kind == KindTrue:
			return truePredicate
		case l.kind == KindTrue:
			return r
		case r.kind == KindTrue:
			return l
		}
		if l == p.left && r == p.right {
			return p
		}
		return And(l, r)
	case KindOr:
		l := p.left.Simplify()
		r := p.right.Simplify()
		switch {
		case l.kind == KindTrue || r.kind == KindTrue:
			return truePredicate
		case l.kind == KindFalse && r.kind == KindFalse:
			return falsePredicate
		case l.kind == KindFalse:
			return r
		case r.kind == KindFalse:
			return l
		}
		if l == p.left && r == p.right {
			return p
		}
		return Or(l, r)
	}
	return p
}
