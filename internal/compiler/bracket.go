// Package compiler translates lambda terms into combinator form via
// classical bracket abstraction and peephole-optimizes the result.
// CompileSKI and Optimize match more specific shapes before falling
// back to the generic "S p q" case.
package compiler

import (
	"nrm/internal/symbol"
	"nrm/internal/term"
)

// IsFreeIn reports whether symb occurs free in t.
func IsFreeIn(symb symbol.Symb, t term.Ref) bool {
	switch t.Tag {
	case term.TVar:
		return symbol.Equal(t.X, symb)
	case term.TLam:
		if symbol.Equal(t.X, symb) {
			return false
		}
		return IsFreeIn(symb, t.L)
	case term.TApp:
		return IsFreeIn(symb, t.L) || IsFreeIn(symb, t.R)
	default:
		return false
	}
}

// CompileSKI translates every Lam subtree of t into combinator form.
func CompileSKI(t term.Ref) term.Ref {
	switch t.Tag {
	case term.TVar:
		return t
	case term.TApp:
		return term.App(CompileSKI(t.L), CompileSKI(t.R))
	case term.TLam:
		x, body := t.X, t.L
		if !IsFreeIn(x, body) {
			// T[\x.E] = K T[E], if x is not free in E
			return term.App(term.K, CompileSKI(body))
		}
		switch body.Tag {
		case term.TVar:
			// x is free in body and body is a Var => body must be Var(x)
			// T[\x.x] = I
			return term.I
		case term.TLam:
			// T[\x.\y.E] = T[\x.T[\y.E]]
			return CompileSKI(term.Lam(x, CompileSKI(term.Lam(body.X, body.L))))
		case term.TApp:
			// T[\x.(E1 E2)] = S T[\x.E1] T[\x.E2]
			return term.App(term.App(term.S,
				CompileSKI(term.Lam(x, body.L))),
				CompileSKI(term.Lam(x, body.R)))
		default:
			panic("compiler: a free variable cannot occur in a constant")
		}
	default:
		// combinators and literals translate to themselves
		return t
	}
}
