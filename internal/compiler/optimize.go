package compiler

import "nrm/internal/term"

// Optimize applies the peephole rewrite table to a compiled term,
// recursing into children it does not rewrite and into the operands
// (p, q, r) of every rewrite it makes. The "S (K p) (B q r)"
// rule rewrites to "B* p q r" with all three arguments curried
// separately — applying B* to a pre-built (p q) pair instead would
// break the arithmetic identity the rewrite depends on.
func Optimize(t term.Ref) term.Ref {
	if t.Tag != term.TApp {
		return t
	}
	t1, t2 := t.L, t.R

	if t1.Tag != term.TApp {
		return term.App(t1, Optimize(t2))
	}
	t11, t12 := t1.L, t1.R

	if t11.Tag != term.TS {
		return term.App(Optimize(t1), Optimize(t2))
	}

	// term is (S arg1 arg2)
	arg1, arg2 := t12, t2

	if arg1.Tag == term.TApp {
		a1h, a1t := arg1.L, arg1.R

		if a1h.Tag == term.TK {
			p := a1t
			// term is (S (K p) arg2)
			if arg2.Tag == term.TI {
				// S (K p) I = p
				return Optimize(p)
			}
			if arg2.Tag == term.TApp {
				at1, at2 := arg2.L, arg2.R
				if at1.Tag == term.TK {
					q := at2
					// S (K p) (K q) = K (p q)
					return term.App(term.K, term.App(Optimize(p), Optimize(q)))
				}
				if at1.Tag == term.TApp {
					bh, bt := at1.L, at1.R
					if bh.Tag == term.TB {
						q, r := bt, at2
						// S (K p) (B q r) = B* p q r
						return term.App(term.App(term.App(term.Bs, Optimize(p)), Optimize(q)), Optimize(r))
					}
				}
			}
			q := arg2
			// S (K p) q = B p q
			return term.App(term.App(term.B, Optimize(p)), Optimize(q))
		}

		if a1h.Tag == term.TApp {
			bh, bt := a1h.L, a1h.R
			if bh.Tag == term.TB {
				p, q := bt, a1t
				// term is (S (B p q) arg2)
				if arg2.Tag == term.TApp {
					at1, at2 := arg2.L, arg2.R
					if at1.Tag == term.TK {
						r := at2
						// S (B p q) (K r) = C' p q r
						return term.App(term.App(term.App(term.Cp, Optimize(p)), Optimize(q)), Optimize(r))
					}
					r := arg2
					// S (B p q) r = S' p q r
					return term.App(term.App(term.App(term.Sp, Optimize(p)), Optimize(q)), Optimize(r))
				}
			}
		}
	}

	p := arg1
	if arg2.Tag == term.TApp {
		at1, at2 := arg2.L, arg2.R
		if at1.Tag == term.TK {
			q := at2
			// S p (K q) = C p q
			return term.App(term.App(term.C, Optimize(p)), Optimize(q))
		}
	}
	q := arg2
	// S p q = S T[p] T[q]
	return term.App(term.App(term.S, Optimize(p)), Optimize(q))
}
