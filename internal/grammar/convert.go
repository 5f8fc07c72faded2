package grammar

import (
	"fmt"
	"strconv"

	"nrm/internal/symbol"
	"nrm/internal/term"
)

// reservedTerms maps the fixed combinator/keyword vocabulary to the term
// it denotes. Binary primitive tokens desugar to "E2 <op>" so both
// operands are forced before application; unary "not" desugars to
// "E1 Not"; "if" desugars to "E1 Ifte" so only the condition is forced.
var reservedTerms = map[string]term.Ref{
	"I":  term.I,
	"K":  term.K,
	"S":  term.S,
	"B":  term.B,
	"C":  term.C,
	"S'": term.Sp,
	"B*": term.Bs,
	"C'": term.Cp,
	"E1": term.E1,
	"E2": term.E2,
	"E3": term.E3,
}

var operatorTerms = map[string]term.Ref{
	"+": term.App(term.E2, term.AddI),
	"-": term.App(term.E2, term.SubI),
	"*": term.App(term.E2, term.MulI),
	"/": term.App(term.E2, term.DivI),
	">": term.App(term.E2, term.GrtI),
	"<": term.App(term.E2, term.LssI),
	"=": term.App(term.E2, term.EqlI),
}

var keywordTerms = map[string]term.Ref{
	"not": term.App(term.E1, term.Not),
	"and": term.App(term.E2, term.And),
	"or":  term.App(term.E2, term.Or),
	"if":  term.App(term.E1, term.Ifte),
}

// toTerm converts a parsed AppList into a term.Ref, interning free
// variable and lambda-parameter names along the way.
func toTerm(a *AppList) term.Ref {
	result := atomToTerm(a.Head)
	for _, next := range a.Rest {
		result = term.App(result, atomToTerm(next))
	}
	if a.Cont != nil {
		result = term.App(result, toTerm(a.Cont))
	}
	return result
}

func atomToTerm(a *Atom) term.Ref {
	switch {
	case a.Paren != nil:
		return toTerm(a.Paren)
	case a.Lambda != nil:
		x := symbol.New(a.Lambda.Param)
		return term.Lam(x, toTerm(a.Lambda.Body))
	case a.Reserved != nil:
		if t, ok := reservedTerms[*a.Reserved]; ok {
			return t
		}
		if t, ok := keywordTerms[*a.Reserved]; ok {
			return t
		}
		panic(fmt.Sprintf("grammar: unrecognized reserved token %q", *a.Reserved))
	case a.Op != nil:
		t, ok := operatorTerms[*a.Op]
		if !ok {
			panic(fmt.Sprintf("grammar: unrecognized operator token %q", *a.Op))
		}
		return t
	case a.Int != nil:
		v, err := strconv.ParseInt(*a.Int, 10, 64)
		if err != nil {
			panic(fmt.Sprintf("grammar: malformed integer literal %q", *a.Int))
		}
		return term.Int(v)
	case a.Ident != nil:
		return term.Var(symbol.New(*a.Ident))
	default:
		panic("grammar: empty atom")
	}
}
