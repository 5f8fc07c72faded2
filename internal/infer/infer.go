// Package infer implements a Hindley-Milner (algorithm-W) type
// inferencer over surface terms, offered as a side utility via the
// REPL's `:type EXPR` command. It runs only on demand, never during
// ordinary evaluation.
//
// Type/Scheme/constraints/Infer and their generalize/infer methods form
// the usual algorithm-W pipeline, simplified where this grammar's own
// feature set justifies it (see the Infer type's doc).
package infer

import (
	"fmt"
	"sort"
	"strings"

	"nrm/internal/symbol"
	"nrm/internal/term"
)

// Kind discriminates a Type's three shapes, mirroring infer.rs's Type
// enum (Const/TVar/Arrow).
type Kind int

const (
	KConst Kind = iota
	KVar
	KArrow
)

// Type is a monomorphic type: a named base type, a type variable, or a
// function arrow.
type Type struct {
	Kind     Kind
	Name     string // KConst, KVar
	Dom, Cod *Type  // KArrow
}

func constT(name string) *Type   { return &Type{Kind: KConst, Name: name} }
func varT(name string) *Type     { return &Type{Kind: KVar, Name: name} }
func arrowT(a, b *Type) *Type    { return &Type{Kind: KArrow, Dom: a, Cod: b} }
func arrowN(ts ...*Type) *Type {
	result := ts[len(ts)-1]
	for i := len(ts) - 2; i >= 0; i-- {
		result = arrowT(ts[i], result)
	}
	return result
}

var (
	intType  = constT("Int")
	boolType = constT("Bool")
	charType = constT("Char")
)

// subst applies a substitution (type-variable name -> Type), recursing
// on Arrow and resolving chained bindings on TVar exactly as
// TypeRef::subst does.
func (t *Type) subst(s map[string]*Type) *Type {
	switch t.Kind {
	case KConst:
		return t
	case KVar:
		if repl, ok := s[t.Name]; ok {
			return repl.subst(s)
		}
		return t
	default: // KArrow
		return arrowT(t.Dom.subst(s), t.Cod.subst(s))
	}
}

// ftv collects the free type variables of t into set (a set, not a
// multiset — see the Infer type's doc for why the original's reference-
// counted HashBag bookkeeping is unnecessary here).
func (t *Type) ftv(set map[string]bool) {
	switch t.Kind {
	case KConst:
	case KVar:
		set[t.Name] = true
	case KArrow:
		t.Dom.ftv(set)
		t.Cod.ftv(set)
	}
}

func (t *Type) occurs(name string) bool {
	set := map[string]bool{}
	t.ftv(set)
	return set[name]
}

func (t *Type) String() string {
	var sb strings.Builder
	t.write(&sb, false)
	return sb.String()
}

func (t *Type) write(sb *strings.Builder, paren bool) {
	switch t.Kind {
	case KConst, KVar:
		sb.WriteString(t.Name)
	case KArrow:
		if paren {
			sb.WriteByte('(')
		}
		t.Dom.write(sb, t.Dom.Kind == KArrow)
		sb.WriteString(" -> ")
		t.Cod.write(sb, false)
		if paren {
			sb.WriteByte(')')
		}
	}
}

// Scheme is a type generalized over a list of quantified variables
// (infer.rs's Scheme), printed as "forall a b. type" when non-empty.
type Scheme struct {
	Vars []string
	Type *Type
}

func (s *Scheme) String() string {
	if len(s.Vars) == 0 {
		return s.Type.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(s.Vars, " "), s.Type.String())
}

// rename gives a scheme's quantified variables the conventional a, b,
// c... names instead of the internal "#N" fresh-variable names,
// matching Scheme::rename's letter table.
var letters = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j",
	"k", "l", "m", "n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z"}

func (s *Scheme) rename() *Scheme {
	sub := map[string]*Type{}
	newVars := make([]string, 0, len(s.Vars))
	for i, v := range s.Vars {
		name := fmt.Sprintf("t%d", i)
		if i < len(letters) {
			name = letters[i]
		}
		sub[v] = varT(name)
		newVars = append(newVars, name)
	}
	return &Scheme{Vars: newVars, Type: s.Type.subst(sub)}
}

// constraints is the deferred unification work-list (infer.rs's
// Constraints): App defers rather than unifying eagerly so one
// occur-check-failing branch doesn't abort inference of the rest of the
// term.
type constraints struct {
	pairs [][2]*Type
}

func (c *constraints) unify(a, b *Type) {
	c.pairs = append(c.pairs, [2]*Type{a, b})
}

func (c *constraints) solve() (map[string]*Type, error) {
	sub := map[string]*Type{}
	for len(c.pairs) > 0 {
		n := len(c.pairs) - 1
		a, b := c.pairs[n][0].subst(sub), c.pairs[n][1].subst(sub)
		c.pairs = c.pairs[:n]

		switch {
		case a.Kind == KVar:
			if b.occurs(a.Name) {
				return nil, fmt.Errorf("occur check failed for %s", a.Name)
			}
			sub[a.Name] = b
		case b.Kind == KVar:
			if a.occurs(b.Name) {
				return nil, fmt.Errorf("occur check failed for %s", b.Name)
			}
			sub[b.Name] = a
		case a.Kind == KConst && b.Kind == KConst:
			if a.Name != b.Name {
				return nil, fmt.Errorf("can't unify %s and %s", a, b)
			}
		case a.Kind == KArrow && b.Kind == KArrow:
			c.unify(a.Dom, b.Dom)
			c.unify(a.Cod, b.Cod)
		default:
			return nil, fmt.Errorf("can't unify %s and %s", a, b)
		}
	}
	return sub, nil
}

// builtins gives every zero-arity combinator, eager marker, and
// primitive a fixed polymorphic type. Eager markers E1..E4/E(n) and the
// plain combinators I/K/S/B/C/S'/B*/C' never change what a term
// semantically computes, only when its arguments are forced — so for
// typing purposes each is given exactly the type combinator calculus
// assigns it; E(n) in particular types as the identity (`forall a. a ->
// a`), which is enough for unification to thread the wrapped
// primitive's real type through "+ " = "App(E2, AddI)" and friends.
func builtinScheme(tag term.Tag, fresh func() *Type) *Scheme {
	a, b, c := fresh(), fresh(), fresh()
	switch tag {
	case term.TI, term.TEager:
		return &Scheme{Type: arrowT(a, a)}
	case term.TK:
		return &Scheme{Type: arrowN(a, b, a)}
	case term.TS:
		return &Scheme{Type: arrowN(arrowN(a, b, c), arrowN(a, b), a, c)}
	case term.TB:
		return &Scheme{Type: arrowN(arrowN(b, c), arrowN(a, b), a, c)}
	case term.TC:
		return &Scheme{Type: arrowN(arrowN(a, b, c), b, a, c)}
	case term.TSp:
		d := fresh()
		return &Scheme{Type: arrowN(arrowN(b, c, d), arrowN(a, b), arrowN(a, c), a, d)}
	case term.TBs:
		d := fresh()
		return &Scheme{Type: arrowN(arrowN(a, c, d), a, arrowN(b, c), b, d)}
	case term.TCp:
		d := fresh()
		return &Scheme{Type: arrowN(arrowN(b, c, d), arrowN(a, b), c, a, d)}
	case term.TAddI, term.TSubI, term.TMulI, term.TDivI:
		return &Scheme{Type: arrowN(intType, intType, intType)}
	case term.TGrtI, term.TLssI, term.TEqlI:
		return &Scheme{Type: arrowN(intType, intType, boolType)}
	case term.TNot:
		return &Scheme{Type: arrowT(boolType, boolType)}
	case term.TAnd, term.TOr:
		return &Scheme{Type: arrowN(boolType, boolType, boolType)}
	case term.TIfte:
		return &Scheme{Type: arrowN(boolType, a, a, a)}
	default:
		return nil
	}
}

// Infer holds algorithm-W's mutable state for one top-level inference
// run: the lambda-parameter type environment and the deferred
// constraint set. There is deliberately no history/backup/recover stack
// for a let-bound environment: this grammar has no LetIn production, so
// generalize is only ever invoked once, at the very top, after every
// Lam scope opened during inference has already been closed. At that
// point the environment is unconditionally empty, so there is nothing
// left to exclude from generalization.
type Infer struct {
	env      map[symbol.Symb]*Type
	cons     constraints
	freshIdx int
}

func New() *Infer {
	return &Infer{env: map[symbol.Symb]*Type{}}
}

func (inf *Infer) newvar() *Type {
	name := fmt.Sprintf("#%d", inf.freshIdx)
	inf.freshIdx++
	return varT(name)
}

func (inf *Infer) infer(t term.Ref) (*Type, error) {
	switch t.Tag {
	case term.TApp, term.TLam, term.TVar, term.TInt, term.TBool, term.TChar:
		// handled below
	default:
		if bs := builtinScheme(t.Tag, inf.newvar); bs != nil {
			return bs.Type, nil
		}
	}
	switch t.Tag {
	case term.TInt:
		return intType, nil
	case term.TBool:
		return boolType, nil
	case term.TChar:
		return charType, nil
	case term.TVar:
		ty, ok := inf.env[t.X]
		if !ok {
			return nil, fmt.Errorf("%s is not bound", symbol.Name(t.X))
		}
		return ty, nil
	case term.TLam:
		paramTy := inf.newvar()
		old, had := inf.env[t.X]
		inf.env[t.X] = paramTy
		bodyTy, err := inf.infer(t.L)
		if had {
			inf.env[t.X] = old
		} else {
			delete(inf.env, t.X)
		}
		if err != nil {
			return nil, err
		}
		return arrowT(paramTy, bodyTy), nil
	case term.TApp:
		fnTy, err := inf.infer(t.L)
		if err != nil {
			return nil, err
		}
		argTy, err := inf.infer(t.R)
		if err != nil {
			return nil, err
		}
		resultTy := inf.newvar()
		inf.cons.unify(fnTy, arrowT(argTy, resultTy))
		return resultTy, nil
	default:
		return nil, fmt.Errorf("%s has no inferable type", t.String())
	}
}

func (inf *Infer) generalize(t *Type) *Scheme {
	set := map[string]bool{}
	t.ftv(set)
	vars := make([]string, 0, len(set))
	for v := range set {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return (&Scheme{Vars: vars, Type: t}).rename()
}

// InferType runs algorithm-W over t (a freshly parsed, uncompiled
// surface term) and returns its principal type scheme.
func InferType(t term.Ref) (*Scheme, error) {
	inf := New()
	ty, err := inf.infer(t)
	if err != nil {
		return nil, err
	}
	sub, err := inf.cons.solve()
	if err != nil {
		return nil, err
	}
	return inf.generalize(ty.subst(sub)), nil
}
