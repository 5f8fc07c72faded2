// Package grammar parses the surface term/command syntax into
// *term.Term using a participle-based grammar (struct-tag productions
// plus a stateful lexer): lambda "\x. body", left-associative
// juxtaposition application, parenthesized sub-expressions, and the ";"
// right-hand-subapplication sugar ("(f x; g y)" means "f x (g y)").
package grammar

import "github.com/alecthomas/participle/v2/lexer"

// AppList is a run of juxtaposed atoms, left-associative, optionally
// continued after a ";" into a right-hand sub-application.
type AppList struct {
	Pos  lexer.Position
	Head *Atom      `@@`
	Rest []*Atom    `{ @@ }`
	Cont *AppList   `[ ";" @@ ]`
}

// Atom is a single juxtaposition element: a parenthesized app-list, a
// lambda, a reserved combinator/operator/keyword, an integer literal, or
// a bare identifier (a free variable reference).
type Atom struct {
	Pos      lexer.Position
	Paren    *AppList `  "(" @@ ")"`
	Lambda   *Lambda  `| @@`
	Reserved *string  `| @Reserved`
	Op       *string  `| @Operator`
	Int      *string  `| @Integer`
	Ident    *string  `| @Ident`
}

// Lambda is "\x. body" — a single-parameter abstraction. Curried
// multi-argument lambdas are written out as nested abstractions, exactly
// as in the original surface syntax (no "\x y. body" sugar).
type Lambda struct {
	Pos   lexer.Position
	Param string   `"\\" @Ident "."`
	Body  *AppList `@@`
}
