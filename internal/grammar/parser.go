package grammar

import (
	"github.com/alecthomas/participle/v2"

	"nrm/internal/errors"
	"nrm/internal/term"
)

var termParser = participle.MustBuild[AppList](
	participle.Lexer(TermLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseTerm parses a single term expression and converts it to a
// *term.Term, or returns a ParseError diagnostic built against this
// evaluator's internal/errors taxonomy instead of printing straight to
// stdout.
func ParseTerm(filename, source string) (term.Ref, *errors.Diagnostic) {
	ast, err := termParser.ParseString(filename, source)
	if err != nil {
		return nil, diagnosticFromError(filename, err)
	}
	return toTerm(ast), nil
}

func diagnosticFromError(filename string, err error) *errors.Diagnostic {
	pe, ok := err.(participle.Error)
	if !ok {
		d := errors.ParseError(errors.Position{Filename: filename}, err.Error())
		return &d
	}
	pos := pe.Position()
	d := errors.ParseError(errors.Position{
		Filename: filename,
		Line:     pos.Line,
		Column:   pos.Column,
	}, pe.Message())
	return &d
}
