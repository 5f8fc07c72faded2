package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TermLexer tokenizes the term surface syntax: lambda abstraction,
// juxtaposition application, the fixed combinator/operator vocabulary, and
// integer literals.
//
// Reserved combinator and keyword names are matched before Ident so that a
// bare "I", "K", "not", etc. always denotes the fixed term rather than a
// variable of that name.
var TermLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Reserved", `(?:S'|B\*|C'|\b(?:E1|E2|E3|I|K|S|B|C|not|and|or|if)\b)`, nil},
		{"Operator", `[+\-*/><=]`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Ident", `[_A-Za-z][_A-Za-z0-9]*`, nil},
		{"Punct", `[\\.();:]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
