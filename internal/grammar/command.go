package grammar

import (
	"strings"

	"nrm/internal/errors"
	"nrm/internal/symbol"
	"nrm/internal/term"
)

// Command is one parsed REPL input line: a colon-prefixed directive
// (quit, dict, define/update/delete, load, type query) or a bare term
// to evaluate. Exactly one field is non-nil/zero.
type Command struct {
	Quit   bool
	Dict   bool
	Define *DefineCommand
	Update *UpdateCommand
	Delete *DeleteCommand
	Load   *LoadCommand
	Type   term.Ref
	Repl   term.Ref
}

type DefineCommand struct {
	Symbol symbol.Symb
	Text   string // unparsed; internal/dict parses+compiles it on define
}

type UpdateCommand struct {
	Symbol symbol.Symb
	Text   string
}

type DeleteCommand struct {
	Symbol symbol.Symb
}

type LoadCommand struct {
	Path string
}

// ParseCommand dispatches a REPL line: a colon-prefixed keyword selects
// a named command whose payload (definition body, file path) is kept as
// raw text rather than eagerly parsed; anything else is a bare term
// expression. This dispatcher is plain Go rather than a participle
// grammar because it is a short fixed set of line prefixes — the real
// grammar (AppList/Lambda/Reserved) lives in ParseTerm and is reused for
// every payload below.
func ParseCommand(filename, line string) (*Command, *errors.Diagnostic) {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == ":quit":
		return &Command{Quit: true}, nil
	case trimmed == ":dict":
		return &Command{Dict: true}, nil
	case strings.HasPrefix(trimmed, ":define"):
		symb, rest, err := splitSymbolAndRest(filename, trimmed[len(":define"):])
		if err != nil {
			return nil, err
		}
		return &Command{Define: &DefineCommand{Symbol: symb, Text: rest}}, nil
	case strings.HasPrefix(trimmed, ":update"):
		symb, rest, err := splitSymbolAndRest(filename, trimmed[len(":update"):])
		if err != nil {
			return nil, err
		}
		return &Command{Update: &UpdateCommand{Symbol: symb, Text: rest}}, nil
	case strings.HasPrefix(trimmed, ":delete"):
		name := strings.TrimSpace(trimmed[len(":delete"):])
		if name == "" {
			d := errors.ParseError(errors.Position{Filename: filename}, "expected a symbol after :delete")
			return nil, &d
		}
		return &Command{Delete: &DeleteCommand{Symbol: symbol.New(name)}}, nil
	case strings.HasPrefix(trimmed, ":load"):
		path := strings.TrimSpace(trimmed[len(":load"):])
		if path == "" {
			d := errors.ParseError(errors.Position{Filename: filename}, "expected a path after :load")
			return nil, &d
		}
		return &Command{Load: &LoadCommand{Path: path}}, nil
	case strings.HasPrefix(trimmed, ":type"):
		t, derr := ParseTerm(filename, strings.TrimSpace(trimmed[len(":type"):]))
		if derr != nil {
			return nil, derr
		}
		return &Command{Type: t}, nil
	case strings.HasPrefix(trimmed, ":"):
		d := errors.ParseError(errors.Position{Filename: filename}, "unknown command "+trimmed)
		return nil, &d
	default:
		t, derr := ParseTerm(filename, trimmed)
		if derr != nil {
			return nil, derr
		}
		return &Command{Repl: t}, nil
	}
}

func splitSymbolAndRest(filename, s string) (symbol.Symb, string, *errors.Diagnostic) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	var name, rest string
	if i < 0 {
		name, rest = s, ""
	} else {
		name, rest = s[:i], strings.TrimSpace(s[i+1:])
	}
	if name == "" {
		d := errors.ParseError(errors.Position{Filename: filename}, "expected a symbol name")
		return symbol.Symb{}, "", &d
	}
	return symbol.New(name), rest, nil
}
