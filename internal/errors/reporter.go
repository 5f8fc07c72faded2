package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Position pinpoints a diagnostic in source text. Grammar carries these on
// every parse error; runtime diagnostics that have no source span (most of
// them — a stuck combinator has no source location once compiled) leave it
// zero.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// Diagnostic is a single reported problem: a kind, a message, and an
// optional source position. No Suggestions/Notes/HelpText fields — a
// runtime whose errors are one line each has no use for them.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Position Position // zero value means "no source span"
}

// Task-fatal runtime diagnostics built directly from the taxonomy.
func UnboundSymbol(name string) Diagnostic {
	return Diagnostic{Kind: KindUnboundSymbol, Message: fmt.Sprintf("%s is not bound", name)}
}

func TypeMismatch(op string, got string) Diagnostic {
	return Diagnostic{Kind: KindTypeMismatch, Message: fmt.Sprintf("%s: unexpected operand kind %s", op, got)}
}

func DivideByZero() Diagnostic {
	return Diagnostic{Kind: KindDivideByZero, Message: "division by zero"}
}

func NotAFunction(repr string) Diagnostic {
	return Diagnostic{Kind: KindNotAFunction, Message: fmt.Sprintf("%s is saturated with arguments but is not a function", repr)}
}

func UnknownTerm(repr string) Diagnostic {
	return Diagnostic{Kind: KindUnknownTerm, Message: fmt.Sprintf("%s has no reduction rule", repr)}
}

func ParseError(pos Position, message string) Diagnostic {
	return Diagnostic{Kind: KindParseError, Message: message, Position: pos}
}

// Reporter formats Diagnostics against a named source (the REPL input
// line, or a loaded file): a colored severity header, "--> file:line:col",
// and a caret line when a Position is present.
type Reporter struct {
	filename string
	lines    []string
}

func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders d as a human-facing, colored diagnostic string.
func (r *Reporter) Format(d Diagnostic) string {
	var sb strings.Builder

	levelColor := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(&sb, "%s[%s]: %s\n", levelColor("error"), codeOf[d.Kind], d.Message)

	if d.Position.Line > 0 {
		fmt.Fprintf(&sb, "%s %s:%d:%d\n", dim("-->"), r.filename, d.Position.Line, d.Position.Column)
		if d.Position.Line-1 < len(r.lines) {
			line := r.lines[d.Position.Line-1]
			fmt.Fprintf(&sb, "  %s %s\n", dim("│"), line)
			caret := strings.Repeat(" ", max(0, d.Position.Column-1)) + "^"
			fmt.Fprintf(&sb, "  %s %s\n", dim("│"), color.RedString(caret))
		}
	}
	return sb.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
