package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"nrm/internal/errors"
)

// ConvertDiagnostic converts a single internal/grammar parse diagnostic
// into an LSP Diagnostic. internal/grammar reports both lexer and
// parser failures through the one errors.Diagnostic taxonomy, so there
// is only a single conversion path (see internal/errors).
func ConvertDiagnostic(d errors.Diagnostic) protocol.Diagnostic {
	line := uint32(0)
	if d.Position.Line > 0 {
		line = uint32(d.Position.Line - 1)
	}
	col := uint32(0)
	if d.Position.Column > 0 {
		col = uint32(d.Position.Column - 1)
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("nrm"),
		Message:  d.Message,
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
