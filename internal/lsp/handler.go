// Package lsp implements a minimal diagnostics-only language server for
// .nrm files: parse every semicolon-separated command in a document,
// publish one Diagnostic per parse failure, and nothing else. No
// completion, no semantic tokens, no hover — this evaluator has no
// notion of contract storage, ABI, or symbol-kind highlighting to
// expose to an editor.
package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"nrm/internal/grammar"
)

// Handler implements the LSP handlers for .nrm documents.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.lintAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange re-reads the document from disk rather than
// applying params.ContentChanges, since full-sync mode always carries
// the whole document on disk by the time the notification arrives.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return h.lintAndPublish(ctx, params.TextDocument.URI, string(text))
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// lintAndPublish parses every ";;"-separated command in text and
// publishes one diagnostic per parse failure, matching cmd/nrm's own
// :load splitting convention so a .nrm file lints the same way it loads.
func (h *Handler) lintAndPublish(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	var diagnostics []protocol.Diagnostic
	for _, chunk := range strings.Split(text, ";;") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		if _, derr := grammar.ParseCommand(path, chunk); derr != nil {
			diagnostics = append(diagnostics, ConvertDiagnostic(*derr))
		}
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
