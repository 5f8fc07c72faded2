// Command nrm-lsp is a diagnostics-only language server for .nrm files,
// wiring internal/lsp.Handler's notification handlers into a glsp
// stdio server.
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"nrm/internal/lsp"
)

const lsName = "nrm"

var version = "0.0.1"

func main() {
	commonlog.Configure(1, nil)

	h := lsp.NewHandler()

	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidClose:  h.TextDocumentDidClose,
		TextDocumentDidChange: h.TextDocumentDidChange,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Printf("Starting %s LSP server (%s)...", lsName, version)
	if err := s.RunStdio(); err != nil {
		log.Println("Error starting nrm LSP server:", err)
		os.Exit(1)
	}
}
