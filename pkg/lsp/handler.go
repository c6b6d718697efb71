package lsp

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/pkg/errors"

	"github.com/svfmt/svfmt/pkg/svelte"
)

// NewHandler creates the JSON-RPC handler for the formatting language
// server. opts is the formatter configuration applied to every document.
func NewHandler(opts svelte.Options) *LangHandler {
	return &LangHandler{
		opts:  opts,
		files: make(map[DocumentURI]*File),
	}
}

type LangHandler struct {
	opts svelte.Options

	mu    sync.Mutex
	files map[DocumentURI]*File

	srv *jrpc2.Server
}

// File is an open document tracked through textDocument sync.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic
}

// SetServer wires the running server in so the handler can push
// notifications (diagnostics) back to the client.
func (h *LangHandler) SetServer(srv *jrpc2.Server) {
	h.srv = srv
}

// Assigner maps LSP methods onto their handlers.
func (h *LangHandler) Assigner() jrpc2.Assigner {
	return handler.Map{
		"initialize":              handler.New(h.handleInitialize),
		"initialized":             handler.New(h.handleInitialized),
		"shutdown":                handler.New(h.handleShutdown),
		"exit":                    handler.New(h.handleExit),
		"textDocument/didOpen":    handler.New(h.handleTextDocumentDidOpen),
		"textDocument/didChange":  handler.New(h.handleTextDocumentDidChange),
		"textDocument/didSave":    handler.New(h.handleTextDocumentDidSave),
		"textDocument/didClose":   handler.New(h.handleTextDocumentDidClose),
		"textDocument/formatting": handler.New(h.handleTextDocumentFormatting),
	}
}

func (h *LangHandler) openFile(uri DocumentURI, languageID string, version int, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[uri] = &File{
		LanguageID: languageID,
		Version:    version,
		Text:       text,
	}
}

func (h *LangHandler) closeFile(uri DocumentURI) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.files, uri)
}

func (h *LangHandler) file(uri DocumentURI) (*File, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.files[uri]
	return f, ok
}

// updateFile replaces a document's contents, revalidates it, and pushes
// fresh diagnostics.
func (h *LangHandler) updateFile(ctx context.Context, uri DocumentURI, text string, version *int) error {
	h.mu.Lock()
	f, ok := h.files[uri]
	if !ok {
		h.mu.Unlock()
		return errors.Errorf("document not found: %v", uri)
	}
	f.Text = text
	if version != nil {
		f.Version = *version
	}
	f.Diagnostics = diagnose(text)
	h.mu.Unlock()

	slog.DebugContext(ctx, "file updated", "uri", uri, "diagnostics", len(f.Diagnostics))
	h.publishDiagnostics(ctx, uri, f)
	return nil
}

// diagnose runs the parser over a document and converts any failure into
// a diagnostic at the error's position.
func diagnose(text string) []Diagnostic {
	// The parser sees codec-rewritten text, so positions are resolved
	// against the same rewriting.
	encoded := svelte.EncodeEmbedded(text)
	if _, err := svelte.Parse(encoded); err != nil {
		var perr *svelte.ParseError
		if !errors.As(err, &perr) {
			return nil
		}
		line, col := svelte.OffsetToLineColumn(encoded, perr.Offset)
		return []Diagnostic{{
			Range: Range{
				Start: Position{Line: line - 1, Character: col - 1},
				End:   Position{Line: line - 1, Character: col},
			},
			Severity: SeverityError,
			Source:   "svfmt",
			Message:  perr.Msg,
		}}
	}
	return nil
}

func (h *LangHandler) publishDiagnostics(ctx context.Context, uri DocumentURI, f *File) {
	if h.srv == nil {
		return
	}
	diagnostics := f.Diagnostics
	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}
	err := h.srv.Notify(ctx, "textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
		Version:     f.Version,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish diagnostics", "error", err)
	}
}

// fullRange covers a document's entire contents, for whole-document edits.
// Character offsets count UTF-16 code units, per the protocol.
func fullRange(text string) Range {
	lines := strings.Count(text, "\n")
	last := text
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		last = text[idx+1:]
	}
	return Range{
		Start: Position{Line: 0, Character: 0},
		End:   Position{Line: lines, Character: utf16Len(last)},
	}
}

// utf16Len is the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r > 0xFFFF {
			n++
		}
	}
	return n
}
