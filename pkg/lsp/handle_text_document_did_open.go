package lsp

import "context"

func (h *LangHandler) handleTextDocumentDidOpen(ctx context.Context, params *DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	h.openFile(doc.URI, doc.LanguageID, doc.Version, "")
	return h.updateFile(ctx, doc.URI, doc.Text, &doc.Version)
}
