package lsp

import "context"

func (h *LangHandler) handleTextDocumentDidChange(ctx context.Context, params *DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// Sync is full-document: the last change event carries the whole text.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	version := params.TextDocument.Version
	return h.updateFile(ctx, params.TextDocument.URI, text, &version)
}
