package lsp

import "context"

func (h *LangHandler) handleTextDocumentDidClose(ctx context.Context, params *DidCloseTextDocumentParams) error {
	h.closeFile(params.TextDocument.URI)
	return nil
}
