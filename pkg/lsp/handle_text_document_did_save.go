package lsp

import "context"

func (h *LangHandler) handleTextDocumentDidSave(ctx context.Context, params *DidSaveTextDocumentParams) error {
	if params.Text != nil {
		return h.updateFile(ctx, params.TextDocument.URI, *params.Text, nil)
	}
	return nil
}
