package lsp

import (
	"context"
	"log/slog"
)

func (h *LangHandler) handleInitialize(ctx context.Context, params *InitializeParams) (*InitializeResult, error) {
	slog.InfoContext(ctx, "initialize", "rootUri", params.RootURI)

	return &InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:           TextDocumentSyncKindFull,
			DocumentFormattingProvider: true,
		},
	}, nil
}

func (h *LangHandler) handleInitialized(ctx context.Context) error {
	return nil
}
