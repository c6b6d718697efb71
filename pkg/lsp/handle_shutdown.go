package lsp

import (
	"context"
	"log/slog"
)

func (h *LangHandler) handleShutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "shutdown requested")
	return nil
}

func (h *LangHandler) handleExit(ctx context.Context) error {
	if h.srv != nil {
		h.srv.Stop()
	}
	return nil
}
