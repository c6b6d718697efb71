package lsp

import (
	"context"
	"log/slog"

	"github.com/svfmt/svfmt/pkg/svelte"
)

func (h *LangHandler) handleTextDocumentFormatting(ctx context.Context, params *DocumentFormattingParams) ([]TextEdit, error) {
	f, ok := h.file(params.TextDocument.URI)
	if !ok {
		slog.WarnContext(ctx, "formatting unknown document", "uri", params.TextDocument.URI)
		return nil, nil
	}

	opts := h.opts
	if params.Options.TabSize > 0 {
		opts.TabWidth = params.Options.TabSize
		opts.UseTabs = !params.Options.InsertSpaces
	}

	formatted, err := svelte.Format(f.Text, opts)
	if err != nil {
		// Malformed documents are reported through diagnostics; a
		// formatting request is not the place to surface them.
		slog.DebugContext(ctx, "formatting skipped", "uri", params.TextDocument.URI, "error", err)
		return []TextEdit{}, nil
	}
	if formatted == f.Text {
		return []TextEdit{}, nil
	}

	return []TextEdit{{
		Range:   fullRange(f.Text),
		NewText: formatted,
	}}, nil
}
