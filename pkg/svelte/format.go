package svelte

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/svfmt/svfmt/pkg/prettier"
)

// SublangFormatter formats an embedded sublanguage body. The returned text
// replaces the body; an error leaves the original untouched.
type SublangFormatter func(source string) (string, error)

// scriptLangs and styleLangs are the allow-lists of sublanguages that may
// be dispatched to a registered formatter from each region kind. Aliases
// map onto the canonical name.
var (
	scriptLangs = map[string]string{
		"javascript": "javascript",
		"js":         "javascript",
		"typescript": "typescript",
		"ts":         "typescript",
	}
	styleLangs = map[string]string{
		"css":  "css",
		"scss": "scss",
		"less": "less",
	}
)

// Registry maps sublanguage names to formatters. The zero value is not
// usable; construct with NewRegistry. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]SublangFormatter
}

func NewRegistry() *Registry {
	return &Registry{formatters: map[string]SublangFormatter{}}
}

// Register installs a formatter for a sublanguage ("typescript", "scss",
// ...). Registering again replaces the previous formatter.
func (r *Registry) Register(lang string, f SublangFormatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if canon, ok := scriptLangs[lang]; ok {
		lang = canon
	} else if canon, ok := styleLangs[lang]; ok {
		lang = canon
	}
	r.formatters[lang] = f
}

// formatterFor resolves a formatter for a region's language. Languages
// outside the region's allow-list never dispatch, whatever is registered.
func (r *Registry) formatterFor(region, lang string) (SublangFormatter, bool) {
	var canon string
	var ok bool
	switch region {
	case "script":
		canon, ok = scriptLangs[lang]
	case "style":
		canon, ok = styleLangs[lang]
	}
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[canon]
	return f, ok
}

// Format pretty-prints component source. Embedded script and style bodies
// are snipped out before parsing and restored (optionally reformatted)
// during printing, so the markup parser never sees sublanguage text.
// Output always ends in exactly one newline, except for empty input.
func Format(source string, opts Options) (string, error) {
	if !opts.SortOrder.Valid() {
		opts.SortOrder = SortScriptsMarkupStyles
	}
	if opts.PrintWidth <= 0 {
		opts.PrintWidth = DefaultOptions().PrintWidth
	}

	encoded := EncodeEmbedded(source)
	root, err := Parse(encoded)
	if err != nil {
		return "", err
	}

	p := &printer{opts: opts, source: encoded}
	out := prettier.Render(p.printRoot(root), opts.PrintWidth, opts.indentString())
	out = strings.TrimRight(out, " \t\n")
	if out == "" {
		return "", nil
	}
	return out + "\n", nil
}

// FormatFile is Format with parse errors upgraded to source-annotated
// errors for display.
func FormatFile(filename, source string, opts Options) (string, error) {
	out, err := Format(source, opts)
	if err == nil {
		return out, nil
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		// Offsets refer to the codec-rewritten text.
		return "", NewSourceError(perr, filename, EncodeEmbedded(source), perr.Offset, 1)
	}
	return "", err
}
