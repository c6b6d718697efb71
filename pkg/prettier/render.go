package prettier

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Render lays out doc at the given maximum line width, indenting with
// indent per level. Rendering is deterministic: the same document and
// width always produce the same text.
func Render(doc Doc, maxWidth int, indent string) string {
	r := &renderer{
		maxWidth:  maxWidth,
		indentStr: indent,
	}
	r.render(doc, 0, false)
	return r.out.String()
}

type renderer struct {
	out       strings.Builder
	col       int    // visible width of the current line
	pending   string // indentation owed before the next text write
	maxWidth  int
	indentStr string
}

func (r *renderer) text(s string) {
	if s == "" {
		return
	}
	if r.pending != "" {
		r.out.WriteString(r.pending)
		r.pending = ""
	}
	r.out.WriteString(s)
	r.col += ansi.StringWidth(s)
}

// newline starts a fresh line at the given indentation level. The
// indentation itself is written lazily so that blank lines carry no
// trailing whitespace.
func (r *renderer) newline(level int) {
	r.out.WriteByte('\n')
	if level < 0 {
		level = 0
	}
	r.pending = strings.Repeat(r.indentStr, level)
	r.col = ansi.StringWidth(r.pending)
}

func (r *renderer) render(doc Doc, level int, flat bool) {
	switch d := doc.(type) {
	case Text:
		r.text(string(d))

	case Concat:
		for _, inner := range d {
			r.render(inner, level, flat)
		}

	case Line:
		if flat {
			r.text(" ")
		} else {
			r.newline(level)
		}

	case SoftLine:
		if !flat {
			r.newline(level)
		}

	case HardLine:
		r.newline(level)

	case LiteralLine:
		r.out.WriteByte('\n')
		r.pending = ""
		r.col = 0

	case Indent:
		r.render(d.Doc, level+1, flat)

	case Dedent:
		r.render(d.Doc, level-1, flat)

	case BreakParent:
		// Emits nothing; its effect is observed by WillBreak.

	case Group:
		switch {
		case flat:
			r.render(d.Doc, level, true)
		case WillBreak(d.Doc):
			r.render(d.Doc, level, false)
		default:
			w, forced := flatWidth(d.Doc)
			r.render(d.Doc, level, !forced && r.col+w <= r.maxWidth)
		}

	case Fill:
		r.renderFill(d, level, flat)

	default:
		panic(fmt.Sprintf("prettier: unhandled document variant %T", doc))
	}
}

// renderFill evaluates each content/separator pair independently: the
// separator breaks only when the next content element does not fit flat
// on the remainder of the current line.
func (r *renderer) renderFill(f Fill, level int, flat bool) {
	for i := 0; i < len(f); i += 2 {
		content := f[i]
		cw, cforced := flatWidth(content)

		if i > 0 {
			sep := f[i-1]
			sw, sforced := flatWidth(sep)
			if flat || (!cforced && !sforced && r.col+sw+cw <= r.maxWidth) {
				r.render(sep, level, true)
			} else {
				r.render(sep, level, false)
			}
		}

		if flat || (!cforced && r.col+cw <= r.maxWidth) {
			r.render(content, level, true)
		} else {
			r.render(content, level, false)
		}
	}
}

// WillBreak reports whether doc contains an unconditional break (a hard or
// literal line, or a BreakParent), which forces every enclosing group into
// its broken state.
func WillBreak(doc Doc) bool {
	switch d := doc.(type) {
	case HardLine, LiteralLine, BreakParent:
		return true
	case Concat:
		for _, inner := range d {
			if WillBreak(inner) {
				return true
			}
		}
	case Fill:
		for _, inner := range d {
			if WillBreak(inner) {
				return true
			}
		}
	case Indent:
		return WillBreak(d.Doc)
	case Dedent:
		return WillBreak(d.Doc)
	case Group:
		return WillBreak(d.Doc)
	}
	return false
}

// flatWidth returns the visible width of the single-line form of doc.
// forced reports that the document cannot be laid out flat at all.
func flatWidth(doc Doc) (width int, forced bool) {
	switch d := doc.(type) {
	case Text:
		return ansi.StringWidth(string(d)), false
	case Concat:
		return flatWidthAll(d)
	case Fill:
		return flatWidthAll(d)
	case Line:
		return 1, false
	case SoftLine:
		return 0, false
	case HardLine, LiteralLine, BreakParent:
		return 0, true
	case Indent:
		return flatWidth(d.Doc)
	case Dedent:
		return flatWidth(d.Doc)
	case Group:
		return flatWidth(d.Doc)
	default:
		panic(fmt.Sprintf("prettier: unhandled document variant %T", doc))
	}
}

func flatWidthAll(docs []Doc) (width int, forced bool) {
	for _, doc := range docs {
		w, f := flatWidth(doc)
		if f {
			return 0, true
		}
		width += w
	}
	return width, false
}
