package svelte

import (
	"strings"

	"github.com/svfmt/svfmt/pkg/prettier"
)

// ignoreMarker suppresses reformatting of the next sibling when it appears
// as a comment's content.
const ignoreMarker = "svfmt-ignore"

// trimFront returns children without leading whitespace-only text nodes.
// hadBlank reports whether any dropped node contained a blank line (two or
// more line terminators), which survives as a preserved blank line.
func trimFront(children []Node) (trimmed []Node, hadBlank bool) {
	i := 0
	for i < len(children) {
		t, ok := children[i].(*Text)
		if !ok || !t.IsWhitespace() {
			break
		}
		if newlineCount(t.Data) >= 2 {
			hadBlank = true
		}
		i++
	}
	return children[i:], hadBlank
}

// trimBack is trimFront's mirror.
func trimBack(children []Node) (trimmed []Node, hadBlank bool) {
	i := len(children)
	for i > 0 {
		t, ok := children[i-1].(*Text)
		if !ok || !t.IsWhitespace() {
			break
		}
		if newlineCount(t.Data) >= 2 {
			hadBlank = true
		}
		i--
	}
	return children[:i], hadBlank
}

func newlineCount(s string) int {
	return strings.Count(s, "\n")
}

func allWhitespace(children []Node) bool {
	for _, child := range children {
		t, ok := child.(*Text)
		if !ok || !t.IsWhitespace() {
			return false
		}
	}
	return true
}

// inlineSep is the separator between two inline siblings: an ordinary
// break opportunity, or a forced blank line when the source held one.
func inlineSep(newlines int) prettier.Doc {
	if newlines >= 2 {
		return prettier.Concat{prettier.HardLine{}, prettier.HardLine{}}
	}
	return prettier.Line{}
}

// blockSep is the separator on either side of a block sibling.
func blockSep(newlines int) prettier.Doc {
	if newlines >= 2 {
		return prettier.Concat{prettier.HardLine{}, prettier.HardLine{}}
	}
	return prettier.HardLine{}
}

// printChildren converts a sibling list into one document, inserting
// breaks only where they are both legal and wanted. Consecutive inline
// siblings batch into a single Group(Fill) so a breaking block elsewhere
// cannot force premature breaks inside running text; directly adjacent
// inline content with no whitespace between collapses into one
// non-breaking unit. keepEdgeBlankLines preserves a blank line found at
// either edge of the list (element bodies keep them; the root does not).
func (p *printer) printChildren(children []Node, keepEdgeBlankLines bool) prettier.Doc {
	children, leadBlank := trimFront(children)
	children, trailBlank := trimBack(children)

	// A blank line at the edge of a text node counts the same as a
	// whitespace-only sibling there.
	if len(children) > 0 {
		if t, ok := children[0].(*Text); ok {
			ws := t.Data[:len(t.Data)-len(strings.TrimLeft(t.Data, " \t\n\r"))]
			if newlineCount(ws) >= 2 {
				leadBlank = true
			}
		}
		if t, ok := children[len(children)-1].(*Text); ok {
			ws := t.Data[len(strings.TrimRight(t.Data, " \t\n\r")):]
			if newlineCount(ws) >= 2 {
				trailBlank = true
			}
		}
	}

	var groups []prettier.Doc
	var run []prettier.Doc
	pendingSep := -1 // newline count of whitespace since the last content; -1 = none
	ignoreNext := false

	flushRun := func() {
		if len(run) > 0 {
			groups = append(groups, prettier.Group{Doc: prettier.Fill(run)})
			run = nil
		}
	}

	appendInline := func(doc prettier.Doc) {
		if len(run) == 0 {
			if len(groups) > 0 {
				sep := 0
				if pendingSep > 0 {
					sep = pendingSep
				}
				groups = append(groups, blockSep(sep))
			}
			run = append(run, doc)
		} else if pendingSep >= 0 {
			run = append(run, inlineSep(pendingSep), doc)
		} else {
			// No whitespace between the previous inline content and this
			// one: no legal break point, so they fuse into one unit.
			run[len(run)-1] = prettier.Concat{run[len(run)-1], doc}
		}
		pendingSep = -1
	}

	appendBlock := func(doc prettier.Doc) {
		flushRun()
		if len(groups) > 0 {
			sep := 0
			if pendingSep > 0 {
				sep = pendingSep
			}
			groups = append(groups, blockSep(sep))
		}
		groups = append(groups, doc)
		pendingSep = -1
	}

	for _, child := range children {
		if t, ok := child.(*Text); ok && t.IsWhitespace() {
			if n := newlineCount(t.Data); n > pendingSep {
				pendingSep = n
			}
			if pendingSep < 0 {
				pendingSep = 0
			}
			continue
		}

		if ignoreNext {
			ignoreNext = false
			doc := p.verbatim(child)
			if isInlineNode(child) {
				appendInline(doc)
			} else {
				appendBlock(doc)
			}
			continue
		}

		if t, ok := child.(*Text); ok {
			for _, tok := range textTokens(t.Data) {
				if tok.isWhitespace {
					if tok.newlines > pendingSep {
						pendingSep = tok.newlines
					}
					if pendingSep < 0 {
						pendingSep = 0
					}
					continue
				}
				appendInline(prettier.Text(tok.word))
			}
			continue
		}

		doc := p.printNode(child)
		if isInlineNode(child) {
			appendInline(doc)
		} else {
			appendBlock(doc)
		}

		if c, ok := child.(*Comment); ok && strings.TrimSpace(c.Data) == ignoreMarker {
			ignoreNext = true
		}
	}
	flushRun()

	if keepEdgeBlankLines && leadBlank && len(groups) > 0 {
		groups = append([]prettier.Doc{prettier.HardLine{}}, groups...)
	}
	if keepEdgeBlankLines && trailBlank && len(groups) > 0 {
		groups = append(groups, prettier.HardLine{})
	}

	return prettier.Concat(groups)
}

// printInlineBody prints the body of an inline-level element. Edge
// whitespace is rendering-significant there, so it survives as ordinary
// break opportunities instead of being trimmed.
func (p *printer) printInlineBody(children []Node) prettier.Doc {
	lead := edgeSeparator(children, false)
	trail := edgeSeparator(children, true)

	body := p.printChildren(children, false)

	parts := prettier.Concat{}
	if lead != nil {
		parts = append(parts, lead)
	}
	parts = append(parts, body)
	if trail != nil {
		parts = append(parts, trail)
	}
	return parts
}

// edgeSeparator inspects the whitespace-only text at one edge of a child
// list and returns the separator it stands for, or nil.
func edgeSeparator(children []Node, back bool) prettier.Doc {
	newlines := -1
	for i := range children {
		idx := i
		if back {
			idx = len(children) - 1 - i
		}
		t, ok := children[idx].(*Text)
		if !ok {
			break
		}
		if t.IsWhitespace() {
			if n := newlineCount(t.Data); n > newlines {
				newlines = n
			}
			continue
		}
		// Edge whitespace inside a text node counts too.
		data := t.Data
		var ws string
		if back {
			ws = data[len(strings.TrimRight(data, " \t\n\r")):]
		} else {
			ws = data[:len(data)-len(strings.TrimLeft(data, " \t\n\r"))]
		}
		if ws != "" {
			if n := newlineCount(ws); n > newlines {
				newlines = n
			}
			if newlines < 0 {
				newlines = 0
			}
		}
		break
	}
	if newlines < 0 {
		return nil
	}
	return inlineSep(newlines)
}

// preserveBody reproduces children verbatim for whitespace-preserving
// regions. If the body ends in a single forced newline it is pulled out so
// the closing delimiter lands re-indented on its own line.
func (p *printer) preserveBody(children []Node) (prettier.Doc, bool) {
	trailingNewline := false
	if n := len(children); n > 0 {
		if t, ok := children[n-1].(*Text); ok && strings.HasSuffix(t.Data, "\n") {
			trailingNewline = true
			trimmed := *t
			trimmed.Data = strings.TrimSuffix(t.Data, "\n")
			children = append(append([]Node{}, children[:n-1]...), &trimmed)
		}
	}

	var docs prettier.Concat
	for _, child := range children {
		if t, ok := child.(*Text); ok {
			docs = append(docs, verbatimText(t.Data))
			continue
		}
		docs = append(docs, p.printNode(child))
	}
	return docs, trailingNewline
}

// verbatimText maps raw text with newlines onto literal line breaks so the
// renderer reproduces it byte-for-byte.
func verbatimText(s string) prettier.Doc {
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return prettier.Text(s)
	}
	docs := make(prettier.Concat, 0, len(lines)*2-1)
	for i, line := range lines {
		if i > 0 {
			docs = append(docs, prettier.LiteralLine{})
		}
		docs = append(docs, prettier.Text(line))
	}
	return docs
}

type textToken struct {
	word         string
	newlines     int
	isWhitespace bool
}

// textTokens splits text into alternating word and whitespace tokens,
// remembering how many line terminators each whitespace run held.
func textTokens(s string) []textToken {
	var tokens []textToken
	i := 0
	for i < len(s) {
		j := i
		if isSpace(s[i]) {
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			tokens = append(tokens, textToken{
				newlines:     newlineCount(s[i:j]),
				isWhitespace: true,
			})
		} else {
			for j < len(s) && !isSpace(s[j]) {
				j++
			}
			tokens = append(tokens, textToken{word: s[i:j]})
		}
		i = j
	}
	return tokens
}
