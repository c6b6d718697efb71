// Package prettier provides the layout algebra and renderer used by the
// markup printer. A Doc is an immutable description of possible layouts;
// Render picks one for a given line width.
package prettier

// Doc is a document: a tree of layout instructions. Docs are pure values
// and are never mutated after construction.
type Doc interface {
	isDoc()

	// Flatten returns the single-line form of the document.
	// Hard and literal lines survive flattening.
	Flatten() Doc
}

// Text is literal text which does not contain newline characters.
type Text string

var _ Doc = Text("")

func (Text) isDoc() {}

func (t Text) Flatten() Doc { return t }

var Space = Text(" ")

// Concat combines multiple documents in order.
type Concat []Doc

var _ Doc = Concat(nil)

func (Concat) isDoc() {}

func (c Concat) Flatten() Doc {
	result := make(Concat, len(c))
	for i, doc := range c {
		result[i] = doc.Flatten()
	}
	return result
}

// Line is a line break. When flattened it is replaced with a space.
type Line struct{}

var _ Doc = Line{}

func (Line) isDoc() {}

func (Line) Flatten() Doc { return Space }

// SoftLine is a line break. When flattened it is replaced with nothing.
type SoftLine struct{}

var _ Doc = SoftLine{}

func (SoftLine) isDoc() {}

func (SoftLine) Flatten() Doc { return Text("") }

// HardLine is a line break that always breaks, and forces every enclosing
// group into its broken state.
type HardLine struct{}

var _ Doc = HardLine{}

func (HardLine) isDoc() {}

func (l HardLine) Flatten() Doc { return l }

// LiteralLine is a raw line break. Unlike HardLine, the next line is not
// re-indented. Used to reproduce embedded pre-formatted content.
type LiteralLine struct{}

var _ Doc = LiteralLine{}

func (LiteralLine) isDoc() {}

func (l LiteralLine) Flatten() Doc { return l }

// Indent increases the level of indentation for the nested document.
type Indent struct {
	Doc Doc
}

var _ Doc = Indent{}

func (Indent) isDoc() {}

func (i Indent) Flatten() Doc {
	return Indent{Doc: i.Doc.Flatten()}
}

// Dedent decreases the level of indentation for the nested document.
type Dedent struct {
	Doc Doc
}

var _ Doc = Dedent{}

func (Dedent) isDoc() {}

func (d Dedent) Flatten() Doc {
	return Dedent{Doc: d.Doc.Flatten()}
}

// Group marks a document region that renders either fully flat or fully
// broken. The decision is made once, from the flattened width of the
// subtree against the remaining width on the current line.
type Group struct {
	Doc Doc
}

var _ Doc = Group{}

func (Group) isDoc() {}

func (g Group) Flatten() Doc { return g.Doc.Flatten() }

// Fill is an alternating sequence of content and separator documents,
// starting and ending with content. Each separator breaks independently:
// only when the following content element does not fit on the remainder
// of the current line. Used for word-wrapping running text.
type Fill []Doc

var _ Doc = Fill(nil)

func (Fill) isDoc() {}

func (f Fill) Flatten() Doc {
	result := make(Fill, len(f))
	for i, doc := range f {
		result[i] = doc.Flatten()
	}
	return result
}

// BreakParent renders as nothing but forces every enclosing group into its
// broken state. It models irreversible breaks such as a block-level sibling
// or a preserved blank line.
type BreakParent struct{}

var _ Doc = BreakParent{}

func (BreakParent) isDoc() {}

func (b BreakParent) Flatten() Doc { return b }
