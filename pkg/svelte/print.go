package svelte

import (
	"fmt"
	"strings"

	"github.com/svfmt/svfmt/pkg/prettier"
)

// printer lowers a parsed tree into the layout algebra. It holds the text
// the tree was parsed from so ignored subtrees can be recovered verbatim.
type printer struct {
	opts   Options
	source string
}

func (p *printer) printRoot(root *Root) prettier.Doc {
	var sections []prettier.Doc
	for _, section := range p.opts.SortOrder.sections() {
		switch section {
		case "scripts":
			if root.Module != nil {
				sections = append(sections, p.printEmbedded("script", root.Module.Attributes, root.Module.Content))
			}
			if root.Instance != nil {
				sections = append(sections, p.printEmbedded("script", root.Instance.Attributes, root.Instance.Content))
			}
		case "markup":
			if root.Markup != nil && !allWhitespace(root.Markup.Children) {
				sections = append(sections, p.printChildren(root.Markup.Children, false))
			}
		case "styles":
			if root.Css != nil {
				sections = append(sections, p.printEmbedded("style", root.Css.Attributes, root.Css.Content))
			}
		}
	}

	var doc prettier.Concat
	for i, s := range sections {
		if i > 0 {
			doc = append(doc, prettier.HardLine{}, prettier.HardLine{})
		}
		doc = append(doc, s)
	}
	return doc
}

// printNode handles every node kind the parser produces. A kind it does
// not know means the parser and printer have diverged, which is a bug,
// not an input error.
func (p *printer) printNode(n Node) prettier.Doc {
	switch n := n.(type) {
	case *Fragment:
		return p.printChildren(n.Children, false)
	case *Element:
		return p.printElement(n)
	case *Text:
		// Non-whitespace text reaching here was not routed through a
		// child list; print its words joined by single spaces.
		var words []string
		for _, tok := range textTokens(n.Data) {
			if !tok.isWhitespace {
				words = append(words, tok.word)
			}
		}
		return prettier.Text(strings.Join(words, " "))
	case *Mustache:
		return prettier.Text("{" + collapseExpr(n.Expr) + "}")
	case *RawMustache:
		return prettier.Text("{@html " + collapseExpr(n.Expr) + "}")
	case *DebugTag:
		if len(n.Idents) == 0 {
			return prettier.Text("{@debug}")
		}
		return prettier.Text("{@debug " + strings.Join(n.Idents, ", ") + "}")
	case *Comment:
		return prettier.Concat{prettier.Text("<!--"), verbatimText(n.Data), prettier.Text("-->")}
	case *IfBlock:
		return p.printIf(n)
	case *EachBlock:
		return p.printEach(n)
	case *AwaitBlock:
		return p.printAwait(n)
	case *Script:
		return p.printEmbedded("script", n.Attributes, n.Content)
	case *Style:
		return p.printEmbedded("style", n.Attributes, n.Content)
	}
	panic(fmt.Sprintf("svelte: unhandled node %T in printer", n))
}

func (p *printer) printElement(e *Element) prettier.Doc {
	if allWhitespace(e.Children) && p.canSelfClose(e) {
		return p.startTag(e.Name, e.Attributes, true)
	}

	open := p.startTag(e.Name, e.Attributes, false)
	closeTag := prettier.Text("</" + e.Name + ">")

	switch {
	case preserveTags[e.Name]:
		body, trailingNewline := p.preserveBody(e.Children)
		parts := prettier.Concat{open, body}
		if trailingNewline {
			parts = append(parts, prettier.HardLine{})
		}
		return append(parts, closeTag)

	case inlineTags[e.Name]:
		return prettier.Group{Doc: prettier.Concat{
			open,
			prettier.Indent{Doc: p.printInlineBody(e.Children)},
			closeTag,
		}}

	default:
		body := p.printChildren(e.Children, true)
		return prettier.Group{Doc: prettier.Concat{
			open,
			prettier.Indent{Doc: prettier.Concat{prettier.SoftLine{}, body}},
			prettier.SoftLine{},
			closeTag,
		}}
	}
}

// canSelfClose reports whether an empty element may print in self-closing
// form. Strict mode restricts it to the void-element allow-list and
// components; otherwise any empty element qualifies.
func (p *printer) canSelfClose(e *Element) bool {
	return voidTags[e.Name] || e.IsComponent() || !p.opts.StrictMode
}

// startTag prints <name attr...> as a group: attributes go one per line
// when the tag does not fit.
func (p *printer) startTag(name string, attrs []Node, selfClose bool) prettier.Doc {
	parts := prettier.Concat{prettier.Text("<" + name)}

	var attrDocs prettier.Concat
	for _, a := range attrs {
		attrDocs = append(attrDocs, prettier.Line{}, p.printAttributeNode(a))
	}
	if len(attrDocs) > 0 {
		parts = append(parts, prettier.Indent{Doc: attrDocs})
	}

	switch {
	case selfClose && p.opts.BracketSameLine:
		parts = append(parts, prettier.Text(" />"))
	case selfClose:
		parts = append(parts, prettier.Line{}, prettier.Text("/>"))
	case p.opts.BracketSameLine:
		parts = append(parts, prettier.Text(">"))
	default:
		parts = append(parts, prettier.SoftLine{}, prettier.Text(">"))
	}
	return prettier.Group{Doc: parts}
}

func (p *printer) printAttributeNode(n Node) prettier.Doc {
	switch n := n.(type) {
	case *Attribute:
		return prettier.Text(p.formatAttribute(n))
	case *AttributeShorthand:
		expr := collapseExpr(n.Expr)
		switch {
		case p.opts.StrictMode:
			return prettier.Text(expr + `="{` + expr + `}"`)
		case p.opts.AllowShorthand:
			return prettier.Text("{" + expr + "}")
		default:
			return prettier.Text(expr + "={" + expr + "}")
		}
	case *Spread:
		return prettier.Text("{..." + collapseExpr(n.Expr) + "}")
	case *Directive:
		return prettier.Text(p.formatDirective(n))
	}
	panic(fmt.Sprintf("svelte: unhandled attribute node %T in printer", n))
}

func (p *printer) formatAttribute(a *Attribute) string {
	if a.True {
		return a.Name
	}

	// Single-expression value: name={expr}, possibly collapsed to the
	// shorthand or quoted for strict mode.
	if len(a.Value) == 1 {
		if m, ok := a.Value[0].(*Mustache); ok {
			expr := collapseExpr(m.Expr)
			switch {
			case p.opts.StrictMode:
				return a.Name + `="{` + expr + `}"`
			case p.opts.AllowShorthand && expr == a.Name:
				return a.Name
			default:
				return a.Name + "={" + expr + "}"
			}
		}
	}

	var value strings.Builder
	hasDoubleQuote := false
	for i, part := range a.Value {
		switch part := part.(type) {
		case *Text:
			data := part.Data
			if formattableAttributes[a.Name] {
				data = collapseTextValue(data, i == 0, i == len(a.Value)-1)
			}
			if strings.Contains(data, `"`) {
				hasDoubleQuote = true
			}
			value.WriteString(data)
		case *Mustache:
			value.WriteString("{" + collapseExpr(part.Expr) + "}")
		default:
			panic(fmt.Sprintf("svelte: unhandled attribute value part %T in printer", part))
		}
	}

	quote := `"`
	if hasDoubleQuote {
		quote = `'`
	}
	return a.Name + "=" + quote + value.String() + quote
}

func (p *printer) formatDirective(d *Directive) string {
	head := d.Kind.Prefix() + ":" + d.Name
	for _, mod := range d.Modifiers {
		head += "|" + mod
	}
	if d.Expr == "" {
		return head
	}
	expr := collapseExpr(d.Expr)
	switch {
	case p.opts.StrictMode:
		return head + `="{` + expr + `}"`
	case p.opts.AllowShorthand && expr == d.Name:
		return head
	default:
		return head + "={" + expr + "}"
	}
}

func (p *printer) printIf(b *IfBlock) prettier.Doc {
	docs := prettier.Concat{prettier.Text("{#if " + collapseExpr(b.Expr) + "}")}
	docs = append(docs, p.blockBody(b.Children))

	cur := b.Else
	for cur != nil {
		if nested, ok := soleIf(cur.Children); ok {
			docs = append(docs,
				prettier.Text("{:else if "+collapseExpr(nested.Expr)+"}"),
				p.blockBody(nested.Children))
			cur = nested.Else
			continue
		}
		docs = append(docs, prettier.Text("{:else}"), p.blockBody(cur.Children))
		cur = nil
	}

	return append(docs, prettier.Text("{/if}"))
}

// soleIf reports whether children hold exactly one if block and nothing
// but whitespace around it, the shape of an else-if chain link.
func soleIf(children []Node) (*IfBlock, bool) {
	var found *IfBlock
	for _, child := range children {
		if t, ok := child.(*Text); ok && t.IsWhitespace() {
			continue
		}
		b, ok := child.(*IfBlock)
		if !ok || found != nil {
			return nil, false
		}
		found = b
	}
	return found, found != nil
}

func (p *printer) printEach(b *EachBlock) prettier.Doc {
	head := "{#each " + collapseExpr(b.Expr) + " as " + collapseExpr(b.Context)
	if b.Index != "" {
		head += ", " + collapseExpr(b.Index)
	}
	if b.Key != "" {
		head += " (" + collapseExpr(b.Key) + ")"
	}
	head += "}"

	docs := prettier.Concat{prettier.Text(head), p.blockBody(b.Children)}
	if b.Else != nil {
		docs = append(docs, prettier.Text("{:else}"), p.blockBody(b.Else.Children))
	}
	return append(docs, prettier.Text("{/each}"))
}

func (p *printer) printAwait(b *AwaitBlock) prettier.Doc {
	expr := collapseExpr(b.Expr)

	// Shorthand forms: the single arm rides in the opening tag.
	if b.Pending == nil {
		switch {
		case b.Then != nil && b.Catch == nil:
			head := "{#await " + expr + " then"
			if b.ThenVar != "" {
				head += " " + collapseExpr(b.ThenVar)
			}
			return prettier.Concat{
				prettier.Text(head + "}"),
				p.blockBody(b.Then.Children),
				prettier.Text("{/await}"),
			}
		case b.Catch != nil && b.Then == nil:
			head := "{#await " + expr + " catch"
			if b.CatchVar != "" {
				head += " " + collapseExpr(b.CatchVar)
			}
			return prettier.Concat{
				prettier.Text(head + "}"),
				p.blockBody(b.Catch.Children),
				prettier.Text("{/await}"),
			}
		}
	}

	docs := prettier.Concat{prettier.Text("{#await " + expr + "}")}
	if b.Pending != nil {
		docs = append(docs, p.blockBody(b.Pending.Children))
	}
	if b.Then != nil {
		head := "{:then"
		if b.ThenVar != "" {
			head += " " + collapseExpr(b.ThenVar)
		}
		docs = append(docs, prettier.Text(head+"}"), p.blockBody(b.Then.Children))
	}
	if b.Catch != nil {
		head := "{:catch"
		if b.CatchVar != "" {
			head += " " + collapseExpr(b.CatchVar)
		}
		docs = append(docs, prettier.Text(head+"}"), p.blockBody(b.Catch.Children))
	}
	return append(docs, prettier.Text("{/await}"))
}

// blockBody lays out a control-flow arm: always broken, body indented one
// level, the following tag back at the arm's own level.
func (p *printer) blockBody(children []Node) prettier.Doc {
	if allWhitespace(children) {
		return prettier.HardLine{}
	}
	return prettier.Concat{
		prettier.Indent{Doc: prettier.Concat{
			prettier.HardLine{},
			p.printChildren(children, true),
		}},
		prettier.HardLine{},
	}
}

// printEmbedded prints a script or style region. When the codec's marker
// attribute is present the real body is recovered from it; the body is then
// handed to a registered sublanguage formatter, or reproduced as-is.
func (p *printer) printEmbedded(name string, attrs []Node, rawContent string) prettier.Doc {
	body := rawContent
	if decoded, rest, ok, err := markerContent(attrs); err == nil && ok {
		body = decoded
		attrs = rest
	}

	if f, ok := p.embeddedFormatter(name, attrs); ok {
		if formatted, err := f(body); err == nil {
			body = formatted
		}
	}

	open := p.startTag(name, attrs, false)
	closeTag := prettier.Text("</" + name + ">")

	lines := embeddedLines(body)
	if len(lines) == 0 {
		return prettier.Concat{open, closeTag}
	}

	var bodyDoc prettier.Concat
	for _, line := range lines {
		bodyDoc = append(bodyDoc, prettier.HardLine{}, prettier.Text(line))
	}
	inner := prettier.Doc(bodyDoc)
	if p.opts.IndentScript {
		inner = prettier.Indent{Doc: bodyDoc}
	}
	return prettier.Concat{open, inner, prettier.HardLine{}, closeTag}
}

func (p *printer) embeddedFormatter(region string, attrs []Node) (SublangFormatter, bool) {
	if p.opts.Embedded == nil {
		return nil, false
	}
	return p.opts.Embedded.formatterFor(region, embeddedLang(region, attrs))
}

// embeddedLang reads the region's lang attribute, defaulting per region.
func embeddedLang(region string, attrs []Node) string {
	for _, a := range attrs {
		attr, ok := a.(*Attribute)
		if !ok || attr.Name != "lang" || len(attr.Value) != 1 {
			continue
		}
		if t, ok := attr.Value[0].(*Text); ok {
			return strings.ToLower(strings.TrimSpace(t.Data))
		}
	}
	if region == "style" {
		return "css"
	}
	return "javascript"
}

// embeddedLines splits an embedded body into lines normalized for
// re-indentation: blank edges dropped, common leading whitespace stripped,
// trailing whitespace trimmed.
func embeddedLines(body string) []string {
	lines := strings.Split(body, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}

	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(strings.TrimPrefix(line, prefix), "\r")
		out[i] = strings.TrimRight(line, " \t")
	}
	return out
}

// verbatim reproduces a node exactly as it appeared in the source, with
// any codec markers in the slice undone first.
func (p *printer) verbatim(n Node) prettier.Doc {
	span := n.Pos()
	return verbatimText(DecodeEmbedded(p.source[span.Start:span.End]))
}

// collapseExpr normalizes whitespace in expression text: runs outside
// string literals collapse to a single space, edges are trimmed.
func collapseExpr(expr string) string {
	expr = strings.TrimSpace(expr)
	var out strings.Builder
	var quote byte
	i := 0
	for i < len(expr) {
		c := expr[i]
		if quote != 0 {
			out.WriteByte(c)
			if c == '\\' && i+1 < len(expr) {
				i++
				out.WriteByte(expr[i])
			} else if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			out.WriteByte(c)
			i++
		case isSpace(c):
			for i < len(expr) && isSpace(expr[i]) {
				i++
			}
			out.WriteByte(' ')
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// collapseTextValue normalizes whitespace in a formattable attribute value
// part. Edge whitespace is dropped only at the value's outer edges.
func collapseTextValue(data string, atStart, atEnd bool) string {
	leading := !atStart && len(data) > 0 && isSpace(data[0])
	trailing := !atEnd && len(data) > 0 && isSpace(data[len(data)-1])
	collapsed := strings.Join(strings.Fields(data), " ")
	if leading {
		collapsed = " " + collapsed
	}
	if trailing {
		collapsed += " "
	}
	return collapsed
}
