package svelte

import (
	"fmt"
	"strings"
)

// Parse parses preprocessed component source into a Root. Top-level script
// and style elements are classified into the root's slots; everything else
// becomes the markup fragment. Parse failures carry a byte offset.
func Parse(source string) (*Root, error) {
	p := &parser{src: source}
	nodes, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf(p.pos, "unexpected %q", p.peekContext())
	}

	root := &Root{Span: Span{Start: 0, End: len(source)}}
	var markup []Node
	for _, n := range nodes {
		switch n := n.(type) {
		case *Script:
			if n.Context == "module" {
				if root.Module != nil {
					return nil, p.errorf(n.Start, "duplicate module script")
				}
				root.Module = n
			} else {
				if root.Instance != nil {
					return nil, p.errorf(n.Start, "duplicate instance script")
				}
				root.Instance = n
			}
		case *Style:
			if root.Css != nil {
				return nil, p.errorf(n.Start, "duplicate style block")
			}
			root.Css = n
		default:
			markup = append(markup, n)
		}
	}
	span := Span{Start: 0, End: len(source)}
	if len(markup) > 0 {
		span = Span{Start: markup[0].Pos().Start, End: markup[len(markup)-1].Pos().End}
	}
	root.Markup = &Fragment{Span: span, Children: markup}
	return root, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) rest() string { return p.src[p.pos:] }

func (p *parser) lookingAt(s string) bool {
	return strings.HasPrefix(p.rest(), s)
}

func (p *parser) match(s string) bool {
	if p.lookingAt(s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *parser) expect(s string) error {
	if !p.match(s) {
		return p.errorf(p.pos, "expected %q, found %q", s, p.peekContext())
	}
	return nil
}

func (p *parser) skipWhitespace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) peekContext() string {
	end := p.pos + 12
	if end > len(p.src) {
		end = len(p.src)
	}
	if p.pos >= end {
		return "end of input"
	}
	return p.src[p.pos:end]
}

func (p *parser) errorf(offset int, format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Offset: offset}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// parseNodes consumes siblings until EOF or a closing marker ("</",
// "{:...}", "{/...}") that belongs to the enclosing construct.
func (p *parser) parseNodes() ([]Node, error) {
	var nodes []Node
	for !p.eof() {
		switch {
		case p.lookingAt("<!--"):
			n, err := p.parseComment()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case p.lookingAt("</"):
			return nodes, nil
		case p.lookingAt("<"):
			n, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case p.lookingAt("{:"), p.lookingAt("{/"):
			return nodes, nil
		case p.lookingAt("{#"):
			n, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case p.lookingAt("{@"):
			n, err := p.parseMetaTag()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		case p.lookingAt("{"):
			start := p.pos
			p.pos++
			expr, err := p.readExpression()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &Mustache{Span: Span{Start: start, End: p.pos}, Expr: expr})
		default:
			nodes = append(nodes, p.parseText())
		}
	}
	return nodes, nil
}

func (p *parser) parseText() *Text {
	start := p.pos
	for !p.eof() && p.src[p.pos] != '<' && p.src[p.pos] != '{' {
		p.pos++
	}
	return &Text{Span: Span{Start: start, End: p.pos}, Data: p.src[start:p.pos]}
}

func (p *parser) parseComment() (*Comment, error) {
	start := p.pos
	p.pos += len("<!--")
	end := strings.Index(p.rest(), "-->")
	if end < 0 {
		return nil, p.errorf(start, "unterminated comment")
	}
	data := p.src[p.pos : p.pos+end]
	p.pos += end + len("-->")
	return &Comment{Span: Span{Start: start, End: p.pos}, Data: data}, nil
}

func (p *parser) parseElement() (Node, error) {
	start := p.pos
	p.pos++ // '<'
	name := p.readTagName()
	if name == "" {
		return nil, p.errorf(start, "expected tag name")
	}

	attrs, err := p.parseAttributes()
	if err != nil {
		return nil, err
	}

	selfClosed := p.match("/>")
	if !selfClosed {
		if err := p.expect(">"); err != nil {
			return nil, err
		}
	}

	lower := strings.ToLower(name)
	if lower == "script" || lower == "style" {
		return p.finishEmbedded(start, lower, attrs, selfClosed)
	}

	var children []Node
	if !selfClosed && !voidTags[lower] {
		children, err = p.parseNodes()
		if err != nil {
			return nil, err
		}
		if err := p.expect("</"); err != nil {
			return nil, err
		}
		closeName := p.readTagName()
		if closeName != name {
			return nil, p.errorf(p.pos, "mismatched closing tag: expected </%s>, found </%s>", name, closeName)
		}
		p.skipWhitespace()
		if err := p.expect(">"); err != nil {
			return nil, err
		}
	}

	return &Element{
		Span:       Span{Start: start, End: p.pos},
		Name:       name,
		Attributes: attrs,
		Children:   children,
	}, nil
}

// finishEmbedded consumes the raw body of a script or style region up to
// its closing tag. After the codec has run the body is empty, but direct
// Parse callers may still supply sublanguage text here.
func (p *parser) finishEmbedded(start int, name string, attrs []Node, selfClosed bool) (Node, error) {
	content := ""
	if !selfClosed {
		bodyStart := p.pos
		closeStart, closeEnd := findCloseTag(p.src, p.pos, name)
		if closeStart < 0 {
			return nil, p.errorf(start, "unterminated <%s> region", name)
		}
		content = p.src[bodyStart:closeStart]
		p.pos = closeEnd
	}

	span := Span{Start: start, End: p.pos}
	if name == "style" {
		return &Style{Span: span, Attributes: attrs, Content: content}, nil
	}

	context := "default"
	for _, a := range attrs {
		if attr, ok := a.(*Attribute); ok && attr.Name == "context" {
			if len(attr.Value) == 1 {
				if t, ok := attr.Value[0].(*Text); ok && t.Data == "module" {
					context = "module"
				}
			}
		}
	}
	return &Script{Span: span, Context: context, Attributes: attrs, Content: content}, nil
}

func (p *parser) readTagName() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if isSpace(c) || c == '>' || c == '/' || c == '=' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) parseAttributes() ([]Node, error) {
	var attrs []Node
	for {
		p.skipWhitespace()
		if p.eof() {
			return nil, p.errorf(p.pos, "unterminated start tag")
		}
		if p.lookingAt(">") || p.lookingAt("/>") {
			return attrs, nil
		}

		start := p.pos
		if p.match("{") {
			p.skipWhitespace()
			if p.match("...") {
				expr, err := p.readExpression()
				if err != nil {
					return nil, err
				}
				attrs = append(attrs, &Spread{Span: Span{Start: start, End: p.pos}, Expr: expr})
				continue
			}
			expr, err := p.readExpression()
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, &AttributeShorthand{
				Span: Span{Start: start, End: p.pos},
				Expr: strings.TrimSpace(expr),
			})
			continue
		}

		name := p.readAttributeName()
		if name == "" {
			return nil, p.errorf(p.pos, "expected attribute name, found %q", p.peekContext())
		}

		var value []Node
		hasValue := false
		if p.match("=") {
			hasValue = true
			var err error
			value, err = p.parseAttributeValue()
			if err != nil {
				return nil, err
			}
		}
		span := Span{Start: start, End: p.pos}

		if prefix, rest, ok := strings.Cut(name, ":"); ok {
			if kind, isDirective := directiveKinds[prefix]; isDirective {
				dname, mods := splitModifiers(rest)
				attrs = append(attrs, &Directive{
					Span:      span,
					Kind:      kind,
					Name:      dname,
					Modifiers: mods,
					Expr:      directiveExpression(value),
				})
				continue
			}
		}

		attrs = append(attrs, &Attribute{
			Span:  span,
			Name:  name,
			Value: value,
			True:  !hasValue,
		})
	}
}

func (p *parser) readAttributeName() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if isSpace(c) || c == '=' || c == '>' || c == '/' || c == '{' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) parseAttributeValue() ([]Node, error) {
	switch {
	case p.lookingAt("{"):
		start := p.pos
		p.pos++
		expr, err := p.readExpression()
		if err != nil {
			return nil, err
		}
		return []Node{&Mustache{Span: Span{Start: start, End: p.pos}, Expr: expr}}, nil

	case p.lookingAt(`"`), p.lookingAt("'"):
		quote := p.src[p.pos]
		p.pos++
		var parts []Node
		textStart := p.pos
		flush := func(end int) {
			if end > textStart {
				parts = append(parts, &Text{
					Span: Span{Start: textStart, End: end},
					Data: p.src[textStart:end],
				})
			}
		}
		for !p.eof() {
			c := p.src[p.pos]
			if c == quote {
				flush(p.pos)
				p.pos++
				return parts, nil
			}
			if c == '{' {
				flush(p.pos)
				start := p.pos
				p.pos++
				expr, err := p.readExpression()
				if err != nil {
					return nil, err
				}
				parts = append(parts, &Mustache{Span: Span{Start: start, End: p.pos}, Expr: expr})
				textStart = p.pos
				continue
			}
			p.pos++
		}
		return nil, p.errorf(textStart, "unterminated attribute value")

	default:
		start := p.pos
		for !p.eof() {
			c := p.src[p.pos]
			if isSpace(c) || c == '>' || c == '/' {
				break
			}
			p.pos++
		}
		if p.pos == start {
			return nil, p.errorf(start, "expected attribute value")
		}
		return []Node{&Text{Span: Span{Start: start, End: p.pos}, Data: p.src[start:p.pos]}}, nil
	}
}

func splitModifiers(name string) (string, []string) {
	parts := strings.Split(name, "|")
	if len(parts) == 1 {
		return name, nil
	}
	return parts[0], parts[1:]
}

// directiveExpression reduces an attribute value to the directive's
// expression text: either a bare {expr} or the quoted "{expr}" form that
// strict mode emits.
func directiveExpression(value []Node) string {
	if len(value) != 1 {
		return ""
	}
	if m, ok := value[0].(*Mustache); ok {
		return strings.TrimSpace(m.Expr)
	}
	if t, ok := value[0].(*Text); ok {
		return strings.TrimSpace(t.Data)
	}
	return ""
}

func (p *parser) parseMetaTag() (Node, error) {
	start := p.pos
	switch {
	case p.match("{@html"):
		expr, err := p.readExpression()
		if err != nil {
			return nil, err
		}
		return &RawMustache{Span: Span{Start: start, End: p.pos}, Expr: strings.TrimSpace(expr)}, nil
	case p.match("{@debug"):
		inner, err := p.readExpression()
		if err != nil {
			return nil, err
		}
		var idents []string
		for _, ident := range strings.Split(inner, ",") {
			if ident = strings.TrimSpace(ident); ident != "" {
				idents = append(idents, ident)
			}
		}
		return &DebugTag{Span: Span{Start: start, End: p.pos}, Idents: idents}, nil
	}
	return nil, p.errorf(start, "unknown tag %q", p.peekContext())
}

func (p *parser) parseBlock() (Node, error) {
	switch {
	case p.lookingAt("{#if"):
		return p.parseIf()
	case p.lookingAt("{#each"):
		return p.parseEach()
	case p.lookingAt("{#await"):
		return p.parseAwait()
	}
	return nil, p.errorf(p.pos, "unknown block %q", p.peekContext())
}

func (p *parser) parseIf() (*IfBlock, error) {
	start := p.pos
	p.pos += len("{#if")
	node, err := p.parseIfArm(start)
	if err != nil {
		return nil, err
	}
	if err := p.expect("{/if}"); err != nil {
		return nil, err
	}
	node.End = p.pos
	return node, nil
}

// parseIfArm parses the condition, body, and else chain of an if block.
// The shared {/if} is consumed by the outermost caller.
func (p *parser) parseIfArm(start int) (*IfBlock, error) {
	expr, err := p.readExpression()
	if err != nil {
		return nil, err
	}
	node := &IfBlock{Span: Span{Start: start, End: p.pos}, Expr: strings.TrimSpace(expr)}
	node.Children, err = p.parseNodes()
	if err != nil {
		return nil, err
	}
	node.Else, err = p.parseElseChain()
	if err != nil {
		return nil, err
	}
	node.End = p.pos
	return node, nil
}

func (p *parser) parseElseChain() (*ElseBlock, error) {
	if !p.lookingAt("{:else") {
		return nil, nil
	}
	start := p.pos
	p.pos += len("{:else")

	p.skipWhitespace()
	if p.match("if") {
		nested, err := p.parseIfArm(start)
		if err != nil {
			return nil, err
		}
		return &ElseBlock{
			Span:     Span{Start: start, End: nested.End},
			Children: []Node{nested},
		}, nil
	}

	if err := p.expect("}"); err != nil {
		return nil, err
	}
	children, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	return &ElseBlock{Span: Span{Start: start, End: p.pos}, Children: children}, nil
}

func (p *parser) parseEach() (*EachBlock, error) {
	start := p.pos
	p.pos += len("{#each")
	inner, err := p.readExpression()
	if err != nil {
		return nil, err
	}
	node := &EachBlock{Span: Span{Start: start, End: p.pos}}
	if err := splitEach(inner, node); err != nil {
		return nil, p.errorf(start, "%s", err)
	}

	node.Children, err = p.parseNodes()
	if err != nil {
		return nil, err
	}
	if p.lookingAt("{:else") {
		elseStart := p.pos
		p.pos += len("{:else")
		p.skipWhitespace()
		if err := p.expect("}"); err != nil {
			return nil, err
		}
		children, err := p.parseNodes()
		if err != nil {
			return nil, err
		}
		node.Else = &ElseBlock{Span: Span{Start: elseStart, End: p.pos}, Children: children}
	}
	if err := p.expect("{/each}"); err != nil {
		return nil, err
	}
	node.End = p.pos
	return node, nil
}

// splitEach decomposes "expr as context, index (key)". The " as " keyword,
// the index comma, and the key parens are recognized only at the top
// nesting level, so destructuring patterns pass through intact.
func splitEach(inner string, node *EachBlock) error {
	asIdx := topLevelIndex(inner, " as ")
	if asIdx < 0 {
		return fmt.Errorf("expected 'as' in each block")
	}
	node.Expr = strings.TrimSpace(inner[:asIdx])
	rest := inner[asIdx+len(" as "):]

	if open := topLevelByte(rest, '('); open >= 0 {
		key := strings.TrimSpace(rest[open:])
		if !strings.HasPrefix(key, "(") || !strings.HasSuffix(key, ")") {
			return fmt.Errorf("malformed each key")
		}
		node.Key = strings.TrimSpace(key[1 : len(key)-1])
		rest = rest[:open]
	}

	if comma := topLevelIndex(rest, ","); comma >= 0 {
		node.Index = strings.TrimSpace(rest[comma+1:])
		rest = rest[:comma]
	}
	node.Context = strings.TrimSpace(rest)
	if node.Context == "" {
		return fmt.Errorf("expected each context")
	}
	return nil
}

func (p *parser) parseAwait() (*AwaitBlock, error) {
	start := p.pos
	p.pos += len("{#await")
	inner, err := p.readExpression()
	if err != nil {
		return nil, err
	}
	node := &AwaitBlock{Span: Span{Start: start, End: p.pos}}

	expr := inner
	if idx := topLevelIndex(inner, " then "); idx >= 0 {
		expr = inner[:idx]
		node.ThenVar = strings.TrimSpace(inner[idx+len(" then "):])
		children, err := p.parseNodes()
		if err != nil {
			return nil, err
		}
		node.Then = &ThenBlock{Span: Span{Start: p.pos, End: p.pos}, Children: children}
	} else if idx := topLevelIndex(inner, " catch "); idx >= 0 {
		expr = inner[:idx]
		node.CatchVar = strings.TrimSpace(inner[idx+len(" catch "):])
		children, err := p.parseNodes()
		if err != nil {
			return nil, err
		}
		node.Catch = &CatchBlock{Span: Span{Start: p.pos, End: p.pos}, Children: children}
	} else {
		pending, err := p.parseNodes()
		if err != nil {
			return nil, err
		}
		node.Pending = &PendingBlock{Span: Span{Start: p.pos, End: p.pos}, Children: pending}

		if p.match("{:then") {
			v, err := p.readExpression()
			if err != nil {
				return nil, err
			}
			node.ThenVar = strings.TrimSpace(v)
			children, err := p.parseNodes()
			if err != nil {
				return nil, err
			}
			node.Then = &ThenBlock{Span: Span{Start: p.pos, End: p.pos}, Children: children}
		}
		if p.match("{:catch") {
			v, err := p.readExpression()
			if err != nil {
				return nil, err
			}
			node.CatchVar = strings.TrimSpace(v)
			children, err := p.parseNodes()
			if err != nil {
				return nil, err
			}
			node.Catch = &CatchBlock{Span: Span{Start: p.pos, End: p.pos}, Children: children}
		}
	}
	node.Expr = strings.TrimSpace(expr)
	if err := p.expect("{/await}"); err != nil {
		return nil, err
	}
	node.End = p.pos
	return node, nil
}

// readExpression consumes expression text up to and including the '}'
// that closes the surrounding tag, honoring nested braces, brackets,
// parens, and string literals (including template literals).
func (p *parser) readExpression() (string, error) {
	start := p.pos
	depth := 0
	for !p.eof() {
		c := p.src[p.pos]
		switch c {
		case '\'', '"', '`':
			if err := p.skipString(c); err != nil {
				return "", err
			}
			continue
		case '{', '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '}':
			if depth == 0 {
				expr := p.src[start:p.pos]
				p.pos++
				return expr, nil
			}
			depth--
		}
		p.pos++
	}
	return "", p.errorf(start, "unterminated expression")
}

func (p *parser) skipString(quote byte) error {
	start := p.pos
	p.pos++
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			p.pos += 2
		case c == quote:
			p.pos++
			return nil
		case quote == '`' && c == '$' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '{':
			p.pos += 2
			if _, err := p.readExpression(); err != nil {
				return err
			}
		default:
			p.pos++
		}
	}
	return p.errorf(start, "unterminated string literal")
}

// topLevelByte finds the first occurrence of an opening byte at the top
// nesting level, outside string literals, or -1.
func topLevelByte(s string, b byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{', '(', '[':
			if depth == 0 && c == b {
				return i
			}
			depth++
		case '}', ')', ']':
			depth--
		}
	}
	return -1
}

// topLevelIndex finds the first occurrence of sep outside any brackets or
// string literals, or -1.
func topLevelIndex(s, sep string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		default:
			if depth == 0 && strings.HasPrefix(s[i:], sep) {
				return i
			}
		}
	}
	return -1
}
