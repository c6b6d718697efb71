package svelte

import "strings"

// Node is a syntax-tree node in a component file. Every node records the
// half-open byte range [Start, End) of the source text it was parsed from;
// the printer uses it for verbatim-slice recovery and error positions.
type Node interface {
	Pos() Span
}

// Span is a half-open byte range into the source.
type Span struct {
	Start int
	End   int
}

func (s Span) Pos() Span { return s }

// Root is the synthetic top-level node. The parser classifies top-level
// script and style elements into the three slots; everything else lands in
// the markup fragment, in source order.
type Root struct {
	Span
	Module   *Script // <script context="module">
	Instance *Script // <script>
	Css      *Style
	Markup   *Fragment
}

// Fragment is an ordered sequence of sibling nodes.
type Fragment struct {
	Span
	Children []Node
}

// Element is an element, component (capitalized or svelte:-prefixed name),
// or slot-like container. Attributes are owned by the element and keep
// their source order; directive nodes live in the same list.
type Element struct {
	Span
	Name       string
	Attributes []Node
	Children   []Node
}

// IsComponent reports whether the element refers to a component rather
// than a plain tag.
func (e *Element) IsComponent() bool {
	if e.Name == "" {
		return false
	}
	c := e.Name[0]
	return (c >= 'A' && c <= 'Z') || strings.ContainsAny(e.Name, ":.")
}

// Text is raw character data, including whitespace-only runs.
type Text struct {
	Span
	Data string
}

// IsWhitespace reports whether the node contains only whitespace.
func (t *Text) IsWhitespace() bool {
	return strings.TrimSpace(t.Data) == ""
}

// Mustache is an expression tag: {expr}.
type Mustache struct {
	Span
	Expr string
}

// RawMustache is a raw-output expression tag: {@html expr}.
type RawMustache struct {
	Span
	Expr string
}

// DebugTag is {@debug a, b}.
type DebugTag struct {
	Span
	Idents []string
}

// Comment is <!-- ... -->.
type Comment struct {
	Span
	Data string
}

// IfBlock is {#if expr}...{:else}...{/if}. An else-if chain is represented
// as an ElseBlock whose sole child is a nested IfBlock.
type IfBlock struct {
	Span
	Expr     string
	Children []Node
	Else     *ElseBlock
}

// ElseBlock is the {:else} arm of an if or each block.
type ElseBlock struct {
	Span
	Children []Node
}

// EachBlock is {#each expr as context, index (key)}...{/each}.
type EachBlock struct {
	Span
	Expr     string
	Context  string
	Index    string
	Key      string
	Children []Node
	Else     *ElseBlock
}

// AwaitBlock is {#await expr}...{:then v}...{:catch e}...{/await}.
// In the shorthand forms ({#await expr then v}) Pending is nil and the
// matching arm holds the body.
type AwaitBlock struct {
	Span
	Expr     string
	ThenVar  string
	CatchVar string
	Pending  *PendingBlock
	Then     *ThenBlock
	Catch    *CatchBlock
}

type PendingBlock struct {
	Span
	Children []Node
}

type ThenBlock struct {
	Span
	Children []Node
}

type CatchBlock struct {
	Span
	Children []Node
}

// Attribute is name, name="value", or name={expr}. Value parts are Text
// and Mustache nodes; a bare attribute has True set and no parts.
type Attribute struct {
	Span
	Name  string
	Value []Node
	True  bool
}

// AttributeShorthand is the {name} attribute form.
type AttributeShorthand struct {
	Span
	Expr string
}

// Spread is {...expr}.
type Spread struct {
	Span
	Expr string
}

// DirectiveKind discriminates the directive family. All directives share
// one printed shape: prefix, name, optional modifiers and =expr suffix.
type DirectiveKind int

const (
	DirectiveEvent      DirectiveKind = iota // on:
	DirectiveBinding                         // bind:
	DirectiveClass                           // class:
	DirectiveLet                             // let:
	DirectiveRef                             // ref:
	DirectiveAction                          // use:
	DirectiveTransition                      // transition:
	DirectiveIn                              // in:
	DirectiveOut                             // out:
	DirectiveAnimation                       // animate:
)

// Prefix returns the source keyword for the directive kind.
func (k DirectiveKind) Prefix() string {
	switch k {
	case DirectiveEvent:
		return "on"
	case DirectiveBinding:
		return "bind"
	case DirectiveClass:
		return "class"
	case DirectiveLet:
		return "let"
	case DirectiveRef:
		return "ref"
	case DirectiveAction:
		return "use"
	case DirectiveTransition:
		return "transition"
	case DirectiveIn:
		return "in"
	case DirectiveOut:
		return "out"
	case DirectiveAnimation:
		return "animate"
	}
	return ""
}

var directiveKinds = map[string]DirectiveKind{
	"on":         DirectiveEvent,
	"bind":       DirectiveBinding,
	"class":      DirectiveClass,
	"let":        DirectiveLet,
	"ref":        DirectiveRef,
	"use":        DirectiveAction,
	"transition": DirectiveTransition,
	"in":         DirectiveIn,
	"out":        DirectiveOut,
	"animate":    DirectiveAnimation,
}

// Directive is one member of the directive family, e.g. on:click|once={fn}.
type Directive struct {
	Span
	Kind      DirectiveKind
	Name      string
	Modifiers []string
	Expr      string // empty for the bare form
}

// Script is a <script> region. Content is the raw body as it appeared in
// the parsed text; when the embedded-region codec ran first, the real body
// lives base64-encoded in the marker attribute instead.
type Script struct {
	Span
	Context    string // "default" or "module"
	Attributes []Node
	Content    string
}

// Style is a <style> region.
type Style struct {
	Span
	Attributes []Node
	Content    string
}
