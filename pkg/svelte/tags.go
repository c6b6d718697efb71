package svelte

// inlineTags are elements whose adjacent text is rendering-significant:
// they join the surrounding inline run instead of forcing line structure.
var inlineTags = map[string]bool{
	"a":      true,
	"abbr":   true,
	"b":      true,
	"bdi":    true,
	"bdo":    true,
	"br":     true,
	"cite":   true,
	"code":   true,
	"data":   true,
	"dfn":    true,
	"em":     true,
	"i":      true,
	"kbd":    true,
	"mark":   true,
	"q":      true,
	"rp":     true,
	"rt":     true,
	"ruby":   true,
	"s":      true,
	"samp":   true,
	"small":  true,
	"span":   true,
	"strong": true,
	"sub":    true,
	"sup":    true,
	"time":   true,
	"u":      true,
	"var":    true,
	"wbr":    true,
}

// voidTags is the strict-mode self-closing allow-list: the HTML void
// elements, which may not have an explicit end tag.
var voidTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// preserveTags are whitespace-preserving regions: their bodies are
// reproduced verbatim instead of being collapsed and re-wrapped.
var preserveTags = map[string]bool{
	"pre":      true,
	"textarea": true,
}

// formattableAttributes are the attributes whose text values may be
// whitespace-normalized. Every other attribute value is treated as
// whitespace-preserving.
var formattableAttributes = map[string]bool{
	"class": true,
}

func isInlineNode(n Node) bool {
	switch n := n.(type) {
	case *Text:
		return !n.IsWhitespace()
	case *Mustache, *RawMustache, *DebugTag:
		return true
	case *IfBlock, *EachBlock, *AwaitBlock:
		return true
	case *Element:
		return inlineTags[n.Name]
	}
	return false
}
