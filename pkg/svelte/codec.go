package svelte

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// MarkerAttribute is the attribute the embedded-region codec adds to
// script and style start tags. Its value is the EncodeBody encoding of the
// region's original body, so the parser never sees sublanguage text.
const MarkerAttribute = "svfmt:content"

// EncodeBody reversibly encodes an embedded region body. Base64 round-trips
// arbitrary bytes, including angle brackets and quotes, without disturbing
// the outer grammar.
func EncodeBody(body string) string {
	return base64.StdEncoding.EncodeToString([]byte(body))
}

// DecodeBody reverses EncodeBody.
func DecodeBody(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "decoding embedded region")
	}
	return string(raw), nil
}

// EncodeEmbedded snips every <script> and <style> body out of source,
// leaving an empty placeholder body and a marker attribute carrying the
// encoded original. The region's entire body is lifted, so nothing remains
// that could unbalance the outer grammar.
func EncodeEmbedded(source string) string {
	var out strings.Builder
	pos := 0
	for pos < len(source) {
		start, name := nextEmbeddedTag(source, pos)
		if start < 0 {
			out.WriteString(source[pos:])
			break
		}
		out.WriteString(source[pos:start])

		openEnd, selfClosed := endOfStartTag(source, start)
		if openEnd < 0 {
			// Malformed open tag; leave it for the parser to report.
			out.WriteString(source[start:])
			return out.String()
		}
		if selfClosed {
			out.WriteString(source[start:openEnd])
			pos = openEnd
			continue
		}

		closeStart, closeEnd := findCloseTag(source, openEnd, name)
		if closeStart < 0 {
			out.WriteString(source[start:])
			return out.String()
		}

		body := source[openEnd:closeStart]
		// Rewrite: original start tag with the marker attribute injected
		// before '>', empty body, original end tag.
		openTag := source[start : openEnd-1]
		out.WriteString(openTag)
		out.WriteString(" ")
		out.WriteString(MarkerAttribute)
		out.WriteString(`="`)
		out.WriteString(EncodeBody(body))
		out.WriteString(`">`)
		out.WriteString(source[closeStart:closeEnd])
		pos = closeEnd
	}
	return out.String()
}

// DecodeEmbedded reverses EncodeEmbedded on a source slice: every embedded
// start tag carrying the marker attribute gets its original body spliced
// back and the marker removed. Slices without markers pass through.
func DecodeEmbedded(source string) string {
	var out strings.Builder
	marker := " " + MarkerAttribute + `="`
	pos := 0
	for pos < len(source) {
		start, name := nextEmbeddedTag(source, pos)
		if start < 0 {
			out.WriteString(source[pos:])
			break
		}
		out.WriteString(source[pos:start])

		openEnd, selfClosed := endOfStartTag(source, start)
		if openEnd < 0 {
			out.WriteString(source[start:])
			return out.String()
		}
		openTag := source[start:openEnd]
		if selfClosed {
			out.WriteString(openTag)
			pos = openEnd
			continue
		}
		closeStart, closeEnd := findCloseTag(source, openEnd, name)
		if closeStart < 0 {
			out.WriteString(source[start:])
			return out.String()
		}

		restored := false
		if idx := strings.Index(openTag, marker); idx >= 0 {
			encStart := idx + len(marker)
			if encEnd := strings.IndexByte(openTag[encStart:], '"'); encEnd >= 0 {
				if body, err := DecodeBody(openTag[encStart : encStart+encEnd]); err == nil {
					out.WriteString(openTag[:idx])
					out.WriteString(openTag[encStart+encEnd+1:])
					out.WriteString(body)
					restored = true
				}
			}
		}
		if !restored {
			out.WriteString(openTag)
			out.WriteString(source[openEnd:closeStart])
		}
		out.WriteString(source[closeStart:closeEnd])
		pos = closeEnd
	}
	return out.String()
}

// nextEmbeddedTag finds the next <script or <style start tag at or after
// pos, returning its index and tag name, or -1.
func nextEmbeddedTag(source string, pos int) (int, string) {
	lower := strings.ToLower(source)
	for i := pos; i < len(source); {
		idx := strings.IndexByte(lower[i:], '<')
		if idx < 0 {
			return -1, ""
		}
		i += idx
		for _, name := range []string{"script", "style"} {
			tag := "<" + name
			if strings.HasPrefix(lower[i:], tag) {
				rest := i + len(tag)
				if rest >= len(source) || isTagNameEnd(source[rest]) {
					return i, name
				}
			}
		}
		i++
	}
	return -1, ""
}

func isTagNameEnd(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/'
}

// endOfStartTag returns the index just past the start tag's '>', honoring
// quoted attribute values, and whether the tag self-closed.
func endOfStartTag(source string, start int) (int, bool) {
	var quote byte
	for i := start; i < len(source); i++ {
		c := source[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			selfClosed := i > start && source[i-1] == '/'
			return i + 1, selfClosed
		}
	}
	return -1, false
}

// findCloseTag locates </name ...> at or after pos, case-insensitively.
// Embedded regions do not nest, so the first close tag wins.
func findCloseTag(source string, pos int, name string) (start, end int) {
	lower := strings.ToLower(source)
	tag := "</" + name
	for i := pos; i < len(source); {
		idx := strings.Index(lower[i:], tag)
		if idx < 0 {
			return -1, -1
		}
		start = i + idx
		rest := start + len(tag)
		if rest < len(source) && !isTagNameEnd(source[rest]) {
			i = rest
			continue
		}
		gt := strings.IndexByte(source[rest:], '>')
		if gt < 0 {
			return -1, -1
		}
		return start, rest + gt + 1
	}
	return -1, -1
}

// markerContent extracts and decodes the codec's marker attribute from an
// attribute list, returning the decoded body, the list without the marker,
// and whether a marker was present.
func markerContent(attrs []Node) (string, []Node, bool, error) {
	for i, a := range attrs {
		attr, ok := a.(*Attribute)
		if !ok || attr.Name != MarkerAttribute {
			continue
		}
		encoded := ""
		if len(attr.Value) == 1 {
			if t, ok := attr.Value[0].(*Text); ok {
				encoded = t.Data
			}
		}
		body, err := DecodeBody(encoded)
		if err != nil {
			return "", nil, false, err
		}
		rest := make([]Node, 0, len(attrs)-1)
		rest = append(rest, attrs[:i]...)
		rest = append(rest, attrs[i+1:]...)
		return body, rest, true, nil
	}
	return "", attrs, false, nil
}
