package svelte

import (
	"fmt"
	"strings"
)

// SourceLocation is a position in source text, 1-indexed for display.
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Offset   int // byte offset into the source
	Length   int // length of the offending region, for underlining
}

// ParseError is a syntax error from the template parser. It carries the
// byte offset where parsing failed; the host maps it to line/column.
type ParseError struct {
	Msg    string
	Offset int
}

func (e *ParseError) Error() string {
	return e.Msg
}

// OffsetToLineColumn converts a byte offset into 1-indexed line and column.
func OffsetToLineColumn(source string, offset int) (line, column int) {
	if offset > len(source) {
		offset = len(source)
	}
	line, column = 1, 1
	for _, c := range source[:offset] {
		if c == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// SourceError wraps an error with a source position and renders it with
// surrounding context and a caret underline.
type SourceError struct {
	Inner    error
	Location *SourceLocation
	Source   string
}

// NewSourceError attaches a location computed from the given offset.
func NewSourceError(inner error, filename, source string, offset, length int) *SourceError {
	line, column := OffsetToLineColumn(source, offset)
	return &SourceError{
		Inner: inner,
		Location: &SourceLocation{
			Filename: filename,
			Line:     line,
			Column:   column,
			Offset:   offset,
			Length:   length,
		},
		Source: source,
	}
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

func (e *SourceError) Error() string {
	if e.Location == nil {
		return e.Inner.Error()
	}
	return e.formatWithContext()
}

func (e *SourceError) formatWithContext() string {
	lines := strings.Split(e.Source, "\n")
	if e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Inner.Error()
	}

	const (
		red   = "\033[31m"
		blue  = "\033[34m"
		bold  = "\033[1m"
		reset = "\033[0m"
		dim   = "\033[2m"
	)

	var result strings.Builder

	result.WriteString(fmt.Sprintf("%s%sError:%s %s\n", bold, red, reset, e.Inner))
	result.WriteString(fmt.Sprintf("  %s%s--> %s:%d:%d%s\n", dim, blue, e.Location.Filename, e.Location.Line, e.Location.Column, reset))
	result.WriteString(fmt.Sprintf(" %s%s |%s\n", dim, padLeft("", 3), reset))

	startLine := max(1, e.Location.Line-2)
	endLine := min(len(lines), e.Location.Line+2)

	for i := startLine; i <= endLine; i++ {
		paddedLineStr := padLeft(fmt.Sprintf("%d", i), 3)
		if i == e.Location.Line {
			result.WriteString(fmt.Sprintf(" %s%s%s%s | %s%s\n",
				dim, blue, bold, paddedLineStr, reset, lines[i-1]))

			padding := strings.Repeat(" ", 1+3+3+e.Location.Column-1)
			underline := strings.Repeat("^", max(1, e.Location.Length))
			result.WriteString(fmt.Sprintf("%s%s%s%s%s\n",
				dim, padding, red, underline, reset))
		} else {
			result.WriteString(fmt.Sprintf(" %s%s | %s%s\n",
				dim, paddedLineStr, lines[i-1], reset))
		}
	}

	result.WriteString(fmt.Sprintf(" %s%s |%s\n", dim, padLeft("", 3), reset))

	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
