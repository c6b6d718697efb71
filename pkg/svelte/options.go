package svelte

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// SortOrder is the ordering of the root's script/markup/style sections in
// the output. Module script always precedes instance script.
type SortOrder string

const (
	SortScriptsMarkupStyles SortOrder = "scripts-markup-styles"
	SortScriptsStylesMarkup SortOrder = "scripts-styles-markup"
	SortMarkupScriptsStyles SortOrder = "markup-scripts-styles"
	SortMarkupStylesScripts SortOrder = "markup-styles-scripts"
	SortStylesScriptsMarkup SortOrder = "styles-scripts-markup"
	SortStylesMarkupScripts SortOrder = "styles-markup-scripts"
)

// Valid reports whether the sort order is one of the six permutations.
func (s SortOrder) Valid() bool {
	switch s {
	case SortScriptsMarkupStyles, SortScriptsStylesMarkup,
		SortMarkupScriptsStyles, SortMarkupStylesScripts,
		SortStylesScriptsMarkup, SortStylesMarkupScripts:
		return true
	}
	return false
}

func (s SortOrder) sections() []string {
	return strings.Split(string(s), "-")
}

// Options is the formatter configuration. Zero values are not meaningful
// defaults; start from DefaultOptions.
type Options struct {
	// PrintWidth is the target line width.
	PrintWidth int `toml:"print_width"`

	// UseTabs selects tab indentation; otherwise TabWidth spaces.
	UseTabs  bool `toml:"use_tabs"`
	TabWidth int  `toml:"tab_width"`

	// SortOrder arranges the script/markup/style sections.
	SortOrder SortOrder `toml:"sort_order"`

	// StrictMode always quotes expression attributes and restricts
	// self-closing to the void-element allow-list.
	StrictMode bool `toml:"strict_mode"`

	// BracketSameLine keeps a broken start tag's '>' on the last
	// attribute line instead of its own line.
	BracketSameLine bool `toml:"bracket_same_line"`

	// AllowShorthand collapses x={x} to the shorthand form.
	AllowShorthand bool `toml:"allow_shorthand"`

	// IndentScript indents embedded script/style bodies one level.
	IndentScript bool `toml:"indent_script"`

	// Embedded supplies sublanguage formatters. Nil means every embedded
	// region passes through verbatim.
	Embedded *Registry `toml:"-"`
}

// DefaultOptions returns the canonical defaults.
func DefaultOptions() Options {
	return Options{
		PrintWidth:     80,
		TabWidth:       2,
		SortOrder:      SortScriptsMarkupStyles,
		AllowShorthand: true,
		IndentScript:   true,
	}
}

// LoadOptions reads a TOML config file over the defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return opts, errors.Wrapf(err, "loading config %s", path)
	}
	if !opts.SortOrder.Valid() {
		return opts, errors.Errorf("invalid sort_order %q", opts.SortOrder)
	}
	return opts, nil
}

func (o Options) indentString() string {
	if o.UseTabs {
		return "\t"
	}
	width := o.TabWidth
	if width <= 0 {
		width = 2
	}
	return strings.Repeat(" ", width)
}
