package svelte

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svfmt.toml")

	require.NoError(t, os.WriteFile(path, []byte(`
print_width = 100
use_tabs = true
sort_order = "markup-scripts-styles"
strict_mode = true
`), 0644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, 100, opts.PrintWidth)
	assert.True(t, opts.UseTabs)
	assert.Equal(t, SortMarkupScriptsStyles, opts.SortOrder)
	assert.True(t, opts.StrictMode)

	// Unset keys keep their defaults.
	assert.Equal(t, 2, opts.TabWidth)
	assert.True(t, opts.AllowShorthand)
	assert.True(t, opts.IndentScript)
}

func TestLoadOptionsInvalidSortOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svfmt.toml")
	require.NoError(t, os.WriteFile(path, []byte(`sort_order = "sideways"`), 0644))

	_, err := LoadOptions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sort_order")
}

func TestLoadOptionsMissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestSortOrderValid(t *testing.T) {
	assert.True(t, SortScriptsMarkupStyles.Valid())
	assert.True(t, SortStylesMarkupScripts.Valid())
	assert.False(t, SortOrder("").Valid())
	assert.False(t, SortOrder("scripts-markup").Valid())
}

func TestIndentString(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "  ", opts.indentString())

	opts.TabWidth = 4
	assert.Equal(t, "    ", opts.indentString())

	opts.UseTabs = true
	assert.Equal(t, "\t", opts.indentString())
}
