package svelte

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type FormatSuite struct{}

func TestFormat(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(FormatSuite{})
}

func (FormatSuite) TestElements(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "short element stays on one line",
			input:    `<div class="foo">hello</div>`,
			expected: "<div class=\"foo\">hello</div>\n",
		},
		{
			name:     "empty element self-closes",
			input:    `<div></div>`,
			expected: "<div />\n",
		},
		{
			name:     "void element self-closes without an end tag",
			input:    `<br>`,
			expected: "<br />\n",
		},
		{
			name:     "whitespace-only body counts as empty",
			input:    "<div>\n   \n</div>",
			expected: "<div />\n",
		},
		{
			name:     "attribute whitespace is normalized",
			input:    "<img   src=\"a.png\"\n   alt=\"a\">",
			expected: "<img src=\"a.png\" alt=\"a\" />\n",
		},
		{
			name:     "nested elements indent",
			input:    "<ul><li>one</li><li>two</li></ul>",
			expected: "<ul>\n  <li>one</li>\n  <li>two</li>\n</ul>\n",
		},
		{
			name:     "comments survive",
			input:    "<!-- hello -->",
			expected: "<!-- hello -->\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := Format(tt.input, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestWidthSensitivity(ctx context.Context, t *testctx.T) {
	input := `<button class="primary" on:click={handleClick} disabled>Go</button>`

	wide := DefaultOptions()
	result, err := Format(input, wide)
	require.NoError(t, err)
	require.Equal(t, input+"\n", result)

	narrow := DefaultOptions()
	narrow.PrintWidth = 30
	result, err = Format(input, narrow)
	require.NoError(t, err)
	require.Equal(t, `<button
  class="primary"
  on:click={handleClick}
  disabled
>
  Go
</button>
`, result)

	narrow.BracketSameLine = true
	result, err = Format(input, narrow)
	require.NoError(t, err)
	require.Equal(t, `<button
  class="primary"
  on:click={handleClick}
  disabled>
  Go
</button>
`, result)
}

func (FormatSuite) TestTextWrapping(ctx context.Context, t *testctx.T) {
	opts := DefaultOptions()
	opts.PrintWidth = 20

	result, err := Format("<p>one two three four five six</p>", opts)
	require.NoError(t, err)
	require.Equal(t, `<p>
  one two three four
  five six
</p>
`, result)
}

func (FormatSuite) TestInlineElements(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "inline element joins the surrounding text",
			input:    "<p>some <em>emphasized</em> text</p>",
			expected: "<p>some <em>emphasized</em> text</p>\n",
		},
		{
			name:     "glued inline content has no break point",
			input:    "<p>count: <b>{n}</b>.</p>",
			expected: "<p>count: <b>{n}</b>.</p>\n",
		},
		{
			name:     "significant edge whitespace survives",
			input:    "<span> padded </span>",
			expected: "<span> padded </span>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := Format(tt.input, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestBlankLines(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single blank line between siblings is kept",
			input:    "<p>one</p>\n\n<p>two</p>",
			expected: "<p>one</p>\n\n<p>two</p>\n",
		},
		{
			name:     "runs of blank lines collapse to one",
			input:    "<p>one</p>\n\n\n\n<p>two</p>",
			expected: "<p>one</p>\n\n<p>two</p>\n",
		},
		{
			name:     "plain newlines between siblings do not become blanks",
			input:    "<p>one</p>\n<p>two</p>",
			expected: "<p>one</p>\n<p>two</p>\n",
		},
		{
			name:     "edge whitespace at the root is dropped",
			input:    "\n\n<p>hi</p>\n\n",
			expected: "<p>hi</p>\n",
		},
		{
			name:     "blank line before text in an element body is kept",
			input:    "<div>\n\nhello</div>",
			expected: "<div>\n\n  hello\n</div>\n",
		},
		{
			name:     "blank line after text in an element body is kept",
			input:    "<div>hello\n\n</div>",
			expected: "<div>\n  hello\n\n</div>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := Format(tt.input, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestMustacheTags(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expression whitespace collapses",
			input:    "<p>{ count  +\n  1 }</p>",
			expected: "<p>{count + 1}</p>\n",
		},
		{
			name:     "string literals keep their spacing",
			input:    `<p>{join("a  b",  x)}</p>`,
			expected: "<p>{join(\"a  b\", x)}</p>\n",
		},
		{
			name:     "html tag",
			input:    "<div>{@html  content}</div>",
			expected: "<div>{@html content}</div>\n",
		},
		{
			name:     "debug tag",
			input:    "{@debug user,  cart}",
			expected: "{@debug user, cart}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := Format(tt.input, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestShorthand(ctx context.Context, t *testctx.T) {
	t.Run("expression attribute collapses to shorthand", func(ctx context.Context, t *testctx.T) {
		a, err := Format("<Foo x={x} />", DefaultOptions())
		require.NoError(t, err)
		b, err := Format("<Foo x />", DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, "<Foo x />\n", a)
		require.Equal(t, a, b)
	})

	t.Run("brace shorthand is kept", func(ctx context.Context, t *testctx.T) {
		result, err := Format("<Foo {y} />", DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, "<Foo {y} />\n", result)
	})

	t.Run("shorthand disabled expands", func(ctx context.Context, t *testctx.T) {
		opts := DefaultOptions()
		opts.AllowShorthand = false
		result, err := Format("<Foo {y} bind:value={value} />", opts)
		require.NoError(t, err)
		require.Equal(t, "<Foo y={y} bind:value={value} />\n", result)
	})

	t.Run("directive with matching name collapses", func(ctx context.Context, t *testctx.T) {
		result, err := Format("<input bind:value={value} />", DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, "<input bind:value />\n", result)
	})

	t.Run("directive modifiers survive", func(ctx context.Context, t *testctx.T) {
		result, err := Format("<form on:submit|preventDefault={save}>x</form>", DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, "<form on:submit|preventDefault={save}>x</form>\n", result)
	})
}

func (FormatSuite) TestStrictMode(ctx context.Context, t *testctx.T) {
	opts := DefaultOptions()
	opts.StrictMode = true

	t.Run("expression attributes are quoted", func(ctx context.Context, t *testctx.T) {
		result, err := Format("<Foo a={b} {c} />", opts)
		require.NoError(t, err)
		require.Equal(t, "<Foo a=\"{b}\" c=\"{c}\" />\n", result)
	})

	t.Run("only void elements and components self-close", func(ctx context.Context, t *testctx.T) {
		result, err := Format("<div></div>\n<br>\n<Foo />", opts)
		require.NoError(t, err)
		require.Equal(t, "<div></div>\n<br />\n<Foo />\n", result)
	})
}

func (FormatSuite) TestControlFlowBlocks(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:  "if block",
			input: "{#if visible}<p>hi</p>{/if}",
			expected: `{#if visible}
  <p>hi</p>
{/if}
`,
		},
		{
			name:  "else-if chain stays flat",
			input: "{#if a}1{:else if b}2{:else}3{/if}",
			expected: `{#if a}
  1
{:else if b}
  2
{:else}
  3
{/if}
`,
		},
		{
			name:  "each with index and key",
			input: "{#each  items  as  item,  i  (item.id)}<li>{item.name}</li>{:else}<li>none</li>{/each}",
			expected: `{#each items as item, i (item.id)}
  <li>{item.name}</li>
{:else}
  <li>none</li>
{/each}
`,
		},
		{
			name:  "each with destructuring",
			input: "{#each pairs as [a, b]}{a}{/each}",
			expected: `{#each pairs as [a, b]}
  {a}
{/each}
`,
		},
		{
			name:  "full await block",
			input: "{#await promise}Loading{:then value}Got {value}{:catch err}Err{/await}",
			expected: `{#await promise}
  Loading
{:then value}
  Got {value}
{:catch err}
  Err
{/await}
`,
		},
		{
			name:  "await then shorthand",
			input: "{#await promise then value}{value}{/await}",
			expected: `{#await promise then value}
  {value}
{/await}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			result, err := Format(tt.input, DefaultOptions())
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func (FormatSuite) TestPreformatted(ctx context.Context, t *testctx.T) {
	input := "<pre>\n  two\n   three\n</pre>"
	result, err := Format(input, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, input+"\n", result)

	t.Run("textarea", func(ctx context.Context, t *testctx.T) {
		input := "<textarea>line one\n  line two</textarea>"
		result, err := Format(input, DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, input+"\n", result)
	})
}

func (FormatSuite) TestIgnoreComment(ctx context.Context, t *testctx.T) {
	input := "<!-- svfmt-ignore -->\n<div   a=\"1\">keep    me</div>\n<p>next   one</p>"
	result, err := Format(input, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "<!-- svfmt-ignore -->\n<div   a=\"1\">keep    me</div>\n<p>next one</p>\n", result)
}

func (FormatSuite) TestEmbeddedRegions(ctx context.Context, t *testctx.T) {
	t.Run("script body passes through verbatim", func(ctx context.Context, t *testctx.T) {
		input := "<script>\n  if (a < b) { alert(\"ok\"); }\n</script>"
		result, err := Format(input, DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, input+"\n", result)
	})

	t.Run("indent_script false keeps body at the margin", func(ctx context.Context, t *testctx.T) {
		opts := DefaultOptions()
		opts.IndentScript = false
		result, err := Format("<script>\nlet x = 1;\n</script>", opts)
		require.NoError(t, err)
		require.Equal(t, "<script>\nlet x = 1;\n</script>\n", result)
	})

	t.Run("registered formatter runs on the body", func(ctx context.Context, t *testctx.T) {
		opts := DefaultOptions()
		opts.Embedded = NewRegistry()
		opts.Embedded.Register("js", func(src string) (string, error) {
			return "const y = 2;", nil
		})
		result, err := Format("<script>\n  let x=1\n</script>", opts)
		require.NoError(t, err)
		require.Equal(t, "<script>\n  const y = 2;\n</script>\n", result)
	})

	t.Run("unknown language never dispatches", func(ctx context.Context, t *testctx.T) {
		opts := DefaultOptions()
		opts.Embedded = NewRegistry()
		opts.Embedded.Register("python", func(src string) (string, error) {
			return "NOT THIS", nil
		})
		result, err := Format("<script lang=\"python\">\n  x = 1\n</script>", opts)
		require.NoError(t, err)
		require.Equal(t, "<script lang=\"python\">\n  x = 1\n</script>\n", result)
	})

	t.Run("style dispatches by lang", func(ctx context.Context, t *testctx.T) {
		opts := DefaultOptions()
		opts.Embedded = NewRegistry()
		opts.Embedded.Register("scss", func(src string) (string, error) {
			return "p {\n  color: red;\n}", nil
		})
		result, err := Format("<style lang=\"scss\">p{color:red}</style>", opts)
		require.NoError(t, err)
		require.Equal(t, "<style lang=\"scss\">\n  p {\n    color: red;\n  }\n</style>\n", result)
	})

	t.Run("formatter error leaves the body alone", func(ctx context.Context, t *testctx.T) {
		opts := DefaultOptions()
		opts.Embedded = NewRegistry()
		opts.Embedded.Register("js", func(src string) (string, error) {
			return "", os.ErrInvalid
		})
		result, err := Format("<script>\n  let x = 1;\n</script>", opts)
		require.NoError(t, err)
		require.Equal(t, "<script>\n  let x = 1;\n</script>\n", result)
	})
}

func (FormatSuite) TestSortOrder(ctx context.Context, t *testctx.T) {
	input := "<p>hi</p>\n\n<style>\n  p { color: red; }\n</style>\n\n<script>\n  let a = 1;\n</script>"

	t.Run("default scripts-markup-styles", func(ctx context.Context, t *testctx.T) {
		result, err := Format(input, DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, "<script>\n  let a = 1;\n</script>\n\n<p>hi</p>\n\n<style>\n  p { color: red; }\n</style>\n", result)
	})

	t.Run("markup first", func(ctx context.Context, t *testctx.T) {
		opts := DefaultOptions()
		opts.SortOrder = SortMarkupScriptsStyles
		result, err := Format(input, opts)
		require.NoError(t, err)
		require.Equal(t, "<p>hi</p>\n\n<script>\n  let a = 1;\n</script>\n\n<style>\n  p { color: red; }\n</style>\n", result)
	})

	t.Run("module script precedes instance script", func(ctx context.Context, t *testctx.T) {
		input := "<script>\n  let b = 2;\n</script>\n<script context=\"module\">\n  let a = 1;\n</script>"
		result, err := Format(input, DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, "<script context=\"module\">\n  let a = 1;\n</script>\n\n<script>\n  let b = 2;\n</script>\n", result)
	})
}

func (FormatSuite) TestTabs(ctx context.Context, t *testctx.T) {
	opts := DefaultOptions()
	opts.UseTabs = true
	opts.PrintWidth = 5

	result, err := Format("<div>x</div>", opts)
	require.NoError(t, err)
	require.Equal(t, "<div>\n\tx\n</div>\n", result)
}

func (FormatSuite) TestIdempotence(ctx context.Context, t *testctx.T) {
	inputs := []string{
		"<div   class=\"a   b\"  >  hello   world  </div>",
		"{#if a}<p>x</p>{:else if b}<p>y</p>{/if}",
		"<script>\n    let x = 1;\n</script>\n<p>{x}</p>\n<style>\np { color: red; }\n</style>",
		"<pre>\n keep   this \n</pre>",
		"<ul>{#each items as item}<li>{item}</li>{/each}</ul>",
	}

	for _, input := range inputs {
		once, err := Format(input, DefaultOptions())
		require.NoError(t, err)
		twice, err := Format(once, DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, once, twice, "input: %q", input)
	}
}

func (FormatSuite) TestClassAttribute(ctx context.Context, t *testctx.T) {
	result, err := Format("<div class=\"a    b\n  c\">x</div>", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "<div class=\"a b c\">x</div>\n", result)

	t.Run("other attribute values stay verbatim", func(ctx context.Context, t *testctx.T) {
		result, err := Format("<div title=\"a    b\">x</div>", DefaultOptions())
		require.NoError(t, err)
		require.Equal(t, "<div title=\"a    b\">x</div>\n", result)
	})
}

func (FormatSuite) TestEmptyInput(ctx context.Context, t *testctx.T) {
	result, err := Format("", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "", result)

	result, err = Format("   \n\n  ", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, "", result)
}

func (FormatSuite) TestFormatFile(ctx context.Context, t *testctx.T) {
	_, err := FormatFile("bad.svelte", "<div>{unclosed</div>", DefaultOptions())
	require.Error(t, err)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	require.Equal(t, "bad.svelte", srcErr.Location.Filename)
	require.True(t, strings.Contains(err.Error(), "bad.svelte"))
}
