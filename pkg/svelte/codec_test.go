package svelte

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyRoundTrip(t *testing.T) {
	bodies := []string{
		"",
		"let x = 1;",
		`if (a < b) { alert("</script>"); }`,
		"multi\nline\n\twith tabs",
		`quotes ' and " and backtick ` + "`",
	}

	for _, body := range bodies {
		decoded, err := DecodeBody(EncodeBody(body))
		require.NoError(t, err)
		assert.Equal(t, body, decoded)
	}
}

func TestDecodeBodyInvalid(t *testing.T) {
	_, err := DecodeBody("not!!valid!!base64")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding embedded region")
}

func TestEncodeEmbedded(t *testing.T) {
	t.Run("script body is lifted into the marker", func(t *testing.T) {
		src := "<script>let a = 1;</script><p>hi</p>"
		encoded := EncodeEmbedded(src)

		assert.Contains(t, encoded, MarkerAttribute+`="`)
		assert.Contains(t, encoded, "></script>")
		assert.NotContains(t, encoded, "let a = 1;")
		assert.Contains(t, encoded, "<p>hi</p>")
	})

	t.Run("body with markup-hostile content parses after encoding", func(t *testing.T) {
		src := "<script>\n  if (a < b && c > d) { s = \"</div>\"; }\n</script>"
		encoded := EncodeEmbedded(src)

		root, err := Parse(encoded)
		require.NoError(t, err)
		require.NotNil(t, root.Instance)
		assert.Empty(t, root.Instance.Content)
	})

	t.Run("style regions are encoded too", func(t *testing.T) {
		encoded := EncodeEmbedded("<style>p > a { color: red; }</style>")
		assert.NotContains(t, encoded, "color: red")
		_, err := Parse(encoded)
		require.NoError(t, err)
	})

	t.Run("self-closing script passes through", func(t *testing.T) {
		src := `<script src="x.js" />`
		assert.Equal(t, src, EncodeEmbedded(src))
	})

	t.Run("attributes stay on the start tag", func(t *testing.T) {
		encoded := EncodeEmbedded(`<script lang="ts">let a: number;</script>`)
		assert.True(t, strings.HasPrefix(encoded, `<script lang="ts" `))
	})

	t.Run("unterminated region is left for the parser", func(t *testing.T) {
		src := "<script>let a = 1;"
		assert.Equal(t, src, EncodeEmbedded(src))
	})

	t.Run("tag case is preserved", func(t *testing.T) {
		encoded := EncodeEmbedded("<SCRIPT>x</SCRIPT>")
		assert.True(t, strings.HasPrefix(encoded, "<SCRIPT "))
		assert.True(t, strings.HasSuffix(encoded, "</SCRIPT>"))
	})
}

func TestDecodeEmbedded(t *testing.T) {
	sources := []string{
		"<script>let a = 1;</script>",
		"<script lang=\"ts\">let a: number = 1;</script>\n<p>hi</p>\n<style>\np { color: red; }\n</style>",
		"no regions at all",
		`<script src="x.js" />`,
	}

	for _, src := range sources {
		assert.Equal(t, src, DecodeEmbedded(EncodeEmbedded(src)), "source: %q", src)
	}

	t.Run("slices without markers pass through", func(t *testing.T) {
		src := "<script>raw body</script>"
		assert.Equal(t, src, DecodeEmbedded(src))
	})
}

func TestMarkerContent(t *testing.T) {
	attrs := []Node{
		&Attribute{Name: "lang", Value: []Node{&Text{Data: "ts"}}},
		&Attribute{Name: MarkerAttribute, Value: []Node{&Text{Data: EncodeBody("let x = 1;")}}},
	}

	body, rest, ok, err := markerContent(attrs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "let x = 1;", body)
	require.Len(t, rest, 1)
	assert.Equal(t, "lang", rest[0].(*Attribute).Name)

	t.Run("absent marker", func(t *testing.T) {
		_, rest, ok, err := markerContent(attrs[:1])
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Len(t, rest, 1)
	})
}
