package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello [x](u)\n")

	doc := Split(input)
	require.False(t, doc.Had)
	require.Empty(t, doc.FrontMatter)
	require.Equal(t, input, doc.Body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	doc := Split([]byte("---\ntitle: Notes\n---\n# Title\n"))
	require.True(t, doc.Had)
	require.Equal(t, []byte("title: Notes\n"), doc.FrontMatter)
	require.Equal(t, []byte("# Title\n"), doc.Body)
	require.Equal(t, "\n", doc.Newline)
}

func TestSplit_MissingClosingDelimiterIsBody(t *testing.T) {
	input := []byte("---\nkey: value\n# Title\n")
	doc := Split(input)
	require.False(t, doc.Had)
	require.Empty(t, doc.FrontMatter)
	require.Equal(t, input, doc.Body)
}

func TestSplit_LeadingHorizontalRuleIsBody(t *testing.T) {
	for name, input := range map[string]string{
		"unterminated":     "---\nIntro after a rule, see [Go](https://go.dev).\n",
		"closed paragraph": "---\nIntro paragraph, see [Go](https://go.dev).\n---\nMore text.\n",
		"closed sequence":  "---\n- one\n- two\n---\nMore text.\n",
		"invalid yaml":     "---\nkey: [unbalanced\n---\nMore text.\n",
	} {
		t.Run(name, func(t *testing.T) {
			doc := Split([]byte(input))
			require.False(t, doc.Had)
			require.Equal(t, input, string(doc.Body))
		})
	}
}

func TestSplit_CRLF(t *testing.T) {
	doc := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.True(t, doc.Had)
	require.Equal(t, "\r\n", doc.Newline)
	require.Equal(t, []byte("key: value\r\n"), doc.FrontMatter)
	require.Equal(t, []byte("# Title\r\n"), doc.Body)
}

func TestSplit_EmptyFrontmatterBlock(t *testing.T) {
	doc := Split([]byte("---\n---\n# Title\n"))
	require.True(t, doc.Had)
	require.Empty(t, doc.FrontMatter)
	require.Equal(t, []byte("# Title\n"), doc.Body)
}

func TestSplit_HorizontalRuleLaterIsNotFrontmatter(t *testing.T) {
	input := []byte("# Title\n\n---\n\nmore\n")
	doc := Split(input)
	require.False(t, doc.Had)
	require.Equal(t, input, doc.Body)
}

func TestParseYAML(t *testing.T) {
	fields, err := ParseYAML([]byte("title: Notes\nheader-includes:\n  - \\usepackage{xcolor}\n"))
	require.NoError(t, err)
	require.Equal(t, "Notes", fields["title"])
	require.Equal(t, []any{`\usepackage{xcolor}`}, fields[HeaderIncludesKey])

	fields, err = ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)

	_, err = ParseYAML([]byte(": not yaml"))
	require.Error(t, err)
}

func TestMergeHeaderIncludes(t *testing.T) {
	fields := map[string]any{
		"title":           "Notes",
		HeaderIncludesKey: []any{`\usepackage{xcolor}`, `\usepackage{url}`},
	}

	merged := MergeHeaderIncludes(fields, []string{`\usepackage{url}`, `\usepackage{graphicx}`})

	require.Equal(t, []string{`\usepackage{xcolor}`, `\usepackage{url}`, `\usepackage{graphicx}`}, merged[HeaderIncludesKey])
	require.Equal(t, "Notes", merged["title"])
	// Input map is untouched.
	require.Len(t, fields[HeaderIncludesKey], 2)
}

func TestMergeHeaderIncludes_ScalarAndMissing(t *testing.T) {
	merged := MergeHeaderIncludes(map[string]any{HeaderIncludesKey: `\usepackage{a}`}, []string{`\usepackage{b}`})
	require.Equal(t, []string{`\usepackage{a}`, `\usepackage{b}`}, merged[HeaderIncludesKey])

	merged = MergeHeaderIncludes(map[string]any{}, []string{`\usepackage{b}`})
	require.Equal(t, []string{`\usepackage{b}`}, merged[HeaderIncludesKey])
}

func TestRender(t *testing.T) {
	out, err := Render(map[string]any{"title": "Notes", "author": "Ann"})
	require.NoError(t, err)
	require.Equal(t, "---\nauthor: Ann\ntitle: Notes\n---\n", string(out))
}
