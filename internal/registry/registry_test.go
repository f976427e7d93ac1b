package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFootnote_IsIdempotent(t *testing.T) {
	r := New()

	first := r.ResolveFootnote("OpenAI", "https://openai.com")
	second := r.ResolveFootnote("OpenAI", "https://openai.com")

	require.Equal(t, 1, first)
	require.Equal(t, first, second)
	require.Len(t, r.Footnotes(), 1)
}

func TestResolveFootnote_SameURLDifferentText(t *testing.T) {
	r := New()

	require.Equal(t, 1, r.ResolveFootnote("OpenAI", "https://openai.com"))
	require.Equal(t, 2, r.ResolveFootnote("again", "https://openai.com"))

	id, isNew := r.ResolveQrReference("https://openai.com")
	require.Equal(t, 1, id)
	require.True(t, isNew)

	id, isNew = r.ResolveQrReference("https://openai.com")
	require.Equal(t, 1, id)
	require.False(t, isNew)
}

func TestResolveFootnote_SameTextDifferentURL(t *testing.T) {
	r := New()

	a := r.ResolveFootnote("X", "urlA")
	b := r.ResolveFootnote("X", "urlB")

	assert.NotEqual(t, a, b)
	assert.Equal(t, []Footnote{
		{ID: 1, Text: "X", URL: "urlA"},
		{ID: 2, Text: "X", URL: "urlB"},
	}, r.Footnotes())
}

func TestResolve_EmptyStringsAreOrdinaryKeys(t *testing.T) {
	r := New()

	require.Equal(t, 1, r.ResolveFootnote("", "http://example.com"))
	require.Equal(t, 2, r.ResolveFootnote("", ""))
	require.Equal(t, 1, r.ResolveFootnote("", "http://example.com"))

	id, isNew := r.ResolveQrReference("")
	require.Equal(t, 1, id)
	require.True(t, isNew)
}

func TestResolveQrReference_NoNormalization(t *testing.T) {
	r := New()

	urls := []string{
		"https://example.com",
		"https://example.com/",
		"HTTPS://example.com",
		"https://example.com?a=1&b=2",
		"https://example.com?b=2&a=1",
	}
	for i, u := range urls {
		id, isNew := r.ResolveQrReference(u)
		require.True(t, isNew, u)
		require.Equal(t, i+1, id, u)
	}
	require.Len(t, r.QrReferences(), len(urls))
}

func TestRegistry_IDsAreContiguousInFirstOccurrenceOrder(t *testing.T) {
	r := New()

	// Pairs cycle over 3 texts and 4 urls, so both tables see repeats.
	for i := range 24 {
		text := fmt.Sprintf("t%d", i%3)
		url := fmt.Sprintf("https://example.com/%d", i%4)
		r.ResolveFootnote(text, url)
		r.ResolveQrReference(url)
	}

	footnotes := r.Footnotes()
	for i, f := range footnotes {
		require.Equal(t, i+1, f.ID)
	}
	// lcm(3,4) distinct pairs
	require.Len(t, footnotes, 12)

	qrs := r.QrReferences()
	require.Len(t, qrs, 4)
	for i, q := range qrs {
		require.Equal(t, i+1, q.ID)
		require.Equal(t, fmt.Sprintf("https://example.com/%d", i), q.URL)
	}

	stats := r.Stats()
	require.LessOrEqual(t, stats.QrReferences, stats.Footnotes)
}

func TestQrIDFor(t *testing.T) {
	r := New()

	_, ok := r.QrIDFor("https://a.example")
	require.False(t, ok)

	r.ResolveQrReference("https://a.example")
	r.ResolveQrReference("https://b.example")

	id, ok := r.QrIDFor("https://b.example")
	require.True(t, ok)
	require.Equal(t, 2, id)
}

func TestFootnotes_ReturnsCopy(t *testing.T) {
	r := New()
	r.ResolveFootnote("a", "u")

	got := r.Footnotes()
	got[0].Text = "mutated"

	require.Equal(t, "a", r.Footnotes()[0].Text)
}
