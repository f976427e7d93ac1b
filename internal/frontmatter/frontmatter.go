// Package frontmatter splits, merges and renders the YAML header block of a
// Markdown document.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// HeaderIncludesKey is the Pandoc metadata field holding raw LaTeX directives.
const HeaderIncludesKey = "header-includes"

// Document is a Markdown source split at its front matter block.
type Document struct {
	// FrontMatter is the raw YAML between the delimiters, without them.
	FrontMatter []byte
	Body        []byte
	// Had reports whether the source started with a front matter block.
	Had bool
	// Newline is "\r\n" when the source uses CRLF line endings, else "\n".
	Newline string
}

// Split separates YAML front matter (`---` delimited) from the Markdown body.
//
// A leading `---` line only opens front matter when a closing `---` line
// follows and the text between them is empty or a YAML mapping. Anything else
// (a horizontal rule, an unterminated block, a paragraph) leaves Had false
// and Body set to the full input.
func Split(content []byte) Document {
	nl := detectNewline(content)
	doc := Document{Body: content, Newline: nl}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return doc
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return Document{FrontMatter: []byte{}, Body: rest[len(open):], Had: true, Newline: nl}
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return doc
	}

	block := rest[:idx+len(nl)]
	if !isMapping(block) {
		return doc
	}
	return Document{
		FrontMatter: block,
		Body:        rest[idx+len(closeSeq):],
		Had:         true,
		Newline:     nl,
	}
}

// isMapping reports whether block decodes into front matter fields. A block
// holding only comments or blank lines counts as an empty mapping.
func isMapping(block []byte) bool {
	_, err := ParseYAML(block)
	return err == nil
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// MergeHeaderIncludes returns a copy of fields whose header-includes list is
// the document's own entries followed by every entry of includes not already
// present. A scalar header-includes value counts as a one-entry list.
func MergeHeaderIncludes(fields map[string]any, includes []string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}

	merged := make([]string, 0, len(includes))
	seen := make(map[string]bool)
	add := func(s string) {
		if seen[s] {
			return
		}
		seen[s] = true
		merged = append(merged, s)
	}

	switch existing := fields[HeaderIncludesKey].(type) {
	case nil:
	case []any:
		for _, v := range existing {
			add(fmt.Sprint(v))
		}
	default:
		add(fmt.Sprint(existing))
	}
	for _, inc := range includes {
		add(inc)
	}

	out[HeaderIncludesKey] = merged
	return out
}

// Render serializes fields into a delimited front matter block.
func Render(fields map[string]any) ([]byte, error) {
	body, err := SerializeYAML(fields)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+8)
	out = append(out, "---\n"...)
	out = append(out, body...)
	out = append(out, "---\n"...)
	return out, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
