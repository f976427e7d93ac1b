package markdown

import "regexp"

// inlineLinkPattern matches `[text](url)` on a single line. Both groups are
// non-greedy, so nested brackets or parentheses are not supported: the match
// ends at the first `](` and the first `)` after it.
var inlineLinkPattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

// InlineLink is one match of the inline link pattern.
//
// Start and End are byte offsets of the whole match in the scanned source,
// with End exclusive.
type InlineLink struct {
	Text  string
	URL   string
	Start int
	End   int
}

// ScanInlineLinks returns every non-overlapping inline link in body, left to
// right. Text that does not match is not reported.
func ScanInlineLinks(body []byte) []InlineLink {
	matches := inlineLinkPattern.FindAllSubmatchIndex(body, -1)
	links := make([]InlineLink, 0, len(matches))
	for _, m := range matches {
		links = append(links, InlineLink{
			Text:  string(body[m[2]:m[3]]),
			URL:   string(body[m[4]:m[5]]),
			Start: m[0],
			End:   m[1],
		})
	}
	return links
}
