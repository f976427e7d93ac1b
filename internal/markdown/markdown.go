package markdown

import (
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// DiagnosticKind names a link construct the inline scanner treats specially.
type DiagnosticKind string

const (
	// DiagnosticAutoLink is a `<https://...>` autolink; it is left untouched.
	DiagnosticAutoLink DiagnosticKind = "autolink"
	// DiagnosticReferenceDefinition is a `[label]: url` definition; neither it
	// nor the reference-style usages pointing at it are converted.
	DiagnosticReferenceDefinition DiagnosticKind = "reference_definition"
	// DiagnosticImage is an inline image. The scanner matches the `[alt](src)`
	// part, so the image turns into a footnote marker preceded by `!`.
	DiagnosticImage DiagnosticKind = "image"
)

// Diagnostic reports one construct found by a CommonMark parse.
type Diagnostic struct {
	Kind        DiagnosticKind `json:"kind"`
	Destination string         `json:"destination"`
}

// Diagnose parses body with Goldmark and reports link-like constructs that
// the single-line inline scanner does not convert as a footnote.
//
// This is an analysis API; it never changes what the scanner matches.
func Diagnose(body []byte) []Diagnostic {
	md := goldmark.New()
	ctx := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	out := make([]Diagnostic, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			out = append(out, Diagnostic{Kind: DiagnosticAutoLink, Destination: string(node.URL(body))})
		case *gmast.Image:
			out = append(out, Diagnostic{Kind: DiagnosticImage, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions live in the parse context, not in the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		out = append(out, Diagnostic{Kind: DiagnosticReferenceDefinition, Destination: string(ref.Destination())})
	}

	return out
}
