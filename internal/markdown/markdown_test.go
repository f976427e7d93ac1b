package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiagnose_InlineLinkIsNotReported(t *testing.T) {
	diags := Diagnose([]byte("See [API](https://example.com) for details."))
	require.Empty(t, diags)
}

func TestDiagnose_AutoLink(t *testing.T) {
	diags := Diagnose([]byte("<https://example.com/path>"))
	require.Equal(t, []Diagnostic{{Kind: DiagnosticAutoLink, Destination: "https://example.com/path"}}, diags)
}

func TestDiagnose_Image(t *testing.T) {
	diags := Diagnose([]byte("![Diagram](diagram.png)"))
	require.Equal(t, []Diagnostic{{Kind: DiagnosticImage, Destination: "diagram.png"}}, diags)
}

func TestDiagnose_ReferenceDefinitionsAreSortedByLabel(t *testing.T) {
	src := []byte("See [one][b] and [two][a].\n\n[b]: https://b.example\n[a]: https://a.example\n")
	diags := Diagnose(src)
	require.Equal(t, []Diagnostic{
		{Kind: DiagnosticReferenceDefinition, Destination: "https://a.example"},
		{Kind: DiagnosticReferenceDefinition, Destination: "https://b.example"},
	}, diags)
}
