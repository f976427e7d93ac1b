// Package assemble renders the final document: preamble, rewritten body,
// footnote definitions and the QR code appendix.
package assemble

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
	"git.home.luguber.info/inful/qrnotes/internal/qr"
	"git.home.luguber.info/inful/qrnotes/internal/registry"
)

// DefaultHeaderIncludes are the LaTeX directives of the default preamble.
var DefaultHeaderIncludes = []string{
	`\usepackage[utf8]{inputenc}`,
	`\usepackage[T1]{fontenc}`,
	`\usepackage{graphicx}`,
	`\usepackage{newunicodechar}`,
	`\newunicodechar{δ}{$\delta$}`,
	`\newunicodechar{₂}{$_2$}`,
	`\usepackage{url}`,
	`\usepackage{rotating}`,
}

// AppendixHeading opens the QR code appendix.
const AppendixHeading = "# Appendix: QR Codes"

// Preamble renders a YAML header block listing includes under header-includes.
func Preamble(includes []string) string {
	var b strings.Builder
	b.WriteString("---\nheader-includes:\n")
	for _, inc := range includes {
		b.WriteString("    - ")
		b.WriteString(inc)
		b.WriteByte('\n')
	}
	b.WriteString("---\n")
	return b.String()
}

// Assembler renders documents. The zero value is not usable; use New.
type Assembler struct {
	preamble   string
	layout     Layout
	imageDir   string
	imageWidth string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithPreamble replaces the default preamble block.
func WithPreamble(p string) Option { return func(a *Assembler) { a.preamble = p } }

// WithLayout sets the appendix grid shape.
func WithLayout(l Layout) Option { return func(a *Assembler) { a.layout = l } }

// WithImageDir sets the directory the appendix references images from.
func WithImageDir(dir string) Option { return func(a *Assembler) { a.imageDir = dir } }

// WithImageWidth sets the LaTeX width of each QR image, e.g. "3cm".
func WithImageWidth(w string) Option { return func(a *Assembler) { a.imageWidth = w } }

// New returns an Assembler with the default preamble, a 4x5 grid, images
// under qr_codes/ and 3cm wide.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		preamble:   Preamble(DefaultHeaderIncludes),
		layout:     DefaultLayout(),
		imageDir:   "qr_codes",
		imageWidth: "3cm",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble renders the final document from the rewritten body and the
// registry state left by the rewrite pass.
func (a *Assembler) Assemble(body []byte, reg *registry.Registry) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(a.preamble) + len(body) + 512)

	b.WriteString(a.preamble)
	b.WriteByte('\n')
	b.Write(body)
	b.WriteString("\n\n")

	if err := a.writeFootnotes(&b, reg); err != nil {
		return nil, err
	}
	a.writeAppendix(&b, reg.QrReferences())

	return []byte(b.String()), nil
}

// FootnoteLine renders one footnote definition.
func FootnoteLine(f registry.Footnote, qrID int) string {
	return fmt.Sprintf("[^%d]: %s (QR code: [Q%d])", f.ID, f.Text, qrID)
}

func (a *Assembler) writeFootnotes(b *strings.Builder, reg *registry.Registry) error {
	for _, f := range reg.Footnotes() {
		qrID, ok := reg.QrIDFor(f.URL)
		if !ok {
			return ferrors.InternalError("footnote without qr reference").
				WithContext("footnote_id", f.ID).
				WithContext("url", f.URL).
				Build()
		}
		b.WriteString(FootnoteLine(f, qrID))
		b.WriteByte('\n')
	}
	return nil
}

func (a *Assembler) writeAppendix(b *strings.Builder, refs []registry.QrReference) {
	b.WriteString("\n\n")
	b.WriteString(AppendixHeading)
	b.WriteString("\n\n")

	ids := make([]int, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}

	cols := a.layout.Columns
	for _, page := range Paginate(ids, a.layout) {
		b.WriteString("\\footnotesize\n")
		fmt.Fprintf(b, "\\begin{tabular}{@{}%s@{}}\n", strings.Repeat("c", cols))
		for _, row := range page.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				if !cell.Empty() {
					cells[i] = a.cell(cell.QrID)
				}
			}
			b.WriteString(strings.Join(cells, " & "))
			b.WriteString(" \\\\[6pt]\n")
		}
		b.WriteString("\\end{tabular}\n\n")
	}
}

func (a *Assembler) cell(qrID int) string {
	width := strconv.FormatFloat(1/float64(a.layout.Columns), 'g', 4, 64)
	return fmt.Sprintf(
		"\\begin{minipage}[t]{%s\\textwidth}\\centering \\includegraphics[width=%s]{%s}\\\\[-2pt]\\footnotesize [Q%d]\\end{minipage}",
		width, a.imageWidth, a.imagePath(qrID), qrID,
	)
}

// imagePath uses forward slashes regardless of platform; LaTeX expects them.
func (a *Assembler) imagePath(qrID int) string {
	dir := filepath.ToSlash(a.imageDir)
	if dir == "" {
		return qr.ImageName(qrID)
	}
	return path.Join(dir, qr.ImageName(qrID))
}
