// Package rewrite replaces inline Markdown links with footnote markers while
// numbering footnotes and QR references in document order.
package rewrite

import (
	"errors"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/qrnotes/internal/logfields"
	"git.home.luguber.info/inful/qrnotes/internal/markdown"
	"git.home.luguber.info/inful/qrnotes/internal/qr"
	"git.home.luguber.info/inful/qrnotes/internal/registry"
)

// ErrEmit marks errors returned by the QR emitter during a pass.
var ErrEmit = errors.New("emit qr code")

// Marker returns the footnote marker that replaces a link.
func Marker(footnoteID int) string {
	return fmt.Sprintf("[^%d]", footnoteID)
}

// Rewriter performs one forward pass over a document body.
type Rewriter struct {
	registry *registry.Registry
	emitter  qr.Emitter
	logger   *slog.Logger
}

// New returns a Rewriter that records identities in reg and emits one QR
// image per new URL through emitter.
func New(reg *registry.Registry, emitter qr.Emitter, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rewriter{registry: reg, emitter: emitter, logger: logger}
}

// Rewrite returns body with every inline link replaced by its footnote
// marker. Links are resolved strictly left to right; a new URL is emitted
// before the next link is resolved, and the first emission error aborts the
// pass with no rewritten output.
func (w *Rewriter) Rewrite(body []byte) ([]byte, error) {
	links := markdown.ScanInlineLinks(body)
	edits := make([]markdown.Edit, 0, len(links))

	for _, link := range links {
		footID := w.registry.ResolveFootnote(link.Text, link.URL)

		qrID, isNew := w.registry.ResolveQrReference(link.URL)
		if isNew {
			if err := w.emitter.Emit(link.URL, qrID); err != nil {
				return nil, fmt.Errorf("%w %d: %w", ErrEmit, qrID, err)
			}
			w.logger.Debug("QR code emitted", logfields.QRID(qrID), logfields.URL(link.URL))
		}

		edits = append(edits, markdown.Edit{
			Start:       link.Start,
			End:         link.End,
			Replacement: []byte(Marker(footID)),
		})
	}

	return markdown.ApplyEdits(body, edits)
}
