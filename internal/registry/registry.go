// Package registry owns the two numbering spaces of a conversion run:
// footnote ids (one per distinct link text and URL pair) and QR reference
// ids (one per distinct URL).
//
// A Registry is scoped to a single run and is not safe for concurrent use.
// Identity is strict string equality; URLs are never normalized.
package registry

// LinkOccurrence is a link text and URL pair as it appears in a document.
// It is the lookup key of the footnote table.
type LinkOccurrence struct {
	Text string
	URL  string
}

// Footnote is one distinct LinkOccurrence.
type Footnote struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

// QrReference is one distinct URL.
type QrReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Registry assigns footnote and QR reference ids in first-occurrence order.
type Registry struct {
	footnoteIDs map[LinkOccurrence]int
	footnotes   []Footnote

	qrIDs map[string]int
	qrs   []QrReference
}

// New returns an empty Registry. Both id sequences start at 1.
func New() *Registry {
	return &Registry{
		footnoteIDs: make(map[LinkOccurrence]int),
		qrIDs:       make(map[string]int),
	}
}

// ResolveFootnote returns the footnote id for (text, url), assigning the
// next id when the pair has not been seen before.
func (r *Registry) ResolveFootnote(text, url string) int {
	key := LinkOccurrence{Text: text, URL: url}
	if id, ok := r.footnoteIDs[key]; ok {
		return id
	}
	id := len(r.footnotes) + 1
	r.footnoteIDs[key] = id
	r.footnotes = append(r.footnotes, Footnote{ID: id, Text: text, URL: url})
	return id
}

// ResolveQrReference returns the QR reference id for url. isNew reports
// whether this call created the reference; the caller is expected to emit
// the QR image exactly once for every isNew result.
func (r *Registry) ResolveQrReference(url string) (id int, isNew bool) {
	if id, ok := r.qrIDs[url]; ok {
		return id, false
	}
	id = len(r.qrs) + 1
	r.qrIDs[url] = id
	r.qrs = append(r.qrs, QrReference{ID: id, URL: url})
	return id, true
}

// QrIDFor returns the QR reference id already assigned to url.
func (r *Registry) QrIDFor(url string) (int, bool) {
	id, ok := r.qrIDs[url]
	return id, ok
}

// Footnotes returns all footnotes ordered by ascending id.
func (r *Registry) Footnotes() []Footnote {
	out := make([]Footnote, len(r.footnotes))
	copy(out, r.footnotes)
	return out
}

// QrReferences returns all QR references ordered by ascending id.
func (r *Registry) QrReferences() []QrReference {
	out := make([]QrReference, len(r.qrs))
	copy(out, r.qrs)
	return out
}

// Stats summarizes the registry contents.
type Stats struct {
	Footnotes    int `json:"footnotes"`
	QrReferences int `json:"qr_references"`
}

// Stats returns the number of footnotes and QR references assigned so far.
func (r *Registry) Stats() Stats {
	return Stats{Footnotes: len(r.footnotes), QrReferences: len(r.qrs)}
}
