package markdown

import (
	"errors"
	"fmt"
)

// Edit represents a targeted byte-range replacement.
//
// Start and End are byte offsets into the original source, with End exclusive.
// Replacement replaces source[Start:End].
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ApplyEdits applies edits to source in a single forward pass and returns the
// updated content. source is never modified.
//
// Edits must be ordered by Start, non-overlapping, and refer to offsets in the
// original source. Replacement text is copied verbatim and is never re-scanned.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}

	size := len(source)
	prevEnd := 0
	for i, e := range edits {
		if e.Start < 0 || e.End < 0 {
			return nil, fmt.Errorf("invalid edit[%d]: negative range", i)
		}
		if e.End < e.Start {
			return nil, fmt.Errorf("invalid edit[%d]: end before start", i)
		}
		if e.End > len(source) {
			return nil, fmt.Errorf("invalid edit[%d]: range out of bounds", i)
		}
		if e.Start < prevEnd {
			return nil, errors.New("invalid edits: overlapping or unordered ranges")
		}
		prevEnd = e.End
		size += len(e.Replacement) - (e.End - e.Start)
	}

	out := make([]byte, 0, size)
	cursor := 0
	for _, e := range edits {
		out = append(out, source[cursor:e.Start]...)
		out = append(out, e.Replacement...)
		cursor = e.End
	}
	out = append(out, source[cursor:]...)
	return out, nil
}
