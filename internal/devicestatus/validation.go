package devicestatus

import (
	"fmt"
	"strings"
)

// ParseSource converts a raw source tag into a known Source.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
	return src, nil
}

// Validate checks a Layout for configuration errors.
//
// It verifies that:
//   - Order is non-empty, lists only known sources, and has no repeats
//   - every ordered source has a parent range with Start <= End
//   - every link entry names a known source
//   - no (source, parent_seq) pair is declared twice
//
// Returns:
//   - error: wrapping ErrInvalidLayout with every problem found, or nil
func (l Layout) Validate() error {
	var errs []string

	if len(l.Order) == 0 {
		errs = append(errs, "order must list at least one source")
	}
	seenOrder := make(map[Source]bool, len(l.Order))
	for _, src := range l.Order {
		if !src.IsKnown() {
			errs = append(errs, fmt.Sprintf("order: unknown source %q", src))
			continue
		}
		if seenOrder[src] {
			errs = append(errs, fmt.Sprintf("order: source %q listed twice", src))
		}
		seenOrder[src] = true

		rng, ok := l.Ranges[src]
		if !ok {
			errs = append(errs, fmt.Sprintf("ranges: no parent range for source %q", src))
			continue
		}
		if rng.Start > rng.End {
			errs = append(errs, fmt.Sprintf("ranges.%s: start %d is after end %d", src, rng.Start, rng.End))
		}
	}

	for src := range l.Ranges {
		if !src.IsKnown() {
			errs = append(errs, fmt.Sprintf("ranges: unknown source %q", src))
		}
	}

	type linkKey struct {
		source Source
		parent int
	}
	seenLinks := make(map[linkKey]bool, len(l.Links))
	for i, e := range l.Links {
		if !e.Source.IsKnown() {
			errs = append(errs, fmt.Sprintf("links[%d]: unknown source %q", i, e.Source))
			continue
		}
		key := linkKey{e.Source, e.ParentSeq}
		if seenLinks[key] {
			errs = append(errs, fmt.Sprintf("links[%d]: parent_seq %d declared twice for source %q", i, e.ParentSeq, e.Source))
		}
		seenLinks[key] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidLayout, strings.Join(errs, "; "))
	}
	return nil
}

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	out := Layout{
		Order:  append([]Source(nil), l.Order...),
		Ranges: make(map[Source]SeqRange, len(l.Ranges)),
		Links:  make([]LinkEntry, len(l.Links)),
	}
	for k, v := range l.Ranges {
		out.Ranges[k] = v
	}
	for i, e := range l.Links {
		out.Links[i] = LinkEntry{
			Source:    e.Source,
			ParentSeq: e.ParentSeq,
			ChildSeqs: append([]int(nil), e.ChildSeqs...),
		}
	}
	return out
}
