package devicestatus

// LinkTable maps (source, parent sequence) to the ordered child sequences
// declared for that parent.
//
// Each source has its own table, so the same parent sequence may appear
// under both sources with unrelated meanings. A LinkTable is read-only after
// construction and safe for concurrent use.
type LinkTable struct {
	bySource map[Source]map[int][]int
	entries  int
}

// NewLinkTable indexes the given entries.
//
// When the same (source, parent sequence) is declared more than once the
// last entry wins; Layout.Validate rejects such layouts before they get here.
// Child sequence slices are copied so later edits to entries have no effect.
func NewLinkTable(entries []LinkEntry) *LinkTable {
	t := &LinkTable{
		bySource: make(map[Source]map[int][]int),
	}

	for _, e := range entries {
		table, ok := t.bySource[e.Source]
		if !ok {
			table = make(map[int][]int)
			t.bySource[e.Source] = table
		}
		if _, exists := table[e.ParentSeq]; !exists {
			t.entries++
		}
		children := make([]int, len(e.ChildSeqs))
		copy(children, e.ChildSeqs)
		table[e.ParentSeq] = children
	}

	return t
}

// Children returns the child sequences declared for parentSeq within source,
// in declaration order. It returns nil when no entry exists.
// The returned slice is shared and must not be modified.
func (t *LinkTable) Children(source Source, parentSeq int) []int {
	if t == nil {
		return nil
	}
	return t.bySource[source][parentSeq]
}

// Len returns the number of distinct (source, parent sequence) entries.
func (t *LinkTable) Len() int {
	if t == nil {
		return 0
	}
	return t.entries
}
