package devicestatus

// strPtr returns a pointer to s.
func strPtr(s string) *string {
	return &s
}

// rec builds a record with the fields most tests care about.
func rec(source Source, id, seq, value int) Record {
	return Record{
		Source: source,
		ID:     id,
		Key:    "dev",
		Value:  value,
		Seq:    seq,
	}
}

// withLastOnline returns r with LastOnline set.
func withLastOnline(r Record, ts string) Record {
	r.LastOnline = strPtr(ts)
	return r
}

// testLayout returns a small two-source layout.
func testLayout() Layout {
	return Layout{
		Order: []Source{SourceDS, SourceGeo},
		Ranges: map[Source]SeqRange{
			SourceDS:  {Start: 17, End: 32},
			SourceGeo: {Start: 52, End: 71},
		},
		Links: []LinkEntry{
			{Source: SourceDS, ParentSeq: 17, ChildSeqs: []int{1}},
			{Source: SourceDS, ParentSeq: 18, ChildSeqs: []int{2, 3}},
			{Source: SourceGeo, ParentSeq: 52, ChildSeqs: []int{33}},
		},
	}
}
