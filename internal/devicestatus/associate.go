package devicestatus

// Pool is the deduplicated record set of one source, indexed by sequence.
type Pool struct {
	source  Source
	records []Record
	bySeq   map[int]Record
}

// NewPool deduplicates records and indexes the survivors by sequence.
// If two surviving records share a sequence, the later one in pool order
// is the one found by Lookup.
func NewPool(source Source, records []Record) *Pool {
	unique := Dedupe(records)
	bySeq := make(map[int]Record, len(unique))
	for _, rec := range unique {
		bySeq[rec.Seq] = rec
	}
	return &Pool{
		source:  source,
		records: unique,
		bySeq:   bySeq,
	}
}

// Source returns the source this pool was built for.
func (p *Pool) Source() Source {
	return p.source
}

// Records returns the deduplicated records in first-seen order.
func (p *Pool) Records() []Record {
	if p == nil {
		return nil
	}
	return p.records
}

// Lookup returns the record with the given sequence.
func (p *Pool) Lookup(seq int) (Record, bool) {
	if p == nil {
		return Record{}, false
	}
	rec, ok := p.bySeq[seq]
	return rec, ok
}

// Associate resolves the modems of parent.
//
// Child sequences come from the link table entry for the parent's own source
// and are looked up in that same source's pool; associations never cross
// sources. Sequences with no matching record are skipped. The result keeps
// the order declared in the link table and is never nil.
func Associate(parent Record, pools map[Source]*Pool, links *LinkTable) []Child {
	seqs := links.Children(parent.Source, parent.Seq)
	children := make([]Child, 0, len(seqs))
	pool := pools[parent.Source]

	for _, seq := range seqs {
		rec, ok := pool.Lookup(seq)
		if !ok {
			continue
		}
		source := rec.Source
		if source == "" {
			source = parent.Source
		}
		children = append(children, Child{
			Source:     source,
			ID:         rec.ID,
			Key:        rec.Key,
			Value:      rec.Value,
			LastOnline: rec.LastOnline,
			Seq:        rec.Seq,
		})
	}

	return children
}
