package devicestatus

import "testing"

func TestAssociate_DeclaredOrderAndDrop(t *testing.T) {
	pools := map[Source]*Pool{
		SourceDS: NewPool(SourceDS, []Record{
			rec(SourceDS, 10, 18, 0),
			rec(SourceDS, 2, 2, 1),
			rec(SourceDS, 4, 4, 0),
		}),
	}
	links := NewLinkTable([]LinkEntry{
		{Source: SourceDS, ParentSeq: 18, ChildSeqs: []int{4, 3, 2}},
	})

	children := Associate(rec(SourceDS, 10, 18, 0), pools, links)

	if len(children) != 2 {
		t.Fatalf("len(children) = %d, want 2 (seq 3 has no record)", len(children))
	}
	if children[0].Seq != 4 || children[1].Seq != 2 {
		t.Errorf("child seqs = [%d %d], want [4 2]", children[0].Seq, children[1].Seq)
	}
	if children[1].ID != 2 || children[1].Value != 1 {
		t.Errorf("second child = %+v, want id 2 value 1", children[1])
	}
}

func TestAssociate_WithinSourceOnly(t *testing.T) {
	pools := map[Source]*Pool{
		SourceDS:  NewPool(SourceDS, []Record{rec(SourceDS, 5, 17, 0)}),
		SourceGeo: NewPool(SourceGeo, []Record{rec(SourceGeo, 77, 1, 0)}),
	}
	links := NewLinkTable([]LinkEntry{
		{Source: SourceDS, ParentSeq: 17, ChildSeqs: []int{1}},
	})

	children := Associate(rec(SourceDS, 5, 17, 0), pools, links)
	if len(children) != 0 {
		t.Errorf("children = %+v, want none (seq 1 only exists in geo)", children)
	}
}

func TestAssociate_NoEntry(t *testing.T) {
	pools := map[Source]*Pool{
		SourceGeo: NewPool(SourceGeo, []Record{rec(SourceGeo, 1, 60, 0)}),
	}

	children := Associate(rec(SourceGeo, 1, 60, 0), pools, NewLinkTable(nil))
	if children == nil {
		t.Fatal("children = nil, want empty non-nil slice")
	}
	if len(children) != 0 {
		t.Errorf("len(children) = %d, want 0", len(children))
	}
}

func TestAssociate_CarriesChildFields(t *testing.T) {
	child := withLastOnline(rec(SourceGeo, 21, 33, 1), "2026-10-01T00:00:00Z")
	child.Key = "geo-modem-1"
	pools := map[Source]*Pool{
		SourceGeo: NewPool(SourceGeo, []Record{rec(SourceGeo, 20, 52, 0), child}),
	}
	links := NewLinkTable([]LinkEntry{{Source: SourceGeo, ParentSeq: 52, ChildSeqs: []int{33}}})

	children := Associate(rec(SourceGeo, 20, 52, 0), pools, links)
	if len(children) != 1 {
		t.Fatalf("len(children) = %d, want 1", len(children))
	}
	got := children[0]
	if got.Source != SourceGeo || got.ID != 21 || got.Key != "geo-modem-1" || got.Value != 1 || got.Seq != 33 {
		t.Errorf("child = %+v", got)
	}
	if got.LastOnline == nil || *got.LastOnline != "2026-10-01T00:00:00Z" {
		t.Errorf("child.LastOnline = %v, want 2026-10-01T00:00:00Z", got.LastOnline)
	}
}

func TestPool_LookupLaterSeqWins(t *testing.T) {
	pool := NewPool(SourceDS, []Record{
		rec(SourceDS, 1, 9, 0),
		rec(SourceDS, 2, 9, 1),
	})

	got, ok := pool.Lookup(9)
	if !ok {
		t.Fatal("Lookup(9) found nothing")
	}
	if got.ID != 2 {
		t.Errorf("Lookup(9).ID = %d, want 2", got.ID)
	}

	if _, ok := pool.Lookup(10); ok {
		t.Error("Lookup(10) found a record, want none")
	}
}

func TestPool_Nil(t *testing.T) {
	var pool *Pool
	if _, ok := pool.Lookup(1); ok {
		t.Error("nil pool Lookup() found a record")
	}
	if pool.Records() != nil {
		t.Error("nil pool Records() should be nil")
	}
}
