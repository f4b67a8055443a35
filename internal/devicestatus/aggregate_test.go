package devicestatus

import (
	"reflect"
	"testing"
)

func seqs(devices []Device) []int {
	out := make([]int, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.Seq)
	}
	return out
}

func TestAggregate_RangeSelectionExact(t *testing.T) {
	pools := map[Source]*Pool{
		SourceDS: NewPool(SourceDS, []Record{
			rec(SourceDS, 1, 33, 0),
			rec(SourceDS, 2, 20, 0),
			rec(SourceDS, 3, 16, 0),
			rec(SourceDS, 4, 32, 0),
			rec(SourceDS, 5, 17, 0),
		}),
	}
	layout := Layout{
		Order:  []Source{SourceDS},
		Ranges: map[Source]SeqRange{SourceDS: {Start: 17, End: 32}},
	}

	devices, _ := Aggregate(pools, layout, NewLinkTable(nil))

	if got, want := seqs(devices), []int{17, 20, 32}; !reflect.DeepEqual(got, want) {
		t.Errorf("selected seqs = %v, want %v", got, want)
	}
}

func TestAggregate_SourceOrder(t *testing.T) {
	pools := map[Source]*Pool{
		SourceDS: NewPool(SourceDS, []Record{
			rec(SourceDS, 6, 18, 0),
			rec(SourceDS, 5, 17, 1),
		}),
		SourceGeo: NewPool(SourceGeo, []Record{
			rec(SourceGeo, 21, 53, 0),
			rec(SourceGeo, 20, 52, 0),
		}),
	}

	tests := []struct {
		name  string
		order []Source
		want  []int
	}{
		{name: "ds first", order: []Source{SourceDS, SourceGeo}, want: []int{17, 18, 52, 53}},
		{name: "geo first", order: []Source{SourceGeo, SourceDS}, want: []int{52, 53, 17, 18}},
		{name: "geo only", order: []Source{SourceGeo}, want: []int{52, 53}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := testLayout()
			layout.Order = tt.order

			devices, _ := Aggregate(pools, layout, NewLinkTable(layout.Links))
			if got := seqs(devices); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("seqs = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregate_AttachesModemsAndIDOut(t *testing.T) {
	layout := testLayout()
	pools := map[Source]*Pool{
		SourceDS: NewPool(SourceDS, []Record{
			rec(SourceDS, 6, 18, 0),
			rec(SourceDS, 2, 2, 0),
			rec(SourceDS, 3, 3, 1),
		}),
	}

	devices, _ := Aggregate(pools, layout, NewLinkTable(layout.Links))
	if len(devices) != 1 {
		t.Fatalf("len(devices) = %d, want 1", len(devices))
	}
	d := devices[0]
	if d.IDOut != d.ID {
		t.Errorf("IDOut = %d, want %d", d.IDOut, d.ID)
	}
	if len(d.Modem) != 2 || d.Modem[0].ID != 2 || d.Modem[1].ID != 3 {
		t.Errorf("modems = %+v, want ids [2 3]", d.Modem)
	}
}

func TestAggregate_SummaryCountsParentsOnly(t *testing.T) {
	layout := testLayout()
	pools := map[Source]*Pool{
		SourceDS: NewPool(SourceDS, []Record{
			rec(SourceDS, 5, 17, 0),
			rec(SourceDS, 6, 18, 1),
			rec(SourceDS, 1, 1, 1),
		}),
		SourceGeo: NewPool(SourceGeo, []Record{
			rec(SourceGeo, 20, 52, 1),
		}),
	}

	_, summary := Aggregate(pools, layout, NewLinkTable(layout.Links))

	if want := []int{5}; !reflect.DeepEqual(summary.OnlineIDs, want) {
		t.Errorf("OnlineIDs = %v, want %v", summary.OnlineIDs, want)
	}
	if want := []int{6, 20}; !reflect.DeepEqual(summary.OfflineIDs, want) {
		t.Errorf("OfflineIDs = %v, want %v", summary.OfflineIDs, want)
	}
}

func TestAggregate_EmptyPools(t *testing.T) {
	devices, summary := Aggregate(nil, testLayout(), NewLinkTable(nil))

	if devices == nil || len(devices) != 0 {
		t.Errorf("devices = %v, want empty non-nil", devices)
	}
	if summary.OnlineIDs == nil || summary.OfflineIDs == nil {
		t.Error("summary lists should be non-nil")
	}
}

func TestAggregate_StableForEqualSeq(t *testing.T) {
	// Two identities sharing a sequence keep their pool order.
	pools := map[Source]*Pool{
		SourceDS: NewPool(SourceDS, []Record{
			rec(SourceDS, 9, 20, 0),
			rec(SourceDS, 8, 20, 0),
		}),
	}
	layout := Layout{
		Order:  []Source{SourceDS},
		Ranges: map[Source]SeqRange{SourceDS: {Start: 17, End: 32}},
	}

	devices, _ := Aggregate(pools, layout, NewLinkTable(nil))
	if len(devices) != 2 || devices[0].ID != 9 || devices[1].ID != 8 {
		t.Errorf("devices = %+v, want ids [9 8]", devices)
	}
}
