package devicestatus

import "sort"

// Aggregate builds the parent device list and its online/offline summary.
//
// For each source in layout.Order, the pool records whose sequence falls in
// that source's parent range are selected, sorted ascending by sequence and
// given their modems via Associate. Sources are concatenated in layout order.
// Only parents contribute to the summary.
//
// Parameters:
//   - pools: deduplicated pools keyed by source (missing sources yield no parents)
//   - layout: source order and per-source parent ranges
//   - links: the link table used to resolve modems
//
// Returns:
//   - []Device: parents in output order (never nil)
//   - Summary: parent identities bucketed by status (lists never nil)
func Aggregate(pools map[Source]*Pool, layout Layout, links *LinkTable) ([]Device, Summary) {
	devices := make([]Device, 0)

	for _, source := range layout.Order {
		rng, ok := layout.Ranges[source]
		if !ok {
			continue
		}
		for _, parent := range selectParents(pools[source], rng) {
			devices = append(devices, Device{
				Source:     parentSource(parent, source),
				ID:         parent.ID,
				Key:        parent.Key,
				Value:      parent.Value,
				LastOnline: parent.LastOnline,
				Seq:        parent.Seq,
				Modem:      Associate(parent, pools, links),
				IDOut:      parent.ID,
			})
		}
	}

	return devices, summarise(devices)
}

// selectParents returns the pool records within rng, ascending by sequence.
func selectParents(pool *Pool, rng SeqRange) []Record {
	var parents []Record
	for _, rec := range pool.Records() {
		if rng.Contains(rec.Seq) {
			parents = append(parents, rec)
		}
	}
	sort.SliceStable(parents, func(i, j int) bool {
		return parents[i].Seq < parents[j].Seq
	})
	return parents
}

func parentSource(rec Record, pooled Source) Source {
	if rec.Source != "" {
		return rec.Source
	}
	return pooled
}

// summarise buckets each device's IDOut by status.
func summarise(devices []Device) Summary {
	s := Summary{
		OnlineIDs:  make([]int, 0, len(devices)),
		OfflineIDs: make([]int, 0),
	}
	for _, d := range devices {
		if d.Value == 0 {
			s.OnlineIDs = append(s.OnlineIDs, d.IDOut)
		} else {
			s.OfflineIDs = append(s.OfflineIDs, d.IDOut)
		}
	}
	return s
}
