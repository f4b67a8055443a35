package devicestatus

import "fmt"

// Transformer runs the reshaping pipeline for a fixed Layout.
//
// It is built once at startup and shared by every request; nothing in it is
// mutated after NewTransformer returns.
type Transformer struct {
	layout Layout
	links  *LinkTable
}

// NewTransformer validates layout and indexes its link table.
//
// The layout is deep-copied, so the caller may reuse or modify it afterwards.
func NewTransformer(layout Layout) (*Transformer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	own := layout.Clone()
	return &Transformer{
		layout: own,
		links:  NewLinkTable(own.Links),
	}, nil
}

// Layout returns a copy of the active layout.
func (t *Transformer) Layout() Layout {
	return t.layout.Clone()
}

// LinkCount returns the number of indexed (source, parent) link entries.
func (t *Transformer) LinkCount() int {
	return t.links.Len()
}

// Transform reshapes an upstream payload into a Report.
//
// Records are partitioned by their declared source; records with a missing
// or unknown source belong to no pool and are ignored. Each pool is
// deduplicated, parents are selected and associated, and the summary is
// computed over parents only. Passthrough metadata is copied as-is.
//
// Returns ErrMalformedPayload when the payload or its devices array is missing.
func (t *Transformer) Transform(p *Payload) (*Report, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}
	if p.Devices == nil {
		return nil, fmt.Errorf("%w: devices array is missing", ErrMalformedPayload)
	}

	pools := buildPools(p.Devices)
	devices, summary := Aggregate(pools, t.layout, t.links)

	return &Report{
		Mode:              p.Mode,
		HourlyTmStampGeo:  p.HourlyTmStampGeo,
		HourlyTmStampDS:   p.HourlyTmStampDS,
		SummaryTmStampGeo: p.SummaryTmStampGeo,
		SummaryTmStampDS:  p.SummaryTmStampDS,
		Devices:           devices,
		CountOnline:       len(summary.OnlineIDs),
		CountOffline:      len(summary.OfflineIDs),
		OnlineIDs:         summary.OnlineIDs,
		OfflineIDs:        summary.OfflineIDs,
	}, nil
}

// buildPools partitions records by source and builds one deduplicated pool
// per known source.
func buildPools(records []Record) map[Source]*Pool {
	bySource := make(map[Source][]Record, len(KnownSources))
	for _, rec := range records {
		if !rec.Source.IsKnown() {
			continue
		}
		bySource[rec.Source] = append(bySource[rec.Source], rec)
	}

	pools := make(map[Source]*Pool, len(bySource))
	for src, recs := range bySource {
		pools[src] = NewPool(src, recs)
	}
	return pools
}
