package devicestatus

import (
	"strings"
	"time"
)

// lastOnlineLayouts are the timestamp formats accepted for last_online,
// tried in order. Values without a zone are read as UTC.
var lastOnlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Dedupe collapses records sharing an identity down to one.
//
// Records are folded in input order. Each identity keeps the position of its
// first occurrence; the record held there is replaced according to pick.
// The input is expected to come from a single source.
func Dedupe(records []Record) []Record {
	positions := make(map[int]int, len(records))
	out := make([]Record, 0, len(records))

	for _, rec := range records {
		pos, seen := positions[rec.ID]
		if !seen {
			positions[rec.ID] = len(out)
			out = append(out, rec)
			continue
		}
		out[pos] = pick(out[pos], rec)
	}

	return out
}

// pick chooses between the kept record and a later candidate with the same
// identity. Online beats offline unconditionally; otherwise the strictly
// later last_online wins and ties keep the existing record.
func pick(kept, candidate Record) Record {
	switch {
	case !kept.Online() && candidate.Online():
		return candidate
	case kept.Online() && !candidate.Online():
		return kept
	case lastOnline(candidate).After(lastOnline(kept)):
		return candidate
	default:
		return kept
	}
}

// lastOnline parses a record's last_online timestamp.
// Missing or unparsable values return the zero time, which sorts before any
// real timestamp.
func lastOnline(r Record) time.Time {
	if r.LastOnline == nil {
		return time.Time{}
	}
	return parseTimestamp(*r.LastOnline)
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range lastOnlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
