package devicestatus

// Source identifies which upstream feed a record came from.
type Source string

// Known sources.
const (
	SourceDS  Source = "ds"
	SourceGeo Source = "geo"
)

// KnownSources lists every source the upstream feed can emit.
var KnownSources = []Source{SourceDS, SourceGeo}

// IsKnown reports whether s is one of KnownSources.
func (s Source) IsKnown() bool {
	for _, k := range KnownSources {
		if s == k {
			return true
		}
	}
	return false
}

// Record is one status record from the upstream feed.
//
// Source is empty when the upstream omitted it. LastOnline is nil when absent;
// a nil or unparsable value ranks as the earliest possible instant.
type Record struct {
	Source     Source  `json:"source,omitempty"`
	ID         int     `json:"id"`
	Key        string  `json:"key"`
	Value      int     `json:"value"` // 0 = online, anything else = offline
	LastOnline *string `json:"last_online,omitempty"`
	Seq        int     `json:"seq"` // upstream ordering key, used as the join key for links
}

// Online reports whether the record's status is online.
func (r Record) Online() bool {
	return r.Value == 0
}

// Payload is the body returned by the upstream monitoring API.
type Payload struct {
	Mode              *string  `json:"mode,omitempty"`
	Order             *string  `json:"order,omitempty"`
	Prefer            *string  `json:"prefer,omitempty"`
	HourlyTmStampGeo  *string  `json:"hourly_TmStamp_geo,omitempty"`
	HourlyTmStampDS   *string  `json:"hourly_TmStamp_ds,omitempty"`
	SummaryTmStampGeo *string  `json:"summary_TmStamp_geo,omitempty"`
	SummaryTmStampDS  *string  `json:"summary_TmStamp_ds,omitempty"`
	Devices           []Record `json:"devices"`
}

// LinkEntry declares that the parent record with ParentSeq in Source owns
// the records with ChildSeqs in the same source.
type LinkEntry struct {
	Source    Source `json:"source" yaml:"source"`
	ParentSeq int    `json:"parent_seq" yaml:"parent_seq"`
	ChildSeqs []int  `json:"child_seqs" yaml:"child_seqs"`
}

// SeqRange is a closed range of sequence values.
type SeqRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Contains reports whether seq lies within [Start, End].
func (r SeqRange) Contains(seq int) bool {
	return seq >= r.Start && seq <= r.End
}

// Child is a modem attached to a parent device in the report.
type Child struct {
	Source     Source  `json:"source"`
	ID         int     `json:"id"`
	Key        string  `json:"key"`
	Value      int     `json:"value"`
	LastOnline *string `json:"last_online,omitempty"`
	Seq        int     `json:"seq"`
}

// Device is a parent record with its resolved modems.
type Device struct {
	Source     Source  `json:"source"`
	ID         int     `json:"id"`
	Key        string  `json:"key"`
	Value      int     `json:"value"`
	LastOnline *string `json:"last_online,omitempty"`
	Seq        int     `json:"seq"`
	Modem      []Child `json:"modem"`
	IDOut      int     `json:"id_out"` // identity used for summary counting
}

// Online reports whether the parent itself is online.
func (d Device) Online() bool {
	return d.Value == 0
}

// ModemsOnline counts the attached modems that are online.
func (d Device) ModemsOnline() int {
	n := 0
	for _, m := range d.Modem {
		if m.Value == 0 {
			n++
		}
	}
	return n
}

// Summary holds the online/offline buckets over parent devices.
type Summary struct {
	OnlineIDs  []int
	OfflineIDs []int
}

// Report is the response body of the device report endpoint.
type Report struct {
	Mode              *string  `json:"mode,omitempty"`
	HourlyTmStampGeo  *string  `json:"hourly_TmStamp_geo,omitempty"`
	HourlyTmStampDS   *string  `json:"hourly_TmStamp_ds,omitempty"`
	SummaryTmStampGeo *string  `json:"summary_TmStamp_geo,omitempty"`
	SummaryTmStampDS  *string  `json:"summary_TmStamp_ds,omitempty"`
	Devices           []Device `json:"devices"`
	CountOnline       int      `json:"count_online"`
	CountOffline      int      `json:"count_offline"`
	OnlineIDs         []int    `json:"online_ids"`
	OfflineIDs        []int    `json:"offline_ids"`
}

// Layout is the static association configuration: which sources are emitted
// and in what order, which sequences qualify as parents, and the link table.
type Layout struct {
	Order  []Source            `json:"order" yaml:"order"`
	Ranges map[Source]SeqRange `json:"ranges" yaml:"ranges"`
	Links  []LinkEntry         `json:"links" yaml:"links"`
}
