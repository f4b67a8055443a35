package reporter

import (
	"context"
	"time"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
)

// Snapshot is one report produced by a reporter run.
type Snapshot struct {
	ID          string               `json:"id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Report      *devicestatus.Report `json:"report"`
}

// Sink receives every successful snapshot.
type Sink interface {
	// Name identifies the sink in logs and status output.
	Name() string

	// Publish delivers the snapshot. It must not retain or modify snap.
	Publish(ctx context.Context, snap *Snapshot) error
}

// summaryMessage is the compact form of a report, without device bodies.
type summaryMessage struct {
	ID           string    `json:"id"`
	GeneratedAt  time.Time `json:"generated_at"`
	CountOnline  int       `json:"count_online"`
	CountOffline int       `json:"count_offline"`
	OnlineIDs    []int     `json:"online_ids"`
	OfflineIDs   []int     `json:"offline_ids"`
}

func newSummaryMessage(snap *Snapshot) summaryMessage {
	return summaryMessage{
		ID:           snap.ID,
		GeneratedAt:  snap.GeneratedAt,
		CountOnline:  snap.Report.CountOnline,
		CountOffline: snap.Report.CountOffline,
		OnlineIDs:    snap.Report.OnlineIDs,
		OfflineIDs:   snap.Report.OfflineIDs,
	}
}
