package reporter

import (
	"context"
	"time"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
)

// ReportWriter stores report history. Implemented by influxdb.Client.
type ReportWriter interface {
	WriteReport(r *devicestatus.Report, at time.Time)
	IsConnected() bool
}

// InfluxSink records each snapshot as time-series points.
type InfluxSink struct {
	writer ReportWriter
}

// NewInfluxSink creates a sink over writer.
func NewInfluxSink(writer ReportWriter) *InfluxSink {
	return &InfluxSink{writer: writer}
}

// Name implements Sink.
func (s *InfluxSink) Name() string { return "influxdb" }

// Publish implements Sink. Delivery errors surface through the client's
// error callback, not here.
func (s *InfluxSink) Publish(_ context.Context, snap *Snapshot) error {
	if !s.writer.IsConnected() {
		return errInfluxDisconnected
	}
	s.writer.WriteReport(snap.Report, snap.GeneratedAt)
	return nil
}
