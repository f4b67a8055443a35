package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/mqtt"
)

// JSONPublisher publishes retained JSON messages. Implemented by mqtt.Client.
type JSONPublisher interface {
	PublishJSON(topic string, v any) error
	IsConnected() bool
}

// MQTTSink publishes each snapshot as retained MQTT messages.
type MQTTSink struct {
	pub    JSONPublisher
	topics mqtt.Topics
}

// NewMQTTSink creates a sink that publishes under topics.
func NewMQTTSink(pub JSONPublisher, topics mqtt.Topics) *MQTTSink {
	return &MQTTSink{pub: pub, topics: topics}
}

// Name implements Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// deviceStateMessage is published once per parent device.
type deviceStateMessage struct {
	Snapshot     string               `json:"snapshot"`
	GeneratedAt  time.Time            `json:"generated_at"`
	Source       devicestatus.Source  `json:"source"`
	ID           int                  `json:"id"`
	Key          string               `json:"key"`
	Online       bool                 `json:"online"`
	LastOnline   *string              `json:"last_online,omitempty"`
	Modems       []devicestatus.Child `json:"modems"`
	ModemsOnline int                  `json:"modems_online"`
}

// Publish implements Sink.
//
// Order: report, summary, then one state message per device. The first
// failure aborts the remaining publishes.
func (s *MQTTSink) Publish(_ context.Context, snap *Snapshot) error {
	if !s.pub.IsConnected() {
		return mqtt.ErrNotConnected
	}

	if err := s.pub.PublishJSON(s.topics.Report(), snap); err != nil {
		return fmt.Errorf("publishing report: %w", err)
	}
	if err := s.pub.PublishJSON(s.topics.Summary(), newSummaryMessage(snap)); err != nil {
		return fmt.Errorf("publishing summary: %w", err)
	}

	for _, d := range snap.Report.Devices {
		msg := deviceStateMessage{
			Snapshot:     snap.ID,
			GeneratedAt:  snap.GeneratedAt,
			Source:       d.Source,
			ID:           d.ID,
			Key:          d.Key,
			Online:       d.Online(),
			LastOnline:   d.LastOnline,
			Modems:       d.Modem,
			ModemsOnline: d.ModemsOnline(),
		}
		if err := s.pub.PublishJSON(s.topics.DeviceState(string(d.Source), d.ID), msg); err != nil {
			return fmt.Errorf("publishing device %s/%d: %w", d.Source, d.ID, err)
		}
	}
	return nil
}
