package reporter

import "context"

// ChannelReportUpdated is the WebSocket channel carrying snapshots.
const ChannelReportUpdated = "report.updated"

// Broadcaster fans a payload out to subscribers of a channel.
// Implemented by api.Hub.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// HubSink forwards snapshots to WebSocket clients.
type HubSink struct {
	hub Broadcaster
}

// NewHubSink creates a sink broadcasting on ChannelReportUpdated.
func NewHubSink(hub Broadcaster) *HubSink {
	return &HubSink{hub: hub}
}

// Name implements Sink.
func (s *HubSink) Name() string { return "websocket" }

// Publish implements Sink.
func (s *HubSink) Publish(_ context.Context, snap *Snapshot) error {
	s.hub.Broadcast(ChannelReportUpdated, snap)
	return nil
}
