package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/linkstatus-core/internal/reporter"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	Report        ReportMetrics    `json:"report"`
	Topology      TopologyMetrics  `json:"topology"`
	MQTT          MQTTMetrics      `json:"mqtt"`
	InfluxDB      InfluxDBMetrics  `json:"influxdb"`
	Reporter      *reporter.Status `json:"reporter,omitempty"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// ReportMetrics contains report endpoint counters.
type ReportMetrics struct {
	Requests       uint64 `json:"requests"`
	Failures       uint64 `json:"failures"`
	LastDurationMs int64  `json:"last_duration_ms"`
}

// TopologyMetrics describes the active layout.
type TopologyMetrics struct {
	Sources     int `json:"sources"`
	LinkEntries int `json:"link_entries"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

// InfluxDBMetrics contains InfluxDB client statistics.
type InfluxDBMetrics struct {
	Connected bool `json:"connected"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Report: ReportMetrics{
			Requests:       s.stats.requests.Load(),
			Failures:       s.stats.failures.Load(),
			LastDurationMs: s.stats.lastDurationMs.Load(),
		},
		Topology: TopologyMetrics{
			Sources:     len(s.transformer.Layout().Order),
			LinkEntries: s.transformer.LinkCount(),
		},
		// Nil-safe: both report false when the client is not configured.
		MQTT:     MQTTMetrics{Connected: s.mqtt.IsConnected()},
		InfluxDB: InfluxDBMetrics{Connected: s.influx.IsConnected()},
	}

	if s.hub != nil {
		metrics.WebSocket.ConnectedClients = s.hub.ClientCount()
	}

	if s.reporter != nil {
		st := s.reporter.Status()
		metrics.Reporter = &st
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
