// Package api implements the HTTP API and WebSocket server for linkstatus-core.
//
// This package provides:
//   - GET /api/devices: the device/modem report consumed by the dashboard
//   - GET /api/v1/links: the active parent ranges and link table
//   - health and metrics endpoints
//   - WebSocket hub relaying reporter snapshots on "report.updated"
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Report Endpoint
//
// Each request performs one upstream fetch and one synchronous transform.
// Nothing is cached between requests. Any failure, including a panic in the
// transform, is answered with 502 and the body
//
//	{"error": "transform-failed", "detail": "<message>"}
//
// Both success and failure responses carry Cache-Control: no-store.
//
// # Graceful Degradation
//
// MQTT, InfluxDB and the reporter are optional. Without them the report,
// links and health endpoints work unchanged; metrics report them as
// disconnected or absent.
package api
