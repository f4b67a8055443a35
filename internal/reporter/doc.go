// Package reporter periodically builds the device report and pushes it to
// downstream sinks.
//
// The HTTP report endpoint is pull-only and has no side effects. Dashboards
// that prefer push delivery get the same report from the reporter, which
// runs on its own ticker and fans each snapshot out to:
//
//   - MQTT: retained report, summary and one state message per parent device
//   - InfluxDB: a summary point plus one point per parent device
//   - WebSocket: a "report.updated" event on the API hub
//
// A failing sink is logged and does not stop the other sinks or the next run.
package reporter
