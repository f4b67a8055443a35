// Package topology loads the static association layout: which sources are
// reported and in what order, the sequence range that selects parents in each
// source, and the link table mapping parents to their modem sequences.
//
// A layout comes from one of three places, chosen by topology.source:
//
//   - embedded: default.yaml compiled into the binary
//   - file:     a YAML file with the same shape as default.yaml
//   - database: the link_entries and parent_ranges tables; when empty they
//     are seeded from topology.file (seed_from_file) or the embedded default
//
// Every layout is validated with devicestatus.Layout.Validate before it is
// returned. The layout is read once at startup and never changes while the
// service runs.
package topology
