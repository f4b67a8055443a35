// Package devicestatus reshapes the upstream device-status feed into the
// device/modem hierarchy served by linkstatus.
//
// The upstream monitoring API returns a flat list of status records tagged
// with a source ("ds" or "geo"). This package turns that list into a report
// where every parent device carries its associated modems, and summarises
// which parents are online.
//
// # Pipeline
//
//	Payload ──▶ partition by source ──▶ Dedupe ──▶ Pool (indexed by seq)
//	                                                   │
//	Layout ──▶ LinkTable ──────────────────────▶ Associate
//	                                                   │
//	                                              Aggregate ──▶ Report
//
// # Key Types
//
//   - Record: one upstream status record
//   - LinkEntry: a static parent → children declaration
//   - Layout: source order, parent ranges and link entries (configuration data)
//   - Transformer: the immutable pipeline built from a Layout
//   - Report: the response shape of GET /api/devices
//
// # Usage
//
//	tr, err := devicestatus.NewTransformer(layout)
//	if err != nil {
//	    return err
//	}
//	report, err := tr.Transform(payload)
//
// # Thread Safety
//
// A Transformer is immutable after construction and safe for concurrent use
// by any number of requests. Pools and reports are request-scoped.
package devicestatus
