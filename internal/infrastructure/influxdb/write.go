package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
)

// Measurements and tags written for each report.
const (
	MeasurementSummary = "report_summary"
	MeasurementDevice  = "device_status"

	TagSite   = "site"
	TagSource = "source"
	TagID     = "id"
)

// WriteReport records r as one summary point plus one point per parent
// device, all stamped at, and blocks until the batch has been sent.
// No-op while disconnected.
//
// Example:
//
//	client.WriteReport(report, time.Now())
func (c *Client) WriteReport(r *devicestatus.Report, at time.Time) {
	if !c.IsConnected() || r == nil {
		return
	}
	for _, p := range reportPoints(r, at) {
		c.writeAPI.WritePoint(p)
	}
	c.writeAPI.Flush()
}

// reportPoints builds the points for one report. The site tag is added by
// the client's default tags.
func reportPoints(r *devicestatus.Report, at time.Time) []*write.Point {
	points := make([]*write.Point, 0, len(r.Devices)+1)

	points = append(points, write.NewPoint(MeasurementSummary,
		nil,
		map[string]any{
			"online":  r.CountOnline,
			"offline": r.CountOffline,
			"devices": len(r.Devices),
		},
		at,
	))

	for _, d := range r.Devices {
		points = append(points, write.NewPoint(MeasurementDevice,
			map[string]string{
				TagSource: string(d.Source),
				TagID:     strconv.Itoa(d.ID),
			},
			map[string]any{
				"online":        d.Online(),
				"value":         d.Value,
				"modems":        len(d.Modem),
				"modems_online": d.ModemsOnline(),
			},
			at,
		))
	}
	return points
}
