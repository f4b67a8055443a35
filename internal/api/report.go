package api

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
)

// reportStats counts report endpoint outcomes for the metrics endpoint.
type reportStats struct {
	requests       atomic.Uint64
	failures       atomic.Uint64
	lastDurationMs atomic.Int64
}

// handleDeviceReport fetches the upstream feed, transforms it and returns the
// report. Every failure, panics included, is answered with 502.
//
// The response is never cached: each call performs a fresh upstream fetch.
func (s *Server) handleDeviceReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.stats.requests.Add(1)
	w.Header().Set("Cache-Control", "no-store")

	report, err := s.buildReport(r.Context())
	s.stats.lastDurationMs.Store(time.Since(start).Milliseconds())
	if err != nil {
		s.stats.failures.Add(1)
		s.logger.Error("device report failed",
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
		writeTransformFailed(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// buildReport runs one fetch and transform. A panic in either is returned
// as an error.
func (s *Server) buildReport(ctx context.Context) (report *devicestatus.Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			report = nil
			err = fmt.Errorf("unexpected failure: %v", rec)
		}
	}()

	payload, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return s.transformer.Transform(payload)
}

// handleLinks returns the active layout so operators can check which parent
// ranges and link entries the service is using.
func (s *Server) handleLinks(w http.ResponseWriter, _ *http.Request) {
	layout := s.transformer.Layout()
	writeJSON(w, http.StatusOK, map[string]any{
		"order":       layout.Order,
		"ranges":      layout.Ranges,
		"links":       layout.Links,
		"entry_count": s.transformer.LinkCount(),
	})
}
