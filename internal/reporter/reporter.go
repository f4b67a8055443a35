package reporter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
)

// defaultInterval is used when Config.Interval is zero.
const defaultInterval = 60 * time.Second

// Fetcher retrieves the upstream payload. Implemented by upstream.Client.
type Fetcher interface {
	Fetch(ctx context.Context) (*devicestatus.Payload, error)
}

// Logger is the subset of logging.Logger used by the reporter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the reporter's collaborators.
type Config struct {
	// Interval between runs. Default: 60 seconds.
	Interval time.Duration

	// Fetcher supplies the upstream payload.
	Fetcher Fetcher

	// Transformer turns the payload into a report.
	Transformer *devicestatus.Transformer

	// Sinks receive every successful snapshot, in order.
	Sinks []Sink

	// Logger is required.
	Logger Logger
}

// Status describes the most recent run.
type Status struct {
	Enabled      bool              `json:"enabled"`
	Runs         uint64            `json:"runs"`
	Failures     uint64            `json:"failures"`
	LastRun      *time.Time        `json:"last_run,omitempty"`
	LastSnapshot string            `json:"last_snapshot,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
	CountOnline  int               `json:"count_online"`
	CountOffline int               `json:"count_offline"`
	SinkErrors   map[string]string `json:"sink_errors,omitempty"`
}

// Reporter runs fetch and transform on a ticker and publishes to sinks.
type Reporter struct {
	interval    time.Duration
	fetcher     Fetcher
	transformer *devicestatus.Transformer
	sinks       []Sink
	logger      Logger

	mu     sync.RWMutex
	status Status

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a reporter. Call Start to begin periodic runs.
//
// Returns:
//   - *Reporter: Ready to start
//   - error: If a required collaborator is missing
func New(cfg Config) (*Reporter, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("reporter: fetcher is required")
	}
	if cfg.Transformer == nil {
		return nil, errors.New("reporter: transformer is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("reporter: logger is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Reporter{
		interval:    interval,
		fetcher:     cfg.Fetcher,
		transformer: cfg.Transformer,
		sinks:       cfg.Sinks,
		logger:      cfg.Logger,
		status:      Status{Enabled: true},
		done:        make(chan struct{}),
	}, nil
}

// Start runs the reporter immediately and then every interval until ctx is
// cancelled or Stop is called.
func (r *Reporter) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
}

// Stop ends the run loop and waits for an in-flight run to finish.
// Safe to call multiple times.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

func (r *Reporter) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case <-ticker.C:
			r.runLogged(ctx)
		}
	}
}

func (r *Reporter) runLogged(ctx context.Context) {
	snap, err := r.RunOnce(ctx)
	if err != nil {
		r.logger.Warn("report run failed", "error", err)
		return
	}
	r.logger.Debug("report published",
		"snapshot", snap.ID,
		"online", snap.Report.CountOnline,
		"offline", snap.Report.CountOffline,
	)
}

// RunOnce fetches, transforms and publishes one snapshot.
//
// Sink failures are recorded in Status and logged but do not fail the run.
//
// Returns:
//   - *Snapshot: the published snapshot
//   - error: if the fetch or transform failed; no sink is called in that case
func (r *Reporter) RunOnce(ctx context.Context) (*Snapshot, error) {
	now := time.Now().UTC()

	report, err := r.build(ctx)
	if err != nil {
		r.record(now, nil, err, nil)
		return nil, err
	}

	snap := &Snapshot{
		ID:          uuid.NewString(),
		GeneratedAt: now,
		Report:      report,
	}

	sinkErrs := make(map[string]string)
	for _, s := range r.sinks {
		if err := s.Publish(ctx, snap); err != nil {
			sinkErrs[s.Name()] = err.Error()
			r.logger.Warn("report sink failed", "sink", s.Name(), "snapshot", snap.ID, "error", err)
		}
	}

	r.record(now, snap, nil, sinkErrs)
	return snap, nil
}

func (r *Reporter) build(ctx context.Context) (*devicestatus.Report, error) {
	payload, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching upstream: %w", err)
	}
	report, err := r.transformer.Transform(payload)
	if err != nil {
		return nil, fmt.Errorf("transforming payload: %w", err)
	}
	return report, nil
}

func (r *Reporter) record(at time.Time, snap *Snapshot, err error, sinkErrs map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.Runs++
	r.status.LastRun = &at
	if err != nil {
		r.status.Failures++
		r.status.LastError = err.Error()
		return
	}

	r.status.LastError = ""
	r.status.LastSnapshot = snap.ID
	r.status.CountOnline = snap.Report.CountOnline
	r.status.CountOffline = snap.Report.CountOffline
	r.status.SinkErrors = nil
	if len(sinkErrs) > 0 {
		r.status.SinkErrors = sinkErrs
	}
}

// Status returns a copy of the most recent run's outcome.
func (r *Reporter) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := r.status
	if st.LastRun != nil {
		t := *st.LastRun
		st.LastRun = &t
	}
	if st.SinkErrors != nil {
		st.SinkErrors = make(map[string]string, len(r.status.SinkErrors))
		for k, v := range r.status.SinkErrors {
			st.SinkErrors[k] = v
		}
	}
	return st
}
