package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"gadgetplan-api/utils"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function, e.g. a redis client's Ping, to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// QueueStats is satisfied by *queue.Queue.
type QueueStats interface {
	Lengths(ctx context.Context) (main, processing, delayed, failed int64, err error)
}

type HealthHandler struct {
	database  Pinger
	redis     Pinger
	jobs      QueueStats
	startTime time.Time
	timeout   time.Duration
}

func NewHealthHandler(database, redis Pinger) *HealthHandler {
	return &HealthHandler{
		database:  database,
		redis:     redis,
		startTime: time.Now(),
		timeout:   500 * time.Millisecond,
	}
}

// WithQueue adds job queue depths to the report.
func (h *HealthHandler) WithQueue(jobs QueueStats) *HealthHandler {
	h.jobs = jobs
	return h
}

type queueDepth struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Delayed    int64 `json:"delayed"`
	Failed     int64 `json:"failed"`
}

type healthStatus struct {
	Status    string      `json:"status"`
	Time      string      `json:"time"`
	Database  string      `json:"database"`
	Redis     string      `json:"redis"`
	Uptime    string      `json:"uptime"`
	GoVersion string      `json:"go_version"`
	Queue     *queueDepth `json:"queue,omitempty"`
}

// Health pings both stores concurrently. A failing store degrades the
// status but the endpoint itself still answers 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := healthStatus{
		Status:    "ok",
		Time:      time.Now().Format(time.RFC3339),
		Database:  "connected",
		Redis:     "connected",
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		GoVersion: runtime.Version(),
	}

	var g errgroup.Group
	g.Go(func() error {
		health.Database = h.probe(ctx, h.database)
		return nil
	})
	g.Go(func() error {
		health.Redis = h.probe(ctx, h.redis)
		return nil
	})
	if h.jobs != nil {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, h.timeout)
			defer cancel()
			var depth queueDepth
			var err error
			depth.Pending, depth.Processing, depth.Delayed, depth.Failed, err = h.jobs.Lengths(ctx)
			if err == nil {
				health.Queue = &depth
			}
			return nil
		})
	}
	_ = g.Wait()

	if health.Database == "error" || health.Redis == "error" {
		health.Status = "degraded"
	}

	utils.SendJSON(w, http.StatusOK, health)
}

func (h *HealthHandler) probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return "error"
	}
	return "connected"
}
