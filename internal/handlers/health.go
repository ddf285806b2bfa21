// internal/handlers/health.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"

	redis_a "github.com/ammerola/pharmacy-be/internal/adapters/redis_adapter"
	"github.com/ammerola/pharmacy-be/internal/core/ports"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDegraded  = "degraded"
)

// QueueInspector reports queue depth. *asynq.Inspector satisfies it.
type QueueInspector interface {
	Queues() ([]string, error)
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// probe checks one dependency and returns whatever it wants reported
type probe func(ctx context.Context) (map[string]interface{}, error)

// HealthHandler serves the public health endpoints used by load balancers
// and by whoever is on call for the pharmacy backend.
type HealthHandler struct {
	responder
	db        ports.Database
	cache     *redis_a.Cache
	queues    QueueInspector
	app       config.AppConfig
	startedAt time.Time
}

// NewHealthHandler creates a new health handler. inspector may be nil.
func NewHealthHandler(
	database ports.Database,
	cache *redis_a.Cache,
	inspector QueueInspector,
	app config.AppConfig,
	logger *slog.Logger,
) *HealthHandler {
	return &HealthHandler{
		responder: responder{logger: logger.With(slog.String("handler", "health"))},
		db:        database,
		cache:     cache,
		queues:    inspector,
		app:       app,
		startedAt: time.Now(),
	}
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status      string                 `json:"status"`
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]ServiceInfo `json:"services"`
	Runtime     RuntimeInfo            `json:"runtime"`
}

// ServiceInfo is the outcome of one dependency probe
type ServiceInfo struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message,omitempty"`
	ResponseTime string                 `json:"response_time,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// RuntimeInfo summarizes the Go runtime of this process
type RuntimeInfo struct {
	GoVersion   string `json:"go_version"`
	Goroutines  int    `json:"goroutines"`
	HeapAllocMB uint64 `json:"heap_alloc_mb"`
	SysMB       uint64 `json:"sys_mb"`
	NumGC       uint32 `json:"num_gc"`
	GCPauseMs   uint64 `json:"gc_pause_total_ms"`
}

func (h *HealthHandler) probes() map[string]probe {
	p := map[string]probe{
		"database": h.probeDatabase,
		"redis":    h.probeRedis,
	}
	if h.queues != nil {
		p["asynq"] = h.probeQueues
	}
	return p
}

// Health handles GET /health. Any failing dependency answers 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	body := HealthStatus{
		Status:      statusHealthy,
		Version:     h.app.Version,
		Environment: h.app.Environment,
		Uptime:      h.uptime(),
		Timestamp:   time.Now().UTC(),
		Services:    make(map[string]ServiceInfo),
		Runtime:     readRuntime(),
	}

	for name, check := range h.probes() {
		info := h.run(ctx, name, check)
		body.Services[name] = info
		if info.Status != statusHealthy {
			body.Status = statusDegraded
		}
	}

	code := http.StatusOK
	if body.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	h.noStore(w)
	h.respondJSON(w, code, body)
}

// Liveness handles GET /health/live. It touches no dependency.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	h.noStore(w)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
		"uptime": h.uptime(),
	})
}

// Readiness handles GET /health/ready. Only the database and redis gate
// traffic; a stalled queue still lets orders be approved.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]error{
		"database": h.db.Ping(ctx),
		"redis":    h.cache.Ping(ctx),
	}

	ready := true
	details := make(map[string]string, len(checks))
	for name, err := range checks {
		details[name] = "ready"
		if err != nil {
			ready = false
			details[name] = "not ready"
		}
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	h.noStore(w)
	h.respondJSON(w, code, map[string]interface{}{
		"ready":   ready,
		"details": details,
	})
}

func (h *HealthHandler) run(ctx context.Context, name string, check probe) ServiceInfo {
	start := time.Now()
	details, err := check(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "health probe failed",
			slog.String("dependency", name),
			slog.String("error", err.Error()))
		return ServiceInfo{Status: statusUnhealthy, Message: err.Error()}
	}
	return ServiceInfo{
		Status:       statusHealthy,
		ResponseTime: time.Since(start).String(),
		Details:      details,
	}
}

func (h *HealthHandler) probeDatabase(ctx context.Context) (map[string]interface{}, error) {
	if err := h.db.Ping(ctx); err != nil {
		return nil, err
	}
	return h.db.Health(ctx), nil
}

func (h *HealthHandler) probeRedis(ctx context.Context) (map[string]interface{}, error) {
	if err := h.cache.Ping(ctx); err != nil {
		return nil, err
	}
	pool := h.cache.PoolStats()
	return map[string]interface{}{
		"total_conns": pool.TotalConns,
		"idle_conns":  pool.IdleConns,
		"stale_conns": pool.StaleConns,
		"lookups":     h.cache.Stats(),
	}, nil
}

// probeQueues reports the backlog of each task queue
func (h *HealthHandler) probeQueues(_ context.Context) (map[string]interface{}, error) {
	names, err := h.queues.Queues()
	if err != nil {
		return nil, err
	}

	backlog := make(map[string]interface{}, len(names))
	for _, name := range names {
		q, err := h.queues.GetQueueInfo(name)
		if err != nil {
			continue
		}
		backlog[name] = map[string]int{
			"pending":   q.Pending,
			"active":    q.Active,
			"scheduled": q.Scheduled,
			"retry":     q.Retry,
			"archived":  q.Archived,
		}
	}
	return map[string]interface{}{"queues": backlog}, nil
}

func (h *HealthHandler) uptime() string {
	return time.Since(h.startedAt).Round(time.Second).String()
}

func (h *HealthHandler) noStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
}

func readRuntime() RuntimeInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeInfo{
		GoVersion:   runtime.Version(),
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: m.HeapAlloc >> 20,
		SysMB:       m.Sys >> 20,
		NumGC:       m.NumGC,
		GCPauseMs:   m.PauseTotalNs / uint64(time.Millisecond),
	}
}
