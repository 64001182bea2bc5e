package health

import (
	"context"
	"errors"
	"net/http"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/eleven-am/playback-gateway/internal/synthesis"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type RuntimeStats struct {
	Goroutines         int    `json:"goroutines"`
	MemoryAllocMB      uint64 `json:"memory_alloc_mb"`
	MemoryTotalAllocMB uint64 `json:"memory_total_alloc_mb"`
	MemorySysMB        uint64 `json:"memory_sys_mb"`
	NumGC              uint32 `json:"num_gc"`
}

type DeviceStats struct {
	Online  int `json:"online"`
	Playing int `json:"playing"`
}

type RequestStats struct {
	TotalRequests uint64 `json:"total_requests"`
}

type Stats struct {
	Devices  DeviceStats  `json:"devices"`
	Requests RequestStats `json:"requests"`
	Runtime  RuntimeStats `json:"runtime"`
}

type HealthResponse struct {
	Status        Status                     `json:"status"`
	Timestamp     time.Time                  `json:"timestamp"`
	Version       string                     `json:"version"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Stats         Stats                      `json:"stats"`
	Components    map[string]ComponentStatus `json:"components"`
}

type DeviceDetail struct {
	DeviceID    string `json:"device_id"`
	SessionID   string `json:"session_id"`
	WorkerState string `json:"worker_state"`
	IsPlaying   bool   `json:"is_playing"`
	IsPaused    bool   `json:"is_paused"`
}

type DevicesResponse struct {
	Total   int            `json:"total"`
	Devices []DeviceDetail `json:"devices"`
}

type Handler struct {
	db         *gorm.DB
	redis      *redis.Client
	tts        synthesis.Synthesizer
	controller *playback.Controller
	musicDir   string
	version    string
	startTime  time.Time

	totalRequests atomic.Uint64
}

func NewHandler(
	db *gorm.DB,
	redis *redis.Client,
	tts synthesis.Synthesizer,
	controller *playback.Controller,
	musicDir string,
	version string,
) *Handler {
	return &Handler{
		db:         db,
		redis:      redis,
		tts:        tts,
		controller: controller,
		musicDir:   musicDir,
		version:    version,
		startTime:  time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
	e.GET("/health/devices", h.Devices)
}

// CountRequests is middleware feeding the request counter in readiness
// stats.
func (h *Handler) CountRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h.totalRequests.Add(1)
		return next(c)
	}
}

func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// probe reports a component's status. A non-nil error is shown to the
// caller as the component's error.
type probe func(ctx context.Context) (Status, error)

type namedProbe struct {
	name     string
	critical bool
	run      probe
}

func (h *Handler) probes() []namedProbe {
	return []namedProbe{
		{name: "database", critical: true, run: h.probeDatabase},
		{name: "redis", critical: true, run: h.probeRedis},
		{name: "tts", run: h.probeTTS},
		{name: "music_library", run: h.probeMusicLibrary},
	}
}

func runProbe(ctx context.Context, p probe) ComponentStatus {
	start := time.Now()
	status, err := p(ctx)
	cs := ComponentStatus{Status: status, LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		cs.Error = err.Error()
	}
	return cs
}

func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	probes := h.probes()
	results := make([]ComponentStatus, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = runProbe(ctx, p.run)
		}()
	}
	wg.Wait()

	components := make(map[string]ComponentStatus, len(probes))
	overall := StatusHealthy
	for i, p := range probes {
		components[p.name] = results[i]
		overall = worst(overall, results[i].Status, p.critical)
	}

	statuses := h.controller.Statuses(ctx)
	playing := 0
	for _, st := range statuses {
		if st.IsPlaying {
			playing++
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := HealthResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Stats: Stats{
			Devices:  DeviceStats{Online: len(statuses), Playing: playing},
			Requests: RequestStats{TotalRequests: h.totalRequests.Load()},
			Runtime: RuntimeStats{
				Goroutines:         runtime.NumGoroutine(),
				MemoryAllocMB:      mem.Alloc >> 20,
				MemoryTotalAllocMB: mem.TotalAlloc >> 20,
				MemorySysMB:        mem.Sys >> 20,
				NumGC:              mem.NumGC,
			},
		},
		Components: components,
	}

	code := http.StatusOK
	if overall == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

// worst folds one component into the overall status. Only critical
// components can make the whole service unhealthy; the rest degrade it.
func worst(overall, component Status, critical bool) Status {
	switch {
	case overall == StatusUnhealthy:
		return overall
	case component == StatusUnhealthy && critical:
		return StatusUnhealthy
	case component != StatusHealthy:
		return StatusDegraded
	default:
		return overall
	}
}

func (h *Handler) Devices(c echo.Context) error {
	statuses := h.controller.Statuses(c.Request().Context())

	details := make([]DeviceDetail, len(statuses))
	for i, st := range statuses {
		details[i] = DeviceDetail{
			DeviceID:    st.DeviceID,
			SessionID:   st.SessionID,
			WorkerState: string(st.WorkerState),
			IsPlaying:   st.IsPlaying,
			IsPaused:    st.IsPaused,
		}
	}

	return c.JSON(http.StatusOK, DevicesResponse{
		Total:   len(details),
		Devices: details,
	})
}

func (h *Handler) probeDatabase(ctx context.Context) (Status, error) {
	if h.db == nil {
		return StatusUnhealthy, errors.New("database not configured")
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return StatusUnhealthy, errors.New("failed to get underlying db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return StatusUnhealthy, errors.New("ping failed")
	}
	if stats := sqlDB.Stats(); stats.MaxOpenConnections > 0 && stats.OpenConnections >= stats.MaxOpenConnections {
		return StatusDegraded, errors.New("connection pool exhausted")
	}
	return StatusHealthy, nil
}

func (h *Handler) probeRedis(ctx context.Context) (Status, error) {
	if h.redis == nil {
		return StatusUnhealthy, errors.New("redis not configured")
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return StatusUnhealthy, errors.New("ping failed")
	}
	return StatusHealthy, nil
}

// probeTTS never reports unhealthy: without speech, file playback still
// works.
func (h *Handler) probeTTS(ctx context.Context) (Status, error) {
	switch {
	case h.tts == nil:
		return StatusDegraded, errors.New("tts client not configured")
	case !h.tts.IsConnected():
		return StatusDegraded, errors.New("not connected")
	}
	if err := h.tts.Check(ctx); err != nil {
		return StatusDegraded, errors.New("health check failed")
	}
	return StatusHealthy, nil
}

func (h *Handler) probeMusicLibrary(context.Context) (Status, error) {
	info, err := os.Stat(h.musicDir)
	if err != nil || !info.IsDir() {
		return StatusDegraded, errors.New("music directory unavailable")
	}
	return StatusHealthy, nil
}
