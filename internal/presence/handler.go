package presence

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eleven-am/playback-gateway/internal/dto"
	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/eleven-am/playback-gateway/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	defaultMetricsHours = 24
	maxMetricsHours     = 7 * 24
)

type Handler struct {
	store      *Store
	controller *playback.Controller
	logger     *slog.Logger
}

func NewHandler(store *Store, controller *playback.Controller, logger *slog.Logger) *Handler {
	return &Handler{
		store:      store,
		controller: controller,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/devices", h.List)
	g.GET("/devices/:id/metrics", h.GetMetrics)
}

func metricsToResponse(m *Metrics) dto.DeviceMetricsResponse {
	return dto.DeviceMetricsResponse{
		DeviceID:  m.DeviceID,
		Date:      m.Date,
		Hour:      m.Hour,
		Plays:     m.Plays,
		Stops:     m.Stops,
		Pauses:    m.Pauses,
		Resumes:   m.Resumes,
		Completed: m.Completed,
		Errors:    m.Errors,
	}
}

// List godoc
// @Summary      List connected devices
// @Description  Returns the devices connected to this instance with their presence records
// @Tags         devices
// @Produce      json
// @Success      200  {object}  dto.DeviceListResponse
// @Router       /api/v1/devices [get]
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	statuses := h.controller.Statuses(ctx)

	devices := make([]dto.DeviceResponse, 0, len(statuses))
	for _, st := range statuses {
		resp := dto.DeviceResponse{
			DeviceID:    st.DeviceID,
			SessionID:   st.SessionID,
			Online:      true,
			WorkerState: string(st.WorkerState),
		}
		d, err := h.store.Get(ctx, st.DeviceID)
		switch {
		case err == nil:
			resp.ClientID = d.ClientID
			resp.RemoteAddr = d.RemoteAddr
			resp.ConnectedAt = d.ConnectedAt.Format(time.RFC3339)
			resp.LastSeenAt = d.LastSeenAt.Format(time.RFC3339)
		case err != shared.ErrNotFound:
			h.logger.Warn("failed to load presence", "device_id", st.DeviceID, "error", err)
		}
		devices = append(devices, resp)
	}

	return c.JSON(http.StatusOK, dto.DeviceListResponse{Count: len(devices), Devices: devices})
}

// GetMetrics godoc
// @Summary      Device playback metrics
// @Description  Returns hourly playback counters for a device
// @Tags         devices
// @Produce      json
// @Param        id     path   string  true   "Device ID"
// @Param        hours  query  int     false  "Number of hours to look back (default 24, max 168)"
// @Success      200  {object}  dto.DeviceMetricsListResponse
// @Failure      400  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /api/v1/devices/{id}/metrics [get]
func (h *Handler) GetMetrics(c echo.Context) error {
	deviceID := shared.NormalizeDeviceID(c.Param("id"))
	if deviceID == "" {
		return shared.BadRequest("missing_device_id", "device id is required")
	}

	hours := defaultMetricsHours
	if raw := c.QueryParam("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return shared.InvalidParam("invalid_hours", "hours must be a positive integer", "hours", raw)
		}
		hours = min(n, maxMetricsHours)
	}

	metrics, err := h.store.GetMetrics(c.Request().Context(), deviceID, hours)
	if err != nil {
		h.logger.Error("failed to get metrics", "error", err, "device_id", deviceID)
		return shared.InternalError("metrics_failed", "failed to get metrics")
	}

	response := make([]dto.DeviceMetricsResponse, len(metrics))
	for i, m := range metrics {
		response[i] = metricsToResponse(m)
	}

	return c.JSON(http.StatusOK, dto.DeviceMetricsListResponse{
		DeviceID: deviceID,
		Hours:    hours,
		Metrics:  response,
	})
}
