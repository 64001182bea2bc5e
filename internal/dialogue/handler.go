package dialogue

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eleven-am/playback-gateway/internal/dto"
	"github.com/eleven-am/playback-gateway/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/devices/:id/dialogue", h.List)
	g.POST("/dialogue/replace-device", h.ReplaceDevice)
}

func entryToResponse(e *Entry) dto.DialogueMessage {
	return dto.DialogueMessage{
		ID:        e.ID,
		DeviceID:  e.DeviceID,
		SessionID: e.SessionID,
		Role:      e.Role,
		Content:   e.Content,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// List godoc
// @Summary      Device dialogue history
// @Description  Returns the most recent dialogue messages of a device, oldest first
// @Tags         dialogue
// @Produce      json
// @Param        id     path   string  true   "Device ID"
// @Param        limit  query  int     false  "Maximum number of messages (default and max 50)"
// @Success      200  {object}  dto.DialogueListResponse
// @Failure      400  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /api/v1/devices/{id}/dialogue [get]
func (h *Handler) List(c echo.Context) error {
	deviceID := shared.NormalizeDeviceID(c.Param("id"))
	if deviceID == "" {
		return shared.BadRequest("missing_device_id", "device id is required")
	}

	limit := DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return shared.InvalidParam("invalid_limit", "limit must be a positive integer", "limit", raw)
		}
		limit = n
	}

	entries, err := h.store.Recent(c.Request().Context(), deviceID, limit)
	if err != nil {
		h.logger.Error("failed to load dialogue", "error", err, "device_id", deviceID)
		return shared.InternalError("list_failed", "failed to load dialogue")
	}

	messages := make([]dto.DialogueMessage, len(entries))
	for i, e := range entries {
		messages[i] = entryToResponse(e)
	}
	return c.JSON(http.StatusOK, dto.DialogueListResponse{DeviceID: deviceID, Messages: messages})
}

// ReplaceDevice godoc
// @Summary      Move dialogue to a new device id
// @Description  Rewrites every dialogue record of mac_address to new_mac_address. Accepts a JSON body or query parameters.
// @Tags         dialogue
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ReplaceDeviceRequest  false  "Old and new device ids"
// @Success      200      {object}  dto.ReplaceDeviceResponse
// @Failure      400      {object}  shared.APIError
// @Failure      500      {object}  shared.APIError
// @Router       /api/v1/dialogue/replace-device [post]
func (h *Handler) ReplaceDevice(c echo.Context) error {
	var req dto.ReplaceDeviceRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return shared.BadRequest("invalid_request", "invalid request body")
		}
	}
	if req.MacAddress == "" {
		req.MacAddress = c.QueryParam("mac_address")
	}
	if req.NewMacAddress == "" {
		req.NewMacAddress = c.QueryParam("new_mac_address")
	}

	oldID := strings.TrimSpace(req.MacAddress)
	newID := strings.TrimSpace(req.NewMacAddress)
	if oldID == "" || newID == "" {
		return shared.BadRequest("missing_device_id", "mac_address and new_mac_address are required")
	}

	updated, err := h.store.ReplaceDevice(c.Request().Context(), oldID, newID)
	if err != nil {
		h.logger.Error("failed to replace device id", "error", err, "old", oldID, "new", newID)
		return shared.InternalError("replace_failed", "failed to replace device id")
	}

	h.logger.Info("dialogue device id replaced", "old", oldID, "new", newID, "updated", updated)
	return c.JSON(http.StatusOK, dto.ReplaceDeviceResponse{
		Success: true,
		Message: "dialogue records moved",
		Updated: updated,
	})
}
