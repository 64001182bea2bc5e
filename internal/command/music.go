package command

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/eleven-am/playback-gateway/internal/content"
	"github.com/eleven-am/playback-gateway/internal/dto"
	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/labstack/echo/v4"
)

func newMusicControl(action string) dto.MusicControlMessage {
	return dto.MusicControlMessage{Type: "music_control", Action: action, Timestamp: time.Now().Unix()}
}

type MusicHandler struct {
	controller *playback.Controller
	resolver   *content.Resolver
	logger     *slog.Logger
}

func NewMusicHandler(controller *playback.Controller, resolver *content.Resolver, logger *slog.Logger) *MusicHandler {
	return &MusicHandler{
		controller: controller,
		resolver:   resolver,
		logger:     logger.With("component", "music_api"),
	}
}

func (h *MusicHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/pause", h.control("pause"))
	g.POST("/resume", h.control("resume"))
	g.POST("/play", h.control("play"))
	g.POST("/song", h.Song)
	g.POST("/refresh", h.Refresh)
	g.GET("/status", h.Status)
	g.GET("/info", h.Info)
}

// control godoc
// @Summary      Control the device media player
// @Description  Sends a music_control message (pause, resume or play) to the device
// @Tags         music
// @Accept       json
// @Produce      json
// @Param        request  body      dto.DeviceRequest  true  "Device"
// @Success      200      {object}  dto.CommandResponse
// @Failure      400      {object}  dto.CommandError
// @Failure      404      {object}  dto.CommandError
// @Failure      502      {object}  dto.CommandError
// @Router       /xiaozhi/music/pause [post]
// @Router       /xiaozhi/music/resume [post]
// @Router       /xiaozhi/music/play [post]
func (h *MusicHandler) control(action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		deviceID, err := bindDevice(c)
		if err != nil {
			return fail(c, err)
		}
		if err := h.controller.Send(c.Request().Context(), deviceID, newMusicControl(action)); err != nil {
			return fail(c, err)
		}
		h.logger.Info("music control sent", "device_id", deviceID, "action", action)
		return ok(c, fmt.Sprintf("音乐%s指令已发送到设备 %s", action, deviceID))
	}
}

// Song godoc
// @Summary      Play from the music library
// @Description  Plays white noise when the query asks for it, otherwise the best matching local song
// @Tags         music
// @Accept       json
// @Produce      json
// @Param        request  body      dto.MusicPlayRequest  true  "Device and query"
// @Success      200      {object}  dto.CommandResponse
// @Failure      400      {object}  dto.CommandError
// @Failure      404      {object}  dto.CommandError
// @Router       /xiaozhi/music/song [post]
func (h *MusicHandler) Song(c echo.Context) error {
	var req dto.MusicPlayRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, playback.InvalidPayload("invalid JSON body"))
	}
	if req.DeviceID == "" {
		return fail(c, playback.InvalidPayload("device_id is required"))
	}

	sentenceID, err := h.controller.Play(c.Request().Context(), req.DeviceID, h.resolver.Music(req.DeviceID, req.Query))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, dto.CommandResponse{
		Success:    true,
		Message:    fmt.Sprintf("音乐播放指令已发送到设备 %s", req.DeviceID),
		SentenceID: sentenceID,
	})
}

// Refresh godoc
// @Summary      Rescan the music library
// @Tags         music
// @Produce      json
// @Success      200  {object}  dto.CommandResponse
// @Router       /xiaozhi/music/refresh [post]
func (h *MusicHandler) Refresh(c echo.Context) error {
	lib := h.resolver.Library()
	lib.Invalidate()
	tracks, err := lib.Tracks()
	if err != nil {
		h.logger.Warn("music library refresh failed", "error", err)
		return c.JSON(http.StatusInternalServerError, dto.CommandError{Success: false, Message: err.Error()})
	}
	return ok(c, fmt.Sprintf("音乐库已刷新，共 %d 首", len(tracks)))
}

// Status godoc
// @Summary      Device connection status
// @Tags         music
// @Produce      json
// @Param        device_id  query     string  true  "Device ID"
// @Success      200        {object}  dto.MusicStatusResponse
// @Failure      400        {object}  dto.CommandError
// @Router       /xiaozhi/music/status [get]
func (h *MusicHandler) Status(c echo.Context) error {
	deviceID := c.QueryParam("device_id")
	if deviceID == "" {
		return fail(c, playback.InvalidPayload("device_id is required"))
	}
	_, err := h.controller.Registry().Lookup(deviceID)
	connected := err == nil
	return c.JSON(http.StatusOK, dto.MusicStatusResponse{
		Success:         true,
		DeviceID:        deviceID,
		Connected:       connected,
		WebsocketActive: connected,
	})
}

// Info godoc
// @Summary      Music API usage
// @Tags         music
// @Produce      json
// @Success      200  {object}  dto.APIInfoResponse
// @Router       /xiaozhi/music/info [get]
func (h *MusicHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.APIInfoResponse{
		API: "音乐播放控制API",
		Endpoints: map[string]string{
			"pause":   "POST /xiaozhi/music/pause",
			"resume":  "POST /xiaozhi/music/resume",
			"play":    "POST /xiaozhi/music/play",
			"song":    "POST /xiaozhi/music/song",
			"refresh": "POST /xiaozhi/music/refresh",
			"status":  "GET /xiaozhi/music/status?device_id=xxx",
		},
		Parameters: map[string]string{
			"device_id": "设备ID（必填）",
			"query":     "歌曲名或白噪音类型（song可选）",
		},
		ActiveDevices: h.controller.Registry().IDs(),
	})
}
