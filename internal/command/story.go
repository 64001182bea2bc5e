package command

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/eleven-am/playback-gateway/internal/content"
	"github.com/eleven-am/playback-gateway/internal/dto"
	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/labstack/echo/v4"
)

const musicTriggerTimeout = 2 * time.Second

type StoryHandler struct {
	controller *playback.Controller
	resolver   *content.Resolver
	logger     *slog.Logger
}

func NewStoryHandler(controller *playback.Controller, resolver *content.Resolver, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		controller: controller,
		resolver:   resolver,
		logger:     logger.With("component", "story_api"),
	}
}

func (h *StoryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/play", h.Info)
	g.POST("/play", h.Play)
	g.POST("/stop", h.Stop)
	g.POST("/pause", h.Pause)
	g.POST("/resume", h.Resume)
	g.GET("/status", h.Status)
}

// Info godoc
// @Summary      Story API usage
// @Description  Describes the story control endpoints and lists connected devices
// @Tags         story
// @Produce      json
// @Success      200  {object}  dto.APIInfoResponse
// @Router       /xiaozhi/story/play [get]
func (h *StoryHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.APIInfoResponse{
		API: "故事播放控制API",
		Endpoints: map[string]string{
			"play":   "POST /xiaozhi/story/play",
			"stop":   "POST /xiaozhi/story/stop",
			"pause":  "POST /xiaozhi/story/pause",
			"resume": "POST /xiaozhi/story/resume",
			"status": "GET /xiaozhi/story/status?device_id=xxx",
		},
		Parameters: map[string]string{
			"device_id":   "设备ID（必填）",
			"audio_url":   "音频URL（可选，直接播放指定音频）",
			"story_title": "故事标题（可选，配合audio_url使用）",
			"story_name":  "故事名称（可选，用于远程API查询，默认为random）",
			"text":        "直接播报的文本（可选）",
		},
		ActiveDevices: h.controller.Registry().IDs(),
	})
}

// Play godoc
// @Summary      Play a story
// @Description  Stops whatever the device is playing and starts a story from text, an audio URL or the story service
// @Tags         story
// @Accept       json
// @Produce      json
// @Param        request  body      dto.StoryPlayRequest  true  "Story request"
// @Success      200      {object}  dto.CommandResponse
// @Failure      400      {object}  dto.CommandError
// @Failure      404      {object}  dto.CommandError
// @Failure      500      {object}  dto.CommandError
// @Router       /xiaozhi/story/play [post]
func (h *StoryHandler) Play(c echo.Context) error {
	var req dto.StoryPlayRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, playback.InvalidPayload("invalid JSON body"))
	}
	if req.DeviceID == "" {
		return fail(c, playback.InvalidPayload("device_id is required"))
	}
	if req.StoryName == "" {
		req.StoryName = "random"
	}

	ctx := c.Request().Context()
	st, err := h.controller.Status(ctx, req.DeviceID)
	if err != nil {
		return fail(c, err)
	}
	wasPlaying := st.IsPlaying

	src, err := h.resolver.Story(content.StoryRequest{
		DeviceID:   req.DeviceID,
		StoryName:  req.StoryName,
		StoryTitle: req.StoryTitle,
		AudioURL:   req.AudioURL,
		Text:       req.Text,
	})
	if err != nil {
		return fail(c, err)
	}

	sentenceID, err := h.controller.Play(ctx, req.DeviceID, src)
	if err != nil {
		return fail(c, err)
	}

	h.triggerMusicPlay(ctx, req.DeviceID)

	msg := fmt.Sprintf("故事播放指令已发送到设备 %s", req.DeviceID)
	if wasPlaying {
		msg += "（已停止当前播放）"
	}
	switch {
	case req.Text != "":
	case req.AudioURL != "" && req.StoryTitle != "":
		msg += "，将播放: " + req.StoryTitle
	default:
		msg += "，将播放: " + req.StoryName
	}

	return c.JSON(http.StatusOK, dto.CommandResponse{Success: true, Message: msg, SentenceID: sentenceID})
}

// triggerMusicPlay tells the device's media player to start, as the device
// firmware expects after a story is queued.
func (h *StoryHandler) triggerMusicPlay(ctx context.Context, deviceID string) {
	ctx, cancel := context.WithTimeout(ctx, musicTriggerTimeout)
	defer cancel()
	if err := h.controller.Send(ctx, deviceID, newMusicControl("play")); err != nil {
		h.logger.Warn("failed to send music play command", "device_id", deviceID, "error", err)
	}
}

// Stop godoc
// @Summary      Stop playback
// @Tags         story
// @Accept       json
// @Produce      json
// @Param        request  body      dto.DeviceRequest  true  "Device"
// @Success      200      {object}  dto.CommandResponse
// @Failure      400      {object}  dto.CommandError
// @Failure      404      {object}  dto.CommandError
// @Router       /xiaozhi/story/stop [post]
func (h *StoryHandler) Stop(c echo.Context) error {
	deviceID, err := bindDevice(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.controller.Stop(c.Request().Context(), deviceID); err != nil {
		return fail(c, err)
	}
	return ok(c, fmt.Sprintf("设备 %s 播放已停止", deviceID))
}

// Pause godoc
// @Summary      Pause playback
// @Tags         story
// @Accept       json
// @Produce      json
// @Param        request  body      dto.DeviceRequest  true  "Device"
// @Success      200      {object}  dto.CommandResponse
// @Failure      400      {object}  dto.CommandError
// @Failure      404      {object}  dto.CommandError
// @Router       /xiaozhi/story/pause [post]
func (h *StoryHandler) Pause(c echo.Context) error {
	deviceID, err := bindDevice(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.controller.Pause(c.Request().Context(), deviceID); err != nil {
		return fail(c, err)
	}
	return ok(c, fmt.Sprintf("设备 %s 播放已暂停", deviceID))
}

// Resume godoc
// @Summary      Resume playback
// @Tags         story
// @Accept       json
// @Produce      json
// @Param        request  body      dto.DeviceRequest  true  "Device"
// @Success      200      {object}  dto.CommandResponse
// @Failure      400      {object}  dto.CommandError
// @Failure      404      {object}  dto.CommandError
// @Failure      409      {object}  dto.CommandError
// @Router       /xiaozhi/story/resume [post]
func (h *StoryHandler) Resume(c echo.Context) error {
	deviceID, err := bindDevice(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.controller.Resume(c.Request().Context(), deviceID); err != nil {
		return fail(c, err)
	}
	return ok(c, fmt.Sprintf("设备 %s 播放已继续", deviceID))
}

// Status godoc
// @Summary      Playback status
// @Tags         story
// @Produce      json
// @Param        device_id  query     string  true  "Device ID"
// @Success      200        {object}  dto.PlaybackStatusResponse
// @Failure      400        {object}  dto.CommandError
// @Failure      404        {object}  dto.CommandError
// @Router       /xiaozhi/story/status [get]
func (h *StoryHandler) Status(c echo.Context) error {
	deviceID := c.QueryParam("device_id")
	if deviceID == "" {
		return fail(c, playback.InvalidPayload("device_id is required"))
	}

	st, err := h.controller.Status(c.Request().Context(), deviceID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, statusToResponse(st))
}

func statusToResponse(st playback.Status) dto.PlaybackStatusResponse {
	resp := dto.PlaybackStatusResponse{
		Success:          true,
		DeviceID:         st.DeviceID,
		SessionID:        st.SessionID,
		IsPlaying:        st.IsPlaying,
		IsPaused:         st.IsPaused,
		ClientAbort:      st.Aborted,
		LLMFinishTask:    st.UtteranceComplete,
		TextQueueSize:    st.TextQueue,
		AudioQueueSize:   st.AudioQueue,
		TextBufferLength: st.BufferLength,
		SentenceID:       st.SentenceID,
		WorkerState:      string(st.WorkerState),
	}
	if st.LastError != nil {
		resp.LastError = st.LastError.Error()
	}
	return resp
}
