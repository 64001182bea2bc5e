package device

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/eleven-am/playback-gateway/internal/content"
	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/eleven-am/playback-gateway/internal/presence"
	"github.com/eleven-am/playback-gateway/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	commandTimeout  = 10 * time.Second
	presenceTimeout = 2 * time.Second
)

type Config struct {
	Path         string
	AudioParams  AudioParams
	WriteTimeout time.Duration
	GracePeriod  time.Duration
}

// Handler accepts device websockets and owns the session lifecycle of each
// connection: register on connect, remove and close on disconnect.
type Handler struct {
	registry *playback.Registry
	renderer playback.Renderer
	resolver *content.Resolver
	recorder playback.Recorder
	presence *presence.Store
	cfg      Config
	base     context.Context
	logger   *slog.Logger
}

func NewHandler(
	base context.Context,
	registry *playback.Registry,
	renderer playback.Renderer,
	resolver *content.Resolver,
	recorder playback.Recorder,
	presenceStore *presence.Store,
	cfg Config,
	logger *slog.Logger,
) *Handler {
	if cfg.Path == "" {
		cfg.Path = "/xiaozhi/v1/"
	}
	return &Handler{
		registry: registry,
		renderer: renderer,
		resolver: resolver,
		recorder: recorder,
		presence: presenceStore,
		cfg:      cfg,
		base:     base,
		logger:   logger.With("component", "device"),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET(h.cfg.Path, h.HandleConnection)
}

func deviceIdentity(c echo.Context) (deviceID, clientID string) {
	r := c.Request()
	deviceID = r.Header.Get("Device-Id")
	if deviceID == "" {
		deviceID = c.QueryParam("device-id")
	}
	clientID = r.Header.Get("Client-Id")
	if clientID == "" {
		clientID = c.QueryParam("client-id")
	}
	return shared.NormalizeDeviceID(deviceID), clientID
}

func (h *Handler) HandleConnection(c echo.Context) error {
	deviceID, clientID := deviceIdentity(c)
	if deviceID == "" {
		return shared.BadRequest("missing_device_id", "Device-Id header or device-id query parameter is required")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err, "device_id", deviceID)
		return nil
	}

	conn := NewConn(ws, deviceID, h.logger)
	session := h.newSession(deviceID, clientID, conn)
	log := h.logger.With("device_id", deviceID, "session_id", session.ID())

	if prev := h.registry.Register(deviceID, session); prev != nil {
		log.Info("device reconnected, replacing previous session")
		if old, ok := prev.(*deviceSession); ok {
			old.conn.Close()
		}
	}
	h.connectPresence(session, conn)

	log.Info("device connected", "client_id", clientID, "remote_addr", conn.RemoteAddr())

	ctx, cancel := context.WithCancel(h.base)
	defer cancel()
	go func() {
		select {
		case <-c.Request().Context().Done():
			cancel()
		case <-conn.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	go conn.writePump(ctx)
	conn.readPump(ctx, func(data []byte) {
		h.dispatch(ctx, session, data)
	})

	h.registry.Remove(deviceID, session)
	session.Close()
	h.disconnectPresence(deviceID, session.ID())

	log.Info("device disconnected")
	return nil
}

// deviceSession pairs a playback session with the socket it speaks through.
type deviceSession struct {
	*playback.Session
	conn *Conn
}

func (h *Handler) newSession(deviceID, clientID string, conn *Conn) *deviceSession {
	cfg := playback.SessionConfig{
		DeviceID:     deviceID,
		ClientID:     clientID,
		Transport:    conn,
		Renderer:     h.renderer,
		Recorder:     h.recorder,
		Log:          h.logger,
		WriteTimeout: h.cfg.WriteTimeout,
		GracePeriod:  h.cfg.GracePeriod,
		OnTransportFailure: func(err error) {
			h.logger.Warn("closing device after transport failure", "device_id", deviceID, "error", err)
			conn.Close()
		},
	}
	if h.presence != nil {
		cfg.Metrics = h.presence
	}
	return &deviceSession{
		Session: playback.NewSession(h.base, cfg),
		conn:    conn,
	}
}

func (h *Handler) dispatch(ctx context.Context, session *deviceSession, data []byte) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Warn("invalid device message", "device_id", session.DeviceID(), "error", err)
		return
	}

	h.touchPresence(session.DeviceID())

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	log := h.logger.With("device_id", session.DeviceID(), "type", msg.Type)

	switch msg.Type {
	case TypeHello:
		sendReply(ctx, session, helloReply{
			Type:        TypeHello,
			Transport:   "websocket",
			SessionID:   session.ID(),
			AudioParams: h.cfg.AudioParams,
		}, log)

	case TypeStory:
		h.playStory(ctx, session, msg, log)

	case TypeAbort:
		if err := session.Stop(ctx); err != nil {
			log.Warn("abort failed", "error", err)
		}

	case TypePause:
		err := session.Pause(ctx)
		h.reply(ctx, session, msg.Type, err, log)

	case TypeResume:
		err := session.Resume(ctx)
		h.reply(ctx, session, msg.Type, err, log)

	default:
		log.Debug("ignoring device message")
	}
}

func (h *Handler) playStory(ctx context.Context, session *deviceSession, msg Inbound, log *slog.Logger) {
	src, err := h.resolver.Story(content.StoryRequest{
		DeviceID:   session.DeviceID(),
		StoryName:  msg.StoryName,
		StoryTitle: msg.StoryTitle,
		AudioURL:   msg.AudioURL,
		Text:       msg.Text,
	})
	if err == nil {
		_, err = session.Play(ctx, src)
	}

	reply := storyReply{Type: TypeStory, Status: "success", Message: "故事播放已启动"}
	if err != nil {
		log.Warn("story request failed", "error", err)
		reply.Status = "error"
		reply.Message = err.Error()
	}
	sendReply(ctx, session, reply, log)
}

func (h *Handler) reply(ctx context.Context, session *deviceSession, kind string, err error, log *slog.Logger) {
	r := controlReply{Type: kind, Status: "success"}
	if err != nil {
		r.Status = "error"
		r.Message = err.Error()
		r.Kind = string(playback.KindOf(err))
	}
	sendReply(ctx, session, r, log)
}

func sendReply(ctx context.Context, session *deviceSession, msg any, log *slog.Logger) {
	if err := session.Send(ctx, msg); err != nil {
		log.Debug("failed to send reply", "error", err)
	}
}

func (h *Handler) connectPresence(session *deviceSession, conn *Conn) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(h.base, presenceTimeout)
	defer cancel()
	err := h.presence.Connect(ctx, &presence.Device{
		ID:         session.DeviceID(),
		ClientID:   session.ClientID(),
		SessionID:  session.ID(),
		RemoteAddr: conn.RemoteAddr(),
	})
	if err != nil {
		h.logger.Warn("failed to record presence", "device_id", session.DeviceID(), "error", err)
	}
}

func (h *Handler) touchPresence(deviceID string) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(h.base, presenceTimeout)
	defer cancel()
	if err := h.presence.Touch(ctx, deviceID); err != nil && err != shared.ErrNotFound {
		h.logger.Debug("failed to refresh presence", "device_id", deviceID, "error", err)
	}
}

func (h *Handler) disconnectPresence(deviceID, sessionID string) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(h.base), presenceTimeout)
	defer cancel()
	if err := h.presence.Disconnect(ctx, deviceID, sessionID); err != nil && err != shared.ErrNotFound {
		h.logger.Warn("failed to mark device offline", "device_id", deviceID, "error", err)
	}
}
