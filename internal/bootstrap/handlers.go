package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	_ "github.com/eleven-am/playback-gateway/docs"
	"github.com/eleven-am/playback-gateway/internal/command"
	"github.com/eleven-am/playback-gateway/internal/content"
	"github.com/eleven-am/playback-gateway/internal/device"
	"github.com/eleven-am/playback-gateway/internal/dialogue"
	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/eleven-am/playback-gateway/internal/presence"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	Base            context.Context
	DialogueHandler *dialogue.Handler
	PresenceHandler *presence.Handler
	StoryHandler    *command.StoryHandler
	MusicHandler    *command.MusicHandler
	DeviceHandler   *device.Handler
	Config          *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/api/v1")
	params.DialogueHandler.RegisterRoutes(api)
	params.PresenceHandler.RegisterRoutes(api)

	limiter := command.RateLimiter(params.Base, command.RateLimiterConfig{
		RequestsPerSecond: params.Config.RateLimitRPS,
		Burst:             params.Config.RateLimitBurst,
	})

	storyGroup := e.Group("/xiaozhi/story")
	storyGroup.Use(limiter)
	params.StoryHandler.RegisterRoutes(storyGroup)

	musicGroup := e.Group("/xiaozhi/music")
	musicGroup.Use(limiter)
	params.MusicHandler.RegisterRoutes(musicGroup)

	params.DeviceHandler.RegisterRoutes(e)

	e.GET("/swagger/*", echoSwagger.EchoWrapHandlerV3())
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if cfg.LogFormat == "text" {
		handler := charmlog.NewWithOptions(os.Stdout, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Level:           charmlog.Level(level),
		})
		return slog.New(handler)
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

func ProvideDialogueHandler(store *dialogue.Store, logger *slog.Logger) *dialogue.Handler {
	return dialogue.NewHandler(store, logger.With("handler", "dialogue"))
}

func ProvidePresenceHandler(store *presence.Store, controller *playback.Controller, logger *slog.Logger) *presence.Handler {
	return presence.NewHandler(store, controller, logger.With("handler", "presence"))
}

func ProvideStoryHandler(controller *playback.Controller, resolver *content.Resolver, logger *slog.Logger) *command.StoryHandler {
	return command.NewStoryHandler(controller, resolver, logger.With("handler", "story"))
}

func ProvideMusicHandler(controller *playback.Controller, resolver *content.Resolver, logger *slog.Logger) *command.MusicHandler {
	return command.NewMusicHandler(controller, resolver, logger.With("handler", "music"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideDialogueHandler,
		ProvidePresenceHandler,
		ProvideStoryHandler,
		ProvideMusicHandler,
	),
	fx.Invoke(RegisterRoutes),
)
