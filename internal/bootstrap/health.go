package bootstrap

import (
	"github.com/eleven-am/playback-gateway/internal/health"
	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/eleven-am/playback-gateway/internal/synthesis"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const version = "1.0.0"

func ProvideHealthHandler(
	db *gorm.DB,
	redis *redis.Client,
	tts synthesis.Synthesizer,
	controller *playback.Controller,
	cfg *Config,
) *health.Handler {
	return health.NewHandler(db, redis, tts, controller, cfg.MusicDir, version)
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(h.CountRequests)
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
