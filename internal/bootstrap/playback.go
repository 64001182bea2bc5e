package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/eleven-am/playback-gateway/internal/audio"
	"github.com/eleven-am/playback-gateway/internal/content"
	"github.com/eleven-am/playback-gateway/internal/device"
	"github.com/eleven-am/playback-gateway/internal/dialogue"
	"github.com/eleven-am/playback-gateway/internal/playback"
	"github.com/eleven-am/playback-gateway/internal/presence"
	"github.com/eleven-am/playback-gateway/internal/synthesis"
	"go.uber.org/fx"
)

// ProvideBaseContext returns the context every device session derives from.
// It is cancelled when the application stops so live sessions shut down
// before the server does.
func ProvideBaseContext(lc fx.Lifecycle) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
	return ctx
}

func ProvideRegistry() *playback.Registry {
	return playback.NewRegistry()
}

func ProvideController(registry *playback.Registry, logger *slog.Logger) *playback.Controller {
	return playback.NewController(registry, logger)
}

func ProvideResolver(cfg *Config, logger *slog.Logger) *content.Resolver {
	return content.NewResolver(content.Config{
		BaseURL:         cfg.ContentAPIBaseURL,
		MusicDir:        cfg.MusicDir,
		Extensions:      cfg.MusicExtensions,
		Refresh:         cfg.MusicRefresh,
		DownloadTimeout: cfg.DownloadTimeout,
		TempDir:         cfg.TempDir,
		HTTPClient:      &http.Client{},
		Log:             logger,
	})
}

func ProvideRenderer(tts *synthesis.Client, cfg *Config) playback.Renderer {
	framer := audio.NewFramer(audio.FramerConfig{
		SampleRate:    cfg.SampleRate,
		FrameDuration: cfg.FrameDuration,
	})
	return playback.NewMediaRenderer(tts, framer, cfg.SampleRate, cfg.FrameDuration).
		WithSpeechRate(cfg.TTSSampleRate)
}

func ProvideDeviceHandler(
	base context.Context,
	registry *playback.Registry,
	renderer playback.Renderer,
	resolver *content.Resolver,
	dialogueStore *dialogue.Store,
	presenceStore *presence.Store,
	cfg *Config,
	logger *slog.Logger,
) *device.Handler {
	return device.NewHandler(base, registry, renderer, resolver, dialogueStore, presenceStore, device.Config{
		Path: cfg.DeviceWSPath,
		AudioParams: device.AudioParams{
			Format:        "pcm",
			SampleRate:    cfg.SampleRate,
			Channels:      1,
			FrameDuration: int(cfg.FrameDuration.Milliseconds()),
		},
		WriteTimeout: cfg.WriteTimeout,
		GracePeriod:  cfg.GracePeriod,
	}, logger)
}

// WatchLibrary keeps the music cache in step with the directory for the
// lifetime of the application. A missing directory only disables watching.
func WatchLibrary(lc fx.Lifecycle, base context.Context, resolver *content.Resolver, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(base)
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := resolver.Library().Watch(ctx); err != nil {
					logger.Warn("music library watcher stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

var PlaybackModule = fx.Options(
	fx.Provide(
		ProvideBaseContext,
		ProvideRegistry,
		ProvideController,
		ProvideResolver,
		ProvideRenderer,
		ProvideDeviceHandler,
	),
	fx.Invoke(WatchLibrary),
)
