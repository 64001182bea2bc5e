package bootstrap

import (
	"context"
	"crypto/tls"
	"log/slog"

	"github.com/eleven-am/playback-gateway/internal/synthesis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"google.golang.org/grpc/credentials"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ProvideRedisClient(lc fx.Lifecycle, cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func ProvideDatabase(cfg *Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func ProvideTTSConfig(cfg *Config) synthesis.Config {
	tc := synthesis.Config{
		Address:    cfg.TTSAddress,
		Token:      cfg.TTSToken,
		VoiceID:    cfg.TTSVoice,
		SampleRate: cfg.SampleRate,
	}
	if cfg.TTSSampleRate > 0 {
		tc.SampleRate = cfg.TTSSampleRate
	}
	if cfg.TTSTLS {
		tc.TLSCreds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return tc
}

func ProvideTTSClient(lc fx.Lifecycle, cfg synthesis.Config, logger *slog.Logger) (*synthesis.Client, error) {
	client, err := synthesis.New(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close tts client", "error", err)
			}
			return nil
		},
	})
	return client, nil
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideRedisClient,
		ProvideDatabase,
		ProvideTTSConfig,
		ProvideTTSClient,
		func(c *synthesis.Client) synthesis.Synthesizer { return c },
	),
)
