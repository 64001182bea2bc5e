package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr   string `env:"SERVER_ADDR" envDefault:":8003"`
	DeviceWSPath string `env:"DEVICE_WS_PATH" envDefault:"/xiaozhi/v1/"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TTSAddress string `env:"TTS_ADDRESS" envDefault:"localhost:50053"`
	TTSToken   string `env:"TTS_TOKEN"`
	TTSVoice   string `env:"TTS_VOICE"`
	TTSTLS     bool   `env:"TTS_TLS" envDefault:"false"`
	// TTSSampleRate is the sidecar's native output rate when it cannot
	// synthesize at SampleRate. Zero means it can.
	TTSSampleRate int `env:"TTS_SAMPLE_RATE" envDefault:"0"`

	ContentAPIBaseURL string        `env:"CONTENT_API_BASE_URL"`
	MusicDir          string        `env:"MUSIC_DIR" envDefault:"./music"`
	MusicExtensions   []string      `env:"MUSIC_EXT" envDefault:".mp3,.wav,.p3" envSeparator:","`
	MusicRefresh      time.Duration `env:"MUSIC_REFRESH" envDefault:"60s"`
	DownloadTimeout   time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"60s"`
	TempDir           string        `env:"TEMP_DIR"`

	GracePeriod   time.Duration `env:"PLAY_GRACE_PERIOD" envDefault:"500ms"`
	WriteTimeout  time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	FrameDuration time.Duration `env:"FRAME_DURATION" envDefault:"60ms"`
	SampleRate    int           `env:"SAMPLE_RATE" envDefault:"16000"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// LoadConfig reads envFile, if present, into the process environment and
// parses Config from it. Variables already set take precedence.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	exts := c.MusicExtensions[:0]
	for _, ext := range c.MusicExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	c.MusicExtensions = exts

	if !strings.HasPrefix(c.DeviceWSPath, "/") {
		c.DeviceWSPath = "/" + c.DeviceWSPath
	}
}
