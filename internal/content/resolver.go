package content

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/eleven-am/playback-gateway/internal/playback"
)

type Config struct {
	BaseURL         string
	MusicDir        string
	Extensions      []string
	Refresh         time.Duration
	DownloadTimeout time.Duration
	TempDir         string
	HTTPClient      *http.Client
	Log             *slog.Logger
}

// StoryRequest is what a caller may supply to start a story. Text wins over
// AudioURL, and AudioURL wins over a lookup by StoryName.
type StoryRequest struct {
	DeviceID   string
	StoryName  string
	StoryTitle string
	AudioURL   string
	Text       string
}

// Resolver turns play requests into playback sources.
type Resolver struct {
	api       *API
	downloads *Downloader
	library   *Library
	log       *slog.Logger
}

func NewResolver(cfg Config) *Resolver {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	log := cfg.Log.With("component", "content")
	return &Resolver{
		api:       NewAPI(cfg.BaseURL, cfg.HTTPClient),
		downloads: NewDownloader(cfg.HTTPClient, cfg.DownloadTimeout, cfg.TempDir, log),
		library: NewLibrary(LibraryConfig{
			Dir:        cfg.MusicDir,
			Extensions: cfg.Extensions,
			Refresh:    cfg.Refresh,
			Log:        cfg.Log,
		}),
		log: log,
	}
}

func (r *Resolver) Library() *Library {
	return r.library
}

// Story validates req and returns the source to play. Input problems are
// reported as InvalidPayload before anything is fetched.
func (r *Resolver) Story(req StoryRequest) (playback.Source, error) {
	if text := strings.TrimSpace(req.Text); text != "" {
		return playback.Payload{LeadIn: text}, nil
	}

	if req.AudioURL != "" {
		if _, err := ValidateURL(req.AudioURL); err != nil {
			return nil, playback.InvalidPayload("%v", err)
		}
		title := req.StoryTitle
		if title == "" && req.StoryName != "random" {
			title = req.StoryName
		}
		return playback.SourceFunc(func(ctx context.Context) (playback.Payload, error) {
			return r.fromURL(ctx, req.AudioURL, "story", StoryPrompt(title), title)
		}), nil
	}

	name := req.StoryName
	if name == "" {
		name = "random"
	}
	device := req.DeviceID
	return playback.SourceFunc(func(ctx context.Context) (playback.Payload, error) {
		item, err := r.api.RandomStory(ctx, device, name)
		if err != nil {
			return playback.Payload{}, fmt.Errorf("fetch story %q: %w", name, err)
		}
		title := item.Title
		if title == "" && req.StoryTitle != "" {
			title = req.StoryTitle
		}
		return r.fromURL(ctx, item.AudioURL, "story", StoryPrompt(title), title)
	}), nil
}

// Music plays white noise when the query asks for ambient sound and a song
// from the local library otherwise.
func (r *Resolver) Music(deviceID, query string) playback.Source {
	if IsWhiteNoise(query) {
		return playback.SourceFunc(func(ctx context.Context) (playback.Payload, error) {
			item, err := r.api.RandomWhiteNoise(ctx, deviceID)
			if err != nil {
				return playback.Payload{}, fmt.Errorf("fetch white noise: %w", err)
			}
			title := item.Title
			if title == "" {
				title = defaultWhiteNoiseTitle
			}
			return r.fromURL(ctx, item.AudioURL, "white_noise", WhiteNoisePrompt(title), title)
		})
	}

	return playback.SourceFunc(func(ctx context.Context) (playback.Payload, error) {
		track, err := r.library.Match(query)
		if err != nil {
			return playback.Payload{}, err
		}
		r.log.Info("music selected", "device_id", deviceID, "track", track.RelPath)
		return playback.Payload{
			LeadIn:   MusicPrompt(track.Name),
			FilePath: track.Path,
			Title:    track.Name,
		}, nil
	})
}

func (r *Resolver) fromURL(ctx context.Context, rawURL, prefix, leadIn, title string) (playback.Payload, error) {
	path, err := r.downloads.Fetch(ctx, rawURL, prefix)
	if err != nil {
		return playback.Payload{}, err
	}
	return playback.Payload{
		LeadIn:    leadIn,
		FilePath:  path,
		Title:     title,
		Temporary: true,
	}, nil
}
