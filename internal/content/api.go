package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	storyPath      = "/api/v1/public/story/random/"
	whiteNoisePath = "/api/v1/public/white-noise/random/"
)

// Item is a piece of remote content: a title and where its audio lives.
type Item struct {
	Title    string `json:"title"`
	AudioURL string `json:"audio_url"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *Item  `json:"data"`
}

// API talks to the content service that hands out stories and white noise
// for a device.
type API struct {
	httpClient *http.Client
	baseURL    string
}

func NewAPI(baseURL string, client *http.Client) *API {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// RandomStory asks for a story for the device. An empty name or "random"
// leaves the choice to the service.
func (a *API) RandomStory(ctx context.Context, deviceID, name string) (Item, error) {
	params := url.Values{"mac_address": {deviceID}}
	if name != "" && name != "random" {
		params.Set("name", name)
	}
	return a.fetch(ctx, storyPath, params)
}

func (a *API) RandomWhiteNoise(ctx context.Context, deviceID string) (Item, error) {
	return a.fetch(ctx, whiteNoisePath, url.Values{"mac_address": {deviceID}})
}

func (a *API) fetch(ctx context.Context, path string, params url.Values) (Item, error) {
	if a.baseURL == "" {
		return Item{}, fmt.Errorf("%w: content api base url not configured", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return Item{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return Item{}, fmt.Errorf("%w: content api returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Item{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if !body.Success || body.Data == nil || body.Data.AudioURL == "" {
		msg := body.Message
		if msg == "" {
			msg = "no content returned"
		}
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return *body.Data, nil
}
