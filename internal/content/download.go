package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/dustin/go-humanize"
)

const DefaultDownloadTimeout = 60 * time.Second

type Downloader struct {
	httpClient *http.Client
	timeout    time.Duration
	dir        string
	log        *slog.Logger
}

func NewDownloader(client *http.Client, timeout time.Duration, dir string, log *slog.Logger) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{
		httpClient: client,
		timeout:    timeout,
		dir:        dir,
		log:        log,
	}
}

// ValidateURL accepts absolute http and https urls only.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// Fetch downloads rawURL into a temporary file and returns its path. The
// caller owns the file.
func (d *Downloader) Fetch(ctx context.Context, rawURL, prefix string) (string, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	started := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: download %s: %v", ErrUnavailable, u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, u.String())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: download returned status %d", ErrUnavailable, resp.StatusCode)
	}

	ext := path.Ext(u.Path)
	if ext == "" {
		ext = ".mp3"
	}
	f, err := os.CreateTemp(d.dir, prefix+"_*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("%w: write download: %v", ErrUnavailable, err)
	}
	if n == 0 {
		os.Remove(f.Name())
		return "", ErrEmptyDownload
	}

	d.log.Info("audio downloaded",
		"host", u.Host,
		"path", f.Name(),
		"size", humanize.Bytes(uint64(n)),
		"took", time.Since(started).Round(time.Millisecond),
	)
	return f.Name(), nil
}
