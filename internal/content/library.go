package content

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sahilm/fuzzy"
)

const DefaultRefreshInterval = 60 * time.Second

var DefaultExtensions = []string{".mp3", ".wav", ".p3"}

type Track struct {
	Name    string
	Path    string
	RelPath string
}

type LibraryConfig struct {
	Dir        string
	Extensions []string
	Refresh    time.Duration
	Log        *slog.Logger
}

// Library is a cached index of the local music directory.
type Library struct {
	dir     string
	exts    map[string]bool
	refresh time.Duration
	log     *slog.Logger

	mu     sync.RWMutex
	tracks []Track
	loaded time.Time
}

func NewLibrary(cfg LibraryConfig) *Library {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultRefreshInterval
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Library{
		dir:     cfg.Dir,
		exts:    exts,
		refresh: cfg.Refresh,
		log:     cfg.Log.With("component", "music_library"),
	}
}

func (l *Library) Dir() string {
	return l.dir
}

// Invalidate forces the next lookup to rescan the directory.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.loaded = time.Time{}
	l.mu.Unlock()
}

func (l *Library) Tracks() ([]Track, error) {
	l.mu.RLock()
	if !l.loaded.IsZero() && time.Since(l.loaded) < l.refresh {
		tracks := l.tracks
		l.mu.RUnlock()
		return tracks, nil
	}
	l.mu.RUnlock()

	tracks, err := l.scan()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.tracks = tracks
	l.loaded = time.Now()
	l.mu.Unlock()

	l.log.Debug("music library refreshed", "tracks", len(tracks))
	return tracks, nil
}

func (l *Library) scan() ([]Track, error) {
	var tracks []Track
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !l.exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(l.dir, path)
		if err != nil {
			rel = d.Name()
		}
		tracks = append(tracks, Track{
			Name:    strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Path:    path,
			RelPath: rel,
		})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: music directory %s does not exist", ErrUnavailable, l.dir)
		}
		return nil, fmt.Errorf("scan music directory: %w", err)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].RelPath < tracks[j].RelPath })
	return tracks, nil
}

// Match finds the track that best fits query. An empty query or "random"
// picks any track, and so does a query nothing resembles.
func (l *Library) Match(query string) (Track, error) {
	tracks, err := l.Tracks()
	if err != nil {
		return Track{}, err
	}
	if len(tracks) == 0 {
		return Track{}, fmt.Errorf("%w: music library is empty", ErrNotFound)
	}

	query = strings.TrimSpace(query)
	if query == "" || query == "random" {
		return tracks[rand.IntN(len(tracks))], nil
	}

	if t, ok := bestMatch(tracks, query); ok {
		return t, nil
	}

	t := tracks[rand.IntN(len(tracks))]
	l.log.Info("no track matched, picking at random", "query", query, "track", t.Name)
	return t, nil
}

func bestMatch(tracks []Track, query string) (Track, bool) {
	names := make([]string, len(tracks))
	for i, t := range tracks {
		names[i] = strings.ToLower(t.Name)
	}
	lower := strings.ToLower(query)

	if matches := fuzzy.Find(lower, names); len(matches) > 0 {
		return tracks[matches[0].Index], true
	}

	// The query may wrap the title, as in "我想听稻香".
	best := -1
	for i, name := range names {
		if name != "" && strings.Contains(lower, name) && (best < 0 || len(name) > len(names[best])) {
			best = i
		}
	}
	if best >= 0 {
		return tracks[best], true
	}
	return Track{}, false
}

// Watch invalidates the cache whenever the music directory changes. It
// returns when ctx is done.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch music directory: %w", err)
	}

	l.log.Info("watching music directory", "dir", l.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						l.log.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			l.log.Debug("music directory changed", "file", event.Name, "op", event.Op.String())
			l.Invalidate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("music watcher error", "dir", l.dir, "error", err)
		}
	}
}
