package playback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eleven-am/playback-gateway/internal/audio"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentEvent struct {
	msg   map[string]any
	audio string
}

func (e sentEvent) state() string {
	if e.msg == nil {
		return ""
	}
	s, _ := e.msg["state"].(string)
	return s
}

type mockTransport struct {
	blocked atomic.Int32

	mu       sync.Mutex
	events   []sentEvent
	gate     chan struct{}
	audioErr error
}

func newMockTransport() *mockTransport {
	return &mockTransport{}
}

func newGatedTransport() *mockTransport {
	return &mockTransport{gate: make(chan struct{})}
}

func (m *mockTransport) SendJSON(ctx context.Context, msg any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mm, _ := msg.(map[string]any)
	m.events = append(m.events, sentEvent{msg: mm})
	return nil
}

func (m *mockTransport) SendAudio(ctx context.Context, data []byte) error {
	if m.gate != nil {
		m.blocked.Add(1)
		defer m.blocked.Add(-1)
		select {
		case <-m.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.audioErr != nil {
		return m.audioErr
	}
	m.events = append(m.events, sentEvent{audio: string(data)})
	return nil
}

func (m *mockTransport) snapshot() []sentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *mockTransport) audioFrames() []string {
	var out []string
	for _, e := range m.snapshot() {
		if e.msg == nil {
			out = append(out, e.audio)
		}
	}
	return out
}

func (m *mockTransport) count(msgType, state string) int {
	n := 0
	for _, e := range m.snapshot() {
		if e.msg == nil {
			continue
		}
		if e.msg["type"] == msgType && (state == "" || e.state() == state) {
			n++
		}
	}
	return n
}

// mockRenderer emits framesPerCall frames labelled with the rendered text
// or file name.
type mockRenderer struct {
	framesPerCall int

	mu    sync.Mutex
	texts []string
	files []string
}

func (r *mockRenderer) RenderText(ctx context.Context, text string, emit func(audio.Frame) error) error {
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
	return r.emit(text, emit)
}

func (r *mockRenderer) RenderFile(ctx context.Context, path string, emit func(audio.Frame) error) error {
	r.mu.Lock()
	r.files = append(r.files, path)
	r.mu.Unlock()
	return r.emit(filepath.Base(path), emit)
}

func (r *mockRenderer) emit(label string, emit func(audio.Frame) error) error {
	n := r.framesPerCall
	if n == 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if err := emit(audio.Frame{Data: []byte(fmt.Sprintf("%s#%d", label, i))}); err != nil {
			return err
		}
	}
	return nil
}

type mockMetrics struct {
	mu     sync.Mutex
	events []string
}

func (m *mockMetrics) RecordEvent(ctx context.Context, deviceID, event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockMetrics) has(event string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e == event {
			return true
		}
	}
	return false
}

type mockRecorder struct {
	mu      sync.Mutex
	records []string
}

func (m *mockRecorder) Record(ctx context.Context, deviceID, sessionID, role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, role+":"+content)
	return nil
}

func (m *mockRecorder) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.records...)
}

func newTestSession(t *testing.T, cfg SessionConfig) *Session {
	t.Helper()
	if cfg.DeviceID == "" {
		cfg.DeviceID = "D1"
	}
	if cfg.Transport == nil {
		cfg.Transport = newMockTransport()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = &mockRenderer{framesPerCall: 2}
	}
	cfg.Log = testLogger()
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = 200 * time.Millisecond
	}
	s := NewSession(context.Background(), cfg)
	t.Cleanup(s.Close)
	return s
}

func newTestController(t *testing.T, sessions ...*Session) *Controller {
	t.Helper()
	reg := NewRegistry()
	for _, s := range sessions {
		reg.Register(s.DeviceID(), s)
	}
	return NewController(reg, testLogger())
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func mustStatus(t *testing.T, c *Controller, deviceID string) Status {
	t.Helper()
	st, err := c.Status(context.Background(), deviceID)
	if err != nil {
		t.Fatalf("Status(%s) error = %v", deviceID, err)
	}
	return st
}
