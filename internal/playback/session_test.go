package playback

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestController_UnknownDevice(t *testing.T) {
	c := newTestController(t)
	ctx := context.Background()

	if _, err := c.Play(ctx, "ghost", Payload{Text: "hello"}); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Play() error = %v", err)
	}
	if err := c.Stop(ctx, "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Stop() error = %v", err)
	}
	if err := c.Pause(ctx, "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Pause() error = %v", err)
	}
	if err := c.Resume(ctx, "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Resume() error = %v", err)
	}
	if _, err := c.Status(ctx, "ghost"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Status() error = %v", err)
	}
	if err := c.Send(ctx, "ghost", map[string]any{"type": "music_control"}); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Send() error = %v", err)
	}
}

func TestController_PlayPauseResumeStopScenario(t *testing.T) {
	transport := newGatedTransport()
	s := newTestSession(t, SessionConfig{DeviceID: "D1", Transport: transport})
	c := newTestController(t, s)
	ctx := context.Background()

	id, err := c.Play(ctx, "D1", Payload{Text: "hello"})
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if id == "" {
		t.Fatal("Play() returned an empty utterance id")
	}

	eventually(t, "playing", func() bool {
		return mustStatus(t, c, "D1").IsPlaying
	})
	eventually(t, "worker blocked on the first frame", func() bool {
		return transport.blocked.Load() == 1
	})
	if got := mustStatus(t, c, "D1").SentenceID; got != id {
		t.Errorf("SentenceID = %q, want %q", got, id)
	}

	if err := c.Pause(ctx, "D1"); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	st := mustStatus(t, c, "D1")
	if !st.IsPaused {
		t.Error("IsPaused = false after Pause")
	}
	if !st.IsPlaying {
		t.Error("IsPlaying = false while work is still queued")
	}

	if err := c.Resume(ctx, "D1"); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if mustStatus(t, c, "D1").IsPaused {
		t.Error("IsPaused = true after Resume")
	}

	if err := c.Stop(ctx, "D1"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	st = mustStatus(t, c, "D1")
	if st.TextQueue != 0 || st.AudioQueue != 0 {
		t.Errorf("queues after Stop = %d/%d, want empty", st.TextQueue, st.AudioQueue)
	}
	if !st.UtteranceComplete {
		t.Error("UtteranceComplete = false after Stop")
	}
	if st.IsPlaying {
		t.Error("IsPlaying = true after Stop")
	}
	if !st.Aborted {
		t.Error("Aborted = false after Stop")
	}
}

func TestController_PlaysNeverInterleave(t *testing.T) {
	transport := newMockTransport()
	s := newTestSession(t, SessionConfig{
		Transport: transport,
		Renderer:  &mockRenderer{framesPerCall: 5},
	})
	c := newTestController(t, s)
	ctx := context.Background()

	_, err := c.Play(ctx, "D1", Payload{Text: "A一。A二。A三。A四。A五。A六。"})
	if err != nil {
		t.Fatalf("Play(A) error = %v", err)
	}
	idB, err := c.Play(ctx, "D1", Payload{Text: "B一。B二。"})
	if err != nil {
		t.Fatalf("Play(B) error = %v", err)
	}

	eventually(t, "utterance B to finish", func() bool {
		st := mustStatus(t, c, "D1")
		return st.SentenceID == idB && st.UtteranceComplete
	})

	events := transport.snapshot()
	lastStart := -1
	for i, e := range events {
		if e.state() == "start" {
			lastStart = i
		}
	}
	if lastStart < 0 {
		t.Fatal("no tts start sent")
	}

	bFrames := 0
	for i, e := range events {
		if e.msg != nil {
			continue
		}
		switch {
		case strings.HasPrefix(e.audio, "A"):
			if i > lastStart {
				t.Errorf("frame %q of the first utterance sent after the second began", e.audio)
			}
		case strings.HasPrefix(e.audio, "B"):
			if i < lastStart {
				t.Errorf("frame %q of the second utterance sent before its start", e.audio)
			}
			bFrames++
		}
	}
	if want := 2 * 5; bFrames != want {
		t.Errorf("second utterance sent %d frames, want %d", bFrames, want)
	}
}

func TestController_PauseResumeDropsNothing(t *testing.T) {
	transport := newGatedTransport()
	renderer := &mockRenderer{framesPerCall: 3}
	s := newTestSession(t, SessionConfig{Transport: transport, Renderer: renderer})
	c := newTestController(t, s)
	ctx := context.Background()

	if err := c.Pause(ctx, "D1"); err != nil {
		t.Fatalf("Pause() while idle error = %v", err)
	}

	text := "第一句。第二句。第三句。"
	if _, err := c.Play(ctx, "D1", Payload{Text: text}); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if mustStatus(t, c, "D1").IsPaused {
		t.Error("Play did not clear an earlier pause")
	}

	eventually(t, "worker blocked on the first frame", func() bool {
		return transport.blocked.Load() == 1
	})
	if err := c.Pause(ctx, "D1"); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	close(transport.gate)

	time.Sleep(50 * time.Millisecond)
	if n := len(transport.audioFrames()); n > 1 {
		t.Fatalf("%d frames sent while paused, only the in-flight frame may pass", n)
	}
	st := mustStatus(t, c, "D1")
	if !st.IsPlaying || !st.IsPaused {
		t.Errorf("status while paused = %+v", st)
	}

	if err := c.Resume(ctx, "D1"); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}

	want := len(SplitSentences(text)) * 3
	eventually(t, "all frames", func() bool {
		return len(transport.audioFrames()) == want && mustStatus(t, c, "D1").UtteranceComplete
	})
	if n := transport.count("tts", "stop"); n != 1 {
		t.Errorf("tts stop sent %d times, want 1", n)
	}
}

func TestController_ResumeWithoutPause(t *testing.T) {
	s := newTestSession(t, SessionConfig{})
	c := newTestController(t, s)

	before := mustStatus(t, c, "D1")
	err := c.Resume(context.Background(), "D1")
	if !errors.Is(err, ErrNotPaused) {
		t.Fatalf("Resume() error = %v, want NotPaused", err)
	}
	after := mustStatus(t, c, "D1")
	if before.IsPaused != after.IsPaused || before.UtteranceComplete != after.UtteranceComplete || before.Aborted != after.Aborted {
		t.Errorf("state changed: before %+v after %+v", before, after)
	}
}

func TestController_StopIdleIsIdempotent(t *testing.T) {
	s := newTestSession(t, SessionConfig{})
	c := newTestController(t, s)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := c.Stop(ctx, "D1"); err != nil {
			t.Fatalf("Stop() #%d error = %v", i, err)
		}
		st := mustStatus(t, c, "D1")
		if st.TextQueue != 0 || st.AudioQueue != 0 || !st.UtteranceComplete || st.IsPaused {
			t.Errorf("status after Stop #%d = %+v", i, st)
		}
	}
}

func TestController_StopClearsPause(t *testing.T) {
	s := newTestSession(t, SessionConfig{Transport: newGatedTransport()})
	c := newTestController(t, s)
	ctx := context.Background()

	if _, err := c.Play(ctx, "D1", Payload{Text: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Pause(ctx, "D1"); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(ctx, "D1"); err != nil {
		t.Fatal(err)
	}
	if mustStatus(t, c, "D1").IsPaused {
		t.Error("IsPaused = true after Stop")
	}
}

func TestController_InvalidPayload(t *testing.T) {
	s := newTestSession(t, SessionConfig{})
	c := newTestController(t, s)

	_, err := c.Play(context.Background(), "D1", Payload{})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("Play() error = %v, want InvalidPayload", err)
	}
	st := mustStatus(t, c, "D1")
	if st.SentenceID != "" || st.TextQueue != 0 {
		t.Errorf("invalid play changed state: %+v", st)
	}
}

func TestSession_LeadInIsRecorded(t *testing.T) {
	transport := newMockTransport()
	recorder := &mockRecorder{}
	s := newTestSession(t, SessionConfig{Transport: transport, Recorder: recorder})

	_, err := s.Play(context.Background(), Payload{LeadIn: "正在为您播放，小红帽", Text: "从前。"})
	if err != nil {
		t.Fatal(err)
	}

	msgs := s.dialogueMessages()
	if len(msgs) != 1 || msgs[0].Role != RoleAssistant || msgs[0].Content != "正在为您播放，小红帽" {
		t.Errorf("dialogue = %+v", msgs)
	}
	eventually(t, "recorder", func() bool { return len(recorder.all()) == 1 })
	if got := recorder.all()[0]; got != "assistant:正在为您播放，小红帽" {
		t.Errorf("recorded %q", got)
	}
	if transport.count("stt", "") != 1 {
		t.Error("lead-in stt message not sent")
	}
}

func TestSession_AsyncSource(t *testing.T) {
	transport := newMockTransport()
	s := newTestSession(t, SessionConfig{Transport: transport})

	release := make(chan struct{})
	src := SourceFunc(func(ctx context.Context) (Payload, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return Payload{}, ctx.Err()
		}
		return Payload{LeadIn: "来听故事", Text: "很久以前。"}, nil
	})

	id, err := s.Play(context.Background(), src)
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	st, _ := s.Status(context.Background())
	if st.SentenceID != id || st.UtteranceComplete {
		t.Errorf("status while resolving = %+v", st)
	}
	if st.TextQueue != 0 {
		t.Errorf("segments queued before resolution: %d", st.TextQueue)
	}

	close(release)
	eventually(t, "resolved utterance to finish", func() bool {
		st, _ := s.Status(context.Background())
		return st.UtteranceComplete && len(transport.audioFrames()) > 0
	})
}

func TestSession_AsyncFailureIsReported(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	src := SourceFunc(func(context.Context) (Payload, error) {
		return Payload{}, errors.New("story service unavailable")
	})
	if _, err := s.Play(context.Background(), src); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	eventually(t, "last error", func() bool {
		st, _ := s.Status(context.Background())
		return st.LastError != nil && st.UtteranceComplete
	})
	st, _ := s.Status(context.Background())
	if st.LastError.Kind != KindContentFailure {
		t.Errorf("LastError.Kind = %s", st.LastError.Kind)
	}
	if st.IsPlaying {
		t.Error("IsPlaying = true after failed resolution")
	}
}

func TestSession_StopCancelsResolution(t *testing.T) {
	s := newTestSession(t, SessionConfig{})

	cancelled := make(chan struct{})
	src := SourceFunc(func(ctx context.Context) (Payload, error) {
		<-ctx.Done()
		close(cancelled)
		return Payload{}, ctx.Err()
	})
	if _, err := s.Play(context.Background(), src); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("pending resolution was not cancelled")
	}

	time.Sleep(20 * time.Millisecond)
	st, _ := s.Status(context.Background())
	if st.TextQueue != 0 || st.LastError != nil {
		t.Errorf("status after cancelled resolution = %+v", st)
	}
}

func TestSession_TransportFailure(t *testing.T) {
	transport := newMockTransport()
	transport.audioErr = errors.New("connection reset")

	failed := make(chan error, 1)
	s := newTestSession(t, SessionConfig{
		Transport:          transport,
		OnTransportFailure: func(err error) { failed <- err },
	})

	if _, err := s.Play(context.Background(), Payload{Text: "你好。"}); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-failed:
		if !errors.Is(err, ErrTransportFailure) {
			t.Errorf("failure kind = %s", KindOf(err))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnTransportFailure not called")
	}

	eventually(t, "utterance aborted", func() bool {
		st, _ := s.Status(context.Background())
		return st.UtteranceComplete && st.TextQueue == 0 && st.AudioQueue == 0
	})
	st, _ := s.Status(context.Background())
	if st.LastError == nil || st.LastError.Kind != KindTransportFailure {
		t.Errorf("LastError = %+v", st.LastError)
	}
}

func TestSession_TemporaryFileRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o600); err != nil {
		t.Fatal(err)
	}

	renderer := &mockRenderer{}
	s := newTestSession(t, SessionConfig{Renderer: renderer})
	if _, err := s.Play(context.Background(), Payload{FilePath: path, Temporary: true}); err != nil {
		t.Fatal(err)
	}

	eventually(t, "file removal", func() bool {
		_, err := os.Stat(path)
		return errors.Is(err, os.ErrNotExist)
	})
	renderer.mu.Lock()
	defer renderer.mu.Unlock()
	if len(renderer.files) != 1 {
		t.Errorf("rendered %d files, want 1", len(renderer.files))
	}
}

func TestSession_RecordsMetrics(t *testing.T) {
	metrics := &mockMetrics{}
	s := newTestSession(t, SessionConfig{Metrics: metrics})
	ctx := context.Background()

	if _, err := s.Play(ctx, Payload{Text: "好。"}); err != nil {
		t.Fatal(err)
	}
	eventually(t, "completion", func() bool { return metrics.has(EventCompleted) })
	_ = s.Pause(ctx)
	_ = s.Resume(ctx)
	_ = s.Stop(ctx)

	for _, e := range []string{EventPlay, EventPause, EventResume, EventStop} {
		eventually(t, e, func() bool { return metrics.has(e) })
	}
}

func TestSession_ClosedSessionReportsNotFound(t *testing.T) {
	s := newTestSession(t, SessionConfig{})
	s.Close()

	if err := s.Stop(context.Background()); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Stop() on closed session error = %v", err)
	}
	st, _ := s.Status(context.Background())
	if st.WorkerState != WorkerClosed {
		t.Errorf("WorkerState = %s, want closed", st.WorkerState)
	}
}

func TestSession_ConcurrentCommands(t *testing.T) {
	s := newTestSession(t, SessionConfig{Renderer: &mockRenderer{framesPerCall: 4}})
	c := newTestController(t, s)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_, _ = c.Play(ctx, "D1", Payload{Text: "一。二。"})
			case 1:
				_ = c.Pause(ctx, "D1")
				_ = c.Resume(ctx, "D1")
			case 2:
				_ = c.Stop(ctx, "D1")
			case 3:
				_, _ = c.Status(ctx, "d1")
			}
		}(i)
	}
	wg.Wait()

	if err := c.Stop(ctx, "D1"); err != nil {
		t.Fatal(err)
	}
	st := mustStatus(t, c, "D1")
	if st.TextQueue != 0 || st.AudioQueue != 0 || !st.UtteranceComplete {
		t.Errorf("status after final Stop = %+v", st)
	}
}
