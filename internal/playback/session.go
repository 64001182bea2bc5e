package playback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/playback-gateway/internal/shared"
	"github.com/google/uuid"
)

const (
	DefaultGracePeriod  = 500 * time.Millisecond
	DefaultWriteTimeout = 10 * time.Second

	sideEffectTimeout = 5 * time.Second
)

// Playback events counted per device.
const (
	EventPlay      = "plays"
	EventStop      = "stops"
	EventPause     = "pauses"
	EventResume    = "resumes"
	EventCompleted = "completed"
	EventError     = "errors"
)

type Metrics interface {
	RecordEvent(ctx context.Context, deviceID, event string) error
}

type SessionConfig struct {
	DeviceID     string
	ClientID     string
	Transport    Transport
	Renderer     Renderer
	Recorder     Recorder
	Metrics      Metrics
	Log          *slog.Logger
	WriteTimeout time.Duration
	GracePeriod  time.Duration

	// OnTransportFailure runs on its own goroutine after the worker gives up
	// on the transport. The connection lifecycle uses it to tear down.
	OnTransportFailure func(err error)
}

type Status struct {
	DeviceID          string      `json:"device_id"`
	SessionID         string      `json:"session_id"`
	IsPlaying         bool        `json:"is_playing"`
	IsPaused          bool        `json:"is_paused"`
	Aborted           bool        `json:"aborted"`
	UtteranceComplete bool        `json:"utterance_complete"`
	SentenceID        string      `json:"sentence_id,omitempty"`
	TextQueue         int         `json:"text_queue_size"`
	AudioQueue        int         `json:"audio_queue_size"`
	BufferLength      int64       `json:"text_buffer_length"`
	WorkerState       WorkerState `json:"worker_state"`
	LastError         *Error      `json:"last_error,omitempty"`
}

type pendingResolution struct {
	sentenceID string
	cancel     context.CancelFunc
}

// Session is the server side of one connected device: its queues, control
// flags, dialogue log, executor and streaming worker.
type Session struct {
	id        string
	deviceID  string
	clientID  string
	transport Transport
	recorder  Recorder
	metrics   Metrics
	log       *slog.Logger

	writeTimeout       time.Duration
	grace              time.Duration
	onTransportFailure func(err error)

	text     *SegmentQueue
	audio    *queue[queuedFrame]
	state    *State
	dialogue *Dialogue
	exec     *Executor
	worker   *worker

	lastErr atomic.Pointer[Error]

	// Owned by the executor.
	pending *pendingResolution

	workerDone chan struct{}
	closeOnce  sync.Once
}

func NewSession(parent context.Context, cfg SessionConfig) *Session {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}

	s := &Session{
		id:                 shared.NewID("sess_"),
		deviceID:           shared.NormalizeDeviceID(cfg.DeviceID),
		clientID:           cfg.ClientID,
		transport:          cfg.Transport,
		recorder:           cfg.Recorder,
		metrics:            cfg.Metrics,
		writeTimeout:       cfg.WriteTimeout,
		grace:              cfg.GracePeriod,
		onTransportFailure: cfg.OnTransportFailure,
		text:               NewSegmentQueue(),
		audio:              newQueue[queuedFrame](),
		state:              NewState(),
		dialogue:           &Dialogue{},
		exec:               NewExecutor(parent),
		workerDone:         make(chan struct{}),
	}
	s.log = log.With("device_id", s.deviceID, "session_id", s.id)

	s.worker = newWorker(&worker{
		text:         s.text,
		audio:        s.audio,
		state:        s.state,
		transport:    cfg.Transport,
		renderer:     cfg.Renderer,
		sessionID:    s.id,
		writeTimeout: cfg.WriteTimeout,
		log:          s.log.With("component", "worker"),
		hooks: workerHooks{
			onComplete: s.utteranceDone,
			onFailure:  s.workerFailed,
		},
	})

	go func() {
		defer close(s.workerDone)
		s.worker.run(s.exec.Context())
	}()
	return s
}

func (s *Session) ID() string       { return s.id }
func (s *Session) DeviceID() string { return s.deviceID }
func (s *Session) ClientID() string { return s.clientID }

func (s *Session) dialogueMessages() []Message {
	return s.dialogue.Messages()
}

// Play starts a new utterance from src and returns its sentence id. A Ready
// source is queued before Play returns; anything else is resolved in the
// background and queued when it arrives.
func (s *Session) Play(ctx context.Context, src Source) (string, error) {
	payload, ready := src.Ready()
	if ready {
		if err := payload.Validate(); err != nil {
			return "", err
		}
	}

	sentenceID := uuid.NewString()
	f := Submit(s.exec, func(ctx context.Context) (string, error) {
		if s.state.Active() || s.pending != nil {
			s.stop()
			s.awaitDrained(ctx)
		}

		s.state.begin(sentenceID)
		s.lastErr.Store(nil)
		s.record(EventPlay)

		if ready {
			if err := s.enqueue(ctx, sentenceID, payload); err != nil {
				s.state.finish(sentenceID)
				return "", err
			}
			return sentenceID, nil
		}

		rctx, cancel := context.WithCancel(ctx)
		s.pending = &pendingResolution{sentenceID: sentenceID, cancel: cancel}
		Go(s.exec, rctx, func(rctx context.Context) (struct{}, error) {
			p, err := src.Resolve(rctx)
			Submit(s.exec, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, s.resolved(ctx, sentenceID, p, err)
			})
			return struct{}{}, err
		})
		return sentenceID, nil
	})
	return await(ctx, f)
}

func (s *Session) Stop(ctx context.Context) error {
	f := Submit(s.exec, func(context.Context) (struct{}, error) {
		s.stop()
		s.record(EventStop)
		return struct{}{}, nil
	})
	_, err := await(ctx, f)
	return err
}

// Pause only gates emission, so pausing an idle session is allowed.
func (s *Session) Pause(ctx context.Context) error {
	f := Submit(s.exec, func(context.Context) (struct{}, error) {
		if s.state.setPaused(true) {
			s.record(EventPause)
		}
		s.worker.Notify()
		return struct{}{}, nil
	})
	_, err := await(ctx, f)
	return err
}

func (s *Session) Resume(ctx context.Context) error {
	f := Submit(s.exec, func(context.Context) (struct{}, error) {
		if !s.state.setPaused(false) {
			return struct{}{}, newError(KindNotPaused, "playback is not paused")
		}
		s.record(EventResume)
		s.worker.Notify()
		return struct{}{}, nil
	})
	_, err := await(ctx, f)
	return err
}

// Status is a point-in-time read and is not ordered against concurrent
// commands.
func (s *Session) Status(context.Context) (Status, error) {
	st := Status{
		DeviceID:          s.deviceID,
		SessionID:         s.id,
		IsPaused:          s.state.Paused(),
		Aborted:           s.state.Aborted(),
		UtteranceComplete: s.state.UtteranceComplete(),
		SentenceID:        s.state.CurrentSentenceID(),
		TextQueue:         s.text.Len(),
		AudioQueue:        s.audio.len(),
		BufferLength:      s.worker.BufferLength(),
		WorkerState:       s.worker.State(),
		LastError:         s.lastErr.Load(),
	}
	st.IsPlaying = !st.Aborted && !st.UtteranceComplete &&
		(st.TextQueue > 0 || st.AudioQueue > 0 || st.BufferLength > 0)
	return st, nil
}

func (s *Session) Send(ctx context.Context, msg any) error {
	ctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	if err := s.transport.SendJSON(ctx, msg); err != nil {
		return wrapError(KindTransportFailure, err, "send to device")
	}
	return nil
}

// Close stops the worker and the executor. It must not be called from a
// session task.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.exec.Close()
		<-s.workerDone
	})
}

func (s *Session) Done() <-chan struct{} {
	return s.workerDone
}

// await waits for a session task. A closed executor means the device went
// away.
func await[T any](ctx context.Context, f *Future[T]) (T, error) {
	v, err := f.Wait(ctx)
	if errors.Is(err, ErrExecutorClosed) {
		return v, newError(KindDeviceNotFound, "device session is closed")
	}
	return v, err
}

func (s *Session) stop() {
	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}
	s.state.abort()
	for _, seg := range s.text.Drain() {
		s.worker.discard(seg)
	}
	s.audio.drain(nil)
	s.worker.Interrupt()
}

func (s *Session) awaitDrained(ctx context.Context) {
	timer := time.NewTimer(s.grace)
	defer timer.Stop()

	select {
	case <-s.worker.Drained():
	case <-timer.C:
		s.log.Debug("grace period elapsed before worker drained", "grace", s.grace)
	case <-ctx.Done():
	}
}

func (s *Session) enqueue(ctx context.Context, sentenceID string, p Payload) error {
	for _, seg := range Compose(sentenceID, p) {
		if err := s.text.Put(seg); err != nil {
			s.text.DrainExcept("")
			return err
		}
	}

	if p.LeadIn != "" {
		s.dialogue.Append(RoleAssistant, p.LeadIn)
		s.persist(RoleAssistant, p.LeadIn)

		sendCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
		if err := s.transport.SendJSON(sendCtx, map[string]any{"type": "stt", "text": p.LeadIn}); err != nil {
			s.log.Warn("failed to send lead-in text", "error", err)
		}
		cancel()
	}

	s.log.Info("utterance queued",
		"sentence_id", sentenceID,
		"has_file", p.FilePath != "",
		"title", p.Title,
	)
	return nil
}

func (s *Session) resolved(ctx context.Context, sentenceID string, p Payload, err error) error {
	if s.pending != nil && s.pending.sentenceID == sentenceID {
		s.pending.cancel()
		s.pending = nil
	}

	if s.state.CurrentSentenceID() != sentenceID || s.state.Aborted() {
		if err == nil && p.Temporary {
			removeFile(s.log, p.FilePath)
		}
		return nil
	}

	if err == nil {
		err = p.Validate()
	}
	if err == nil {
		err = s.enqueue(ctx, sentenceID, p)
	}
	if err != nil {
		if p.Temporary {
			removeFile(s.log, p.FilePath)
		}
		s.log.Warn("failed to resolve content", "sentence_id", sentenceID, "error", err)
		var perr *Error
		if !errors.As(err, &perr) {
			perr = wrapError(KindContentFailure, err, "resolve content")
		}
		s.lastErr.Store(perr)
		s.state.finish(sentenceID)
		s.record(EventError)
		return perr
	}
	return nil
}

func (s *Session) utteranceDone(sentenceID string) {
	Submit(s.exec, func(context.Context) (struct{}, error) {
		if s.state.finish(sentenceID) {
			s.record(EventCompleted)
		}
		return struct{}{}, nil
	})
}

func (s *Session) workerFailed(sentenceID string, err *Error) {
	s.lastErr.Store(err)
	s.record(EventError)

	if err.Kind != KindTransportFailure {
		return
	}
	Submit(s.exec, func(context.Context) (struct{}, error) {
		if s.state.CurrentSentenceID() == sentenceID {
			s.stop()
		}
		return struct{}{}, nil
	})
	if s.onTransportFailure != nil {
		go s.onTransportFailure(err)
	}
}

func (s *Session) record(event string) {
	if s.metrics == nil {
		return
	}
	Go(s.exec, context.WithoutCancel(s.exec.Context()), func(ctx context.Context) (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		err := s.metrics.RecordEvent(ctx, s.deviceID, event)
		if err != nil {
			s.log.Debug("failed to record playback event", "event", event, "error", err)
		}
		return struct{}{}, err
	})
}

func (s *Session) persist(role Role, content string) {
	if s.recorder == nil {
		return
	}
	Go(s.exec, context.WithoutCancel(s.exec.Context()), func(ctx context.Context) (struct{}, error) {
		ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		err := s.recorder.Record(ctx, s.deviceID, s.id, string(role), content)
		if err != nil {
			s.log.Warn("failed to persist dialogue", "error", err)
		}
		return struct{}{}, err
	})
}
