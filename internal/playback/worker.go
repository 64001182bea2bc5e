package playback

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/playback-gateway/internal/audio"
)

type WorkerState string

const (
	WorkerIdle          WorkerState = "idle"
	WorkerAwaitingFirst WorkerState = "awaiting_first"
	WorkerEmitting      WorkerState = "emitting"
	WorkerDraining      WorkerState = "draining"
	WorkerClosed        WorkerState = "closed"
)

const stopSendTimeout = 2 * time.Second

// Transport is the device side of a session.
type Transport interface {
	SendJSON(ctx context.Context, msg any) error
	SendAudio(ctx context.Context, data []byte) error
}

var errInterrupted = errors.New("utterance interrupted")

type queuedFrame struct {
	sentenceID string
	frame      audio.Frame
}

type workerHooks struct {
	onComplete func(sentenceID string)
	onFailure  func(sentenceID string, err *Error)
}

// worker is the streaming loop of one session. It pulls segments from the
// text queue, renders MIDDLE payloads into the audio queue and pushes frames
// to the transport.
type worker struct {
	text         *SegmentQueue
	audio        *queue[queuedFrame]
	state        *State
	transport    Transport
	renderer     Renderer
	sessionID    string
	writeTimeout time.Duration
	hooks        workerHooks
	log          *slog.Logger

	wake   chan struct{}
	buffer atomic.Int64

	mu        sync.Mutex
	status    WorkerState
	busy      bool
	idle      chan struct{}
	uttCancel context.CancelFunc

	// Owned by the run goroutine.
	open     string
	dropping string
	uttCtx   context.Context
}

func newWorker(w *worker) *worker {
	w.wake = make(chan struct{}, 1)
	w.status = WorkerIdle
	if w.log == nil {
		w.log = slog.Default()
	}
	return w
}

func (w *worker) State() WorkerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

func (w *worker) BufferLength() int64 {
	return w.buffer.Load()
}

// Drained returns a channel that is closed once the worker is waiting for
// work with nothing in hand.
func (w *worker) Drained() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.busy {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return w.idle
}

// Notify wakes the worker so it re-reads the session flags.
func (w *worker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Interrupt cancels rendering of the open utterance and wakes the worker.
func (w *worker) Interrupt() {
	w.mu.Lock()
	if w.uttCancel != nil {
		w.uttCancel()
	}
	w.mu.Unlock()
	w.Notify()
}

func (w *worker) setStatus(s WorkerState) {
	w.mu.Lock()
	w.status = s
	w.mu.Unlock()
}

func (w *worker) setBusy(b bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b == w.busy {
		return
	}
	if b {
		w.idle = make(chan struct{})
	} else {
		close(w.idle)
	}
	w.busy = b
}

func (w *worker) run(ctx context.Context) {
	defer w.shutdown()

	for {
		seg, ok := w.text.TryGet()
		if !ok {
			if w.stale() {
				w.setBusy(true)
				w.drainOpen(ctx)
				continue
			}
			w.setBusy(false)
			select {
			case <-ctx.Done():
				return
			case <-w.text.Ready():
			case <-w.wake:
			}
			continue
		}

		w.setBusy(true)
		w.handle(ctx, seg)
		if ctx.Err() != nil {
			return
		}
	}
}

// stale reports whether the open utterance was aborted or superseded.
func (w *worker) stale() bool {
	if w.open == "" {
		return false
	}
	return w.state.Aborted() || w.open != w.state.CurrentSentenceID()
}

func (w *worker) handle(ctx context.Context, seg Segment) {
	if w.stale() {
		w.drainOpen(ctx)
	}

	log := w.log.With("sentence_id", seg.SentenceID, "sentence_type", seg.SentenceType)

	if seg.SentenceID != w.state.CurrentSentenceID() || seg.SentenceID == w.dropping {
		log.Debug("discarding stale segment")
		w.discard(seg)
		return
	}

	switch seg.SentenceType {
	case SentenceFirst:
		if w.open != "" {
			w.violation(log, seg)
			return
		}
		w.openUtterance(ctx, seg)
	case SentenceMiddle:
		if w.open != seg.SentenceID {
			w.violation(log, seg)
			return
		}
		w.emitMiddle(ctx, seg)
	case SentenceLast:
		if w.open != seg.SentenceID {
			w.violation(log, seg)
			return
		}
		w.closeUtterance(ctx, seg)
	}
}

func (w *worker) violation(log *slog.Logger, seg Segment) {
	log.Warn("protocol violation: segment does not match open utterance",
		"open_sentence_id", w.open,
		"kind", KindProtocolViolation,
	)
	w.discard(seg)
}

func (w *worker) openUtterance(ctx context.Context, seg Segment) {
	uttCtx, cancel := context.WithCancel(ctx)

	w.mu.Lock()
	w.uttCancel = cancel
	w.status = WorkerAwaitingFirst
	w.mu.Unlock()

	w.open = seg.SentenceID
	w.dropping = ""
	w.uttCtx = uttCtx

	err := w.sendJSON(map[string]any{
		"type":       "tts",
		"state":      "start",
		"session_id": w.sessionID,
	})
	if err != nil {
		w.fail(ctx, err)
	}
}

func (w *worker) emitMiddle(ctx context.Context, seg Segment) {
	w.setStatus(WorkerEmitting)
	if seg.Temporary {
		defer removeFile(w.log, seg.FilePath)
	}

	var err error
	switch seg.ContentType {
	case ContentText:
		err = w.emitText(seg)
	case ContentFile:
		err = w.renderer.RenderFile(w.uttCtx, seg.FilePath, w.collect(seg.SentenceID))
		if err == nil {
			err = w.pump(true)
		}
	}

	switch {
	case err == nil:
	case w.cancelled() || errors.Is(err, errInterrupted):
		w.log.Debug("segment interrupted", "sentence_id", seg.SentenceID)
	case errors.Is(err, ErrTransportFailure):
		w.fail(ctx, err)
	default:
		w.log.Error("failed to render segment",
			"sentence_id", seg.SentenceID,
			"content_type", seg.ContentType,
			"error", err,
		)
		if w.hooks.onFailure != nil {
			w.hooks.onFailure(seg.SentenceID, wrapError(KindContentFailure, err, "render %s segment", seg.ContentType))
		}
	}
}

func (w *worker) emitText(seg Segment) error {
	sentences := SplitSentences(seg.Text)
	w.buffer.Store(runeCount(sentences))
	defer w.buffer.Store(0)

	for _, sentence := range sentences {
		if err := w.pump(true); err != nil {
			return err
		}
		err := w.sendJSON(map[string]any{
			"type":  "tts",
			"state": "sentence_start",
			"text":  sentence,
		})
		if err != nil {
			return err
		}
		if err := w.renderer.RenderText(w.uttCtx, sentence, w.collect(seg.SentenceID)); err != nil {
			return err
		}
		w.buffer.Add(-runeCount([]string{sentence}))
	}
	return w.pump(true)
}

// collect queues rendered frames and forwards whatever may be sent without
// waiting, so rendering continues while the session is paused.
func (w *worker) collect(sentenceID string) func(audio.Frame) error {
	return func(f audio.Frame) error {
		if w.cancelled() {
			return errInterrupted
		}
		w.audio.push(queuedFrame{sentenceID: sentenceID, frame: f})
		return w.pump(false)
	}
}

// pump sends queued frames of the open utterance. With block set it waits
// out a pause; otherwise it returns as soon as the session is paused.
func (w *worker) pump(block bool) error {
	for {
		if w.cancelled() {
			w.dropFrames("")
			return errInterrupted
		}
		if w.state.Paused() {
			if !block {
				return nil
			}
			select {
			case <-w.wake:
			case <-w.uttCtx.Done():
				return errInterrupted
			}
			continue
		}

		qf, ok := w.audio.tryPop()
		if !ok {
			return nil
		}
		if qf.sentenceID != w.open {
			continue
		}
		if err := w.sendFrame(qf.frame); err != nil {
			return err
		}
	}
}

func (w *worker) sendFrame(f audio.Frame) error {
	ctx, cancel := context.WithTimeout(w.uttCtx, w.writeTimeout)
	err := w.transport.SendAudio(ctx, f.Data)
	cancel()
	if err != nil {
		if w.uttCtx.Err() != nil {
			return errInterrupted
		}
		return wrapError(KindTransportFailure, err, "send audio frame")
	}

	if f.Duration <= 0 {
		return nil
	}
	timer := time.NewTimer(f.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-w.uttCtx.Done():
	}
	return nil
}

func (w *worker) sendJSON(msg any) error {
	ctx, cancel := context.WithTimeout(w.uttCtx, w.writeTimeout)
	defer cancel()
	if err := w.transport.SendJSON(ctx, msg); err != nil {
		if w.uttCtx.Err() != nil {
			return errInterrupted
		}
		return wrapError(KindTransportFailure, err, "send control message")
	}
	return nil
}

func (w *worker) cancelled() bool {
	return w.stale() || w.uttCtx.Err() != nil
}

func (w *worker) closeUtterance(ctx context.Context, seg Segment) {
	if err := w.pump(true); err != nil {
		if errors.Is(err, ErrTransportFailure) {
			w.fail(ctx, err)
		} else {
			w.drainOpen(ctx)
		}
		return
	}

	if err := w.sendJSON(map[string]any{"type": "tts", "state": "stop"}); err != nil {
		w.fail(ctx, err)
		return
	}

	id := w.open
	w.release()
	w.setStatus(WorkerIdle)
	if w.hooks.onComplete != nil {
		w.hooks.onComplete(id)
	}
}

// fail handles a transport failure: the open utterance is dropped locally
// and reported so the session can abort it.
func (w *worker) fail(ctx context.Context, err error) {
	id := w.open
	w.log.Warn("transport failure, draining utterance", "sentence_id", id, "error", err)

	var perr *Error
	if !errors.As(err, &perr) {
		perr = wrapError(KindTransportFailure, err, "transport failure")
	}
	w.drain(ctx, false)
	w.dropping = id
	if w.hooks.onFailure != nil {
		w.hooks.onFailure(id, perr)
	}
}

// drainOpen abandons the open utterance and tells the device playback
// stopped.
func (w *worker) drainOpen(ctx context.Context) {
	w.drain(ctx, true)
}

func (w *worker) drain(ctx context.Context, notifyDevice bool) {
	w.setStatus(WorkerDraining)
	id := w.open

	w.dropFrames(id)
	w.buffer.Store(0)
	w.release()

	if notifyDevice && id != "" {
		sendCtx, cancel := context.WithTimeout(ctx, stopSendTimeout)
		if err := w.transport.SendJSON(sendCtx, map[string]any{"type": "tts", "state": "stop"}); err != nil {
			w.log.Debug("failed to send stop after drain", "sentence_id", id, "error", err)
		}
		cancel()
	}
	w.setStatus(WorkerIdle)
}

// dropFrames removes queued frames of stale utterances and of drop.
func (w *worker) dropFrames(drop string) {
	current := w.state.CurrentSentenceID()
	aborted := w.state.Aborted()
	w.audio.drain(func(qf queuedFrame) bool {
		return !aborted && qf.sentenceID == current && qf.sentenceID != drop
	})
}

func (w *worker) release() {
	w.mu.Lock()
	if w.uttCancel != nil {
		w.uttCancel()
		w.uttCancel = nil
	}
	w.mu.Unlock()
	w.open = ""
	w.uttCtx = nil
}

func (w *worker) discard(seg Segment) {
	if seg.Temporary {
		removeFile(w.log, seg.FilePath)
	}
}

func (w *worker) shutdown() {
	w.release()
	for _, seg := range w.text.Drain() {
		w.discard(seg)
	}
	w.audio.drain(nil)
	w.buffer.Store(0)

	w.mu.Lock()
	w.status = WorkerClosed
	if w.busy {
		close(w.idle)
		w.busy = false
	}
	w.mu.Unlock()
}

func removeFile(log *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove temporary audio", "path", path, "error", err)
	}
}
