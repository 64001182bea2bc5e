package playback

import (
	"context"
	"time"

	"github.com/eleven-am/playback-gateway/internal/audio"
)

// Renderer turns MIDDLE payloads into audio frames.
type Renderer interface {
	RenderText(ctx context.Context, text string, emit func(audio.Frame) error) error
	RenderFile(ctx context.Context, path string, emit func(audio.Frame) error) error
}

type Speaker interface {
	Speak(ctx context.Context, text string, emit func([]byte) error) error
}

type FileStreamer interface {
	Stream(ctx context.Context, path string, emit func(audio.Frame) error) error
}

// MediaRenderer renders text through a speech synthesizer producing 16-bit
// mono PCM and files through a FileStreamer.
type MediaRenderer struct {
	speaker       Speaker
	files         FileStreamer
	sampleRate    int
	speechRate    int
	frameDuration time.Duration
}

func NewMediaRenderer(speaker Speaker, files FileStreamer, sampleRate int, frameDuration time.Duration) *MediaRenderer {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	if frameDuration <= 0 {
		frameDuration = audio.DefaultFrameDuration
	}
	return &MediaRenderer{
		speaker:       speaker,
		files:         files,
		sampleRate:    sampleRate,
		frameDuration: frameDuration,
	}
}

// WithSpeechRate declares the rate the speaker actually produces. Speech at
// any other rate than the device's is resampled before framing.
func (r *MediaRenderer) WithSpeechRate(rate int) *MediaRenderer {
	r.speechRate = rate
	return r
}

func (r *MediaRenderer) resample(carry *[]byte, chunk []byte) []byte {
	buf := append(*carry, chunk...)
	n := len(buf) &^ 1
	*carry = append([]byte(nil), buf[n:]...)
	samples := audio.ResampleInt16(audio.PCMBytesToInt16(buf[:n]), r.speechRate, r.sampleRate)
	return audio.Int16ToPCMBytes(samples)
}

func (r *MediaRenderer) frameBytes() int {
	n := int(int64(r.sampleRate) * int64(r.frameDuration) / int64(time.Second))
	return n * 2
}

func (r *MediaRenderer) duration(n int) time.Duration {
	return time.Duration(n/2) * time.Second / time.Duration(r.sampleRate)
}

func (r *MediaRenderer) RenderText(ctx context.Context, text string, emit func(audio.Frame) error) error {
	size := r.frameBytes()
	var pending []byte

	flush := func(n int) error {
		data := make([]byte, n)
		copy(data, pending[:n])
		pending = pending[n:]
		return emit(audio.Frame{Data: data, Duration: r.duration(n)})
	}

	convert := r.speechRate > 0 && r.speechRate != r.sampleRate
	var carry []byte

	err := r.speaker.Speak(ctx, text, func(chunk []byte) error {
		if convert {
			chunk = r.resample(&carry, chunk)
		}
		pending = append(pending, chunk...)
		for len(pending) >= size {
			if err := flush(size); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if n := len(pending) &^ 1; n > 0 {
		return flush(n)
	}
	return nil
}

func (r *MediaRenderer) RenderFile(ctx context.Context, path string, emit func(audio.Frame) error) error {
	return r.files.Stream(ctx, path, emit)
}
