package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/wav"
	goaudio "github.com/go-audio/audio"
)

const (
	DefaultSampleRate    = 16000
	DefaultFrameDuration = 60 * time.Millisecond
	DefaultChunkSize     = 4096
)

var ErrEmptyFile = errors.New("audio file is empty")

// Frame is one unit handed to the device transport. Duration is zero for
// opaque chunks whose playback length is unknown.
type Frame struct {
	Data     []byte
	Duration time.Duration
	Format   *goaudio.Format
}

type FramerConfig struct {
	SampleRate    int
	FrameDuration time.Duration
	ChunkSize     int
}

// Framer splits audio files into frames. WAV files are decoded to mono
// 16-bit PCM at the configured rate; anything else is streamed as opaque
// chunks.
type Framer struct {
	cfg FramerConfig
}

func NewFramer(cfg FramerConfig) *Framer {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.FrameDuration <= 0 {
		cfg.FrameDuration = DefaultFrameDuration
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Framer{cfg: cfg}
}

func (f *Framer) Stream(ctx context.Context, path string, emit func(Frame) error) error {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return f.streamWAV(ctx, path, emit)
	}
	return f.streamRaw(ctx, path, emit)
}

func (f *Framer) streamWAV(ctx context.Context, path string, emit func(Frame) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read wav: %w", err)
	}
	if len(data) == 0 {
		return ErrEmptyFile
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid wav file %s", filepath.Base(path))
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}

	mono := Downmix(buf.Data, int(dec.NumChans))
	mono = Resample(mono, int(dec.SampleRate), f.cfg.SampleRate)
	samples := Float32ToInt16(mono)

	format := &goaudio.Format{SampleRate: f.cfg.SampleRate, NumChannels: 1}
	perFrame := int(int64(f.cfg.SampleRate) * int64(f.cfg.FrameDuration) / int64(time.Second))
	if perFrame <= 0 {
		perFrame = len(samples)
	}

	for start := 0; start < len(samples); start += perFrame {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+perFrame, len(samples))
		frame := Frame{
			Data:     Int16ToPCMBytes(samples[start:end]),
			Duration: time.Duration(end-start) * time.Second / time.Duration(f.cfg.SampleRate),
			Format:   format,
		}
		if err := emit(frame); err != nil {
			return err
		}
	}
	return nil
}

func (f *Framer) streamRaw(ctx context.Context, path string, emit func(Frame) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	buf := make([]byte, f.cfg.ChunkSize)
	sent := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := file.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if err := emit(Frame{Data: chunk}); err != nil {
				return err
			}
			sent += n
		}
		if errors.Is(err, io.EOF) {
			if sent == 0 {
				return ErrEmptyFile
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
	}
}
