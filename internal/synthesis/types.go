package synthesis

import (
	"context"

	"github.com/eleven-am/playback-gateway/internal/shared"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

const (
	serviceName      = "playback.tts.v1.Synthesizer"
	synthesizeMethod = "/" + serviceName + "/Synthesize"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, req Request, onChunk func([]byte) error) error
	Check(ctx context.Context) error
	IsConnected() bool
	Close() error
}

type Config struct {
	Address     string
	Token       string
	VoiceID     string
	Language    string
	SampleRate  int
	TLSCreds    credentials.TransportCredentials
	Backoff     shared.BackoffConfig
	DialOptions []grpc.DialOption
}

// Request asks the sidecar for raw little-endian 16-bit mono PCM.
type Request struct {
	Text       string
	VoiceID    string
	Language   string
	Speed      float32
	SampleRate int
}
