package synthesis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/eleven-am/playback-gateway/internal/shared"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var synthesizeStream = &grpc.StreamDesc{
	StreamName:    "Synthesize",
	ServerStreams: true,
}

var ErrEmptyText = errors.New("nothing to synthesize")

type Client struct {
	addr     string
	conn     *grpc.ClientConn
	mu       sync.RWMutex
	token    string
	voice    string
	language string
	rate     int
	opts     []grpc.DialOption
	backoff  shared.BackoffConfig
}

func New(cfg Config) (*Client, error) {
	var creds grpc.DialOption
	if cfg.TLSCreds != nil {
		creds = grpc.WithTransportCredentials(cfg.TLSCreds)
	} else {
		creds = grpc.WithTransportCredentials(insecure.NewCredentials())
	}
	opts := append([]grpc.DialOption{creds}, cfg.DialOptions...)

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial sidecar: %w", err)
	}

	return &Client{
		addr:     cfg.Address,
		conn:     conn,
		token:    cfg.Token,
		voice:    cfg.VoiceID,
		language: cfg.Language,
		rate:     cfg.SampleRate,
		opts:     opts,
		backoff:  normalizeBackoff(cfg.Backoff),
	}, nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return false
	}
	s := conn.GetState()
	return s == connectivity.Ready || s == connectivity.Idle
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	md := metadata.MD{}
	if c.token != "" {
		md.Set("authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *Client) current() *grpc.ClientConn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

func (c *Client) request(req Request) (*structpb.Struct, error) {
	if req.VoiceID == "" {
		req.VoiceID = c.voice
	}
	if req.Language == "" {
		req.Language = c.language
	}
	if req.SampleRate == 0 {
		req.SampleRate = c.rate
	}
	if req.Speed == 0 {
		req.Speed = 1
	}
	return structpb.NewStruct(map[string]any{
		"text":        req.Text,
		"voice_id":    req.VoiceID,
		"language":    req.Language,
		"speed":       float64(req.Speed),
		"sample_rate": float64(req.SampleRate),
		"format":      "pcm_s16le",
	})
}

// Synthesize streams PCM chunks for req.Text to onChunk until the sidecar
// closes the stream. Returning an error from onChunk cancels the stream.
func (c *Client) Synthesize(ctx context.Context, req Request, onChunk func([]byte) error) error {
	if req.Text == "" {
		return ErrEmptyText
	}
	msg, err := c.request(req)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	conn := c.current()
	if conn == nil {
		return fmt.Errorf("synthesize: client closed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := conn.NewStream(c.outgoing(ctx), synthesizeStream, synthesizeMethod)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if err := stream.SendMsg(msg); err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("close send: %w", err)
	}

	for {
		chunk := &wrapperspb.BytesValue{}
		if err := stream.RecvMsg(chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("receive audio: %w", err)
		}
		if len(chunk.GetValue()) == 0 {
			continue
		}
		if err := onChunk(chunk.GetValue()); err != nil {
			return err
		}
	}
}

func (c *Client) Check(ctx context.Context) error {
	conn := c.current()
	if conn == nil {
		return fmt.Errorf("health: client closed")
	}
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: serviceName})
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("health: %s", resp.GetStatus())
	}
	return nil
}

// Reconnect replaces the sidecar connection, retrying with backoff until a
// new one reaches Ready. It gives up as soon as ctx is done.
func (c *Client) Reconnect(ctx context.Context) error {
	cfg := c.backoffConfig()
	backoff := cfg.Initial
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = minDuration(backoff*2, cfg.MaxDelay)
		}

		conn, err := grpc.NewClient(c.addr, c.opts...)
		if err != nil {
			lastErr = err
			continue
		}
		if err := waitReady(ctx, conn, connectTimeout); err != nil {
			conn.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.conn = conn
		c.mu.Unlock()
		return nil
	}
	return fmt.Errorf("reconnect failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

const connectTimeout = 2 * time.Second

func waitReady(ctx context.Context, conn *grpc.ClientConn, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn.Connect()
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("connection shut down")
		case connectivity.Idle:
			conn.Connect()
		}
		if !conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("connection not ready: %s", state)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) backoffConfig() shared.BackoffConfig {
	if c.backoff.Initial == 0 && c.backoff.MaxAttempts == 0 && c.backoff.MaxDelay == 0 {
		c.backoff = normalizeBackoff(shared.BackoffConfig{})
	}
	return c.backoff
}

func normalizeBackoff(cfg shared.BackoffConfig) shared.BackoffConfig {
	if cfg.Initial <= 0 {
		cfg.Initial = 100 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 2 * time.Second
	}
	return cfg
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// Speak synthesizes text with the client's default voice. If the sidecar is
// unavailable before any audio arrives, the connection is rebuilt and the
// request is tried once more.
func (c *Client) Speak(ctx context.Context, text string, emit func([]byte) error) error {
	req := Request{Text: text}
	emitted := false
	err := c.Synthesize(ctx, req, func(chunk []byte) error {
		emitted = true
		return emit(chunk)
	})
	if err == nil || emitted || status.Code(err) != codes.Unavailable || ctx.Err() != nil {
		return err
	}
	if rerr := c.Reconnect(ctx); rerr != nil {
		return err
	}
	return c.Synthesize(ctx, req, emit)
}
