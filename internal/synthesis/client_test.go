package synthesis

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/eleven-am/playback-gateway/internal/shared"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestNormalizeBackoff(t *testing.T) {
	tests := []struct {
		name  string
		input shared.BackoffConfig
		want  shared.BackoffConfig
	}{
		{
			name:  "empty config gets defaults",
			input: shared.BackoffConfig{},
			want: shared.BackoffConfig{
				Initial:     100 * time.Millisecond,
				MaxAttempts: 5,
				MaxDelay:    2 * time.Second,
			},
		},
		{
			name: "preserves non-zero values",
			input: shared.BackoffConfig{
				Initial:     200 * time.Millisecond,
				MaxAttempts: 10,
				MaxDelay:    5 * time.Second,
			},
			want: shared.BackoffConfig{
				Initial:     200 * time.Millisecond,
				MaxAttempts: 10,
				MaxDelay:    5 * time.Second,
			},
		},
		{
			name: "normalizes only zero values",
			input: shared.BackoffConfig{
				Initial:     0,
				MaxAttempts: 3,
				MaxDelay:    0,
			},
			want: shared.BackoffConfig{
				Initial:     100 * time.Millisecond,
				MaxAttempts: 3,
				MaxDelay:    2 * time.Second,
			},
		},
		{
			name: "negative values treated as zero",
			input: shared.BackoffConfig{
				Initial:     -100 * time.Millisecond,
				MaxAttempts: -5,
				MaxDelay:    -1 * time.Second,
			},
			want: shared.BackoffConfig{
				Initial:     100 * time.Millisecond,
				MaxAttempts: 5,
				MaxDelay:    2 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeBackoff(tt.input)
			if got.Initial != tt.want.Initial {
				t.Errorf("Initial = %v, want %v", got.Initial, tt.want.Initial)
			}
			if got.MaxAttempts != tt.want.MaxAttempts {
				t.Errorf("MaxAttempts = %d, want %d", got.MaxAttempts, tt.want.MaxAttempts)
			}
			if got.MaxDelay != tt.want.MaxDelay {
				t.Errorf("MaxDelay = %v, want %v", got.MaxDelay, tt.want.MaxDelay)
			}
		})
	}
}

func TestMinDuration(t *testing.T) {
	tests := []struct {
		a, b time.Duration
		want time.Duration
	}{
		{100 * time.Millisecond, 200 * time.Millisecond, 100 * time.Millisecond},
		{300 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond},
		{time.Second, time.Second, time.Second},
		{0, time.Second, 0},
		{time.Second, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"_vs_"+tt.b.String(), func(t *testing.T) {
			got := minDuration(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("minDuration(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

type fakeSidecar struct {
	chunks      [][]byte
	lastReq     *structpb.Struct
	unavailable int
	calls       int
}

func (f *fakeSidecar) synthesize(_ any, stream grpc.ServerStream) error {
	req := &structpb.Struct{}
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	f.calls++
	if f.unavailable > 0 {
		f.unavailable--
		return status.Error(codes.Unavailable, "warming up")
	}
	f.lastReq = req
	for _, c := range f.chunks {
		if err := stream.SendMsg(wrapperspb.Bytes(c)); err != nil {
			return err
		}
	}
	return nil
}

func startSidecar(t *testing.T, fake *fakeSidecar, status healthpb.HealthCheckResponse_ServingStatus) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*any)(nil),
		Streams: []grpc.StreamDesc{{
			StreamName:    "Synthesize",
			ServerStreams: true,
			Handler:       fake.synthesize,
		}},
	}, struct{}{})
	hs := health.NewServer()
	hs.SetServingStatus(serviceName, status)
	healthpb.RegisterHealthServer(srv, hs)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	client, err := New(Config{
		Address:    "passthrough:///bufnet",
		VoiceID:    "story_voice",
		SampleRate: 16000,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClient_SynthesizeStreamsChunks(t *testing.T) {
	fake := &fakeSidecar{chunks: [][]byte{{1, 2}, {}, {3, 4, 5}}}
	client := startSidecar(t, fake, healthpb.HealthCheckResponse_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []byte
	err := client.Speak(ctx, "从前有座山", func(chunk []byte) error {
		got = append(got, chunk...)
		return nil
	})
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("received %d bytes, want 5", len(got))
	}
	fields := fake.lastReq.GetFields()
	if fields["text"].GetStringValue() != "从前有座山" {
		t.Errorf("text = %q", fields["text"].GetStringValue())
	}
	if fields["voice_id"].GetStringValue() != "story_voice" {
		t.Errorf("voice_id = %q, want default voice", fields["voice_id"].GetStringValue())
	}
	if fields["sample_rate"].GetNumberValue() != 16000 {
		t.Errorf("sample_rate = %v", fields["sample_rate"].GetNumberValue())
	}
}

func TestClient_SynthesizeStopsOnCallbackError(t *testing.T) {
	fake := &fakeSidecar{chunks: [][]byte{{1}, {2}, {3}}}
	client := startSidecar(t, fake, healthpb.HealthCheckResponse_SERVING)

	stop := errors.New("stop")
	calls := 0
	err := client.Speak(context.Background(), "hello", func([]byte) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Speak() error = %v, want %v", err, stop)
	}
	if calls != 1 {
		t.Errorf("callback called %d times, want 1", calls)
	}
}

func TestClient_SynthesizeEmptyText(t *testing.T) {
	client := startSidecar(t, &fakeSidecar{}, healthpb.HealthCheckResponse_SERVING)
	err := client.Synthesize(context.Background(), Request{}, func([]byte) error { return nil })
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("Synthesize() error = %v, want ErrEmptyText", err)
	}
}

func TestClient_Check(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serving := startSidecar(t, &fakeSidecar{}, healthpb.HealthCheckResponse_SERVING)
	if err := serving.Check(ctx); err != nil {
		t.Errorf("Check() serving error = %v", err)
	}

	down := startSidecar(t, &fakeSidecar{}, healthpb.HealthCheckResponse_NOT_SERVING)
	if err := down.Check(ctx); err == nil {
		t.Error("Check() expected error for NOT_SERVING")
	}
}

func TestClient_Closed(t *testing.T) {
	client := startSidecar(t, &fakeSidecar{}, healthpb.HealthCheckResponse_SERVING)
	client.Close()
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
	if err := client.Speak(context.Background(), "hi", func([]byte) error { return nil }); err == nil {
		t.Error("Speak() expected error after Close")
	}
}

func TestClient_SpeakRetriesUnavailable(t *testing.T) {
	fake := &fakeSidecar{chunks: [][]byte{{1, 2}}, unavailable: 1}
	client := startSidecar(t, fake, healthpb.HealthCheckResponse_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []byte
	err := client.Speak(ctx, "再试一次", func(chunk []byte) error {
		got = append(got, chunk...)
		return nil
	})
	if err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if fake.calls != 2 {
		t.Errorf("sidecar called %d times, want 2", fake.calls)
	}
	if len(got) != 2 {
		t.Errorf("received %d bytes, want 2", len(got))
	}
}

func TestClient_Reconnect(t *testing.T) {
	client := startSidecar(t, &fakeSidecar{}, healthpb.HealthCheckResponse_SERVING)
	before := client.current()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Reconnect(ctx); err != nil {
		t.Fatalf("Reconnect() error = %v", err)
	}
	if client.current() == before {
		t.Error("Reconnect() kept the old connection")
	}
	if got := client.current().GetState(); got != connectivity.Ready {
		t.Errorf("state after Reconnect() = %s, want READY", got)
	}
}

func TestClient_ReconnectStopsOnCancel(t *testing.T) {
	client, err := New(Config{
		Address: "passthrough:///down",
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
				return nil, errors.New("connection refused")
			}),
		},
		Backoff: shared.BackoffConfig{Initial: time.Minute, MaxDelay: time.Minute, MaxAttempts: 3},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = client.Reconnect(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Reconnect() error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Reconnect() returned after %s", elapsed)
	}
}
