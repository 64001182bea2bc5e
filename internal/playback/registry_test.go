package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

type stubControllable struct {
	id string
}

func (s *stubControllable) DeviceID() string                             { return s.id }
func (s *stubControllable) Play(context.Context, Source) (string, error) { return "", nil }
func (s *stubControllable) Stop(context.Context) error                   { return nil }
func (s *stubControllable) Pause(context.Context) error                  { return nil }
func (s *stubControllable) Resume(context.Context) error                 { return nil }
func (s *stubControllable) Status(context.Context) (Status, error) {
	return Status{DeviceID: s.id}, nil
}
func (s *stubControllable) Send(context.Context, any) error { return nil }

func TestRegistry_LookupCaseInsensitiveFallback(t *testing.T) {
	r := NewRegistry()
	upper := &stubControllable{id: "AA:BB:CC"}
	r.Register("AA:BB:CC", upper)

	got, err := r.Lookup("aa:bb:cc")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got != upper {
		t.Error("case-insensitive lookup resolved to a different session")
	}
}

func TestRegistry_ExactMatchWins(t *testing.T) {
	r := NewRegistry()
	upper := &stubControllable{id: "AA:BB:CC"}
	lower := &stubControllable{id: "aa:bb:cc"}
	r.Register("AA:BB:CC", upper)
	r.Register("aa:bb:cc", lower)

	for i := 0; i < 20; i++ {
		got, err := r.Lookup("aa:bb:cc")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if got != lower {
			t.Fatal("exact match lost to case-insensitive fallback")
		}
	}
}

func TestRegistry_NotFound(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"", "  ", "missing"} {
		if _, err := r.Lookup(id); !errors.Is(err, ErrDeviceNotFound) {
			t.Errorf("Lookup(%q) error = %v, want DeviceNotFound", id, err)
		}
	}
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	first := &stubControllable{id: "D1"}
	second := &stubControllable{id: "D1"}

	if prev := r.Register("D1", first); prev != nil {
		t.Error("first Register() returned a previous session")
	}
	if prev := r.Register("D1", second); prev != first {
		t.Error("Register() did not return the replaced session")
	}

	if r.Remove("D1", first) {
		t.Error("Remove() evicted the replacing session")
	}
	if got, _ := r.Lookup("D1"); got != second {
		t.Error("replacing session missing after stale Remove")
	}
	if !r.Remove("D1", second) {
		t.Error("Remove() of the current session failed")
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("dev-%d", i%10)
			c := &stubControllable{id: id}
			r.Register(id, c)
			_, _ = r.Lookup(id)
			_ = r.IDs()
			r.Remove(id, c)
			r.Unregister(id)
		}(i)
	}
	wg.Wait()
	if r.Count() != 0 {
		t.Errorf("Count() = %d after all removals", r.Count())
	}
}
