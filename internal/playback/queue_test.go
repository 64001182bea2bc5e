package playback

import (
	"errors"
	"testing"
	"time"
)

func TestSegmentQueue_RejectsMissingSentenceID(t *testing.T) {
	q := NewSegmentQueue()
	err := q.Put(Segment{SentenceType: SentenceFirst, ContentType: ContentAction})
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("Put() error = %v, want InvalidPayload", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestSegmentQueue_FIFO(t *testing.T) {
	q := NewSegmentQueue()
	for _, seg := range Compose("s1", Payload{LeadIn: "intro", Text: "body"}) {
		if err := q.Put(seg); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	want := []SentenceType{SentenceFirst, SentenceMiddle, SentenceMiddle, SentenceLast}
	for i, st := range want {
		seg, ok := q.TryGet()
		if !ok {
			t.Fatalf("TryGet() #%d returned nothing", i)
		}
		if seg.SentenceType != st {
			t.Errorf("segment %d type = %s, want %s", i, seg.SentenceType, st)
		}
	}
	if _, ok := q.TryGet(); ok {
		t.Error("TryGet() on empty queue returned a segment")
	}
}

func TestSegmentQueue_DrainExcept(t *testing.T) {
	q := NewSegmentQueue()
	for _, id := range []string{"old", "new", "old", "new"} {
		_ = q.Put(FirstSegment(id))
	}

	dropped := q.DrainExcept("new")
	if len(dropped) != 2 {
		t.Fatalf("dropped %d segments, want 2", len(dropped))
	}
	for _, seg := range dropped {
		if seg.SentenceID != "old" {
			t.Errorf("dropped segment of %q", seg.SentenceID)
		}
	}

	if n := len(q.DrainExcept("")); n != 2 {
		t.Errorf("DrainExcept(\"\") dropped %d, want 2", n)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after full drain", q.Len())
	}
}

func TestSegmentQueue_ReadyAfterPut(t *testing.T) {
	q := NewSegmentQueue()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = q.Put(LastSegment("s1"))
	}()

	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("Ready() never fired after Put")
	}
	seg, ok := q.TryGet()
	if !ok {
		t.Fatal("TryGet() found nothing after Ready fired")
	}
	if seg.SentenceType != SentenceLast {
		t.Errorf("got %s, want LAST", seg.SentenceType)
	}
}
