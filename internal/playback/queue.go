package playback

import "sync"

// queue is an unbounded FIFO with a single-slot wakeup channel. It is safe
// for many producers and one consumer.
type queue[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

func newQueue[T any]() *queue[T] {
	return &queue[T]{notify: make(chan struct{}, 1)}
}

func (q *queue[T]) push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *queue[T]) tryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

func (q *queue[T]) drain(keep func(T) bool) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	var dropped []T
	kept := q.items[:0]
	for _, item := range q.items {
		if keep != nil && keep(item) {
			kept = append(kept, item)
			continue
		}
		dropped = append(dropped, item)
	}
	var zero T
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = zero
	}
	q.items = kept
	return dropped
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// SegmentQueue is the ordered text-composition queue of one session.
type SegmentQueue struct {
	q *queue[Segment]
}

func NewSegmentQueue() *SegmentQueue {
	return &SegmentQueue{q: newQueue[Segment]()}
}

func (s *SegmentQueue) Put(seg Segment) error {
	if err := seg.Validate(); err != nil {
		return err
	}
	s.q.push(seg)
	return nil
}

func (s *SegmentQueue) TryGet() (Segment, bool) {
	return s.q.tryPop()
}

// Ready fires after a Put. It may fire spuriously.
func (s *SegmentQueue) Ready() <-chan struct{} {
	return s.q.notify
}

// Drain atomically removes every queued segment and returns them.
func (s *SegmentQueue) Drain() []Segment {
	return s.q.drain(nil)
}

// DrainExcept removes every queued segment not belonging to sentenceID.
func (s *SegmentQueue) DrainExcept(sentenceID string) []Segment {
	if sentenceID == "" {
		return s.q.drain(nil)
	}
	return s.q.drain(func(seg Segment) bool {
		return seg.SentenceID == sentenceID
	})
}

func (s *SegmentQueue) Len() int {
	return s.q.len()
}
