package playback

import (
	"context"
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder persists dialogue messages outside the session.
type Recorder interface {
	Record(ctx context.Context, deviceID, sessionID, role, content string) error
}

// Dialogue is the append-only message log of one session.
type Dialogue struct {
	mu       sync.RWMutex
	messages []Message
}

func (d *Dialogue) Append(role Role, content string) Message {
	m := Message{Role: role, Content: content, CreatedAt: time.Now()}
	d.mu.Lock()
	d.messages = append(d.messages, m)
	d.mu.Unlock()
	return m
}

func (d *Dialogue) Messages() []Message {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Message, len(d.messages))
	copy(out, d.messages)
	return out
}

func (d *Dialogue) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.messages)
}
