package dialogue

import "time"

const (
	DefaultLimit = 50
	MaxLimit     = 50
)

// Entry is one persisted dialogue message.
type Entry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"not null;index:idx_dialogue_device_created,priority:1" json:"device_id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	Role      string    `gorm:"not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_dialogue_device_created,priority:2" json:"created_at"`
}

func (Entry) TableName() string {
	return "dialogue_messages"
}
