package dialogue

import (
	"context"
	"strings"
	"time"

	"github.com/eleven-am/playback-gateway/internal/shared"
	"gorm.io/gorm"
)

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Entry{})
}

func (s *Store) Record(ctx context.Context, deviceID, sessionID, role, content string) error {
	entry := &Entry{
		ID:        shared.NewID("msg_"),
		DeviceID:  deviceID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// Recent returns up to limit of the device's latest messages, oldest first.
func (s *Store) Recent(ctx context.Context, deviceID string, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	var entries []*Entry
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// ReplaceDevice moves every record of oldID to newID and reports how many
// rows changed.
func (s *Store) ReplaceDevice(ctx context.Context, oldID, newID string) (int64, error) {
	oldID = strings.TrimSpace(oldID)
	newID = strings.TrimSpace(newID)
	if oldID == "" || newID == "" {
		return 0, shared.ErrInvalidArgs
	}

	result := s.db.WithContext(ctx).
		Model(&Entry{}).
		Where("device_id = ?", oldID).
		Update("device_id", newID)
	return result.RowsAffected, result.Error
}
