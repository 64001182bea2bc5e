package presence

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/eleven-am/playback-gateway/internal/shared"
	"github.com/redis/go-redis/v9"
)

const (
	deviceTTL  = 24 * time.Hour
	metricsTTL = 7 * 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) Connect(ctx context.Context, d *Device) error {
	now := time.Now()
	d.Status = StatusOnline
	d.ConnectedAt = now
	d.LastSeenAt = now
	return s.save(ctx, d)
}

// Touch refreshes the device's last-seen time and TTL.
func (s *Store) Touch(ctx context.Context, id string) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	d.LastSeenAt = time.Now()
	return s.save(ctx, d)
}

// Disconnect marks the device offline, unless a newer session has taken
// over the record.
func (s *Store) Disconnect(ctx context.Context, id, sessionID string) error {
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sessionID != "" && d.SessionID != sessionID {
		return nil
	}
	d.Status = StatusOffline
	d.LastSeenAt = time.Now()
	return s.save(ctx, d)
}

func (s *Store) Get(ctx context.Context, id string) (*Device, error) {
	data, err := s.redis.Get(ctx, DeviceRedisKey(id)).Bytes()
	if err == redis.Nil {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var d Device
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) save(ctx context.Context, d *Device) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, d.RedisKey(), data, deviceTTL).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// RecordEvent bumps the device's counter for event in the current hour.
func (s *Store) RecordEvent(ctx context.Context, deviceID, event string) error {
	now := time.Now().UTC()
	key := MetricsRedisKey(deviceID, now.Format("2006-01-02"), now.Hour())

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, event, 1)
	pipe.Expire(ctx, key, metricsTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) GetMetrics(ctx context.Context, deviceID string, hours int) ([]*Metrics, error) {
	now := time.Now().UTC()
	var metrics []*Metrics

	for i := 0; i < hours; i++ {
		t := now.Add(-time.Duration(i) * time.Hour)
		key := MetricsRedisKey(deviceID, t.Format("2006-01-02"), t.Hour())

		data, err := s.redis.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}

		m := &Metrics{
			DeviceID: deviceID,
			Date:     t.Format("2006-01-02"),
			Hour:     t.Hour(),
		}
		m.Plays, _ = strconv.ParseInt(data["plays"], 10, 64)
		m.Stops, _ = strconv.ParseInt(data["stops"], 10, 64)
		m.Pauses, _ = strconv.ParseInt(data["pauses"], 10, 64)
		m.Resumes, _ = strconv.ParseInt(data["resumes"], 10, 64)
		m.Completed, _ = strconv.ParseInt(data["completed"], 10, 64)
		m.Errors, _ = strconv.ParseInt(data["errors"], 10, 64)

		metrics = append(metrics, m)
	}

	return metrics, nil
}
