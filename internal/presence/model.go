package presence

import (
	"strconv"
	"time"
)

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

type Device struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
	RemoteAddr  string    `json:"remote_addr,omitempty"`
	Status      Status    `json:"status"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

func (d *Device) RedisKey() string {
	return DeviceRedisKey(d.ID)
}

func DeviceRedisKey(id string) string {
	return "device:" + id
}

type Metrics struct {
	DeviceID  string `json:"device_id"`
	Date      string `json:"date"`
	Hour      int    `json:"hour"`
	Plays     int64  `json:"plays"`
	Stops     int64  `json:"stops"`
	Pauses    int64  `json:"pauses"`
	Resumes   int64  `json:"resumes"`
	Completed int64  `json:"completed"`
	Errors    int64  `json:"errors"`
}

func MetricsRedisKey(deviceID, date string, hour int) string {
	return "device:" + deviceID + ":metrics:" + date + ":" + strconv.Itoa(hour)
}
