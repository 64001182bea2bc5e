package dto

type DeviceResponse struct {
	DeviceID    string `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	ClientID    string `json:"client_id,omitempty" example:"web_test_client"`
	SessionID   string `json:"session_id,omitempty" example:"sess_abc123"`
	RemoteAddr  string `json:"remote_addr,omitempty" example:"10.0.0.12:51234"`
	Online      bool   `json:"online" example:"true"`
	WorkerState string `json:"worker_state,omitempty" example:"idle"`
	ConnectedAt string `json:"connected_at,omitempty" example:"2024-01-15T14:00:00Z"`
	LastSeenAt  string `json:"last_seen_at,omitempty" example:"2024-01-15T14:05:00Z"`
}

type DeviceListResponse struct {
	Count   int              `json:"count" example:"1"`
	Devices []DeviceResponse `json:"devices"`
}

type DeviceMetricsResponse struct {
	DeviceID  string `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	Date      string `json:"date" example:"2024-01-15"`
	Hour      int    `json:"hour" example:"14"`
	Plays     int64  `json:"plays" example:"12"`
	Stops     int64  `json:"stops" example:"3"`
	Pauses    int64  `json:"pauses" example:"2"`
	Resumes   int64  `json:"resumes" example:"2"`
	Completed int64  `json:"completed" example:"9"`
	Errors    int64  `json:"errors" example:"0"`
}

type DeviceMetricsListResponse struct {
	DeviceID string                  `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	Hours    int                     `json:"hours" example:"24"`
	Metrics  []DeviceMetricsResponse `json:"metrics"`
}
