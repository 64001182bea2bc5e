package dto

type StoryPlayRequest struct {
	DeviceID   string `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	StoryName  string `json:"story_name,omitempty" example:"random"`
	StoryTitle string `json:"story_title,omitempty" example:"小红帽的故事"`
	AudioURL   string `json:"audio_url,omitempty" example:"https://example.com/story.mp3"`
	Text       string `json:"text,omitempty" example:"从前有座山"`
}

type MusicPlayRequest struct {
	DeviceID string `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	Query    string `json:"query,omitempty" example:"播放雨声"`
}

type DeviceRequest struct {
	DeviceID string `json:"device_id" query:"device_id" example:"AA:BB:CC:DD:EE:FF"`
}

type CommandResponse struct {
	Success    bool   `json:"success" example:"true"`
	Message    string `json:"message" example:"故事播放指令已发送到设备 AA:BB:CC:DD:EE:FF"`
	SentenceID string `json:"sentence_id,omitempty" example:"3f1c2a9e-8c1d-4f4e-9b7a-1c2d3e4f5a6b"`
}

// CommandError is the failure body of the story and music APIs.
type CommandError struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"device AA:BB:CC:DD:EE:FF is not connected"`
	Kind    string `json:"kind" example:"DeviceNotFound"`
}

type PlaybackStatusResponse struct {
	Success          bool   `json:"success" example:"true"`
	DeviceID         string `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	SessionID        string `json:"session_id" example:"sess_abc123"`
	IsPlaying        bool   `json:"is_playing" example:"true"`
	IsPaused         bool   `json:"is_paused" example:"false"`
	ClientAbort      bool   `json:"client_abort" example:"false"`
	LLMFinishTask    bool   `json:"llm_finish_task" example:"false"`
	TextQueueSize    int    `json:"text_queue_size" example:"1"`
	AudioQueueSize   int    `json:"audio_queue_size" example:"4"`
	TextBufferLength int64  `json:"text_buffer_length" example:"0"`
	SentenceID       string `json:"sentence_id" example:"3f1c2a9e-8c1d-4f4e-9b7a-1c2d3e4f5a6b"`
	WorkerState      string `json:"worker_state" example:"emitting"`
	LastError        string `json:"last_error,omitempty" example:""`
}

type MusicControlMessage struct {
	Type      string `json:"type" example:"music_control"`
	Action    string `json:"action" example:"pause"`
	Timestamp int64  `json:"timestamp" example:"1705327200"`
}

type MusicStatusResponse struct {
	Success         bool   `json:"success" example:"true"`
	DeviceID        string `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	Connected       bool   `json:"connected" example:"true"`
	WebsocketActive bool   `json:"websocket_active" example:"true"`
}

type APIInfoResponse struct {
	API           string            `json:"api" example:"故事播放控制API"`
	Endpoints     map[string]string `json:"endpoints"`
	Parameters    map[string]string `json:"parameters,omitempty"`
	ActiveDevices []string          `json:"active_devices"`
}
