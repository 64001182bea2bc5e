package device

const (
	TypeHello  = "hello"
	TypeStory  = "story"
	TypeAbort  = "abort"
	TypePause  = "pause"
	TypeResume = "resume"
)

// Inbound is a control message from a device. Story fields are only read
// for story messages.
type Inbound struct {
	Type       string `json:"type"`
	StoryName  string `json:"story_name,omitempty"`
	StoryTitle string `json:"story_title,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`
	Text       string `json:"text,omitempty"`
}

type AudioParams struct {
	Format        string `json:"format"`
	SampleRate    int    `json:"sample_rate"`
	Channels      int    `json:"channels"`
	FrameDuration int    `json:"frame_duration"`
}

type helloReply struct {
	Type        string      `json:"type"`
	Transport   string      `json:"transport"`
	SessionID   string      `json:"session_id"`
	AudioParams AudioParams `json:"audio_params"`
}

type storyReply struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type controlReply struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
