package dto

type DialogueMessage struct {
	ID        string `json:"id" example:"msg_abc123"`
	DeviceID  string `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	SessionID string `json:"session_id" example:"sess_abc123"`
	Role      string `json:"role" example:"assistant"`
	Content   string `json:"content" example:"正在为您播放，小红帽"`
	CreatedAt string `json:"created_at" example:"2024-01-15T14:00:00Z"`
}

type DialogueListResponse struct {
	DeviceID string            `json:"device_id" example:"AA:BB:CC:DD:EE:FF"`
	Messages []DialogueMessage `json:"messages"`
}

type ReplaceDeviceRequest struct {
	MacAddress    string `json:"mac_address" query:"mac_address" example:"AA:BB:CC:DD:EE:FF"`
	NewMacAddress string `json:"new_mac_address" query:"new_mac_address" example:"11:22:33:44:55:66"`
}

type ReplaceDeviceResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"dialogue records moved"`
	Updated int64  `json:"updated" example:"42"`
}
