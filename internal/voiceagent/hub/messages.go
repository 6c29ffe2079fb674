package hub

// TranscriptMessage is published by a remote recognizer device.
type TranscriptMessage struct {
	Text   string `json:"text"`
	Final  bool   `json:"final"`
	Locale string `json:"locale,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SpeechMessage asks a remote synthesizer to say Text.
type SpeechMessage struct {
	Text      string `json:"text"`
	Locale    string `json:"locale"`
	Timestamp int64  `json:"timestamp"`
}

// OnlineStatus announces agent presence. The offline variant is the MQTT
// will and carries no timestamp, so subscribers rely on reception time.
type OnlineStatus struct {
	AgentID   string `json:"agentID"`
	Online    bool   `json:"online"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}
