package core

type EventType string

const (
	EventTranscript EventType = "speech.transcript"
	EventSpeech     EventType = "speech.utterance"
	EventTaskStatus EventType = "task.status"
	EventOnline     EventType = "agent.online"
)
