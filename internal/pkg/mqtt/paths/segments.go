package paths

// Topic segments shared by voxpeer agents and the devices around them.
// Pattern: {root}/{segment}/{agentID}

// Inbound: device -> agent
const (
	// Transcript carries recognizer results from a remote microphone device.
	// Payload: { "text": "...", "final": true, "locale": "en-IN" }
	Transcript = "transcript"
)

// Outbound: agent -> devices
const (
	// Speech carries utterances for a remote synthesizer.
	// Payload: { "text": "...", "locale": "en-IN", "timestamp": ... }
	Speech = "speech"

	// TaskStatus reports every task change.
	// Payload: the task as served by GET /api/v1/tasks/{id}
	TaskStatus = "task/status"

	// Online reports agent presence; the broker publishes the offline
	// message as the agent's will.
	// Payload: { "online": true/false, "timestamp": ... }
	Online = "online"
)
