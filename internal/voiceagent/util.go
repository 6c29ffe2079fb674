package voiceagent

import (
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/autopeer-io/voxpeer/pkg/log"
)

const (
	agentIDEnv  = "VOXPEER_AGENT_ID"
	agentIDFile = "/etc/voxpeer/agent-id"
)

// DiscoverAgentID resolves the agent identity from the environment, then
// the provisioning file, and finally falls back to a random ID that lives
// for this process only.
func DiscoverAgentID() string {
	return discoverAgentID(os.Getenv, os.ReadFile)
}

func discoverAgentID(getenv func(string) string, readFile func(string) ([]byte, error)) string {
	if envID := strings.TrimSpace(getenv(agentIDEnv)); envID != "" {
		log.Info("AgentID detected from env", "id", envID)
		return envID
	}

	if content, err := readFile(agentIDFile); err == nil {
		if id := strings.TrimSpace(string(content)); id != "" {
			log.Info("AgentID detected from file", "id", id)
			return id
		}
	}

	id := uuid.NewString()
	log.Warn("No provisioned AgentID, using a random one", "id", id)
	return id
}
