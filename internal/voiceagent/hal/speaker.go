package hal

import (
	"context"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/pkg/log"
)

// LogSpeaker "speaks" by logging the utterance.
type LogSpeaker struct {
	Locale string
}

var _ core.Speaker = (*LogSpeaker)(nil)

func (s *LogSpeaker) Speak(_ context.Context, text string) {
	log.Info("Speaking", "text", text, "locale", s.Locale)
}
