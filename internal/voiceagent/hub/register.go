package hub

import (
	"context"
	"fmt"

	"github.com/autopeer-io/voxpeer/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/pkg/log"
	"github.com/autopeer-io/voxpeer/pkg/mqtt"
)

// HandlerFunc processes an inbound payload.
type HandlerFunc func(ctx context.Context, payload []byte) error

var events = map[core.EventType]string{
	core.EventTranscript: paths.Transcript,
	core.EventSpeech:     paths.Speech,
	core.EventTaskStatus: paths.TaskStatus,
	core.EventOnline:     paths.Online,
}

// Register subscribes handler to the topic of event for this agent. Routes
// registered before Start are subscribed when it runs.
func (b *Hub) Register(ctx context.Context, event core.EventType, handler HandlerFunc) error {
	segment, ok := events[event]
	if !ok {
		return fmt.Errorf("unmapped event: %s", event)
	}
	topic := b.topics.Build(segment, b.agentID)

	b.mu.Lock()
	b.routes[topic] = handler
	started := b.started
	b.mu.Unlock()

	if started {
		return b.subscribe(ctx, topic, handler)
	}
	return nil
}

func (b *Hub) subscribe(ctx context.Context, topic string, handler HandlerFunc) error {
	return b.mc.Subscribe(ctx, topic, mqtt.AtLeastOnce, func(c context.Context, _ string, p []byte) {
		if err := handler(c, p); err != nil {
			log.Error(err, "Handler execution failed", "topic", topic)
		}
	})
}
