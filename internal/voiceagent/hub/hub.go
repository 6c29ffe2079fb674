package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/core"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/speech"
	"github.com/autopeer-io/voxpeer/pkg/log"
	"github.com/autopeer-io/voxpeer/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/voxpeer/pkg/mqtt/topic"
)

// Hub is the agent's MQTT side: it receives transcripts from remote
// recognizers, forwards utterances to remote speakers and reports task
// status and presence.
type Hub struct {
	agentID string
	locale  string
	clock   clock.PassiveClock

	mc     mqtt.Client
	topics *mqtttopic.Builder

	mu      sync.Mutex
	routes  map[string]HandlerFunc
	started bool
}

var (
	_ core.Sender       = (*Hub)(nil)
	_ core.Speaker      = (*Hub)(nil)
	_ speech.Recognizer = (*Hub)(nil)
)

func New(agentID string, client mqtt.Client, topicbuilder *mqtttopic.Builder, locale string, clk clock.PassiveClock) *Hub {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Hub{
		agentID: agentID,
		locale:  locale,
		clock:   clk,
		mc:      client,
		topics:  topicbuilder,
		routes:  make(map[string]HandlerFunc),
	}
}

func (b *Hub) Send(ctx context.Context, event core.EventType, payload []byte) error {
	segment, ok := events[event]
	if !ok {
		return fmt.Errorf("unmapped event: %s", event)
	}
	retain := event == core.EventOnline
	return b.mc.Publish(ctx, b.topics.Build(segment, b.agentID), mqtt.AtLeastOnce, retain, payload)
}

func (b *Hub) SendJSON(ctx context.Context, event core.EventType, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Send(ctx, event, payload)
}

func (b *Hub) IsConnected() bool {
	return b.mc.IsConnected()
}

// Start connects in the background, subscribes the registered routes and
// announces the agent once the broker is reachable.
func (b *Hub) Start(ctx context.Context) error {
	if err := b.mc.Start(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	b.started = true
	routes := make(map[string]HandlerFunc, len(b.routes))
	for t, h := range b.routes {
		routes[t] = h
	}
	b.mu.Unlock()

	for topic, handler := range routes {
		if err := b.subscribe(ctx, topic, handler); err != nil {
			return err
		}
	}

	go b.announce(ctx)
	return nil
}

func (b *Hub) announce(ctx context.Context) {
	if err := b.mc.AwaitConnection(ctx); err != nil {
		return
	}
	status := OnlineStatus{AgentID: b.agentID, Online: true, Timestamp: b.clock.Now().Unix()}
	if err := b.SendJSON(ctx, core.EventOnline, status); err != nil {
		log.Error(err, "Failed to announce online status")
		return
	}
	log.Info("Announced online status", "agentID", b.agentID)
}

// Stop publishes a graceful offline status and disconnects.
func (b *Hub) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if b.mc.IsConnected() {
		status := OnlineStatus{AgentID: b.agentID, Online: false, Reason: "Shutdown", Timestamp: b.clock.Now().Unix()}
		if err := b.SendJSON(ctx, core.EventOnline, status); err != nil {
			log.Warn("Failed to publish offline status", "error", err)
		}
	}

	log.Info("Disconnecting MQTT client...")
	b.mc.Disconnect(ctx)
}

// Speak publishes text for a remote synthesizer. Failures are logged only.
func (b *Hub) Speak(ctx context.Context, text string) {
	msg := SpeechMessage{Text: text, Locale: b.locale, Timestamp: b.clock.Now().UnixMilli()}
	if err := b.SendJSON(ctx, core.EventSpeech, msg); err != nil {
		log.Error(err, "Failed to publish speech", "text", text)
	}
}

// PublishTask reports a task change.
func (b *Hub) PublishTask(ctx context.Context, task model.Task) {
	if err := b.SendJSON(ctx, core.EventTaskStatus, task); err != nil {
		log.Error(err, "Failed to publish task status", "taskID", task.ID, "status", task.Status)
	}
}

// Run makes the hub a speech.Recognizer fed by the transcript topic.
// Transcripts arriving after ctx is done are dropped, even while the
// subscription itself lives on under the context given to Start.
func (b *Hub) Run(ctx context.Context, out chan<- speech.Event) error {
	err := b.Register(ctx, core.EventTranscript, func(c context.Context, payload []byte) error {
		ev, err := decodeTranscript(payload)
		if err != nil {
			return err
		}
		select {
		case out <- ev:
		case <-c.Done():
		case <-ctx.Done():
			log.Debug("Dropping transcript, recognizer stopped", "kind", ev.Kind)
		}
		return nil
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}

func decodeTranscript(payload []byte) (speech.Event, error) {
	var msg TranscriptMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return speech.Event{}, fmt.Errorf("invalid transcript payload: %w", err)
	}

	switch {
	case msg.Error != "":
		return speech.Event{Kind: speech.Error, Err: fmt.Errorf("remote recognizer: %s", msg.Error)}, nil
	case msg.Final:
		return speech.Event{Kind: speech.Final, Text: msg.Text}, nil
	default:
		return speech.Event{Kind: speech.Interim, Text: msg.Text}, nil
	}
}
