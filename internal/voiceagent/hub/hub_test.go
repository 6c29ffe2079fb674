package hub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/voxpeer/internal/voiceagent/model"
	"github.com/autopeer-io/voxpeer/internal/voiceagent/speech"
	"github.com/autopeer-io/voxpeer/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/voxpeer/pkg/mqtt/topic"
)

type published struct {
	topic   string
	retain  bool
	payload []byte
}

type fakeClient struct {
	mu        sync.Mutex
	connected bool
	published []published
	handlers  map[string]mqtt.MessageHandler
}

var _ mqtt.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{connected: true, handlers: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeClient) Start(context.Context) error           { return nil }
func (f *fakeClient) Disconnect(context.Context)            {}
func (f *fakeClient) AwaitConnection(context.Context) error { return nil }

func (f *fakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeClient) Publish(_ context.Context, topic string, _ int, retain bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{topic: topic, retain: retain, payload: payload})
	return nil
}

func (f *fakeClient) Subscribe(_ context.Context, topic string, _ int, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = handler
	return nil
}

func (f *fakeClient) Unsubscribe(_ context.Context, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, topic)
	return nil
}

func (f *fakeClient) deliver(ctx context.Context, topic string, payload []byte) bool {
	f.mu.Lock()
	h, ok := f.handlers[topic]
	f.mu.Unlock()
	if ok {
		h(ctx, topic, payload)
	}
	return ok
}

func (f *fakeClient) publishedOn(topic string) []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []published
	for _, p := range f.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

func newTestHub() (*Hub, *fakeClient) {
	fc := newFakeClient()
	clk := clocktesting.NewFakeClock(time.UnixMilli(1700000000000))
	return New("kitchen", fc, mqtttopic.NewBuilder("voxpeer/v1"), "en-IN", clk), fc
}

func TestSpeakPublishesUtterance(t *testing.T) {
	h, fc := newTestHub()

	h.Speak(context.Background(), "Command processed")

	msgs := fc.publishedOn("voxpeer/v1/speech/kitchen")
	if len(msgs) != 1 {
		t.Fatalf("published %d speech messages", len(msgs))
	}
	var got SpeechMessage
	if err := json.Unmarshal(msgs[0].payload, &got); err != nil {
		t.Fatal(err)
	}
	if got.Text != "Command processed" || got.Locale != "en-IN" || got.Timestamp != 1700000000000 {
		t.Errorf("speech = %+v", got)
	}
}

func TestPublishTask(t *testing.T) {
	h, fc := newTestHub()

	h.PublishTask(context.Background(), model.Task{ID: "1", Command: "hello", Status: model.TaskCompleted})

	msgs := fc.publishedOn("voxpeer/v1/task/status/kitchen")
	if len(msgs) != 1 || msgs[0].retain {
		t.Fatalf("task status messages = %+v", msgs)
	}
	var got model.Task
	_ = json.Unmarshal(msgs[0].payload, &got)
	if got.ID != "1" || got.Status != model.TaskCompleted {
		t.Errorf("task = %+v", got)
	}
}

func TestStartAnnouncesAndStopSaysGoodbye(t *testing.T) {
	h, fc := newTestHub()

	if err := h.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(fc.publishedOn("voxpeer/v1/online/kitchen")) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("online status never published")
		}
		time.Sleep(time.Millisecond)
	}

	h.Stop()

	msgs := fc.publishedOn("voxpeer/v1/online/kitchen")
	if len(msgs) != 2 {
		t.Fatalf("online messages = %d, want 2", len(msgs))
	}
	var last OnlineStatus
	_ = json.Unmarshal(msgs[1].payload, &last)
	if last.Online || !msgs[1].retain {
		t.Errorf("last online message = %+v retain=%v", last, msgs[1].retain)
	}
}

func TestRunForwardsTranscripts(t *testing.T) {
	h, fc := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.Start(ctx); err != nil {
		t.Fatal(err)
	}

	events := make(chan speech.Event, 3)
	go func() { _ = h.Run(ctx, events) }()

	topic := "voxpeer/v1/transcript/kitchen"
	deadline := time.Now().Add(2 * time.Second)
	for !fc.deliver(ctx, topic, []byte(`{"text":"play sh","final":false}`)) {
		if time.Now().After(deadline) {
			t.Fatal("transcript topic never subscribed")
		}
		time.Sleep(time.Millisecond)
	}
	fc.deliver(ctx, topic, []byte(`{"text":"play shape of you","final":true,"locale":"en-IN"}`))
	fc.deliver(ctx, topic, []byte(`{"error":"no-speech"}`))
	fc.deliver(ctx, topic, []byte(`not json`))

	want := []speech.EventKind{speech.Interim, speech.Final, speech.Error}
	for i, kind := range want {
		select {
		case ev := <-events:
			if ev.Kind != kind {
				t.Errorf("event %d kind = %s, want %s", i, ev.Kind, kind)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d never arrived", i)
		}
	}
}

func TestRunDropsTranscriptsAfterStop(t *testing.T) {
	h, fc := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.Start(ctx); err != nil {
		t.Fatal(err)
	}

	runCtx, stopRun := context.WithCancel(ctx)
	events := make(chan speech.Event)
	ran := make(chan struct{})
	go func() {
		defer close(ran)
		_ = h.Run(runCtx, events)
	}()

	topic := "voxpeer/v1/transcript/kitchen"
	deadline := time.Now().Add(2 * time.Second)
	for {
		fc.mu.Lock()
		_, ok := fc.handlers[topic]
		fc.mu.Unlock()
		if ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("transcript topic never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	stopRun()
	<-ran

	delivered := make(chan struct{})
	go func() {
		defer close(delivered)
		fc.deliver(ctx, topic, []byte(`{"text":"hello","final":true}`))
	}()

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("transcript handler blocked after the recognizer stopped")
	}
}
