package mqtt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/eclipse/paho.golang/paho"
)

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter, topic string
		want          bool
	}{
		{"voxpeer/v1/transcript/a1", "voxpeer/v1/transcript/a1", true},
		{"voxpeer/v1/transcript/+", "voxpeer/v1/transcript/a1", true},
		{"voxpeer/v1/transcript/+", "voxpeer/v1/transcript/a1/extra", false},
		{"voxpeer/v1/#", "voxpeer/v1/speech/a1", true},
		{"voxpeer/v1/+/a1", "voxpeer/v1/speech/a1", true},
		{"voxpeer/v1/+/a1", "voxpeer/v1/speech/a2", false},
		{"voxpeer/v1/transcript", "voxpeer/v1/speech", false},
	}

	for _, tt := range tests {
		if got := topicsMatch(tt.filter, tt.topic); got != tt.want {
			t.Errorf("topicsMatch(%q, %q) = %v, want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func TestTopicFilterStripsSharePrefix(t *testing.T) {
	if got := topicFilter("$share/agents/voxpeer/v1/transcript/+"); got != "voxpeer/v1/transcript/+" {
		t.Errorf("topicFilter = %q", got)
	}
	if got := topicFilter("voxpeer/v1/transcript/+"); got != "voxpeer/v1/transcript/+" {
		t.Errorf("topicFilter changed a plain filter: %q", got)
	}
}

func TestNewClientValidates(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewClient(&ClientConfig{ClientID: "a1"}); err == nil {
		t.Error("expected error for missing broker")
	}

	cfg := &ClientConfig{BrokerURL: "tcp://127.0.0.1:1883", ClientID: "a1"}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.IsConnected() {
		t.Error("a fresh client must not report connected")
	}
	if cfg.KeepAlive != 60 {
		t.Errorf("default keep-alive not applied: %d", cfg.KeepAlive)
	}
}

func TestRouteDeliversInOrder(t *testing.T) {
	c := &pahoClient{ctx: context.Background(), subs: make(map[string]*subscription)}

	var (
		mu  sync.Mutex
		got []string
	)
	done := make(chan struct{})
	s := &subscription{
		filter: "voxpeer/v1/transcript/+",
		handler: func(_ context.Context, _ string, payload []byte) {
			mu.Lock()
			got = append(got, string(payload))
			n := len(got)
			mu.Unlock()
			if n == 3 {
				close(done)
			}
		},
		inbox: make(chan message, inboxSize),
		done:  make(chan struct{}),
	}
	c.subs[s.filter] = s
	go s.run(context.Background())
	defer close(s.done)

	for _, text := range []string{"play", "play shape", "play shape of you"} {
		_, _ = c.route(paho.PublishReceived{Packet: &paho.Publish{Topic: "voxpeer/v1/transcript/a1", Payload: []byte(text)}})
	}
	_, _ = c.route(paho.PublishReceived{Packet: &paho.Publish{Topic: "voxpeer/v1/speech/a1", Payload: []byte("ignored")}})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("messages were not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"play", "play shape", "play shape of you"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery order = %v, want %v", got, want)
		}
	}
}
