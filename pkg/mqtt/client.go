package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/autopeer-io/voxpeer/pkg/log"
	"github.com/autopeer-io/voxpeer/pkg/mqtt/topic"
)

const (
	reconnectBackoff = 3 * time.Second

	// inboxSize is the number of messages buffered per subscription before
	// new ones are dropped.
	inboxSize = 64
)

var errNotStarted = errors.New("mqtt client not started")

type message struct {
	topic   string
	payload []byte
}

// subscription delivers matching messages to its handler one at a time, in
// arrival order, without holding up the paho reader.
type subscription struct {
	filter  string
	qos     byte
	handler MessageHandler

	inbox chan message
	done  chan struct{}
}

func (s *subscription) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case m := <-s.inbox:
			s.handler(ctx, m.topic, m.payload)
		}
	}
}

type pahoClient struct {
	cfg *ClientConfig
	cm  *autopaho.ConnectionManager

	// ctx is the Start context; handlers run under it.
	ctx context.Context

	connected atomic.Bool

	mu   sync.RWMutex
	subs map[string]*subscription
}

// NewClient validates cfg, applies defaults and returns an unstarted client.
func NewClient(cfg *ClientConfig) (Client, error) {
	if cfg == nil {
		return nil, errors.New("mqtt config is required")
	}

	setDefaultConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mqtt config: %w", err)
	}

	return &pahoClient{
		cfg:  cfg,
		ctx:  context.Background(),
		subs: make(map[string]*subscription),
	}, nil
}

func (c *pahoClient) Start(ctx context.Context) error {
	brokerURL, err := url.Parse(c.cfg.BrokerURL)
	if err != nil {
		return fmt.Errorf("invalid broker url: %w", err)
	}

	pahoCfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{brokerURL},
		KeepAlive:                     c.cfg.KeepAlive,
		CleanStartOnInitialConnection: c.cfg.CleanStart,
		SessionExpiryInterval:         c.cfg.SessionExpiry,
		ReconnectBackoff:              autopaho.NewConstantBackoff(reconnectBackoff),
		ConnectTimeout:                c.cfg.ConnectTimeout,
		ConnectUsername:               c.cfg.Username,
		ConnectPassword:               []byte(c.cfg.Password),
		TlsCfg:                        &tls.Config{InsecureSkipVerify: c.cfg.InsecureSkipVerify},
		WillMessage:                   c.willMessage(),
		OnConnectionUp:                c.onConnectionUp,
		OnConnectError:                c.onConnectError,
		ClientConfig: paho.ClientConfig{
			ClientID:           c.cfg.ClientID,
			OnClientError:      c.onClientError,
			OnServerDisconnect: c.onServerDisconnect,
			OnPublishReceived:  []func(paho.PublishReceived) (bool, error){c.route},
		},
	}

	log.Info("Starting MQTT client", "broker", c.cfg.BrokerURL, "clientID", c.cfg.ClientID)

	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	cm, err := autopaho.NewConnection(ctx, pahoCfg)
	if err != nil {
		return err
	}
	c.cm = cm
	return nil
}

func (c *pahoClient) Disconnect(ctx context.Context) {
	if c.cm == nil {
		return
	}
	if err := c.cm.Disconnect(ctx); err != nil {
		log.Debug("MQTT disconnect", "error", err)
	}
	c.connected.Store(false)
	log.Info("MQTT client disconnected")
}

func (c *pahoClient) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	if c.cm == nil {
		return errNotStarted
	}

	_, err := c.cm.Publish(ctx, &paho.Publish{
		Topic:   topic,
		QoS:     byte(qos),
		Retain:  retain,
		Payload: payload,
	})
	return err
}

func (c *pahoClient) Subscribe(ctx context.Context, filter string, qos int, handler MessageHandler) error {
	if c.cm == nil {
		return errNotStarted
	}

	s := &subscription{
		filter:  filter,
		qos:     byte(qos),
		handler: handler,
		inbox:   make(chan message, inboxSize),
		done:    make(chan struct{}),
	}

	c.mu.Lock()
	if old, ok := c.subs[filter]; ok {
		close(old.done)
	}
	c.subs[filter] = s
	runCtx := c.ctx
	c.mu.Unlock()
	go s.run(runCtx)

	// Registered first, so the next connect picks it up if this one is lost.
	if !c.connected.Load() {
		log.Debug("Subscription deferred until connected", "topic", filter)
		return nil
	}

	if err := c.sendSubscribe(ctx, c.cm, s); err != nil {
		return fmt.Errorf("failed to send subscription packet: %w", err)
	}
	log.Info("Subscribed to topic", "topic", filter)
	return nil
}

func (c *pahoClient) Unsubscribe(ctx context.Context, filter string) error {
	if c.cm == nil {
		return errNotStarted
	}

	c.mu.Lock()
	if s, ok := c.subs[filter]; ok {
		close(s.done)
		delete(c.subs, filter)
	}
	c.mu.Unlock()

	_, err := c.cm.Unsubscribe(ctx, &paho.Unsubscribe{Topics: []string{filter}})
	return err
}

func (c *pahoClient) AwaitConnection(ctx context.Context) error {
	if c.cm == nil {
		return errNotStarted
	}
	return c.cm.AwaitConnection(ctx)
}

func (c *pahoClient) IsConnected() bool {
	return c.connected.Load()
}

func (c *pahoClient) sendSubscribe(ctx context.Context, cm *autopaho.ConnectionManager, subs ...*subscription) error {
	opts := make([]paho.SubscribeOptions, 0, len(subs))
	for _, s := range subs {
		opts = append(opts, paho.SubscribeOptions{Topic: s.filter, QoS: s.qos})
	}
	_, err := cm.Subscribe(ctx, &paho.Subscribe{Subscriptions: opts})
	return err
}

// onConnectionUp renews every subscription in one SUBSCRIBE packet.
func (c *pahoClient) onConnectionUp(cm *autopaho.ConnectionManager, _ *paho.Connack) {
	c.connected.Store(true)
	log.Info("MQTT connection established")

	c.mu.RLock()
	subs := make([]*subscription, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	ctx := c.ctx
	c.mu.RUnlock()

	if len(subs) == 0 {
		return
	}
	if err := c.sendSubscribe(ctx, cm, subs...); err != nil {
		log.Error(err, "Failed to renew subscriptions", "count", len(subs))
		return
	}
	log.Debug("Subscriptions renewed", "count", len(subs))
}

func (c *pahoClient) onConnectError(err error) {
	c.connected.Store(false)
	log.Error(err, "MQTT connection failed, retrying", "backoff", reconnectBackoff)
}

func (c *pahoClient) onClientError(err error) {
	c.connected.Store(false)
	log.Error(err, "MQTT client error")
}

func (c *pahoClient) onServerDisconnect(d *paho.Disconnect) {
	c.connected.Store(false)
	var reason string
	if d.Properties != nil {
		reason = d.Properties.ReasonString
	}
	log.Warn("MQTT broker closed the connection", "reasonCode", d.ReasonCode, "reason", reason)
}

// route queues an inbound message on every matching subscription.
func (c *pahoClient) route(p paho.PublishReceived) (bool, error) {
	m := message{topic: p.Packet.Topic, payload: p.Packet.Payload}

	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := false
	for _, s := range c.subs {
		if !topicsMatch(topicFilter(s.filter), m.topic) {
			continue
		}
		matched = true
		select {
		case s.inbox <- m:
		default:
			log.Warn("Subscriber is falling behind, dropping message", "topic", m.topic)
		}
	}

	if !matched {
		log.Debug("Received message on unhandled topic", "topic", m.topic)
	}
	return true, nil
}

func (c *pahoClient) willMessage() *paho.WillMessage {
	if c.cfg.WillTopic == "" {
		return nil
	}
	return &paho.WillMessage{
		Topic:   c.cfg.WillTopic,
		Payload: c.cfg.WillPayload,
		QoS:     c.cfg.WillQoS,
		Retain:  c.cfg.WillRetain,
	}
}

// topicsMatch reports whether topic matches filter, honouring + and #.
func topicsMatch(filter, name string) bool {
	if filter == name {
		return true
	}
	if !strings.ContainsAny(filter, topic.Wildcard+topic.MultiWildcard) {
		return false
	}

	want := strings.Split(filter, "/")
	got := strings.Split(name, "/")
	for i, level := range want {
		switch {
		case level == topic.MultiWildcard:
			return true
		case i >= len(got):
			return false
		case level != topic.Wildcard && level != got[i]:
			return false
		}
	}
	return len(want) == len(got)
}

// topicFilter strips the $share/<group>/ prefix of shared subscriptions.
func topicFilter(filter string) string {
	if rest, ok := strings.CutPrefix(filter, "$share/"); ok {
		if _, f, ok := strings.Cut(rest, "/"); ok {
			return f
		}
	}
	return filter
}
