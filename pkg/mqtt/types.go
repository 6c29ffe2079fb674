package mqtt

import (
	"context"
)

// Delivery guarantees accepted by Publish and Subscribe.
const (
	AtMostOnce  = 0
	AtLeastOnce = 1
	ExactlyOnce = 2
)

// MessageHandler is called for every message matching a subscription. ctx
// is the context the client was started with.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client is the broker connection used by the agent hub.
type Client interface {
	// Start connects in the background and returns at once.
	Start(ctx context.Context) error

	// Disconnect sends DISCONNECT, so the broker does not publish the will.
	Disconnect(ctx context.Context)

	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Subscribe records handler for the topic filter. Subscriptions made
	// while offline are sent on connect, and all are renewed on reconnect.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	Unsubscribe(ctx context.Context, topic string) error

	// AwaitConnection blocks until connected or ctx is done.
	AwaitConnection(ctx context.Context) error

	IsConnected() bool
}
