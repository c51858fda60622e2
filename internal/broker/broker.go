package broker

import "context"

// Broker is a thin publish/subscribe wrapper. Routing between sessions is
// entirely delegated to it: every participant of a room subscribes to the
// room's channel and every send is published there, including the
// sender's own copy.
type Broker interface {
	// Publish sends a payload to every current subscriber of the channel.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe opens a dedicated subscription to the channel. Each call
	// returns an independent subscription; two sessions in the same room
	// each hold their own.
	Subscribe(ctx context.Context, channel string) (Subscription, error)

	Close() error
}

// Subscription is one live subscription to one channel.
//
// Events yields application payloads only; broker control frames
// (subscription acknowledgements) never appear on it. The channel is
// closed when the subscription is closed or the broker connection fails,
// so consumers observe both as end-of-stream.
type Subscription interface {
	Events() <-chan []byte

	// Close unsubscribes and ends the event stream. Safe to call more
	// than once.
	Close() error
}
