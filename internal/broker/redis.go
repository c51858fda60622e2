package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shawarmaKoders/Hedwig/pkg/log"
)

// Config holds Redis broker configuration.
type Config struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Redis implements Broker on top of Redis pub/sub.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// Publish sends a payload to the channel.
func (r *Redis) Publish(ctx context.Context, channel string, payload []byte) error {
	return r.client.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a subscription and waits for the server's subscribe
// acknowledgement, so a publish issued after Subscribe returns is
// guaranteed to reach this subscriber.
func (r *Redis) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := r.client.Subscribe(ctx, channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &redisSubscription{
		channel: channel,
		pubsub:  pubsub,
		events:  make(chan []byte),
		quit:    make(chan struct{}),
	}
	go sub.pump()

	return sub, nil
}

// Close closes the Redis client. Open subscriptions end with the
// connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

type redisSubscription struct {
	channel string
	pubsub  *redis.PubSub
	events  chan []byte
	quit    chan struct{}
	once    sync.Once
}

func (s *redisSubscription) Events() <-chan []byte {
	return s.events
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		// quit unblocks a pump stuck on a consumer that stopped reading;
		// closing the pubsub ends its message channel. Either way the
		// pump returns and closes the event stream.
		close(s.quit)
		err = s.pubsub.Close()
	})
	return err
}

// pump forwards every payload from Redis to the event stream. It never
// sheds: if the consumer cannot keep up, forwarding blocks until the
// consumer takes the payload or the subscription is closed. go-redis
// already filters subscription acknowledgements out of Channel().
func (s *redisSubscription) pump() {
	defer close(s.events)

	for msg := range s.pubsub.Channel() {
		select {
		case s.events <- []byte(msg.Payload):
		case <-s.quit:
			return
		}
	}

	l := log.L()
	l.Debug().Str(log.FieldChannel, s.channel).Msg("subscription stream ended")
}
