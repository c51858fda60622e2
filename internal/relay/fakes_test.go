package relay_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shawarmaKoders/Hedwig/internal/broker"
	"github.com/shawarmaKoders/Hedwig/internal/domain"
	"github.com/shawarmaKoders/Hedwig/internal/repository"
)

// fakeConn is an in-memory relay.Conn. Inbound frames are pushed with
// push(); the read loop sees io.EOF once close() is called. Every write
// lands on the writes channel.
type fakeConn struct {
	in     chan []byte
	writes chan []byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		writes: make(chan []byte, 64),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-c.in
	if !ok {
		return 0, nil, io.EOF
	}
	return websocket.TextMessage, data, nil
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.writes <- append([]byte(nil), data...)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) push(frame string) { c.in <- []byte(frame) }
func (c *fakeConn) close()            { close(c.in) }

// fakeBroker is an in-memory pub/sub. Publishing delivers synchronously
// to every open subscription's buffered channel. failChannel simulates a
// broker connectivity failure by ending every stream on the channel.
type fakeBroker struct {
	mu        sync.Mutex
	subs      map[string][]*fakeSub
	published map[string][][]byte
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		subs:      make(map[string][]*fakeSub),
		published: make(map[string][][]byte),
	}
}

type fakeSub struct {
	b       *fakeBroker
	channel string
	ch      chan []byte
	once    sync.Once
}

func (s *fakeSub) Events() <-chan []byte { return s.ch }

func (s *fakeSub) Close() error {
	s.once.Do(func() {
		s.b.remove(s)
		close(s.ch)
	})
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (broker.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &fakeSub{b: b, channel: channel, ch: make(chan []byte, 64)}
	b.subs[channel] = append(b.subs[channel], sub)
	return sub, nil
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[channel] = append(b.published[channel], payload)
	for _, sub := range b.subs[channel] {
		sub.ch <- payload
	}
	return nil
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) remove(s *fakeSub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[s.channel]
	for i, sub := range list {
		if sub == s {
			b.subs[s.channel] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

func (b *fakeBroker) subCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}

func (b *fakeBroker) publishCount(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published[channel])
}

func (b *fakeBroker) failChannel(channel string) {
	b.mu.Lock()
	list := append([]*fakeSub(nil), b.subs[channel]...)
	b.mu.Unlock()
	for _, sub := range list {
		sub.Close()
	}
}

// fakeMessages is an in-memory repository.MessageRepository enforcing
// the (time, room, user) uniqueness invariant. A non-zero delay makes
// every append slow, for disconnect-wait tests.
type fakeMessages struct {
	mu      sync.Mutex
	msgs    []domain.ChatMessage
	delay   time.Duration
	listErr error
}

func (r *fakeMessages) Append(ctx context.Context, msg *domain.ChatMessage) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.Room == msg.Room && m.User == msg.User && m.Time.Equal(msg.Time) {
			return repository.ErrDuplicateMessage
		}
	}
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *fakeMessages) ListByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range r.msgs {
		if m.Room == roomID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.Before(out[j].Time)
		}
		return out[i].User < out[j].User
	})
	return out, nil
}

func (r *fakeMessages) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}
