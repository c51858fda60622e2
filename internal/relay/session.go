// Package relay implements the per-participant connection session: the
// inbound read loop, the per-room broadcast subscription with its reader
// goroutine, and the fire-and-forget durable writes the session must
// wait on before it may release its resources.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/shawarmaKoders/Hedwig/internal/broker"
	"github.com/shawarmaKoders/Hedwig/internal/domain"
	"github.com/shawarmaKoders/Hedwig/internal/history"
	"github.com/shawarmaKoders/Hedwig/internal/repository"
	"github.com/shawarmaKoders/Hedwig/internal/track"
	"github.com/shawarmaKoders/Hedwig/pkg/log"
)

// State is the session lifecycle state.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Conn is the subset of *websocket.Conn a session needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Deps are the collaborators a session is constructed with. Tracker is
// shared across sessions; everything else may be shared or per-test.
type Deps struct {
	Broker   broker.Broker
	Messages repository.MessageRepository
	History  *history.Loader
	Tracker  *track.Tracker

	// Authorizer gates Connect. Nil admits everyone.
	Authorizer Authorizer

	// OnPersistFailure observes failed durable writes (duplicate key,
	// store unavailable). Nil logs and drops. It never affects the live
	// relay path.
	OnPersistFailure func(msg domain.ChatMessage, err error)

	// DisconnectWait bounds how long disconnect waits for outstanding
	// tasks. Zero means wait indefinitely.
	DisconnectWait time.Duration
}

// Session is one participant's live connection within one room. It owns
// one socket, one subscription, and one reader goroutine, and registers
// every persistence task it spawns with the shared tracker.
type Session struct {
	id    string
	user  string
	room  string
	conn  Conn
	deps  Deps
	sub   broker.Subscription
	state atomic.Int32
}

// NewSession creates a session for one (user, room, socket) tuple.
// Simultaneous sessions for the same user in the same room are not
// deduplicated.
func NewSession(userID, roomID string, conn Conn, deps Deps) *Session {
	if deps.Authorizer == nil {
		deps.Authorizer = AllowAll{}
	}
	return &Session{
		id:   uuid.New().String(),
		user: userID,
		room: roomID,
		conn: conn,
		deps: deps,
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Connect performs the join handshake: authorize, push the room's full
// history as one ordered JSON array frame, then subscribe and start the
// relay reader. If history loading fails the handshake is refused before
// any subscription exists, so there is nothing to release.
func (s *Session) Connect(ctx context.Context) error {
	l := s.logger(ctx)

	if err := s.deps.Authorizer.Authorize(ctx, s.user, s.room); err != nil {
		return fmt.Errorf("session not admitted: %w", err)
	}

	entries, err := s.deps.History.Load(ctx, s.room)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send history: %w", err)
	}

	channel := broker.ChannelFor(s.room)
	sub, err := s.deps.Broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	s.sub = sub

	readerTask := s.deps.Tracker.StartReader(s.id)
	go s.relayLoop(sub, readerTask)

	s.state.Store(int32(StateActive))
	l.Info().Msg("session connected")
	return nil
}

// Run reads inbound frames until the socket closes, then disconnects.
// Malformed frames are logged and dropped; the session stays active.
// Call only after a successful Connect.
func (s *Session) Run(ctx context.Context) {
	l := s.logger(ctx)
	defer s.disconnect(ctx)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			// Clean and abrupt closes both end the session; neither is
			// an application error.
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.Debug().Err(err).Msg("socket closed")
			}
			return
		}

		in, err := domain.ParseMessageInput(data)
		if err != nil {
			l.Warn().Err(err).Msg("dropping invalid frame")
			continue
		}

		s.sendMessage(ctx, in)
	}
}

// sendMessage publishes the message to the room channel (the sender
// receives its own echo through its reader) and independently spawns a
// tracked persistence task. Publish success does not imply persistence
// success, nor the reverse.
func (s *Session) sendMessage(ctx context.Context, in domain.MessageInput) {
	l := s.logger(ctx)

	payload := domain.MessagePayload{User: s.user, Time: in.Time, Text: in.Text}
	data, err := json.Marshal(payload)
	if err != nil {
		l.Error().Err(err).Msg("failed to encode message payload")
		return
	}

	if err := s.deps.Broker.Publish(ctx, broker.ChannelFor(s.room), data); err != nil {
		l.Error().Err(err).Msg("failed to publish message")
	}

	msg := domain.ChatMessage{
		Room: s.room,
		User: s.user,
		Time: in.Time.Time,
		Text: in.Text,
	}
	task := s.deps.Tracker.StartPersist(s.id)

	// The store call must not die with the socket; only disconnect's
	// wait bounds it.
	persistCtx := context.WithoutCancel(ctx)
	go func() {
		defer task.Complete()
		if err := s.deps.Messages.Append(persistCtx, &msg); err != nil {
			s.persistFailed(msg, err)
		}
	}()
}

func (s *Session) persistFailed(msg domain.ChatMessage, err error) {
	if s.deps.OnPersistFailure != nil {
		s.deps.OnPersistFailure(msg, err)
		return
	}
	l := log.L()
	l.Warn().Err(err).
		Str(log.FieldRoomID, msg.Room).
		Str(log.FieldUserID, msg.User).
		Time(log.FieldMsgTime, msg.Time).
		Msg("message not stored")
}

// relayLoop drains the subscription and forwards every payload to the
// socket, without shedding, until the event stream ends (unsubscribe or
// broker failure) or a socket write fails. It never retries.
func (s *Session) relayLoop(sub broker.Subscription, task *track.Task) {
	defer task.Complete()

	for payload := range sub.Events() {
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			// Peer gone; the stream is closed by disconnect.
			return
		}
	}
}

// disconnect releases the session on every exit path: close the
// subscription so the reader observes end-of-stream, wait for every
// persistence task this session registered to reach a terminal state
// (failures included), then wait for the reader itself.
func (s *Session) disconnect(ctx context.Context) {
	s.state.Store(int32(StateClosing))
	l := s.logger(ctx)

	if s.deps.DisconnectWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.DisconnectWait)
		defer cancel()
	}

	if s.sub != nil {
		if err := s.sub.Close(); err != nil {
			l.Warn().Err(err).Msg("failed to close subscription")
		}
	}

	if err := s.deps.Tracker.WaitPersists(ctx, s.id); err != nil {
		l.Warn().Err(err).Msg("gave up waiting for persistence tasks")
	}
	if err := s.deps.Tracker.WaitReaders(ctx, s.id); err != nil {
		l.Warn().Err(err).Msg("gave up waiting for reader task")
	}

	s.state.Store(int32(StateClosed))
	l.Info().Msg("session closed")
}

func (s *Session) logger(ctx context.Context) zerolog.Logger {
	return log.Ctx(ctx).With().
		Str(log.FieldSessionID, s.id).
		Str(log.FieldUserID, s.user).
		Str(log.FieldRoomID, s.room).
		Logger()
}
