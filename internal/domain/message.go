package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ChatMessage is the durable record of one chat message. Records are
// append-only; the composite unique index rejects a second message from
// the same user in the same room at an identical time.
type ChatMessage struct {
	ID   uint      `gorm:"primaryKey;autoIncrement"`
	Room string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_time_room_user,priority:2"`
	User string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_time_room_user,priority:3"`
	Time time.Time `gorm:"not null;uniqueIndex:idx_time_room_user,priority:1"`
	Text string    `gorm:"type:text;not null"`
}

// TableName specifies the table name for ChatMessage.
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// MessagePayload is the wire shape shared by history entries and relayed
// messages: {"user": ..., "time": <epoch seconds>, "text": ...}.
type MessagePayload struct {
	User string    `json:"user"`
	Time Timestamp `json:"time"`
	Text string    `json:"text"`
}

// PayloadFor projects a stored message onto the wire shape.
func PayloadFor(msg ChatMessage) MessagePayload {
	return MessagePayload{
		User: msg.User,
		Time: Timestamp{Time: msg.Time},
		Text: msg.Text,
	}
}

// MessageInput is one inbound websocket frame: {"time": ..., "text": ...}.
type MessageInput struct {
	Time Timestamp `json:"time"`
	Text string    `json:"text"`
}

// ErrMalformedFrame marks an inbound frame that failed schema validation.
// Such frames are dropped; the session stays open.
var ErrMalformedFrame = errors.New("malformed frame")

// ParseMessageInput decodes and validates one inbound frame.
func ParseMessageInput(data []byte) (MessageInput, error) {
	var in MessageInput
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// Validate checks the frame against the message-input schema.
func (in MessageInput) Validate() error {
	if in.Text == "" {
		return fmt.Errorf("%w: text must be a non-empty string", ErrMalformedFrame)
	}
	if in.Time.IsZero() {
		return fmt.Errorf("%w: time is required", ErrMalformedFrame)
	}
	return nil
}
