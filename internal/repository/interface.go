package repository

import (
	"context"
	"errors"

	"github.com/shawarmaKoders/Hedwig/internal/domain"
)

var (
	// ErrDuplicateMessage means a message with the same (time, room,
	// user) is already stored.
	ErrDuplicateMessage = errors.New("duplicate message")

	// ErrRoomNotFound means no room exists with the given id.
	ErrRoomNotFound = errors.New("room not found")
)

// MessageRepository stores chat messages durably.
type MessageRepository interface {
	// Append stores one message. A (time, room, user) collision returns
	// ErrDuplicateMessage.
	Append(ctx context.Context, msg *domain.ChatMessage) error

	// ListByRoom returns every message of the room ascending by time,
	// ties broken by (room, user).
	ListByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error)
}

// RoomRepository stores room metadata.
type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	List(ctx context.Context, page, pageSize int, activeOnly bool) ([]domain.Room, int, error)
	Deactivate(ctx context.Context, id string) error
}
