package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shawarmaKoders/Hedwig/internal/domain"
	"github.com/shawarmaKoders/Hedwig/pkg/log"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Append stores one message. The unique index on (time, room, user)
// turns a timestamp collision into ErrDuplicateMessage.
func (r *GormMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	result := r.db.WithContext(ctx).Create(msg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateMessage
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).
			Str(log.FieldRoomID, msg.Room).
			Str(log.FieldUserID, msg.User).
			Msg("failed to store message")
		return result.Error
	}
	return nil
}

// ListByRoom returns the room's messages ascending by time. Ties are
// broken by (room, user) so the order is deterministic.
func (r *GormMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	result := r.db.WithContext(ctx).
		Where("room = ?", roomID).
		Order("time ASC").Order("room ASC").Order("user ASC").
		Find(&msgs)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldRoomID, roomID).Msg("failed to list messages")
		return nil, result.Error
	}
	return msgs, nil
}
