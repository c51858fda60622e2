package relay

import (
	"context"
	"errors"

	"github.com/shawarmaKoders/Hedwig/internal/repository"
)

var (
	// ErrRoomInactive means the room exists but has been deactivated.
	ErrRoomInactive = errors.New("room is inactive")

	// ErrNotParticipant means the user is not in the room's participant
	// list.
	ErrNotParticipant = errors.New("user is not a participant of the room")
)

// Authorizer decides whether a user may open a session in a room. The
// upstream design never enforced this; it stays a pluggable hook with an
// allow-all default rather than silently becoming mandatory.
type Authorizer interface {
	Authorize(ctx context.Context, userID, roomID string) error
}

// AllowAll admits every user to every room.
type AllowAll struct{}

func (AllowAll) Authorize(ctx context.Context, userID, roomID string) error {
	return nil
}

// RoomGuard admits a user only when the room exists, is active, and —
// if the room declares participants — lists the user among them.
type RoomGuard struct {
	Rooms repository.RoomRepository
}

func (g *RoomGuard) Authorize(ctx context.Context, userID, roomID string) error {
	room, err := g.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.Active {
		return ErrRoomInactive
	}
	if len(room.Participants) > 0 {
		for _, p := range room.Participants {
			if p == userID {
				return nil
			}
		}
		return ErrNotParticipant
	}
	return nil
}
