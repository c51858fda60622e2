// Package history loads a room's prior messages for the on-join push and
// the history endpoint.
package history

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/shawarmaKoders/Hedwig/internal/domain"
	"github.com/shawarmaKoders/Hedwig/internal/repository"
)

// Loader reads a room's full history, ascending by time. Concurrent
// loads of the same room collapse into one store query. Results are
// never cached: a joining participant must see every committed message.
type Loader struct {
	repo repository.MessageRepository
	sf   singleflight.Group
}

// NewLoader creates a Loader over the message repository.
func NewLoader(repo repository.MessageRepository) *Loader {
	return &Loader{repo: repo}
}

// Load returns the room's messages as wire payloads, oldest first. The
// result is non-nil even when empty, so it marshals as a JSON array.
// Store failure propagates to the caller; it is never swallowed into an
// empty history.
func (l *Loader) Load(ctx context.Context, roomID string) ([]domain.MessagePayload, error) {
	v, err, _ := l.sf.Do(roomID, func() (interface{}, error) {
		msgs, err := l.repo.ListByRoom(ctx, roomID)
		if err != nil {
			return nil, fmt.Errorf("failed to load history for room %s: %w", roomID, err)
		}

		entries := make([]domain.MessagePayload, 0, len(msgs))
		for _, msg := range msgs {
			entries = append(entries, domain.PayloadFor(msg))
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.MessagePayload), nil
}
