package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shawarmaKoders/Hedwig/internal/domain"
)

type stubRepo struct {
	msgs []domain.ChatMessage
	err  error
}

func (r *stubRepo) Append(ctx context.Context, msg *domain.ChatMessage) error { return nil }

func (r *stubRepo) ListByRoom(ctx context.Context, roomID string) ([]domain.ChatMessage, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.ChatMessage
	for _, m := range r.msgs {
		if m.Room == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestLoader_Load(t *testing.T) {
	repo := &stubRepo{msgs: []domain.ChatMessage{
		{Room: "R1", User: "U1", Time: time.Unix(1000, 0), Text: "a"},
		{Room: "R1", User: "U2", Time: time.Unix(2000, 0), Text: "b"},
		{Room: "R2", User: "U3", Time: time.Unix(1500, 0), Text: "other room"},
	}}

	entries, err := NewLoader(repo).Load(context.Background(), "R1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Load() returned %d entries, want 2", len(entries))
	}
	if entries[0].Text != "a" || entries[1].Text != "b" {
		t.Errorf("Load() = %+v, want messages a, b", entries)
	}
}

func TestLoader_EmptyHistoryMarshalsAsArray(t *testing.T) {
	entries, err := NewLoader(&stubRepo{}).Load(context.Background(), "R1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if entries == nil {
		t.Fatal("Load() = nil slice, want empty slice")
	}

	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Marshal() = %s, want []", data)
	}
}

func TestLoader_PropagatesStoreFailure(t *testing.T) {
	storeErr := errors.New("store unavailable")
	_, err := NewLoader(&stubRepo{err: storeErr}).Load(context.Background(), "R1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("Load() error = %v, want wrapped store failure", err)
	}
}
