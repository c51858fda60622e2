package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shawarmaKoders/Hedwig/internal/domain"
	"github.com/shawarmaKoders/Hedwig/internal/history"
	"github.com/shawarmaKoders/Hedwig/internal/repository"
	"github.com/shawarmaKoders/Hedwig/pkg/database"
	"github.com/shawarmaKoders/Hedwig/pkg/response"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.GormRoomRepository, *repository.GormMessageRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(&database.Config{Driver: "sqlite", FilePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db, &domain.Room{}, &domain.ChatMessage{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	rooms := repository.NewGormRoomRepository(db)
	messages := repository.NewGormMessageRepository(db)

	r := gin.New()
	NewRoomHandler(rooms).RegisterRoutes(r)
	NewHistoryHandler(history.NewLoader(messages)).RegisterRoutes(r)
	return r, rooms, messages
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not a JSON envelope: %v (%s)", err, w.Body.String())
	}
	return w, resp
}

func TestRoomHandler_CreateAndGet(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/chat-room/create",
		`{"title": "general", "admin": "U1", "participants": ["U1", "U2"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}
	if !resp.Success {
		t.Fatalf("create response not successful: %+v", resp.Error)
	}

	data, _ := json.Marshal(resp.Data)
	var room domain.Room
	if err := json.Unmarshal(data, &room); err != nil {
		t.Fatalf("create response data: %v", err)
	}
	if room.ID == "" || !room.Active {
		t.Fatalf("created room = %+v, want active room with id", room)
	}

	w, resp = doJSON(t, r, http.MethodGet, "/chat-room/"+room.ID, "")
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("get status = %d success = %v, want 200 true", w.Code, resp.Success)
	}
}

func TestRoomHandler_CreateValidation(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"admin": "U1"}`},
		{"missing admin", `{"title": "general"}`},
		{"not json", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := doJSON(t, r, http.MethodPost, "/chat-room/create", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestRoomHandler_Deactivate(t *testing.T) {
	r, rooms, _ := newTestRouter(t)

	room := domain.Room{Title: "general", Admin: "U1", Active: true}
	if err := rooms.Create(httptest.NewRequest("GET", "/", nil).Context(), &room); err != nil {
		t.Fatalf("seed room: %v", err)
	}

	w, _ := doJSON(t, r, http.MethodPost, "/chat-room/"+room.ID+"/deactivate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("deactivate status = %d, want 200", w.Code)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/chat-room/ghost/deactivate", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("deactivate missing room status = %d, want 404", w.Code)
	}
}

func TestHistoryHandler_GetMessages(t *testing.T) {
	r, _, messages := newTestRouter(t)

	ctx := httptest.NewRequest("GET", "/", nil).Context()
	seed := []domain.ChatMessage{
		{Room: "R1", User: "U1", Time: time.Unix(2000, 0), Text: "second"},
		{Room: "R1", User: "U1", Time: time.Unix(1000, 0), Text: "first"},
	}
	for i := range seed {
		if err := messages.Append(ctx, &seed[i]); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	w, resp := doJSON(t, r, http.MethodGet, "/chat-room/R1/messages", "")
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("history status = %d success = %v, want 200 true", w.Code, resp.Success)
	}

	data, _ := json.Marshal(resp.Data)
	var entries []domain.MessagePayload
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("history data: %v", err)
	}
	if len(entries) != 2 || entries[0].Text != "first" || entries[1].Text != "second" {
		t.Errorf("history = %+v, want first then second", entries)
	}
}
