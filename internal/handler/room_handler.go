package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shawarmaKoders/Hedwig/internal/domain"
	"github.com/shawarmaKoders/Hedwig/internal/repository"
	"github.com/shawarmaKoders/Hedwig/pkg/database"
	"github.com/shawarmaKoders/Hedwig/pkg/response"
)

// RoomHandler serves the room lifecycle API.
type RoomHandler struct {
	rooms repository.RoomRepository
}

func NewRoomHandler(rooms repository.RoomRepository) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

func (h *RoomHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/chat-room/create", h.CreateRoom)
	r.GET("/chat-room/:room_id", h.GetRoom)
	r.GET("/chat-rooms", h.ListRooms)
	r.POST("/chat-room/:room_id/deactivate", h.DeactivateRoom)
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req domain.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	room := domain.Room{
		Title:        req.Title,
		Admin:        req.Admin,
		Participants: database.StringArray(req.Participants),
		Active:       active,
	}
	if err := h.rooms.Create(c.Request.Context(), &room); err != nil {
		response.InternalError(c, "failed to create room")
		return
	}

	response.Created(c, room)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.rooms.GetByID(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		response.InternalError(c, "failed to get room")
		return
	}

	response.Success(c, room)
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	activeOnly := c.DefaultQuery("active", "") == "true"

	rooms, total, err := h.rooms.List(c.Request.Context(), page, pageSize, activeOnly)
	if err != nil {
		response.InternalError(c, "failed to list rooms")
		return
	}

	response.Success(c, domain.ListRoomsResponse{
		Rooms:    rooms,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *RoomHandler) DeactivateRoom(c *gin.Context) {
	if err := h.rooms.Deactivate(c.Request.Context(), c.Param("room_id")); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		response.InternalError(c, "failed to deactivate room")
		return
	}

	response.Success(c, gin.H{"deactivated": true})
}
