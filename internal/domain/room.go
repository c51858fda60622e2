package domain

import (
	"time"

	"github.com/shawarmaKoders/Hedwig/pkg/database"
)

// Room is a bounded chat context with one broadcast channel and an
// ordered message history.
type Room struct {
	ID            string               `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title         string               `gorm:"type:varchar(200);not null" json:"title"`
	Admin         string               `gorm:"type:varchar(36);index;not null" json:"admin"`
	Participants  database.StringArray `gorm:"type:text" json:"participants"`
	Active        bool                 `gorm:"index;not null;default:true" json:"active"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
	DeactivatedAt *time.Time           `json:"deactivated_at,omitempty"`
}

// TableName specifies the table name for Room.
func (Room) TableName() string {
	return "chat_rooms"
}

// CreateRoomRequest is the create-room API payload.
type CreateRoomRequest struct {
	Title        string   `json:"title" binding:"required,min=1,max=200"`
	Admin        string   `json:"admin" binding:"required"`
	Participants []string `json:"participants"`
	Active       *bool    `json:"active"`
}

// ListRoomsResponse is a paginated room list.
type ListRoomsResponse struct {
	Rooms    []Room `json:"rooms"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}
