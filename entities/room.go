package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room groups ASPs under a single owner. OwnerID is set at creation
// and never updated afterwards.
type Room struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RoomTitle string `gorm:"not null" json:"room_title"`
	OwnerID   string `gorm:"index;type:varchar(36);not null" json:"owner_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	r.CreatedAt = now
	r.UpdatedAt = now
	return
}
