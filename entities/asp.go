package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultState is the state an ASP starts in when none is supplied.
const DefaultState = "off"

// ASP is one controllable endpoint: a name and a free-form state
// string ("on"/"off" by convention, but not enforced).
type ASP struct {
	ID         string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DeviceName string `gorm:"not null" json:"device_name"`
	State      string `gorm:"not null" json:"state"`
	RoomID     string `gorm:"index;type:varchar(36);not null" json:"room_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func (a *ASP) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.State == "" {
		a.State = DefaultState
	}
	now := time.Now().UTC().Format(time.RFC3339)
	a.CreatedAt = now
	a.UpdatedAt = now
	return
}
