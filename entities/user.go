package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns rooms; rooms own ASPs. Ownership is resolved through
// Room.OwnerID rather than a room list embedded on the user.
type User struct {
	ID           string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FullName     string `gorm:"not null" json:"full_name"`
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	u.CreatedAt = now
	u.UpdatedAt = now
	return
}
