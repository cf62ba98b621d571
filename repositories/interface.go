package repositories

import "asp-server/entities"

type UserRepository interface {
	Create(user *entities.User) error
	GetByID(id string) (*entities.User, error)
	GetByUsername(username string) (*entities.User, error)
	UsernameOrEmailTaken(username, email string) (usernameTaken bool, emailTaken bool, err error)
	Update(user *entities.User) error
	DeleteCascade(id string) error
}

type RoomRepository interface {
	Create(room *entities.Room) error
	GetByID(id string) (*entities.Room, error)
	GetByOwnerID(ownerID string) ([]entities.Room, error)
	Update(room *entities.Room) error
	DeleteCascade(id string) error
}

type ASPRepository interface {
	Create(asp *entities.ASP) error
	GetByID(id string) (*entities.ASP, error)
	GetByRoomID(roomID string) ([]entities.ASP, error)
	Update(asp *entities.ASP) error
	Delete(id string) error
}
