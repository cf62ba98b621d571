package repositories

import (
	"time"

	"asp-server/db"
	"asp-server/entities"

	"gorm.io/gorm"
)

type roomPgRepository struct {
	db db.Database
}

func NewRoomPgRepository(database db.Database) RoomRepository {
	return &roomPgRepository{db: database}
}

func (r *roomPgRepository) Create(room *entities.Room) error {
	return r.db.GetDB().Create(room).Error
}

func (r *roomPgRepository) GetByID(id string) (*entities.Room, error) {
	var room entities.Room
	err := r.db.GetDB().Where("id = ?", id).First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomPgRepository) GetByOwnerID(ownerID string) ([]entities.Room, error) {
	var rooms []entities.Room
	err := r.db.GetDB().Where("owner_id = ?", ownerID).Order("created_at").Find(&rooms).Error
	return rooms, err
}

func (r *roomPgRepository) Update(room *entities.Room) error {
	room.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return r.db.GetDB().Save(room).Error
}

// DeleteCascade removes the room and its member ASPs in one
// transaction, so no orphaned ASP stays reachable.
func (r *roomPgRepository) DeleteCascade(id string) error {
	return r.db.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&entities.ASP{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Room{}).Error
	})
}
