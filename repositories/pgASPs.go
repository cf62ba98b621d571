package repositories

import (
	"time"

	"asp-server/db"
	"asp-server/entities"
)

type aspPgRepository struct {
	db db.Database
}

func NewASPPgRepository(database db.Database) ASPRepository {
	return &aspPgRepository{db: database}
}

func (r *aspPgRepository) Create(asp *entities.ASP) error {
	return r.db.GetDB().Create(asp).Error
}

func (r *aspPgRepository) GetByID(id string) (*entities.ASP, error) {
	var asp entities.ASP
	err := r.db.GetDB().Where("id = ?", id).First(&asp).Error
	if err != nil {
		return nil, err
	}
	return &asp, nil
}

func (r *aspPgRepository) GetByRoomID(roomID string) ([]entities.ASP, error) {
	var asps []entities.ASP
	err := r.db.GetDB().Where("room_id = ?", roomID).Order("created_at").Find(&asps).Error
	return asps, err
}

func (r *aspPgRepository) Update(asp *entities.ASP) error {
	asp.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return r.db.GetDB().Save(asp).Error
}

func (r *aspPgRepository) Delete(id string) error {
	return r.db.GetDB().Where("id = ?", id).Delete(&entities.ASP{}).Error
}
