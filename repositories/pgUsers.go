package repositories

import (
	"time"

	"asp-server/db"
	"asp-server/entities"

	"gorm.io/gorm"
)

type userPgRepository struct {
	db db.Database
}

func NewUserPgRepository(database db.Database) UserRepository {
	return &userPgRepository{db: database}
}

func (r *userPgRepository) Create(user *entities.User) error {
	return r.db.GetDB().Create(user).Error
}

func (r *userPgRepository) GetByID(id string) (*entities.User, error) {
	var user entities.User
	err := r.db.GetDB().Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userPgRepository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.GetDB().Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userPgRepository) UsernameOrEmailTaken(username, email string) (bool, bool, error) {
	var count int64
	if err := r.db.GetDB().Model(&entities.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, false, err
	}
	usernameTaken := count > 0

	if err := r.db.GetDB().Model(&entities.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return usernameTaken, false, err
	}
	return usernameTaken, count > 0, nil
}

func (r *userPgRepository) Update(user *entities.User) error {
	user.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return r.db.GetDB().Save(user).Error
}

// DeleteCascade removes the user, every room they own and every ASP in
// those rooms, all in one transaction.
func (r *userPgRepository) DeleteCascade(id string) error {
	return r.db.GetDB().Transaction(func(tx *gorm.DB) error {
		var roomIDs []string
		if err := tx.Model(&entities.Room{}).Where("owner_id = ?", id).Pluck("id", &roomIDs).Error; err != nil {
			return err
		}
		if len(roomIDs) > 0 {
			if err := tx.Where("room_id IN ?", roomIDs).Delete(&entities.ASP{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", roomIDs).Delete(&entities.Room{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&entities.User{}).Error
	})
}
