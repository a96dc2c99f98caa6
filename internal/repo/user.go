package repo

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/menushare/internal/models"
)

// UpsertUser inserts u or overwrites display name and avatar of the existing row.
func (r *GormRepo) UpsertUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "avatar_url"}),
	}).Create(u).Error
	return classify(err)
}

func (r *GormRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
