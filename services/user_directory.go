package services

import (
	"context"
	"errors"

	"hostel-complaint-api/config"
	"hostel-complaint-api/models"

	"gorm.io/gorm"
)

// UserDirectory resolves user profiles and the current admin set.
type UserDirectory interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	AdminIDs(ctx context.Context) ([]string, error)
}

type GormUserDirectory struct {
	db *gorm.DB
}

func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	if db == nil {
		db = config.DB
	}
	return &GormUserDirectory{db: db}
}

func (d *GormUserDirectory) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dependencyError("load user", err)
	}
	return &user, nil
}

func (d *GormUserDirectory) AdminIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, dependencyError("list admins", err)
	}
	return ids, nil
}
