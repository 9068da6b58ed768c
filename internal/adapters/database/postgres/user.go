package postgres

import (
	"context"
	"time"

	"github.com/campusevents/backend/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStorage struct {
	db *gorm.DB
}

func NewUserStorage(db *gorm.DB) *UserStorage {
	return &UserStorage{
		db: db,
	}
}

// Ensure inserts the user unless a row with the same id exists and returns the stored row.
func (s *UserStorage) Ensure(ctx context.Context, user *entity.User) (*entity.User, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(user).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, user.ID)
}

// Get loads the user by id.
func (s *UserStorage) Get(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return &user, err
}

// GetAll returns every user, newest first.
func (s *UserStorage) GetAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

// SetBanned sets or clears the ban flag together with its metadata.
// It returns the number of matched rows.
func (s *UserStorage) SetBanned(ctx context.Context, id string, banned bool, by *string, reason *string, at time.Time) (int64, error) {
	updates := map[string]interface{}{
		"is_banned":  banned,
		"banned_at":  nil,
		"banned_by":  nil,
		"ban_reason": nil,
		"updated_at": at,
	}
	if banned {
		updates["banned_at"] = at
		updates["banned_by"] = by
		updates["ban_reason"] = reason
	}

	result := s.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected, result.Error
}

// SetAdmin sets the admin flag and returns the number of matched rows.
func (s *UserStorage) SetAdmin(ctx context.Context, id string, admin bool) (int64, error) {
	result := s.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_admin": admin, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

// Count returns the number of users.
func (s *UserStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error
	return count, err
}

func (s *UserStorage) CountBanned(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.User{}).Where("is_banned = ?", true).Count(&count).Error
	return count, err
}

func (s *UserStorage) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.User{}).Where("is_admin = ?", true).Count(&count).Error
	return count, err
}
