package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tppcore/modbot/chat"
	"github.com/tppcore/modbot/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	db *gorm.DB
}

var _ chat.UserRecorder = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Inserts or updates a user from observed attributes and returns the stored row. The
// first-seen timestamp is only ever set on insert.
func (r *UserRepo) RecordUser(ctx context.Context, info models.UserInfo) (models.User, error) {
	user := models.User{
		ID:            info.ID,
		SimpleName:    info.SimpleName,
		DisplayName:   info.DisplayName,
		Color:         info.Color,
		FirstActiveAt: info.UpdatedAt,
		LastUpdatedAt: info.UpdatedAt,
	}
	updates := []string{"simple_name", "display_name", "color", "last_updated_at"}
	if info.FromMessage {
		ts := info.UpdatedAt
		user.LastActiveAt = &ts
		user.LastMessageAt = &ts
		updates = append(updates, "last_active_at", "last_message_at")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).Create(&user)
		if res.Error != nil {
			return res.Error
		}
		return tx.First(&user, "id = ?", info.ID).Error
	})
	if err != nil {
		return models.User{}, fmt.Errorf("recording user %s: %w", info.ID, err)
	}
	return user, nil
}

func (r *UserRepo) GetUser(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("fetching user %s: %w", id, err)
	}
	return user, nil
}

// Most recently updated user with the given login. Logins can be re-used after a rename,
// so more than one row may match.
func (r *UserRepo) GetUserBySimpleName(ctx context.Context, simpleName string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("simple_name = ?", simpleName).
		Order("last_updated_at DESC").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("fetching user %s: %w", simpleName, err)
	}
	return user, nil
}
