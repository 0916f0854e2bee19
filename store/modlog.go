package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tppcore/modbot/automod"
	"github.com/tppcore/modbot/models"
)

type ModLogRepo struct {
	db *gorm.DB
}

var _ automod.ModLog = (*ModLogRepo)(nil)

func NewModLogRepo(db *gorm.DB) *ModLogRepo {
	return &ModLogRepo{db: db}
}

func (r *ModLogRepo) LogModAction(ctx context.Context, user models.User, reason, rule string, timestamp time.Time) (*models.ModLog, error) {
	entry := models.ModLog{
		UserID:    user.ID,
		Reason:    reason,
		Rule:      rule,
		Timestamp: timestamp.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("inserting mod log entry: %w", err)
	}
	return &entry, nil
}

// Number of mod log entries for the user at or after cutoff.
func (r *ModLogRepo) CountRecentBans(ctx context.Context, user models.User, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ModLog{}).
		Where("user_id = ? AND timestamp >= ?", user.ID, cutoff.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting recent mod log entries: %w", err)
	}
	return count, nil
}

// Most recent entries for a user, newest first.
func (r *ModLogRepo) RecentEntries(ctx context.Context, user models.User, limit int) ([]models.ModLog, error) {
	var entries []models.ModLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("listing mod log entries: %w", err)
	}
	return entries, nil
}
