package repository

import (
	"context"
	"time"

	usagedomain "github.com/boxtrack/boxtrack/internal/usage/domain"
	"github.com/boxtrack/boxtrack/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() usagedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *usagedomain.UsageEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, since time.Time, cursor *pagination.Cursor, limit int) ([]*usagedomain.UsageEvent, error) {
	q := db.WithContext(ctx).
		Model(&usagedomain.UsageEvent{}).
		Where("user_id = ? AND created_at >= ?", userID, since)

	if cursor != nil {
		cursorID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, usagedomain.ErrInvalidPageToken
		}
		cursorAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, usagedomain.ErrInvalidPageToken
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", cursorAt, cursorAt, cursorID)
	}

	var events []*usagedomain.UsageEvent
	err := q.Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
