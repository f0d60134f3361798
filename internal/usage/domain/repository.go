package domain

import (
	"context"
	"time"

	"github.com/boxtrack/boxtrack/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *UsageEvent) error
	// List returns up to limit+1 rows recorded at or after since, newest
	// first. The extra row signals another page.
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, since time.Time, cursor *pagination.Cursor, limit int) ([]*UsageEvent, error)
}
