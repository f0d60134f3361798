package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type DateTotal struct {
	Date      string `gorm:"column:date"`
	TotalUsed int64  `gorm:"column:total_used"`
}

type BoxTotal struct {
	BoxTypeID snowflake.ID `gorm:"column:box_type_id"`
	TotalUsed int64        `gorm:"column:total_used"`
}

type Repository interface {
	// TotalsByDate sums quantity_used per calendar date over [fromDate, toDate].
	TotalsByDate(ctx context.Context, db *gorm.DB, userID snowflake.ID, fromDate, toDate string) ([]DateTotal, error)
	// TotalsByBox sums quantity_used per box type since fromDate inclusive.
	TotalsByBox(ctx context.Context, db *gorm.DB, userID snowflake.ID, fromDate string) ([]BoxTotal, error)
}
