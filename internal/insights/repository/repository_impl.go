package repository

import (
	"context"

	insightsdomain "github.com/boxtrack/boxtrack/internal/insights/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() insightsdomain.Repository {
	return &repo{}
}

func (r *repo) TotalsByDate(ctx context.Context, db *gorm.DB, userID snowflake.ID, fromDate, toDate string) ([]insightsdomain.DateTotal, error) {
	var totals []insightsdomain.DateTotal
	err := db.WithContext(ctx).Raw(
		`SELECT date, SUM(quantity_used) AS total_used
		 FROM usage_events
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 GROUP BY date`,
		userID,
		fromDate,
		toDate,
	).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *repo) TotalsByBox(ctx context.Context, db *gorm.DB, userID snowflake.ID, fromDate string) ([]insightsdomain.BoxTotal, error) {
	var totals []insightsdomain.BoxTotal
	err := db.WithContext(ctx).Raw(
		`SELECT box_type_id, SUM(quantity_used) AS total_used
		 FROM usage_events
		 WHERE user_id = ? AND date >= ?
		 GROUP BY box_type_id`,
		userID,
		fromDate,
	).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
