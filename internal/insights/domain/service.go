package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusCritical = "critical"
	StatusWarning  = "warning"
	StatusNormal   = "normal"
)

// TrendWindows lists the accepted trend window sizes in days.
var TrendWindows = []int{7, 14, 30}

type Service interface {
	// Trend returns exactly days points covering [today-days+1, today] UTC,
	// zero-filled and chronological.
	Trend(ctx context.Context, userID snowflake.ID, days int) (*TrendResponse, error)
	Predictions(ctx context.Context, userID snowflake.ID) (*PredictionsResponse, error)
}

type TrendPoint struct {
	Date      string `json:"date"`
	TotalUsed int64  `json:"total_used"`
}

type TrendResponse struct {
	Days   int          `json:"days"`
	Points []TrendPoint `json:"points"`
}

// Prediction projects when a box type runs out. Rates divide by the lookback
// window; null rate fields mean no usage was observed in the window.
type Prediction struct {
	BoxTypeID        string   `json:"box_type_id"`
	BoxName          string   `json:"box_name"`
	Quantity         int64    `json:"quantity"`
	MinThreshold     int64    `json:"min_threshold"`
	AvgDailyUsage    float64  `json:"avg_daily_usage"`
	DaysUntilEmpty   *float64 `json:"days_until_empty"`
	DaysUntilReorder *float64 `json:"days_until_reorder"`
	Status           string   `json:"status"`
}

type PredictionsResponse struct {
	LookbackDays int          `json:"lookback_days"`
	Predictions  []Prediction `json:"predictions"`
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrInvalidDays = errors.New("invalid_days")
)
