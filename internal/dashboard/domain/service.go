package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Stats(ctx context.Context, userID snowflake.ID) (*Stats, error)
}

type LowStockBox struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Quantity     int64  `json:"quantity"`
	MinThreshold int64  `json:"min_threshold"`
}

type Stats struct {
	TotalBoxTypes  int             `json:"total_box_types"`
	TotalInventory int64           `json:"total_inventory"`
	TotalValue     decimal.Decimal `json:"total_value"`
	LowStockBoxes  []LowStockBox   `json:"low_stock_boxes"`
	LowStockCount  int             `json:"low_stock_count"`
}

var ErrInvalidUser = errors.New("invalid_user")
