package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const DefaultMinThreshold int64 = 10

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateRequest) (*Response, error)
	List(ctx context.Context, userID snowflake.ID) ([]Response, error)
	GetByID(ctx context.Context, userID snowflake.ID, id string) (*Response, error)
	Update(ctx context.Context, userID snowflake.ID, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, userID snowflake.ID, id string) error
	Restock(ctx context.Context, userID snowflake.ID, id string, quantity int64) (*Response, error)
}

type CreateRequest struct {
	Name         string           `json:"name"`
	Quantity     *int64           `json:"quantity"`
	Cost         *decimal.Decimal `json:"cost"`
	MinThreshold *int64           `json:"min_threshold"`
}

type UpdateRequest struct {
	ID           string           `json:"id"`
	Name         *string          `json:"name,omitempty"`
	Quantity     *int64           `json:"quantity,omitempty"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	MinThreshold *int64           `json:"min_threshold,omitempty"`
}

type RestockRequest struct {
	Quantity int64 `json:"quantity"`
}

type Response struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Quantity     int64           `json:"quantity"`
	Cost         decimal.Decimal `json:"cost"`
	MinThreshold int64           `json:"min_threshold"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

var (
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidCost       = errors.New("invalid_cost")
	ErrInvalidThreshold  = errors.New("invalid_min_threshold")
	ErrNotFound          = errors.New("box_type_not_found")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInsufficientStock = errors.New("insufficient_stock")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
