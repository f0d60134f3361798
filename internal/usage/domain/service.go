package domain

import (
	"context"
	"errors"
	"time"

	"github.com/boxtrack/boxtrack/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
)

const (
	// DateLayout is the calendar-day format carried on every usage event.
	DateLayout = "2006-01-02"

	DefaultListDays = 30
	MaxListDays     = 365
)

type Service interface {
	// Record applies each item independently. A failed item never rolls back
	// an applied sibling.
	Record(ctx context.Context, userID snowflake.ID, req RecordRequest) (*RecordResult, error)
	List(ctx context.Context, userID snowflake.ID, req ListRequest) (*ListResponse, error)
}

type RecordItem struct {
	BoxTypeID string         `json:"box_type_id"`
	Quantity  int64          `json:"quantity_used"`
	Date      string         `json:"date,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type RecordRequest struct {
	Items []RecordItem `json:"items"`
}

type RecordItemResult struct {
	Index   int       `json:"index"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Event   *Response `json:"event,omitempty"`
}

type RecordResult struct {
	Items     []RecordItemResult `json:"items"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

type ListRequest struct {
	Days       int `form:"days,default=30"`
	Pagination pagination.Pagination
}

type ListResponse struct {
	Events   []Response          `json:"events"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Response struct {
	ID           string         `json:"id"`
	BoxTypeID    string         `json:"box_type_id"`
	BoxName      string         `json:"box_name"`
	QuantityUsed int64          `json:"quantity_used"`
	Date         string         `json:"date"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

var (
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidDate       = errors.New("invalid_date")
	ErrInvalidDays       = errors.New("invalid_days")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidPageToken  = errors.New("invalid_page_token")
	ErrEmptyBatch        = errors.New("empty_batch")
	ErrBoxTypeNotFound   = errors.New("box_type_not_found")
	ErrInsufficientStock = errors.New("insufficient_stock")
)
