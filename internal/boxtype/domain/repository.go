package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, box *BoxType) error
	Update(ctx context.Context, db *gorm.DB, box *BoxType) error
	// Delete removes the box type and its usage events in one transaction.
	Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*BoxType, error)
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]BoxType, error)

	// DecrementQuantity applies a conditional decrement and reports whether a
	// row was updated. Zero rows means the box is missing or the remaining
	// quantity is below the requested amount.
	DecrementQuantity(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, quantity int64, at time.Time) (bool, error)
	IncrementQuantity(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, quantity int64, at time.Time) (bool, error)
}
