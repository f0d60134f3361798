package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BoxType defines a kind of box tracked in inventory.
type BoxType struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	UserID       snowflake.ID    `json:"user_id" gorm:"column:user_id;not null;index:ix_box_types_user"`
	Name         string          `json:"name" gorm:"type:text;not null"`
	Quantity     int64           `json:"quantity" gorm:"not null;default:0"`
	Cost         decimal.Decimal `json:"cost" gorm:"type:numeric(12,2);not null;default:0"`
	MinThreshold int64           `json:"min_threshold" gorm:"not null;default:10"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BoxType) TableName() string { return "box_types" }
