package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// UsageEvent is an immutable record of stock leaving a box type. BoxName is a
// snapshot of the box type name at record time so history survives renames.
type UsageEvent struct {
	ID           snowflake.ID      `json:"id" gorm:"primaryKey"`
	UserID       snowflake.ID      `json:"user_id" gorm:"column:user_id;not null;index:ix_usage_events_user_created"`
	BoxTypeID    snowflake.ID      `json:"box_type_id" gorm:"not null;index:ix_usage_events_box"`
	BoxName      string            `json:"box_name" gorm:"type:text;not null"`
	QuantityUsed int64             `json:"quantity_used" gorm:"not null"`
	Date         string            `json:"date" gorm:"type:text;not null;index:ix_usage_events_date"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_usage_events_user_created"`
}

// TableName sets the database table name.
func (UsageEvent) TableName() string { return "usage_events" }
