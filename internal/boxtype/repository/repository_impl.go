package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	boxdomain "github.com/boxtrack/boxtrack/internal/boxtype/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() boxdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, box *boxdomain.BoxType) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO box_types (id, user_id, name, quantity, cost, min_threshold, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		box.ID,
		box.UserID,
		box.Name,
		box.Quantity,
		box.Cost,
		box.MinThreshold,
		box.CreatedAt,
		box.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, box *boxdomain.BoxType) error {
	return db.WithContext(ctx).Exec(
		`UPDATE box_types
		 SET name = ?, quantity = ?, cost = ?, min_threshold = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		box.Name,
		box.Quantity,
		box.Cost,
		box.MinThreshold,
		box.UpdatedAt,
		box.UserID,
		box.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM usage_events WHERE user_id = ? AND box_type_id = ?`,
			userID,
			id,
		).Error; err != nil {
			return err
		}
		return tx.Exec(
			`DELETE FROM box_types WHERE user_id = ? AND id = ?`,
			userID,
			id,
		).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*boxdomain.BoxType, error) {
	var box boxdomain.BoxType
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, quantity, cost, min_threshold, created_at, updated_at
		 FROM box_types WHERE user_id = ? AND id = ?`,
		userID,
		id,
	).Scan(&box).Error
	if err != nil {
		return nil, err
	}
	if box.ID == 0 {
		return nil, nil
	}
	return &box, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]boxdomain.BoxType, error) {
	var boxes []boxdomain.BoxType
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, quantity, cost, min_threshold, created_at, updated_at
		 FROM box_types WHERE user_id = ? ORDER BY created_at ASC`,
		userID,
	).Scan(&boxes).Error
	if err != nil {
		return nil, err
	}
	return boxes, nil
}

func (r *repo) DecrementQuantity(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, quantity int64, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE box_types
		 SET quantity = quantity - ?, updated_at = ?
		 WHERE user_id = ? AND id = ? AND quantity >= ?`,
		quantity,
		at,
		userID,
		id,
		quantity,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) IncrementQuantity(ctx context.Context, db *gorm.DB, userID, id snowflake.ID, quantity int64, at time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE box_types
		 SET quantity = quantity + ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		quantity,
		at,
		userID,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
