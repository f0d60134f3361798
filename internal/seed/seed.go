package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	authdomain "github.com/boxtrack/boxtrack/internal/auth/domain"
	authservice "github.com/boxtrack/boxtrack/internal/auth/service"
	"github.com/boxtrack/boxtrack/internal/config"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnsureDefaultUser seeds the bootstrap account for self-hosted deployments.
// It is idempotent; an existing account is left untouched.
func EnsureDefaultUser(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Bootstrap.DefaultUserEmail))
	if email == "" {
		return errors.New("bootstrap user email is required")
	}
	if strings.TrimSpace(cfg.Bootstrap.DefaultUserPassword) == "" {
		return errors.New("bootstrap user password is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing authdomain.User
		err := tx.Where("email = ?", email).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := authservice.HashPassword(cfg.Bootstrap.DefaultUserPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user := authdomain.User{
			ID:                  node.Generate(),
			ExternalID:          uuid.NewString(),
			Email:               email,
			DisplayName:         "Admin",
			PasswordHash:        &hashed,
			LastPasswordChanged: &now,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		return tx.Create(&user).Error
	})
}
