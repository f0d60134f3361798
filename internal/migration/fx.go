package migration

import (
	authdomain "github.com/boxtrack/boxtrack/internal/auth/domain"
	boxdomain "github.com/boxtrack/boxtrack/internal/boxtype/domain"
	"github.com/boxtrack/boxtrack/internal/config"
	"github.com/boxtrack/boxtrack/internal/seed"
	usagedomain "github.com/boxtrack/boxtrack/internal/usage/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql rely on schema inference.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&boxdomain.BoxType{},
				&usagedomain.UsageEvent{},
			); err != nil {
				return err
			}
		}

		if cfg.Bootstrap.EnsureDefaultUser {
			return seed.EnsureDefaultUser(conn, cfg)
		}
		return nil
	}),
)
