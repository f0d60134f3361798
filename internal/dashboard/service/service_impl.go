package service

import (
	"context"

	boxdomain "github.com/boxtrack/boxtrack/internal/boxtype/domain"
	dashboarddomain "github.com/boxtrack/boxtrack/internal/dashboard/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	BoxRepo boxdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	boxRepo boxdomain.Repository
}

func New(p Params) dashboarddomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("dashboard.service"),
		boxRepo: p.BoxRepo,
	}
}

func (s *Service) Stats(ctx context.Context, userID snowflake.ID) (*dashboarddomain.Stats, error) {
	if userID == 0 {
		return nil, dashboarddomain.ErrInvalidUser
	}

	boxes, err := s.boxRepo.List(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	stats := &dashboarddomain.Stats{
		TotalBoxTypes: len(boxes),
		TotalValue:    decimal.Zero,
		LowStockBoxes: make([]dashboarddomain.LowStockBox, 0),
	}
	for i := range boxes {
		box := &boxes[i]
		stats.TotalInventory += box.Quantity
		stats.TotalValue = stats.TotalValue.Add(box.Cost.Mul(decimal.NewFromInt(box.Quantity)))

		if box.Quantity <= box.MinThreshold {
			stats.LowStockBoxes = append(stats.LowStockBoxes, dashboarddomain.LowStockBox{
				ID:           box.ID.String(),
				Name:         box.Name,
				Quantity:     box.Quantity,
				MinThreshold: box.MinThreshold,
			})
		}
	}
	stats.TotalValue = stats.TotalValue.Round(2)
	stats.LowStockCount = len(stats.LowStockBoxes)

	return stats, nil
}
