package service

import (
	"context"
	"math"
	"time"

	boxdomain "github.com/boxtrack/boxtrack/internal/boxtype/domain"
	"github.com/boxtrack/boxtrack/internal/config"
	insightsdomain "github.com/boxtrack/boxtrack/internal/insights/domain"
	usagedomain "github.com/boxtrack/boxtrack/internal/usage/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    insightsdomain.Repository
	BoxRepo boxdomain.Repository
	Policy  *config.InsightsConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    insightsdomain.Repository
	boxRepo boxdomain.Repository
	policy  *config.InsightsConfigHolder
}

func New(p Params) insightsdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("insights.service"),
		repo:    p.Repo,
		boxRepo: p.BoxRepo,
		policy:  p.Policy,
	}
}

func (s *Service) Trend(ctx context.Context, userID snowflake.ID, days int) (*insightsdomain.TrendResponse, error) {
	if userID == 0 {
		return nil, insightsdomain.ErrInvalidUser
	}
	if !validTrendWindow(days) {
		return nil, insightsdomain.ErrInvalidDays
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))

	totals, err := s.repo.TotalsByDate(ctx, s.db, userID,
		from.Format(usagedomain.DateLayout),
		today.Format(usagedomain.DateLayout),
	)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int64, len(totals))
	for _, t := range totals {
		byDate[t.Date] = t.TotalUsed
	}

	points := make([]insightsdomain.TrendPoint, 0, days)
	for d := from; !d.After(today); d = d.AddDate(0, 0, 1) {
		date := d.Format(usagedomain.DateLayout)
		points = append(points, insightsdomain.TrendPoint{
			Date:      date,
			TotalUsed: byDate[date],
		})
	}

	return &insightsdomain.TrendResponse{Days: days, Points: points}, nil
}

func (s *Service) Predictions(ctx context.Context, userID snowflake.ID) (*insightsdomain.PredictionsResponse, error) {
	if userID == 0 {
		return nil, insightsdomain.ErrInvalidUser
	}

	policy := s.policy.Get()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(policy.LookbackDays - 1))

	boxes, err := s.boxRepo.List(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.TotalsByBox(ctx, s.db, userID, from.Format(usagedomain.DateLayout))
	if err != nil {
		return nil, err
	}
	usedByBox := make(map[snowflake.ID]int64, len(totals))
	for _, t := range totals {
		usedByBox[t.BoxTypeID] = t.TotalUsed
	}

	predictions := make([]insightsdomain.Prediction, 0, len(boxes))
	for i := range boxes {
		predictions = append(predictions, predict(&boxes[i], usedByBox[boxes[i].ID], policy))
	}

	return &insightsdomain.PredictionsResponse{
		LookbackDays: policy.LookbackDays,
		Predictions:  predictions,
	}, nil
}

func predict(box *boxdomain.BoxType, totalUsed int64, policy config.InsightsConfig) insightsdomain.Prediction {
	avg := round2(float64(totalUsed) / float64(policy.LookbackDays))

	p := insightsdomain.Prediction{
		BoxTypeID:     box.ID.String(),
		BoxName:       box.Name,
		Quantity:      box.Quantity,
		MinThreshold:  box.MinThreshold,
		AvgDailyUsage: avg,
		Status:        insightsdomain.StatusNormal,
	}

	if avg > 0 {
		empty := round2(float64(box.Quantity) / avg)
		p.DaysUntilEmpty = &empty
		// A non-positive projection means the threshold is already breached;
		// the field stays null and status alone carries the signal.
		if reorder := round2(float64(box.Quantity-box.MinThreshold) / avg); reorder > 0 {
			p.DaysUntilReorder = &reorder
		}
	}

	switch {
	case box.Quantity <= box.MinThreshold:
		p.Status = insightsdomain.StatusCritical
	case p.DaysUntilReorder != nil && *p.DaysUntilReorder < float64(policy.WarningCutoffDays):
		p.Status = insightsdomain.StatusWarning
	}

	return p
}

func validTrendWindow(days int) bool {
	for _, w := range insightsdomain.TrendWindows {
		if days == w {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
