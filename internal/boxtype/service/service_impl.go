package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	boxdomain "github.com/boxtrack/boxtrack/internal/boxtype/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  boxdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  boxdomain.Repository
	genID *snowflake.Node
}

func New(p Params) boxdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("boxtype.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID, req boxdomain.CreateRequest) (*boxdomain.Response, error) {
	if userID == 0 {
		return nil, boxdomain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, boxdomain.ErrInvalidName
	}

	quantity := int64(0)
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, boxdomain.ErrInvalidQuantity
		}
		quantity = *req.Quantity
	}

	cost := decimal.Zero
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, boxdomain.ErrInvalidCost
		}
		cost = *req.Cost
	}

	threshold := boxdomain.DefaultMinThreshold
	if req.MinThreshold != nil {
		if *req.MinThreshold < 0 {
			return nil, boxdomain.ErrInvalidThreshold
		}
		threshold = *req.MinThreshold
	}

	now := time.Now().UTC()
	box := &boxdomain.BoxType{
		ID:           s.genID.Generate(),
		UserID:       userID,
		Name:         name,
		Quantity:     quantity,
		Cost:         cost,
		MinThreshold: threshold,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, box); err != nil {
		return nil, err
	}

	return toResponse(box), nil
}

func (s *Service) List(ctx context.Context, userID snowflake.ID) ([]boxdomain.Response, error) {
	if userID == 0 {
		return nil, boxdomain.ErrInvalidUser
	}

	items, err := s.repo.List(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]boxdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, userID snowflake.ID, id string) (*boxdomain.Response, error) {
	box, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(box), nil
}

func (s *Service) Update(ctx context.Context, userID snowflake.ID, req boxdomain.UpdateRequest) (*boxdomain.Response, error) {
	box, err := s.find(ctx, userID, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, boxdomain.ErrInvalidName
		}
		box.Name = name
	}

	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, boxdomain.ErrInvalidQuantity
		}
		box.Quantity = *req.Quantity
	}

	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, boxdomain.ErrInvalidCost
		}
		box.Cost = *req.Cost
	}

	if req.MinThreshold != nil {
		if *req.MinThreshold < 0 {
			return nil, boxdomain.ErrInvalidThreshold
		}
		box.MinThreshold = *req.MinThreshold
	}

	box.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, box); err != nil {
		return nil, err
	}

	return toResponse(box), nil
}

func (s *Service) Delete(ctx context.Context, userID snowflake.ID, id string) error {
	box, err := s.find(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, userID, box.ID)
}

func (s *Service) Restock(ctx context.Context, userID snowflake.ID, id string, quantity int64) (*boxdomain.Response, error) {
	if quantity <= 0 {
		return nil, boxdomain.ErrInvalidQuantity
	}

	box, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.IncrementQuantity(ctx, s.db, userID, box.ID, quantity, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, boxdomain.ErrNotFound
	}

	return s.GetByID(ctx, userID, id)
}

func (s *Service) find(ctx context.Context, userID snowflake.ID, id string) (*boxdomain.BoxType, error) {
	if userID == 0 {
		return nil, boxdomain.ErrInvalidUser
	}

	boxID, err := boxdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, boxdomain.ErrInvalidID
	}

	box, err := s.repo.FindByID(ctx, s.db, userID, boxID)
	if err != nil {
		return nil, err
	}
	if box == nil {
		return nil, boxdomain.ErrNotFound
	}
	return box, nil
}

func toResponse(box *boxdomain.BoxType) *boxdomain.Response {
	return &boxdomain.Response{
		ID:           box.ID.String(),
		Name:         box.Name,
		Quantity:     box.Quantity,
		Cost:         box.Cost,
		MinThreshold: box.MinThreshold,
		CreatedAt:    box.CreatedAt,
		UpdatedAt:    box.UpdatedAt,
	}
}
