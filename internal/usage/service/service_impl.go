package service

import (
	"context"
	"errors"
	"strings"
	"time"

	boxdomain "github.com/boxtrack/boxtrack/internal/boxtype/domain"
	usagedomain "github.com/boxtrack/boxtrack/internal/usage/domain"
	"github.com/boxtrack/boxtrack/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    usagedomain.Repository
	BoxRepo boxdomain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    usagedomain.Repository
	boxRepo boxdomain.Repository
	genID   *snowflake.Node
}

func New(p Params) usagedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("usage.service"),
		repo:    p.Repo,
		boxRepo: p.BoxRepo,
		genID:   p.GenID,
	}
}

func (s *Service) Record(ctx context.Context, userID snowflake.ID, req usagedomain.RecordRequest) (*usagedomain.RecordResult, error) {
	if userID == 0 {
		return nil, usagedomain.ErrInvalidUser
	}
	if len(req.Items) == 0 {
		return nil, usagedomain.ErrEmptyBatch
	}

	result := &usagedomain.RecordResult{
		Items: make([]usagedomain.RecordItemResult, 0, len(req.Items)),
	}
	for i, item := range req.Items {
		event, err := s.recordOne(ctx, userID, item)
		if err != nil {
			result.Failed++
			result.Items = append(result.Items, usagedomain.RecordItemResult{
				Index: i,
				Error: errorCode(err),
			})
			continue
		}
		result.Succeeded++
		result.Items = append(result.Items, usagedomain.RecordItemResult{
			Index:   i,
			Success: true,
			Event:   toResponse(event),
		})
	}

	return result, nil
}

func (s *Service) recordOne(ctx context.Context, userID snowflake.ID, item usagedomain.RecordItem) (*usagedomain.UsageEvent, error) {
	if item.Quantity <= 0 {
		return nil, usagedomain.ErrInvalidQuantity
	}

	boxID, err := snowflake.ParseString(strings.TrimSpace(item.BoxTypeID))
	if err != nil {
		return nil, usagedomain.ErrInvalidID
	}

	now := time.Now().UTC()
	date := strings.TrimSpace(item.Date)
	if date == "" {
		date = now.Format(usagedomain.DateLayout)
	} else if _, err := time.Parse(usagedomain.DateLayout, date); err != nil {
		return nil, usagedomain.ErrInvalidDate
	}

	var event *usagedomain.UsageEvent
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		box, err := s.boxRepo.FindByID(ctx, tx, userID, boxID)
		if err != nil {
			return err
		}
		if box == nil {
			return usagedomain.ErrBoxTypeNotFound
		}

		applied, err := s.boxRepo.DecrementQuantity(ctx, tx, userID, boxID, item.Quantity, now)
		if err != nil {
			return err
		}
		if !applied {
			return usagedomain.ErrInsufficientStock
		}

		event = &usagedomain.UsageEvent{
			ID:           s.genID.Generate(),
			UserID:       userID,
			BoxTypeID:    boxID,
			BoxName:      box.Name,
			QuantityUsed: item.Quantity,
			Date:         date,
			Metadata:     datatypes.JSONMap(item.Metadata),
			CreatedAt:    now,
		}
		return s.repo.Insert(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("usage recorded",
		zap.String("box_type_id", boxID.String()),
		zap.Int64("quantity_used", item.Quantity),
	)
	return event, nil
}

func (s *Service) List(ctx context.Context, userID snowflake.ID, req usagedomain.ListRequest) (*usagedomain.ListResponse, error) {
	if userID == 0 {
		return nil, usagedomain.ErrInvalidUser
	}

	days := req.Days
	if days == 0 {
		days = usagedomain.DefaultListDays
	}
	if days < 1 || days > usagedomain.MaxListDays {
		return nil, usagedomain.ErrInvalidDays
	}

	limit := req.Pagination.PageSize
	if limit <= 0 {
		limit = 50
	}

	var cursor *pagination.Cursor
	if token := strings.TrimSpace(req.Pagination.PageToken); token != "" {
		decoded, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, usagedomain.ErrInvalidPageToken
		}
		cursor = decoded
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	events, err := s.repo.List(ctx, s.db, userID, since, cursor, limit)
	if err != nil {
		return nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(events, limit, func(e *usagedomain.UsageEvent) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        e.ID.String(),
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(events) > limit {
		events = events[:limit]
	}

	resp := &usagedomain.ListResponse{
		Events:   make([]usagedomain.Response, 0, len(events)),
		PageInfo: *pageInfo,
	}
	for _, e := range events {
		resp.Events = append(resp.Events, *toResponse(e))
	}
	return resp, nil
}

func errorCode(err error) string {
	for _, known := range []error{
		usagedomain.ErrInvalidQuantity,
		usagedomain.ErrInvalidDate,
		usagedomain.ErrInvalidID,
		usagedomain.ErrBoxTypeNotFound,
		usagedomain.ErrInsufficientStock,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal_error"
}

func toResponse(e *usagedomain.UsageEvent) *usagedomain.Response {
	return &usagedomain.Response{
		ID:           e.ID.String(),
		BoxTypeID:    e.BoxTypeID.String(),
		BoxName:      e.BoxName,
		QuantityUsed: e.QuantityUsed,
		Date:         e.Date,
		Metadata:     map[string]any(e.Metadata),
		CreatedAt:    e.CreatedAt,
	}
}
