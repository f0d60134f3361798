package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	usagedomain "github.com/boxtrack/boxtrack/internal/usage/domain"
	"github.com/boxtrack/boxtrack/pkg/db/pagination"
)

const defaultTrendDays = 14

// RecordUsage accepts either a single usage item or a batch. A single item
// reports its failure through the error taxonomy; a batch always answers 200
// with per-item results so one bad item never hides the applied siblings.
func (s *Server) RecordUsage(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items, batch, err := decodeUsagePayload(body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.usageSvc.Record(c.Request.Context(), uid, usagedomain.RecordRequest{Items: items})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	for _, item := range result.Items {
		outcome := "success"
		if !item.Success {
			outcome = "failure"
		}
		s.obsMetrics.RecordUsageOutcome(outcome)
	}

	if batch {
		c.JSON(http.StatusOK, result)
		return
	}

	item := result.Items[0]
	if !item.Success {
		AbortWithError(c, usageRecordError(item.Error))
		return
	}
	c.JSON(http.StatusCreated, item.Event)
}

func decodeUsagePayload(body []byte) ([]usagedomain.RecordItem, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, io.ErrUnexpectedEOF
	}

	if trimmed[0] == '[' {
		var items []usagedomain.RecordItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, true, err
		}
		return items, true, nil
	}

	var item usagedomain.RecordItem
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, false, err
	}
	return []usagedomain.RecordItem{item}, false, nil
}

// usageRecordError turns a per-item error code back into the sentinel the
// error middleware knows how to map.
func usageRecordError(code string) error {
	switch code {
	case usagedomain.ErrInvalidQuantity.Error():
		return usagedomain.ErrInvalidQuantity
	case usagedomain.ErrInvalidDate.Error():
		return usagedomain.ErrInvalidDate
	case usagedomain.ErrInvalidID.Error():
		return usagedomain.ErrInvalidID
	case usagedomain.ErrBoxTypeNotFound.Error():
		return usagedomain.ErrBoxTypeNotFound
	case usagedomain.ErrInsufficientStock.Error():
		return usagedomain.ErrInsufficientStock
	default:
		return ErrInternal
	}
}

func (s *Server) ListUsage(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req usagedomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Pagination = page

	resp, err := s.usageSvc.List(c.Request.Context(), uid, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UsageTrends(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	days := defaultTrendDays
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, newValidationError("days", "invalid_days", "days must be one of 7, 14 or 30"))
			return
		}
		days = parsed
	}

	trend, err := s.insightsSvc.Trend(c.Request.Context(), uid, days)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trend)
}
