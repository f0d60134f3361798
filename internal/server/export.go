package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	insightsdomain "github.com/boxtrack/boxtrack/internal/insights/domain"
	"github.com/boxtrack/boxtrack/internal/providers/report"
)

// ExportInventory streams the current inventory with projections as CSV or
// PDF. format defaults to csv.
func (s *Server) ExportInventory(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	if format != "csv" && format != "pdf" {
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be csv or pdf"))
		return
	}

	boxes, err := s.boxSvc.List(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	predictions, err := s.insightsSvc.Predictions(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	byBox := make(map[string]insightsdomain.Prediction, len(predictions.Predictions))
	for _, p := range predictions.Predictions {
		byBox[p.BoxTypeID] = p
	}

	now := time.Now().UTC()
	inventory := report.InventoryReport{
		GeneratedAt: now.Format(time.RFC3339),
		Rows:        make([]report.Row, 0, len(boxes)),
	}
	for _, box := range boxes {
		row := report.Row{
			Name:             box.Name,
			Quantity:         box.Quantity,
			Cost:             box.Cost.StringFixed(2),
			TotalValue:       box.Cost.Mul(decimal.NewFromInt(box.Quantity)).Round(2).StringFixed(2),
			MinThreshold:     box.MinThreshold,
			AvgDailyUsage:    "0",
			DaysUntilEmpty:   "",
			DaysUntilReorder: "",
			Status:           insightsdomain.StatusNormal,
		}
		if p, ok := byBox[box.ID]; ok {
			row.AvgDailyUsage = formatRate(p.AvgDailyUsage)
			row.DaysUntilEmpty = formatDays(p.DaysUntilEmpty)
			row.DaysUntilReorder = formatDays(p.DaysUntilReorder)
			row.Status = p.Status
		}
		inventory.Rows = append(inventory.Rows, row)
	}

	var (
		reader      io.Reader
		contentType string
	)
	switch format {
	case "pdf":
		reader, err = s.reports.GeneratePDF(c.Request.Context(), inventory)
		contentType = "application/pdf"
	default:
		reader, err = s.reports.GenerateCSV(c.Request.Context(), inventory)
		contentType = "text/csv"
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordExport(format)

	filename := fmt.Sprintf("inventory-%s.%s", now.Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		_ = c.Error(err)
	}
}

func formatRate(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatDays(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
