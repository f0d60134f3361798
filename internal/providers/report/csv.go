package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"name",
	"quantity",
	"cost",
	"total_value",
	"min_threshold",
	"avg_daily_usage",
	"days_until_empty",
	"days_until_reorder",
	"status",
}

func (p *ReportProvider) GenerateCSV(ctx context.Context, report InventoryReport) (io.Reader, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range report.Rows {
		record := []string{
			row.Name,
			strconv.FormatInt(row.Quantity, 10),
			row.Cost,
			row.TotalValue,
			strconv.FormatInt(row.MinThreshold, 10),
			row.AvgDailyUsage,
			row.DaysUntilEmpty,
			row.DaysUntilReorder,
			row.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}
