package report

import (
	"context"
	"io"
)

// InventoryReport is the flattened export view of a user's inventory,
// composed by the caller from box types and their current projections.
type InventoryReport struct {
	GeneratedAt string
	Rows        []Row
}

type Row struct {
	Name             string
	Quantity         int64
	Cost             string
	TotalValue       string
	MinThreshold     int64
	AvgDailyUsage    string
	DaysUntilEmpty   string
	DaysUntilReorder string
	Status           string
}

type Provider interface {
	GenerateCSV(ctx context.Context, report InventoryReport) (io.Reader, error)
	GeneratePDF(ctx context.Context, report InventoryReport) (io.Reader, error)
}
