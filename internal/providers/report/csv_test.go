package report

import (
	"context"
	"encoding/csv"
	"testing"
)

func TestGenerateCSV(t *testing.T) {
	provider := New()

	reader, err := provider.GenerateCSV(context.Background(), InventoryReport{
		GeneratedAt: "2026-08-24T10:00:00Z",
		Rows: []Row{
			{
				Name:             `Box, "Heavy" Duty`,
				Quantity:         70,
				Cost:             "2.50",
				TotalValue:       "175.00",
				MinThreshold:     10,
				AvgDailyUsage:    "2.14",
				DaysUntilEmpty:   "32.71",
				DaysUntilReorder: "28.04",
				Status:           "normal",
			},
			{Name: "Idle Box", Quantity: 5, Cost: "0", TotalValue: "0", MinThreshold: 20, Status: "critical"},
		},
	})
	if err != nil {
		t.Fatalf("generate csv: %v", err)
	}

	records, err := csv.NewReader(reader).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "name" || records[0][8] != "status" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != `Box, "Heavy" Duty` {
		t.Fatalf("expected quoted name round-trip, got %q", records[1][0])
	}
	if records[2][8] != "critical" {
		t.Fatalf("expected critical status, got %q", records[2][8])
	}
}
