package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type ReportProvider struct{}

func New() Provider {
	return &ReportProvider{}
}

func (p *ReportProvider) GeneratePDF(ctx context.Context, report InventoryReport) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Inventory Report", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Generated at "+report.GeneratedAt, props.Text{Size: 9}),
	)

	m.AddRow(10,
		text.NewCol(3, "Box type", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Cost", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Value", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Min", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Avg/day", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Days to empty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Status", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	m.AddRow(1, col.New(12))

	for _, row := range report.Rows {
		m.AddRow(8,
			text.NewCol(3, row.Name, props.Text{Size: 9}),
			text.NewCol(1, fmt.Sprintf("%d", row.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, row.Cost, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, row.TotalValue, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, fmt.Sprintf("%d", row.MinThreshold), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, row.AvgDailyUsage, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, row.DaysUntilEmpty, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, row.Status, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
