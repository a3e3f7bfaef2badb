package order

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	colorAccent = &props.Color{Red: 33, Green: 61, Blue: 99}
	colorMuted  = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// DocumentRenderer lays a purchase order out on a single A4 page.
type DocumentRenderer struct{}

func NewDocumentRenderer() *DocumentRenderer { return &DocumentRenderer{} }

func (d *DocumentRenderer) Render(o *Order) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Purchase Order "+o.OrderNumber, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(documentHeader(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorAccent, Thickness: 0.5}))
	m.AddRows(partiesRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorAccent, Thickness: 0.3}))
	m.AddRows(itemsHeader())
	m.AddRows(itemRows(o.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorAccent, Thickness: 0.3}))
	m.AddRows(totalRow(o))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("order document: %w", err)
	}
	return doc.GetBytes(), nil
}

func documentHeader(o *Order) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("PURCHASE ORDER", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorAccent, Top: 1,
			}),
			text.New("Status: "+string(o.Status), props.Text{Size: 9, Top: 10, Color: colorMuted}),
		),
		col.New(5).Add(
			text.New(o.OrderNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1,
			}),
			text.New("Created: "+o.CreatedAt.Format("2006-01-02"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorMuted,
			}),
		),
	)
}

func partiesRow(o *Order) core.Row {
	approver := "-"
	if o.ApprovedByName != "" {
		approver = o.ApprovedByName
	}
	return row.New(14).Add(
		col.New(6).Add(
			text.New("SUPPLIER", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorAccent, Top: 1}),
			text.New(orDash(o.SupplierName), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		),
		col.New(6).Add(
			text.New("REQUESTED BY", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorAccent, Top: 1, Align: align.Right}),
			text.New(orDash(o.RequestedByName), props.Text{Size: 9, Top: 6, Align: align.Right}),
			text.New("Approved by: "+approver, props.Text{Size: 8, Top: 11, Align: align.Right, Color: colorMuted}),
		),
	)
}

func itemsHeader() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorAccent, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Item", 4, align.Left),
		h("Qty", 1, align.Right),
		h("Unit price", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func itemRows(items []Item) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.LineNo), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(it.SKU, props.Text{Size: 8, Top: 1})),
			col.New(4).Add(text.New(it.Name, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(it.UnitPrice.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(it.TotalPrice.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func totalRow(o *Order) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2})),
		col.New(2).Add(text.New(o.TotalAmount.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Color: colorAccent,
		})),
	)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
