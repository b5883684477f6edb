package devserver

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"rabfront/services"
)

var (
	headerBg   = &props.Color{Red: 33, Green: 37, Blue: 41}
	sectionBg  = &props.Color{Red: 240, Green: 240, Blue: 240}
	mutedColor = &props.Color{Red: 80, Green: 80, Blue: 80}
)

func newDocument(o orientation.Type) core.Maroto {
	cfg := config.NewBuilder().
		WithOrientation(o).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Halaman {current} dari {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()
	return maroto.New(cfg)
}

// GeneratePDF renders the RAB document. logo may be nil; PNG and JPEG logos
// are drawn in the header, anything else is ignored.
func GeneratePDF(data ExportData, logo []byte) ([]byte, error) {
	m := newDocument(orientation.Horizontal)

	addHeader(m, data, logo)
	addTableHeader(m)
	for _, r := range data.Rows {
		addTableRow(m, r)
	}
	addSummary(m, data)
	addFields(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func logoExtension(logo []byte) (extension.Type, bool) {
	if len(logo) == 0 {
		return "", false
	}
	switch mimetype.Detect(logo).String() {
	case "image/png":
		return extension.Png, true
	case "image/jpeg":
		return extension.Jpg, true
	}
	return "", false
}

func addHeader(m core.Maroto, data ExportData, logo []byte) {
	title := text.New("RENCANA ANGGARAN BIAYA", props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Align: align.Center,
	})
	if ext, ok := logoExtension(logo); ok {
		m.AddRow(20,
			image.NewFromBytesCol(3, logo, ext, props.Rect{
				Center:  false,
				Percent: 80,
			}),
			col.New(9).Add(title),
		)
	} else {
		m.AddRow(12, col.New(12).Add(title))
	}

	info := props.Text{Size: 9, Align: align.Left, Color: mutedColor}
	infoRight := info
	infoRight.Align = align.Right
	m.AddRows(
		row.New(6).Add(
			col.New(8).Add(text.New("Proyek: "+data.Title, info)),
			col.New(4).Add(text.New("Tanggal: "+data.CreatedDate, infoRight)),
		),
		row.New(6).Add(
			col.New(8).Add(text.New("Pemilik: "+data.ProjectOwner, info)),
		),
		row.New(4),
	)
}

func addTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := &props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("No", headerText)).WithStyle(headerCell),
			col.New(1).Add(text.New("Kode", headerText)).WithStyle(headerCell),
			col.New(4).Add(text.New("Uraian Pekerjaan", headerTextLeft)).WithStyle(headerCell),
			col.New(1).Add(text.New("Volume", headerText)).WithStyle(headerCell),
			col.New(1).Add(text.New("Satuan", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Harga Satuan", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Jumlah Harga", headerText)).WithStyle(headerCell),
		),
	)
}

func addTableRow(m core.Maroto, r ExportRow) {
	base := props.Text{Size: 7, Align: align.Center}
	if r.Level == 0 {
		base.Size = 8
		base.Style = fontstyle.Bold
	}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	cols := []core.Col{col.New(1).Add(text.New(r.Index, base))}
	if r.Level == 0 {
		cols = append(cols,
			col.New(1),
			col.New(8).Add(text.New(r.Description, left)),
			col.New(2).Add(text.New(services.FormatIDR(r.Total), right)),
		)
		for _, c := range cols {
			c.WithStyle(&props.Cell{BackgroundColor: sectionBg})
		}
	} else {
		cols = append(cols,
			col.New(1).Add(text.New(r.Code, base)),
			col.New(4).Add(text.New("  "+r.Description, left)),
			col.New(1).Add(text.New(services.FormatQty(r.Volume), right)),
			col.New(1).Add(text.New(r.Unit, base)),
			col.New(2).Add(text.New(services.FormatIDR(r.UnitPrice), right)),
			col.New(2).Add(text.New(services.FormatIDR(r.Total), right)),
		)
	}
	m.AddRows(row.New(7).Add(cols...))
}

func addSummary(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))

	cell := &props.Cell{BackgroundColor: sectionBg}
	style := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	lines := []struct {
		label string
		value float64
	}{
		{"Jumlah", data.Totals.Subtotal},
		{"PPN " + services.FormatPercent(data.TaxRate), data.Totals.TaxAmount},
		{"Total", data.Totals.GrandTotal},
	}
	for _, l := range lines {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(l.label, style)).WithStyle(cell),
				col.New(4).Add(text.New(services.FormatIDR(l.value), style)).WithStyle(cell),
			),
		)
	}
}

func addFields(m core.Maroto, data ExportData) {
	if len(data.Fields) == 0 && data.Notes == "" {
		return
	}
	m.AddRows(row.New(6))
	style := props.Text{Size: 8, Align: align.Left, Color: mutedColor}
	for _, f := range data.Fields {
		m.AddRows(
			row.New(6).Add(
				col.New(3).Add(text.New(f.Label, props.Text{Size: 8, Style: fontstyle.Bold})),
				col.New(9).Add(text.New(f.Value, style)),
			),
		)
	}
	if data.Notes != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New("Catatan: "+data.Notes, style))))
	}
}
