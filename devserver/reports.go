package devserver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"rabfront/services"
)

// Auxiliary report kinds served under /download/pdf/{kind}.
const (
	ReportVolume     = "volume"
	ReportJobItem    = "job-item"
	ReportKategori   = "kategori"
	ReportAHSP       = "ahsp"
	ReportMasterItem = "master-item"
)

// ReportColumn describes one table column. Widths across a report sum to 12.
type ReportColumn struct {
	Header string
	Width  int
	Align  align.Type
}

// ReportRow is a rendered table row; Bold marks group headers and totals.
type ReportRow struct {
	Cells []string
	Bold  bool
}

// Report is a titled table derived from an estimation.
type Report struct {
	Kind    string
	Title   string
	Columns []ReportColumn
	Rows    []ReportRow
}

var reportBuilders = map[string]func(services.EstimationDocument) Report{
	ReportVolume:     buildVolumeReport,
	ReportJobItem:    buildJobItemReport,
	ReportKategori:   buildKategoriReport,
	ReportAHSP:       buildAHSPReport,
	ReportMasterItem: buildMasterItemReport,
}

// BuildReport returns the auxiliary report of the given kind.
func BuildReport(kind string, doc services.EstimationDocument) (Report, error) {
	build, ok := reportBuilders[kind]
	if !ok {
		return Report{}, fmt.Errorf("unknown report %q", kind)
	}
	r := build(doc)
	r.Kind = kind
	return r, nil
}

func buildVolumeReport(doc services.EstimationDocument) Report {
	r := Report{
		Title: "Rekapitulasi Volume Pekerjaan",
		Columns: []ReportColumn{
			{"No", 1, align.Center},
			{"Kode", 2, align.Center},
			{"Uraian Pekerjaan", 6, align.Left},
			{"Volume", 2, align.Right},
			{"Satuan", 1, align.Center},
		},
	}
	for i, s := range doc.WorkItems {
		r.Rows = append(r.Rows, ReportRow{Cells: []string{fmt.Sprintf("%d", i+1), "", s.Title, "", ""}, Bold: true})
		for j, d := range s.Details {
			r.Rows = append(r.Rows, ReportRow{Cells: []string{
				fmt.Sprintf("%d.%d", i+1, j+1),
				d.Code,
				d.Description,
				services.FormatQty(float64(d.Volume)),
				d.Unit,
			}})
		}
	}
	return r
}

func buildJobItemReport(doc services.EstimationDocument) Report {
	r := Report{
		Title: "Rekapitulasi Item Pekerjaan",
		Columns: []ReportColumn{
			{"No", 1, align.Center},
			{"Item Pekerjaan", 5, align.Left},
			{"Jumlah Rincian", 2, align.Center},
			{"Bobot", 1, align.Right},
			{"Jumlah Harga", 3, align.Right},
		},
	}
	totals := services.ComputeTotals(doc)
	for i, st := range services.ComputeSectionTotals(doc) {
		r.Rows = append(r.Rows, ReportRow{Cells: []string{
			fmt.Sprintf("%d", i+1),
			st.Title,
			fmt.Sprintf("%d", st.DetailCount),
			share(st.Subtotal, totals.Subtotal),
			services.FormatIDR(st.Subtotal),
		}})
	}
	r.Rows = append(r.Rows, ReportRow{
		Cells: []string{"", "Jumlah", fmt.Sprintf("%d", totals.LineItemCount), "", services.FormatIDR(totals.Subtotal)},
		Bold:  true,
	})
	return r
}

// kategoriOf groups a detail by the leading segment of its code ("B.2" → "B").
func kategoriOf(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexAny(code, ".-/ "); i > 0 {
		return strings.ToUpper(code[:i])
	}
	if code == "" {
		return "Lainnya"
	}
	return strings.ToUpper(code)
}

func buildKategoriReport(doc services.EstimationDocument) Report {
	r := Report{
		Title: "Rekapitulasi per Kategori",
		Columns: []ReportColumn{
			{"Kategori", 2, align.Center},
			{"Uraian", 5, align.Left},
			{"Jumlah Harga", 3, align.Right},
			{"Bobot", 2, align.Right},
		},
	}

	type group struct {
		subtotal float64
		lines    []string
	}
	groups := map[string]*group{}
	var order []string
	for _, s := range doc.WorkItems {
		for _, d := range s.Details {
			k := kategoriOf(d.Code)
			g, ok := groups[k]
			if !ok {
				g = &group{}
				groups[k] = g
				order = append(order, k)
			}
			g.subtotal += services.LineTotal(d)
			g.lines = append(g.lines, d.Description)
		}
	}

	totals := services.ComputeTotals(doc)
	for _, k := range order {
		g := groups[k]
		r.Rows = append(r.Rows, ReportRow{Cells: []string{
			k,
			strings.Join(g.lines, ", "),
			services.FormatIDR(g.subtotal),
			share(g.subtotal, totals.Subtotal),
		}})
	}
	r.Rows = append(r.Rows, ReportRow{Cells: []string{"", "Jumlah", services.FormatIDR(totals.Subtotal), ""}, Bold: true})
	return r
}

func buildAHSPReport(doc services.EstimationDocument) Report {
	r := Report{
		Title: "Analisa Harga Satuan Pekerjaan",
		Columns: []ReportColumn{
			{"Kode", 1, align.Center},
			{"Uraian Pekerjaan", 4, align.Left},
			{"Satuan", 1, align.Center},
			{"Volume", 1, align.Right},
			{"Harga Satuan", 2, align.Right},
			{"Jumlah Harga", 3, align.Right},
		},
	}
	for _, s := range doc.WorkItems {
		r.Rows = append(r.Rows, ReportRow{Cells: []string{"", s.Title, "", "", "", services.FormatIDR(services.ComputeSectionSubtotal(s))}, Bold: true})
		for _, d := range s.Details {
			total := services.LineTotal(d)
			unitPrice := float64(d.UnitPrice)
			// Lump-sum lines only carry a total; derive the rate from it.
			if unitPrice == 0 && d.Volume != 0 {
				unitPrice = total / float64(d.Volume)
			}
			r.Rows = append(r.Rows, ReportRow{Cells: []string{
				d.Code,
				d.Description,
				d.Unit,
				services.FormatQty(float64(d.Volume)),
				services.FormatIDR(unitPrice),
				services.FormatIDR(total),
			}})
		}
	}
	return r
}

func buildMasterItemReport(doc services.EstimationDocument) Report {
	r := Report{
		Title: "Daftar Master Item",
		Columns: []ReportColumn{
			{"Kode", 2, align.Center},
			{"Uraian", 5, align.Left},
			{"Satuan", 1, align.Center},
			{"Harga Satuan", 2, align.Right},
			{"Dipakai", 2, align.Center},
		},
	}

	type item struct {
		code, description, unit string
		unitPrice               float64
		uses                    int
	}
	items := map[string]*item{}
	for _, s := range doc.WorkItems {
		for _, d := range s.Details {
			key := d.Code + "|" + d.Description
			it, ok := items[key]
			if !ok {
				it = &item{code: d.Code, description: d.Description, unit: d.Unit, unitPrice: float64(d.UnitPrice)}
				items[key] = it
			}
			it.uses++
		}
	}

	list := make([]*item, 0, len(items))
	for _, it := range items {
		list = append(list, it)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].code != list[j].code {
			return list[i].code < list[j].code
		}
		return list[i].description < list[j].description
	})
	for _, it := range list {
		r.Rows = append(r.Rows, ReportRow{Cells: []string{
			it.code,
			it.description,
			it.unit,
			services.FormatIDR(it.unitPrice),
			fmt.Sprintf("%dx", it.uses),
		}})
	}
	return r
}

func share(part, whole float64) string {
	if whole == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", part/whole*100)
}

// GenerateReportPDF renders an auxiliary report as a portrait PDF.
func GenerateReportPDF(rep Report, data ExportData) ([]byte, error) {
	m := newDocument(orientation.Vertical)

	m.AddRows(
		row.New(10).Add(col.New(12).Add(text.New(strings.ToUpper(rep.Title), props.Text{
			Size:  13,
			Style: fontstyle.Bold,
			Align: align.Center,
		}))),
		row.New(6).Add(
			col.New(8).Add(text.New("Proyek: "+data.Title, props.Text{Size: 9, Color: mutedColor})),
			col.New(4).Add(text.New("Tanggal: "+data.CreatedDate, props.Text{Size: 9, Align: align.Right, Color: mutedColor})),
		),
		row.New(4),
	)

	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := &props.Cell{BackgroundColor: headerBg}
	header := make([]core.Col, len(rep.Columns))
	for i, c := range rep.Columns {
		header[i] = col.New(c.Width).Add(text.New(c.Header, headerText)).WithStyle(headerCell)
	}
	m.AddRows(row.New(8).Add(header...))

	for _, r := range rep.Rows {
		cols := make([]core.Col, len(rep.Columns))
		for i, c := range rep.Columns {
			style := props.Text{Size: 7, Align: c.Align}
			if r.Bold {
				style.Style = fontstyle.Bold
			}
			var cell string
			if i < len(r.Cells) {
				cell = r.Cells[i]
			}
			cols[i] = col.New(c.Width).Add(text.New(cell, style))
			if r.Bold {
				cols[i].WithStyle(&props.Cell{BackgroundColor: sectionBg})
			}
		}
		m.AddRows(row.New(7).Add(cols...))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s report: %w", rep.Kind, err)
	}
	return doc.GetBytes(), nil
}
