package devserver

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"rabfront/services"
)

var sheetNameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", "?", "_", "*", "_", "[", "_", "]", "_", ":", "_",
)

// excelSheetName fits title to Excel's sheet name rules: at most 31 characters,
// none of /\?*[]: and no leading or trailing apostrophe.
func excelSheetName(title string) string {
	name := sheetNameReplacer.Replace(title)
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	name = strings.Trim(name, "' ")
	if name == "" {
		return "RAB"
	}
	return name
}

// GenerateExcel renders the RAB workbook and returns the file contents.
func GenerateExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := excelSheetName(data.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]
	widths := []float64{6, 10, 44, 10, 8, 18, 20}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	subtitleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 11}})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
		Border: thinBorders(),
		NumFmt: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}
	detailStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
		NumFmt: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("create detail style: %w", err)
	}
	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}
	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		NumFmt: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell("RAB - "+data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge owner: %w", err)
	}
	f.SetCellValue(sheetName, "A2", sanitizeExcelCell("Pemilik: "+data.ProjectOwner))
	f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", "Tanggal: "+data.CreatedDate)
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: column headers ───────────────────────────────────────────

	headers := []string{"No", "Kode", "Uraian Pekerjaan", "Volume", "Satuan", "Harga Satuan", "Jumlah Harga"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s5", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data rows (from row 6) ──────────────────────────────────────────

	row := 6
	for _, r := range data.Rows {
		rs := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rs, r.Index)
		if r.Level == 0 {
			f.SetCellValue(sheetName, "C"+rs, sanitizeExcelCell(r.Description))
			f.SetCellValue(sheetName, "G"+rs, r.Total)
			f.SetCellStyle(sheetName, "A"+rs, lastCol+rs, sectionStyle)
		} else {
			f.SetCellValue(sheetName, "B"+rs, sanitizeExcelCell(r.Code))
			f.SetCellValue(sheetName, "C"+rs, sanitizeExcelCell("  "+r.Description))
			f.SetCellValue(sheetName, "D"+rs, r.Volume)
			f.SetCellValue(sheetName, "E"+rs, sanitizeExcelCell(r.Unit))
			f.SetCellValue(sheetName, "F"+rs, r.UnitPrice)
			f.SetCellValue(sheetName, "G"+rs, r.Total)
			f.SetCellStyle(sheetName, "A"+rs, lastCol+rs, detailStyle)
		}
		row++
	}

	// ── Summary rows ────────────────────────────────────────────────────

	row++
	summary := []struct {
		label string
		value float64
	}{
		{"Jumlah", data.Totals.Subtotal},
		{"PPN " + services.FormatPercent(data.TaxRate), data.Totals.TaxAmount},
		{"Total", data.Totals.GrandTotal},
	}
	for _, s := range summary {
		rs := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "F"+rs, s.label)
		f.SetCellStyle(sheetName, "F"+rs, "F"+rs, summaryLabelStyle)
		f.SetCellValue(sheetName, "G"+rs, s.value)
		f.SetCellStyle(sheetName, "G"+rs, "G"+rs, summaryValueStyle)
		row++
	}

	// ── Custom fields ───────────────────────────────────────────────────

	if len(data.Fields) > 0 {
		row++
		for _, cf := range data.Fields {
			rs := fmt.Sprintf("%d", row)
			f.SetCellValue(sheetName, "B"+rs, sanitizeExcelCell(cf.Label))
			f.SetCellValue(sheetName, "C"+rs, sanitizeExcelCell(cf.Value))
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prefixes formula-leading characters with a quote so user
// text is never evaluated as a formula.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
