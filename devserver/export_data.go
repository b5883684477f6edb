package devserver

import (
	"fmt"

	"rabfront/services"
)

// ExportRow is a single row of the RAB export: a section header or a line detail.
type ExportRow struct {
	Level       int    // 0 = work item, 1 = line detail
	Index       string // "1", "1.1" etc
	Code        string
	Description string
	Volume      float64
	Unit        string
	UnitPrice   float64
	Total       float64
}

// ExportData holds everything the RAB renderers need.
type ExportData struct {
	Title        string
	ProjectOwner string
	CreatedDate  string
	TaxRate      float64
	Rows         []ExportRow
	Fields       []services.CustomField
	Notes        string
	Totals       services.Totals
}

// BuildExportData flattens a document into rows; totals come from the
// aggregation rules the front end uses.
func BuildExportData(doc services.EstimationDocument) ExportData {
	var rows []ExportRow
	for i, s := range doc.WorkItems {
		rows = append(rows, ExportRow{
			Level:       0,
			Index:       fmt.Sprintf("%d", i+1),
			Description: s.Title,
			Total:       services.ComputeSectionSubtotal(s),
		})
		for j, d := range s.Details {
			rows = append(rows, ExportRow{
				Level:       1,
				Index:       fmt.Sprintf("%d.%d", i+1, j+1),
				Code:        d.Code,
				Description: d.Description,
				Volume:      float64(d.Volume),
				Unit:        d.Unit,
				UnitPrice:   float64(d.UnitPrice),
				Total:       services.LineTotal(d),
			})
		}
	}

	createdDate := "—"
	if !doc.CreatedAt.IsZero() {
		createdDate = doc.CreatedAt.Format("02 Jan 2006")
	}

	return ExportData{
		Title:        doc.ProjectName,
		ProjectOwner: doc.ProjectOwner,
		CreatedDate:  createdDate,
		TaxRate:      float64(doc.TaxRate),
		Rows:         rows,
		Fields:       doc.CustomFields,
		Notes:        doc.Notes,
		Totals:       services.ComputeTotals(doc),
	}
}
