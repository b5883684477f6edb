package devserver

import (
	"fmt"
	"time"

	"rabfront/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type detailDef struct {
	code        string
	description string
	volume      float64
	unit        string
	unitPrice   float64
	totalPrice  float64 // 0 means "derive from volume × unit price"
}

type sectionDef struct {
	title   string
	details []detailDef
}

type estimationDef struct {
	id           string
	projectName  string
	projectOwner string
	taxRate      float64
	status       string
	notes        string
	sections     []sectionDef
	fields       []services.CustomField
}

var seedEstimations = []estimationDef{
	{
		id:           "est_kantor_01",
		projectName:  "Gedung Kantor 3 Lantai",
		projectOwner: "PT Maju Bersama",
		taxRate:      11,
		status:       services.StatusDraft,
		notes:        "Harga berlaku 30 hari.",
		sections: []sectionDef{
			{
				title: "Pekerjaan Persiapan",
				details: []detailDef{
					{"A.1", "Pembersihan lahan", 450, "m2", 15000, 0},
					{"A.2", "Pemasangan bouwplank", 120, "m1", 85000, 0},
					{"A.3", "Direksi keet", 1, "ls", 0, 12500000},
				},
			},
			{
				title: "Pekerjaan Pondasi",
				details: []detailDef{
					{"B.1", "Galian tanah pondasi", 96.5, "m3", 95000, 0},
					{"B.2", "Pondasi footplat beton K-300", 32, "m3", 4250000, 0},
					{"B.3", "Urugan tanah kembali", 40, "m3", 65000, 0},
				},
			},
			{
				title: "Pekerjaan Struktur",
				details: []detailDef{
					{"C.1", "Kolom beton bertulang", 48, "m3", 5650000, 0},
					{"C.2", "Balok beton bertulang", 62, "m3", 5400000, 0},
					{"C.3", "Pelat lantai t=12cm", 910, "m2", 0, 598000000},
				},
			},
		},
		fields: []services.CustomField{
			{Label: "Lokasi", Value: "Bandung"},
			{Label: "Tahun Anggaran", Value: "2024"},
		},
	},
	{
		id:           "est_gudang_02",
		projectName:  "Gudang Logistik",
		projectOwner: "CV Sentosa",
		taxRate:      11,
		status:       services.StatusSubmitted,
		sections: []sectionDef{
			{
				title: "Foundation",
				details: []detailDef{
					{"F.1", "Excavation", 5, "m3", 200000, 0},
					{"F.2", "Footing", 1, "ls", 0, 50000},
				},
			},
		},
	},
}

// SeedDocuments returns the stub's sample estimations.
func SeedDocuments() []services.EstimationDocument {
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	docs := make([]services.EstimationDocument, 0, len(seedEstimations))
	for _, def := range seedEstimations {
		doc := services.EstimationDocument{
			ID:           def.id,
			ProjectName:  def.projectName,
			ProjectOwner: def.projectOwner,
			TaxRate:      services.Amount(def.taxRate),
			Notes:        def.notes,
			Status:       def.status,
			CreatedAt:    created,
			UpdatedAt:    created.Add(48 * time.Hour),
			AuthorID:     "user_seed",
			CustomFields: def.fields,
		}
		for i, sd := range def.sections {
			section := services.WorkSection{
				ID:           fmt.Sprintf("%s_wi_%d", def.id, i+1),
				EstimationID: def.id,
				Title:        sd.title,
			}
			for j, dd := range sd.details {
				detail := services.LineDetail{
					ID:          fmt.Sprintf("%s_d_%d", section.ID, j+1),
					WorkItemID:  section.ID,
					Code:        dd.code,
					Description: dd.description,
					Volume:      services.Amount(dd.volume),
					Unit:        dd.unit,
					UnitPrice:   services.Amount(dd.unitPrice),
				}
				if dd.totalPrice != 0 {
					detail.TotalPrice = services.Some(dd.totalPrice)
				}
				section.Details = append(section.Details, detail)
			}
			doc.WorkItems = append(doc.WorkItems, section)
		}
		docs = append(docs, doc)
	}
	return docs
}
