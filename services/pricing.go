// Package services provides the estimation model, totals and export naming rules.
package services

import "math"

// Totals are the document-level aggregates shown under an estimation.
type Totals struct {
	Subtotal      float64
	TaxAmount     float64
	GrandTotal    float64
	LineItemCount int
}

// SectionTotals is the per-work-item summary used by the estimation view.
type SectionTotals struct {
	ID          string
	Title       string
	Subtotal    float64
	DetailCount int
}

// LineTotal returns the precomputed total when the API supplied one,
// otherwise unit price times volume.
func LineTotal(d LineDetail) float64 {
	if d.TotalPrice.Valid {
		return d.TotalPrice.Value
	}
	return float64(d.UnitPrice) * float64(d.Volume)
}

func ComputeSectionSubtotal(s WorkSection) float64 {
	var sum float64
	for _, d := range s.Details {
		sum += LineTotal(d)
	}
	return sum
}

func ComputeSectionTotals(doc EstimationDocument) []SectionTotals {
	out := make([]SectionTotals, 0, len(doc.WorkItems))
	for _, s := range doc.WorkItems {
		out = append(out, SectionTotals{
			ID:          s.ID,
			Title:       s.Title,
			Subtotal:    ComputeSectionSubtotal(s),
			DetailCount: len(s.Details),
		})
	}
	return out
}

// ComputeTotals aggregates the whole document. Tax applies to the document
// subtotal only and is rounded to a whole currency unit.
func ComputeTotals(doc EstimationDocument) Totals {
	var totals Totals
	for _, s := range doc.WorkItems {
		totals.Subtotal += ComputeSectionSubtotal(s)
		totals.LineItemCount += len(s.Details)
	}
	totals.TaxAmount = roundHalfUp(totals.Subtotal * float64(doc.TaxRate) / 100)
	totals.GrandTotal = totals.Subtotal + totals.TaxAmount
	return totals
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
