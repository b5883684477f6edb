package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"rabfront/client"
	"rabfront/logger"
	"rabfront/services"
	"rabfront/templates"
)

// HandleEstimationView renders one estimation with its aggregated totals and
// the export menu.
func HandleEstimationView(c *client.Client) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.String(http.StatusBadRequest, "Missing estimation ID")
		}

		doc, err := c.FetchEstimation(e.Request.Context(), id)
		if err != nil {
			logger.FromContext(e.Request.Context()).Warn("estimation_view.fetch_failed",
				zap.String("estimation_id", id), zap.Error(err))
			status := http.StatusBadGateway
			if client.StatusCode(err) == http.StatusNotFound {
				status = http.StatusNotFound
			}
			e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
			e.Response.WriteHeader(status)
			return templates.ErrorContent(err.Error()).Render(e.Request.Context(), e.Response)
		}

		data := buildViewData(doc)

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.EstimationViewContent(data)
		} else {
			component = templates.EstimationViewPage(data)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}

// buildViewData formats doc for display. Totals come from the aggregation
// rules so the view matches the exported documents.
func buildViewData(doc services.EstimationDocument) templates.EstimationViewData {
	totals := services.ComputeTotals(doc)
	sectionTotals := services.ComputeSectionTotals(doc)

	sections := make([]templates.SectionView, 0, len(doc.WorkItems))
	for i, s := range doc.WorkItems {
		details := make([]templates.DetailView, 0, len(s.Details))
		for j, d := range s.Details {
			details = append(details, templates.DetailView{
				Index:       fmt.Sprintf("%d.%d", i+1, j+1),
				Code:        d.Code,
				Description: d.Description,
				Volume:      services.FormatQty(float64(d.Volume)),
				Unit:        d.Unit,
				UnitPrice:   services.FormatIDR(float64(d.UnitPrice)),
				Total:       services.FormatIDR(services.LineTotal(d)),
				Precomputed: d.TotalPrice.Valid,
			})
		}
		sections = append(sections, templates.SectionView{
			Index:       i + 1,
			ID:          s.ID,
			Title:       s.Title,
			Subtotal:    services.FormatIDR(sectionTotals[i].Subtotal),
			DetailCount: sectionTotals[i].DetailCount,
			Details:     details,
		})
	}

	fields := make([]templates.FieldView, 0, len(doc.CustomFields))
	for _, f := range doc.CustomFields {
		fields = append(fields, templates.FieldView{Label: f.Label, Value: f.Value})
	}

	exports := make([]templates.ExportOption, 0, len(services.Variants))
	for _, v := range services.Variants {
		spec, _ := v.Spec()
		exports = append(exports, templates.ExportOption{
			Label:        spec.Label,
			Action:       fmt.Sprintf("/estimations/%s/export/%s", url.PathEscape(doc.ID), v),
			SupportsLogo: spec.SupportsLogo,
		})
	}

	createdDate := "—"
	if !doc.CreatedAt.IsZero() {
		createdDate = doc.CreatedAt.Format("02 Jan 2006")
	}

	return templates.EstimationViewData{
		ID:            doc.ID,
		ProjectName:   doc.ProjectName,
		ProjectOwner:  doc.ProjectOwner,
		Status:        doc.Status,
		CreatedDate:   createdDate,
		Notes:         doc.Notes,
		TaxRate:       services.FormatPercent(float64(doc.TaxRate)),
		Sections:      sections,
		Fields:        fields,
		Subtotal:      services.FormatIDR(totals.Subtotal),
		TaxAmount:     services.FormatIDR(totals.TaxAmount),
		GrandTotal:    services.FormatIDR(totals.GrandTotal),
		LineItemCount: totals.LineItemCount,
		Exports:       exports,
	}
}
