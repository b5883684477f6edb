package handlers

import (
	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"rabfront/client"
	"rabfront/logger"
	"rabfront/services"
	"rabfront/templates"
)

// HandleEstimationList renders the estimation list fetched from the remote API.
func HandleEstimationList(c *client.Client) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var data templates.EstimationListData

		docs, err := c.ListEstimations(e.Request.Context())
		if err != nil {
			logger.FromContext(e.Request.Context()).Warn("estimation_list.fetch_failed", zap.Error(err))
			data.Error = err.Error()
		}

		for _, doc := range docs {
			updated := "—"
			if !doc.UpdatedAt.IsZero() {
				updated = doc.UpdatedAt.Format("02 Jan 2006")
			}
			data.Items = append(data.Items, templates.EstimationListItem{
				ID:           doc.ID,
				ProjectName:  doc.ProjectName,
				ProjectOwner: doc.ProjectOwner,
				Status:       doc.Status,
				UpdatedDate:  updated,
				GrandTotal:   services.FormatIDR(services.ComputeTotals(doc).GrandTotal),
			})
		}

		var component templ.Component
		if e.Request.Header.Get("HX-Request") == "true" {
			component = templates.EstimationListContent(data)
		} else {
			component = templates.EstimationListPage(data)
		}
		return component.Render(e.Request.Context(), e.Response)
	}
}
