// Package testhelpers provides shared fixtures for handler and command tests.
package testhelpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rabfront/client"
	"rabfront/devserver"
	"rabfront/services"
)

// StubToken is the bearer token the stub service expects.
const StubToken = "test-token"

// NewStubServer starts the development stub service with the seed estimations
// plus the Foundation fixture. It is closed when the test finishes.
func NewStubServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := devserver.NewStore(devserver.SeedDocuments()...)
	store.Put(FoundationEstimation())
	srv := httptest.NewServer(devserver.New(store, StubToken, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

// NewClient returns an API client pointed at a stub server started by
// NewStubServer.
func NewClient(t *testing.T, srv *httptest.Server, opts ...client.Option) *client.Client {
	t.Helper()
	return client.New(srv.URL+"/estimations", srv.URL+"/export", client.StaticSession(StubToken), opts...)
}

// NewErrorServer starts a server that answers every request with status and
// body.
func NewErrorServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// FoundationEstimation is the two-line "Foundation" estimation: an
// excavation priced by volume and a footing with a precomputed total.
// Subtotal 1,050,000; tax at 11% 115,500; grand total 1,165,500.
func FoundationEstimation() services.EstimationDocument {
	return services.EstimationDocument{
		ID:           "est_foundation",
		ProjectName:  "Office Tower",
		ProjectOwner: "PT Contoh",
		TaxRate:      11,
		Status:       services.StatusDraft,
		WorkItems: []services.WorkSection{{
			ID:    "wi_1",
			Title: "Foundation",
			Details: []services.LineDetail{
				{ID: "d_1", Code: "F.1", Description: "Excavation", Volume: 5, Unit: "m3", UnitPrice: 200000},
				{ID: "d_2", Code: "F.2", Description: "Footing", Volume: 1, Unit: "ls", TotalPrice: services.Some(50000)},
			},
		}},
	}
}

// AssertHTMLContains checks that html contains every expected substring.
func AssertHTMLContains(t *testing.T, html string, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if !strings.Contains(html, s) {
			t.Errorf("expected HTML to contain %q", s)
		}
	}
}

// AssertHTMLNotContains checks that html contains none of the substrings.
func AssertHTMLNotContains(t *testing.T, html string, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if strings.Contains(html, s) {
			t.Errorf("expected HTML not to contain %q", s)
		}
	}
}
