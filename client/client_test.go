package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rabfront/services"
)

func TestFetchEstimation(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data": {"id": "est 1", "project_name": "Gudang", "tax_rate": 11,
			"work_items": [{"id": "s1", "title": "Foundation", "details": [{"id": "d1", "volume": 5, "unit_price": 200000}]}]}}`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/api/estimations/", srv.URL+"/api/export", StaticSession("tok"))
	doc, err := c.FetchEstimation(context.Background(), "est 1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/api/estimations/est 1", gotPath)
	assert.Equal(t, "Gudang", doc.ProjectName)
	assert.Equal(t, 1000000.0, services.ComputeTotals(doc).Subtotal)
}

func TestFetchEstimation_NoTokenNoHeader(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		io.WriteString(w, `{"data": {"id": "e"}}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.URL, nil).FetchEstimation(context.Background(), "e")
	require.NoError(t, err)
	assert.False(t, hadAuth)
}

func TestFetchEstimation_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		service bool
	}{
		{"structured error", http.StatusNotFound, `{"error":"estimation not found"}`, "estimation not found", true},
		{"html error page", http.StatusBadGateway, `<html>bad gateway</html>`, "HTTP error, status 502", false},
		{"empty body", http.StatusInternalServerError, ``, "HTTP error, status 500", false},
		{"json without error field", http.StatusUnauthorized, `{"message":"nope"}`, "HTTP error, status 401", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, srv.URL, StaticSession("t")).FetchEstimation(context.Background(), "x")
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.status, StatusCode(err))

			var se *ServiceError
			assert.Equal(t, tt.service, errors.As(err, &se))
		})
	}
}

func TestFetchEstimation_InvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data": {"project_name": "no id"}}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.URL, nil).FetchEstimation(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid estimation")
}

func TestListEstimations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estimations", r.URL.Path)
		io.WriteString(w, `{"data": [{"id": "a"}, {"id": "b"}]}`)
	}))
	defer srv.Close()

	docs, err := New(srv.URL+"/estimations", srv.URL, nil).ListEstimations(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestURL(t *testing.T) {
	c := New("http://api/estimations/", "http://api/export", nil)
	assert.Equal(t, "http://api/estimations/e1/download/pdf", c.URL(services.EstimationBase, "e1", "/download/pdf"))
	assert.Equal(t, "http://api/export/e1/download/pdf/ahsp", c.URL(services.ExportBase, "e1", "/download/pdf/ahsp"))
	assert.Equal(t, "http://api/estimations/a%2Fb", c.URL(services.EstimationBase, "a/b", ""))
}

func TestSessionFuncReadAtCallTime(t *testing.T) {
	token := "first"
	c := New("http://x", "http://x", SessionFunc(func() string { return token }))

	req, err := c.NewRequest(context.Background(), http.MethodGet, "http://x/e", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer first", req.Header.Get("Authorization"))

	token = "second"
	req, err = c.NewRequest(context.Background(), http.MethodGet, "http://x/e", strings.NewReader(""), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "Bearer second", req.Header.Get("Authorization"))
	assert.Equal(t, "text/plain", req.Header.Get("Content-Type"))
}

func TestSubject(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user_42"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.Equal(t, "user_42", Subject(signed))
	assert.Equal(t, "", Subject("opaque-token"))
	assert.Equal(t, "", Subject(""))
}
