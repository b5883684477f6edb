package export

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rabfront/client"
	"rabfront/logger"
	"rabfront/services"
)

var (
	fakePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n%%EOF\n")
	fakePNG = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
)

type memorySink struct {
	saved map[string][]byte
	err   error
}

func (m *memorySink) Save(_ context.Context, name string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = payload
	return nil
}

func newTestExporter(t *testing.T, h http.HandlerFunc) (*Exporter, *Metrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := client.New(srv.URL+"/api/estimations", srv.URL+"/api/export", client.StaticSession("tok"))
	m := NewMetrics(prometheus.NewRegistry())
	return NewExporter(c, WithMetrics(m)), m
}

func TestExport_RABPDFWithLogo(t *testing.T) {
	x, m := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/estimations/e1/download/pdf", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, fh, err := r.FormFile("logo")
		require.NoError(t, err)
		defer f.Close()
		got, _ := io.ReadAll(f)
		assert.Equal(t, fakePNG, got)
		assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		assert.Equal(t, "brand.png", fh.Filename)

		w.Header().Set("Content-Disposition", `attachment; filename="Budget_Q1.pdf"`)
		w.Write(fakePDF)
	})

	dir := t.TempDir()
	res, err := x.Export(context.Background(), Request{
		EstimationID: "e1",
		Variant:      services.VariantRABPDF,
		ProjectName:  "Office",
		Logo:         fakePNG,
		LogoName:     "brand.png",
	}, DirSink{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, "Budget_Q1.pdf", res.Filename)
	assert.Equal(t, StateDelivered, res.State)
	assert.Equal(t, len(fakePDF), res.Size)

	saved, err := os.ReadFile(filepath.Join(dir, "Budget_Q1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, fakePDF, saved)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("rab-pdf", outcomeDelivered)))
}

func TestExport_NoLogoSendsNoBody(t *testing.T) {
	x, _ := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/estimations/e1/download/excel", r.URL.Path)
		assert.Empty(t, r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		w.Write([]byte("PK\x03\x04xlsx"))
	})

	sink := &memorySink{}
	res, err := x.Export(context.Background(), Request{
		EstimationID: "e1",
		Variant:      services.VariantRABExcel,
		ProjectName:  "Office Tower #2!",
		Logo:         fakePNG, // excel does not take a logo
	}, sink)
	require.NoError(t, err)
	assert.Equal(t, "RAB_Office_Tower_2_.xlsx", res.Filename)
	assert.Contains(t, sink.saved, "RAB_Office_Tower_2_.xlsx")
}

func TestExport_AuxiliaryVariantsUseExportBase(t *testing.T) {
	tests := []struct {
		variant  services.Variant
		path     string
		filename string
	}{
		{services.VariantVolumePDF, "/api/export/e9/download/pdf/volume", "Volume_Gudang.pdf"},
		{services.VariantJobItemPDF, "/api/export/e9/download/pdf/job-item", "JobItem_Gudang.pdf"},
		{services.VariantKategoriPDF, "/api/export/e9/download/pdf/kategori", "Kategori_Gudang.pdf"},
		{services.VariantAHSPPDF, "/api/export/e9/download/pdf/ahsp", "AHSP_Gudang.pdf"},
		{services.VariantMasterItemPDF, "/api/export/e9/download/pdf/master-item", "MasterItem_Gudang.pdf"},
	}
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			x, _ := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				w.Write(fakePDF)
			})
			sink := &memorySink{}
			res, err := x.Export(context.Background(), Request{EstimationID: "e9", Variant: tt.variant, ProjectName: "Gudang"}, sink)
			require.NoError(t, err)
			assert.Equal(t, tt.filename, res.Filename)
			assert.Equal(t, fakePDF, sink.saved[tt.filename])
		})
	}
}

func TestExport_ServiceErrorMessageIsExact(t *testing.T) {
	x, m := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"render failed"}`)
	})

	sink := &memorySink{}
	res, err := x.Export(context.Background(), Request{EstimationID: "e1", Variant: services.VariantRABPDF}, sink)
	require.Error(t, err)
	assert.Equal(t, "render failed", err.Error())
	assert.Equal(t, StateFailed, res.State)
	assert.Empty(t, sink.saved)

	var se *client.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("rab-pdf", outcomeService)))
}

func TestExport_UnparsableErrorKeepsStatus(t *testing.T) {
	x, m := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "Internal Server Error")
	})

	_, err := x.Export(context.Background(), Request{EstimationID: "e1", Variant: services.VariantAHSPPDF}, &memorySink{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	var te *client.TransportError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("ahsp-pdf", outcomeTransport)))
}

func TestExport_SinkFailureIsIOError(t *testing.T) {
	x, m := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(fakePDF)
	})

	_, err := x.Export(context.Background(), Request{EstimationID: "e1", Variant: services.VariantVolumePDF, ProjectName: "P"},
		&memorySink{err: errors.New("disk full")})
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "Volume_P.pdf", ioErr.Name)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("volume-pdf", outcomeIO)))
}

func TestExport_RepeatedCallsRedownload(t *testing.T) {
	calls := 0
	x, _ := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(fakePDF)
	})

	for i := 0; i < 2; i++ {
		_, err := x.Export(context.Background(), Request{EstimationID: "e1", Variant: services.VariantKategoriPDF}, &memorySink{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestExport_InvalidRequest(t *testing.T) {
	x, _ := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := x.Export(context.Background(), Request{EstimationID: "e1", Variant: "rab-docx"}, &memorySink{})
	assert.Error(t, err)

	_, err = x.Export(context.Background(), Request{Variant: services.VariantRABPDF}, &memorySink{})
	assert.Error(t, err)
}

func TestExport_NetworkError(t *testing.T) {
	c := client.New("http://127.0.0.1:1/api/estimations", "http://127.0.0.1:1/api/export", nil)
	_, err := NewExporter(c).Export(context.Background(), Request{EstimationID: "e1", Variant: services.VariantRABPDF}, &memorySink{})
	require.Error(t, err)
	assert.Equal(t, 0, client.StatusCode(err))
}

func TestExport_ForwardsContextRequestID(t *testing.T) {
	x, _ := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-42", r.Header.Get("X-Request-Id"))
		w.Write(fakePDF)
	})

	ctx := logger.WithRequestID(context.Background(), "req-42")
	_, err := x.Export(ctx, Request{EstimationID: "e1", Variant: services.VariantVolumePDF}, &memorySink{})
	require.NoError(t, err)
}
