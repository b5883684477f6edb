package devserver

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rabfront/services"
)

const testToken = "stub-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(NewStore(SeedDocuments()...), testToken, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, method, url string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func findDoc(t *testing.T, id string) services.EstimationDocument {
	t.Helper()
	doc, ok := NewStore(SeedDocuments()...).Get(id)
	require.True(t, ok)
	return doc
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	docs := SeedDocuments()
	store := NewStore(docs...)

	list := store.List()
	require.Len(t, list, len(docs))
	assert.Equal(t, "est_kantor_01", list[0].ID)
	assert.Equal(t, "est_gudang_02", list[1].ID)

	updated := docs[0]
	updated.ProjectName = "Renamed"
	store.Put(updated)
	list = store.List()
	assert.Equal(t, "Renamed", list[0].ProjectName)
	assert.Len(t, list, len(docs))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestBuildExportData_Totals(t *testing.T) {
	data := BuildExportData(findDoc(t, "est_gudang_02"))

	require.Len(t, data.Rows, 3)
	assert.Equal(t, 0, data.Rows[0].Level)
	assert.Equal(t, "1", data.Rows[0].Index)
	assert.Equal(t, 1050000.0, data.Rows[0].Total)
	assert.Equal(t, "1.1", data.Rows[1].Index)
	assert.Equal(t, 1000000.0, data.Rows[1].Total)
	assert.Equal(t, 50000.0, data.Rows[2].Total)

	assert.Equal(t, 1050000.0, data.Totals.Subtotal)
	assert.Equal(t, 115500.0, data.Totals.TaxAmount)
	assert.Equal(t, 1165500.0, data.Totals.GrandTotal)
	assert.Equal(t, "01 Mar 2024", data.CreatedDate)
}

func TestKategoriOf(t *testing.T) {
	tests := map[string]string{
		"B.2":   "B",
		"c-10":  "C",
		"X":     "X",
		"":      "Lainnya",
		" A.1 ": "A",
	}
	for in, want := range tests {
		assert.Equal(t, want, kategoriOf(in), "kategoriOf(%q)", in)
	}
}

func TestBuildReport(t *testing.T) {
	doc := findDoc(t, "est_kantor_01")

	_, err := BuildReport("unknown", doc)
	assert.Error(t, err)

	jobs, err := BuildReport(ReportJobItem, doc)
	require.NoError(t, err)
	require.Len(t, jobs.Rows, 4)
	assert.Equal(t, "Pekerjaan Persiapan", jobs.Rows[0].Cells[1])
	assert.True(t, jobs.Rows[3].Bold)
	assert.Equal(t, "9", jobs.Rows[3].Cells[2])

	kat, err := BuildReport(ReportKategori, doc)
	require.NoError(t, err)
	require.Len(t, kat.Rows, 4)
	assert.Equal(t, []string{"A", "B", "C"}, []string{kat.Rows[0].Cells[0], kat.Rows[1].Cells[0], kat.Rows[2].Cells[0]})

	master, err := BuildReport(ReportMasterItem, doc)
	require.NoError(t, err)
	require.Len(t, master.Rows, 9)
	assert.Equal(t, "A.1", master.Rows[0].Cells[0])

	for _, kind := range []string{ReportVolume, ReportAHSP} {
		rep, err := BuildReport(kind, doc)
		require.NoError(t, err)
		assert.Equal(t, kind, rep.Kind)
		for _, r := range rep.Rows {
			assert.Len(t, r.Cells, len(rep.Columns))
		}
	}
}

func TestServer_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/estimations")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unauthorized", body["error"])
}

func TestServer_GetEstimation(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/estimations/est_gudang_02", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := services.DecodeEstimation(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Gudang Logistik", doc.ProjectName)
	assert.Equal(t, 1165500.0, services.ComputeTotals(doc).GrandTotal)
	assert.False(t, doc.WorkItems[0].Details[0].TotalPrice.Valid)
	assert.True(t, doc.WorkItems[0].Details[1].TotalPrice.Valid)
}

func TestServer_ListEstimations(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/estimations", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	docs, err := services.DecodeEstimationList(resp.Body)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestServer_UnknownEstimation(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/estimations/nope/download/pdf", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "estimation not found", body["error"])
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestServer_RABPDFWithLogo(t *testing.T) {
	srv := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("logo", "logo.png")
	require.NoError(t, err)
	_, err = part.Write(testPNG(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := doRequest(t, http.MethodPost, srv.URL+"/estimations/est_kantor_01/download/pdf", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, "RAB_Gedung_Kantor_3_Lantai.pdf",
		services.ResolveFilename(resp.Header.Get("Content-Disposition"), "fallback.pdf"))

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF")))
}

func TestServer_RABExcel(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/estimations/est_gudang_02/download/excel", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RAB_Gudang_Logistik.xlsx",
		services.ResolveFilename(resp.Header.Get("Content-Disposition"), "fallback.xlsx"))

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Gudang Logistik", "A1")
	require.NoError(t, err)
	assert.Equal(t, "RAB - Gudang Logistik", title)

	section, err := f.GetCellValue("Gudang Logistik", "G6", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1050000", section)
}

func TestServer_AuxiliaryReport(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/export/est_gudang_02/download/pdf/volume", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Rekapitulasi Volume Pekerjaan - Gudang Logistik.pdf",
		services.ResolveFilename(resp.Header.Get("Content-Disposition"), "fallback.pdf"))

	missing := doRequest(t, http.MethodGet, srv.URL+"/export/est_gudang_02/download/pdf/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestExcelSheetName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Gudang Logistik", "Gudang Logistik"},
		{"Gedung A/B: Tahap [1]?", "Gedung A_B_ Tahap _1__"},
		{`C:\proyek\*`, "C__proyek__"},
		{"'Kantor'", "Kantor"},
		{"", "RAB"},
		{"' '", "RAB"},
		{"Pembangunan Jembatan Penyeberangan Orang", "Pembangunan Jembatan Penyeberan"},
		{"Rumah Susun Sederhana Sewa – Tahap II", "Rumah Susun Sederhana Sewa – Ta"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := excelSheetName(tt.title)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len([]rune(got)), 31)
		})
	}
}

func TestGenerateExcel_AwkwardProjectName(t *testing.T) {
	doc := SeedDocuments()[1]
	doc.ProjectName = "Gedung A/B: Tahap [1] – Pekerjaan Struktur Atas"

	out, err := GenerateExcel(BuildExportData(doc))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Gedung A_B_ Tahap _1_ – Pekerja", sheet)
	title, err := f.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "RAB - "+doc.ProjectName, title)
}

func TestSanitizeExcelCell(t *testing.T) {
	assert.Equal(t, "'=SUM(A1)", sanitizeExcelCell("=SUM(A1)"))
	assert.Equal(t, "'-5", sanitizeExcelCell("-5"))
	assert.Equal(t, "Galian", sanitizeExcelCell("Galian"))
	assert.Equal(t, "", sanitizeExcelCell(""))
}
