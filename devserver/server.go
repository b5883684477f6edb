// Package devserver is a development stand-in for the remote estimation and
// export service. It serves fixture estimations and renders the export
// documents locally so the front end can run without the real backend.
package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"rabfront/services"
)

const maxLogoSize = 10 << 20

// Server implements the remote API routes relative to its mount point.
type Server struct {
	store  *Store
	token  string
	logger *zap.Logger
}

// New returns a stub server. An empty token disables the bearer check.
func New(store *Store, token string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, token: token, logger: logger}
}

// Handler returns the routed, authenticated handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /estimations", s.handleList)
	mux.HandleFunc("GET /estimations/{id}", s.handleGet)
	mux.HandleFunc("POST /estimations/{id}/download/pdf", s.handleRABPDF)
	mux.HandleFunc("POST /estimations/{id}/download/excel", s.handleRABExcel)
	mux.HandleFunc("GET /export/{id}/download/pdf/{kind}", s.handleReport)
	return s.requireToken(mux)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.store.List()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": doc})
}

func (s *Server) handleRABPDF(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	logo, err := readLogo(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pdf, err := GeneratePDF(BuildExportData(doc), logo)
	if err != nil {
		s.renderFailed(w, doc.ID, "rab-pdf", err)
		return
	}
	name := fmt.Sprintf(`attachment; filename="RAB_%s.pdf"`, services.Sanitize(doc.ProjectName))
	writeFile(w, "application/pdf", name, pdf)
}

func (s *Server) handleRABExcel(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	xlsx, err := GenerateExcel(BuildExportData(doc))
	if err != nil {
		s.renderFailed(w, doc.ID, "rab-excel", err)
		return
	}
	name := fmt.Sprintf(`attachment; filename="RAB_%s.xlsx"`, services.Sanitize(doc.ProjectName))
	writeFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name, xlsx)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	kind := r.PathValue("kind")
	rep, err := BuildReport(kind, doc)
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	pdf, err := GenerateReportPDF(rep, BuildExportData(doc))
	if err != nil {
		s.renderFailed(w, doc.ID, kind, err)
		return
	}

	// Auxiliary reports carry an RFC 5987 encoded name.
	name := "attachment; filename*=UTF-8''" + url.PathEscape(rep.Title+" - "+doc.ProjectName+".pdf")
	writeFile(w, "application/pdf", name, pdf)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (services.EstimationDocument, bool) {
	doc, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "estimation not found")
		return services.EstimationDocument{}, false
	}
	return doc, true
}

func (s *Server) renderFailed(w http.ResponseWriter, id, kind string, err error) {
	s.logger.Error("devserver.render_failed",
		zap.String("estimation_id", id),
		zap.String("kind", kind),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "render failed")
}

// readLogo returns the optional "logo" multipart file; non-multipart bodies
// carry no logo.
func readLogo(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, nil
	}
	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	file, _, err := r.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid logo: %w", err)
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, maxLogoSize))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeFile(w http.ResponseWriter, contentType, disposition string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
