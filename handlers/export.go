package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"rabfront/export"
	"rabfront/logger"
	"rabfront/services"
)

const maxLogoSize = 10 << 20

// HandleExport runs one export variant and streams the artifact back as an
// attachment. Failures answer with an error toast: 502 for service and
// transport errors, 500 when the artifact could not be written.
func HandleExport(x *export.Exporter) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		log := logger.FromContext(e.Request.Context())

		id := e.Request.PathValue("id")
		if id == "" {
			return ErrorToast(e, http.StatusBadRequest, "Missing estimation ID")
		}
		variant, err := services.ParseVariant(e.Request.PathValue("variant"))
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		req := export.Request{
			EstimationID: id,
			Variant:      variant,
		}
		if strings.HasPrefix(e.Request.Header.Get("Content-Type"), "multipart/form-data") {
			if err := e.Request.ParseMultipartForm(maxLogoSize); err != nil {
				return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
			}
		} else if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Invalid form data")
		}
		req.ProjectName = e.Request.FormValue("project_name")

		logo, name, err := readLogo(e.Request)
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}
		req.Logo, req.LogoName = logo, name

		w := &committedWriter{ResponseWriter: e.Response}
		result, err := x.Export(e.Request.Context(), req, export.ResponseSink{W: w})
		if err == nil {
			return nil
		}
		if w.committed {
			// Headers are gone; the client sees a truncated download.
			log.Error("export.response_aborted", zap.String("filename", result.Filename), zap.Error(err))
			return nil
		}
		return ErrorToast(e, exportStatus(err), err.Error())
	}
}

// exportStatus maps an export failure to the response status. Anything that
// is not a local write failure came from the remote service or the network.
func exportStatus(err error) int {
	var ioErr *export.IOError
	if errors.As(err, &ioErr) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

// readLogo returns the optional uploaded logo. A missing or empty file is not
// an error.
func readLogo(r *http.Request) ([]byte, string, error) {
	if r.MultipartForm == nil {
		return nil, "", nil
	}
	file, header, err := r.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	if header.Size > maxLogoSize {
		return nil, "", errors.New("logo exceeds 10 MB")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

// committedWriter records whether the response status has been sent.
type committedWriter struct {
	http.ResponseWriter
	committed bool
}

func (w *committedWriter) WriteHeader(status int) {
	w.committed = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *committedWriter) Write(b []byte) (int, error) {
	w.committed = true
	return w.ResponseWriter.Write(b)
}
