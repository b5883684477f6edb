// Package export requests generated RAB artifacts from the remote export
// service and delivers them to a Sink.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rabfront/client"
	"rabfront/logger"
	"rabfront/services"
)

// State is the lifecycle of a single export call.
type State string

const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StateSucceeded  State = "succeeded"
	StateDelivered  State = "delivered"
	StateFailed     State = "failed"
)

// Request describes one export call.
type Request struct {
	EstimationID string
	Variant      services.Variant
	ProjectName  string // used for the fallback file name
	Logo         []byte // optional; only sent for variants that accept one
	LogoName     string
}

// Result describes a delivered artifact.
type Result struct {
	Filename string
	Size     int
	State    State
}

// Exporter drives export calls. It keeps no state between calls, so a
// repeated call regenerates and re-downloads the artifact.
type Exporter struct {
	client  *client.Client
	logger  *zap.Logger
	metrics *Metrics
}

type Option func(*Exporter)

func WithLogger(l *zap.Logger) Option {
	return func(x *Exporter) { x.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(x *Exporter) { x.metrics = m }
}

func NewExporter(c *client.Client, opts ...Option) *Exporter {
	x := &Exporter{client: c, logger: c.Logger()}
	for _, opt := range opts {
		opt(x)
	}
	if x.logger == nil {
		x.logger = zap.NewNop()
	}
	return x
}

// Export requests the variant for req.EstimationID and delivers it to sink.
// Failures are returned unretried: *client.ServiceError, *client.TransportError,
// *IOError, or a wrapped network error.
func (x *Exporter) Export(ctx context.Context, req Request, sink Sink) (Result, error) {
	started := time.Now()
	result := Result{State: StateIdle}

	spec, ok := req.Variant.Spec()
	if !ok {
		return result, fmt.Errorf("unknown export variant %q", req.Variant)
	}
	if req.EstimationID == "" {
		return result, fmt.Errorf("estimation id is required")
	}

	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := x.logger.With(
		zap.String("request_id", requestID),
		zap.String("estimation_id", req.EstimationID),
		zap.String("variant", string(req.Variant)),
	)
	if actor := client.Subject(x.client.Session().Token()); actor != "" {
		log = log.With(zap.String("actor_id", actor))
	}

	if len(req.Logo) > 0 && !spec.SupportsLogo {
		log.Warn("export.logo_ignored")
	}
	body, contentType, err := buildBody(spec, req)
	if err != nil {
		return result, err
	}

	httpReq, err := x.client.NewRequest(ctx, spec.Method, x.client.URL(spec.Base, req.EstimationID, spec.Path), body, contentType)
	if err != nil {
		return result, err
	}
	httpReq.Header.Set("X-Request-Id", requestID)

	result.State = StateRequesting
	log.Info("export.requesting", zap.String("method", spec.Method), zap.Bool("logo", contentType != ""))

	resp, err := x.client.Do(httpReq)
	if err != nil {
		result.State = StateFailed
		x.metrics.observe(string(req.Variant), classify(err), started, 0)
		log.Error("export.failed", zap.Int("status", client.StatusCode(err)), zap.Error(err))
		return result, err
	}
	defer resp.Body.Close()
	result.State = StateSucceeded

	fallback := services.FallbackFilename(req.Variant, req.ProjectName)
	result.Filename = services.ResolveFilename(resp.Header.Get("Content-Disposition"), fallback)

	size, err := deliver(ctx, sink, resp.Body, result.Filename)
	result.Size = size
	if err != nil {
		result.State = StateFailed
		x.metrics.observe(string(req.Variant), outcomeIO, started, size)
		log.Error("export.failed", zap.String("filename", result.Filename), zap.Error(err))
		return result, err
	}

	result.State = StateDelivered
	x.metrics.observe(string(req.Variant), outcomeDelivered, started, size)
	log.Info("export.delivered",
		zap.String("filename", result.Filename),
		zap.Int("bytes", size),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// buildBody returns a multipart body with the logo attached, or no body.
func buildBody(spec services.VariantSpec, req Request) (io.Reader, string, error) {
	if len(req.Logo) == 0 || !spec.SupportsLogo {
		return nil, "", nil
	}

	mt := mimetype.Detect(req.Logo)
	name := req.LogoName
	if name == "" {
		name = "logo" + mt.Extension()
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="logo"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", mt.String())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create logo part: %w", err)
	}
	if _, err := part.Write(req.Logo); err != nil {
		return nil, "", fmt.Errorf("write logo part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func classify(err error) string {
	var se *client.ServiceError
	if errors.As(err, &se) {
		return outcomeService
	}
	return outcomeTransport
}
