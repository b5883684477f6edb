// Package client talks to the remote estimation and export APIs.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"rabfront/services"
)

// Client issues authenticated requests against the estimation API and the
// export API. It holds no per-call state.
type Client struct {
	estimationBase string
	exportBase     string
	session        Session
	http           *http.Client
	logger         *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient. No timeout is imposed otherwise.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(estimationBase, exportBase string, session Session, opts ...Option) *Client {
	c := &Client{
		estimationBase: strings.TrimRight(estimationBase, "/"),
		exportBase:     strings.TrimRight(exportBase, "/"),
		session:        session,
		http:           http.DefaultClient,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == nil {
		c.session = StaticSession("")
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger { return c.logger }

// Session returns the session the client reads tokens from.
func (c *Client) Session() Session { return c.session }

// URL builds {base}/{id}{suffix} for the selected API root.
func (c *Client) URL(base services.Base, id, suffix string) string {
	root := c.estimationBase
	if base == services.ExportBase {
		root = c.exportBase
	}
	if id == "" {
		return root + suffix
	}
	return root + "/" + url.PathEscape(id) + suffix
}

// NewRequest builds a request carrying the current bearer token.
func (c *Client) NewRequest(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// Do sends req. Non-2xx responses are consumed, closed and returned as
// *ServiceError or *TransportError; on success the caller owns resp.Body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	if err := CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// FetchEstimation loads one estimation document.
func (c *Client) FetchEstimation(ctx context.Context, id string) (services.EstimationDocument, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, c.URL(services.EstimationBase, id, ""), nil, "")
	if err != nil {
		return services.EstimationDocument{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		c.logger.Warn("estimation.fetch_failed", zap.String("estimation_id", id), zap.Error(err))
		return services.EstimationDocument{}, err
	}
	defer resp.Body.Close()

	return services.DecodeEstimation(resp.Body)
}

// ListEstimations loads the estimation index.
func (c *Client) ListEstimations(ctx context.Context) ([]services.EstimationDocument, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, c.URL(services.EstimationBase, "", ""), nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		c.logger.Warn("estimation.list_failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	return services.DecodeEstimationList(resp.Body)
}
