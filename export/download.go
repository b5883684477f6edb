package export

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
)

// Sink materializes a downloaded artifact under a file name.
type Sink interface {
	Save(ctx context.Context, name string, payload []byte) error
}

// IOError reports that an artifact could not be materialized.
type IOError struct {
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Name, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// deliver reads the whole payload and hands it to sink under name.
func deliver(ctx context.Context, sink Sink, body io.Reader, name string) (int, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return 0, &IOError{Name: name, Err: fmt.Errorf("read payload: %w", err)}
	}
	if err := sink.Save(ctx, name, payload); err != nil {
		return len(payload), &IOError{Name: name, Err: err}
	}
	return len(payload), nil
}

// DirSink writes artifacts into a local directory.
type DirSink struct {
	Dir string
}

// Save writes through a temp file in Dir and renames it into place. The temp
// file never outlives a failed call.
func (s DirSink) Save(_ context.Context, name string, payload []byte) (err error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(payload); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err = os.Rename(tmp.Name(), filepath.Join(dir, filepath.Base(name))); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// attachmentDisposition quotes name as RFC 2183 requires, switching to the
// RFC 2231 extended form when it is not plain ASCII.
func attachmentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

// ResponseSink streams the artifact to a browser as an attachment.
type ResponseSink struct {
	W http.ResponseWriter
}

func (s ResponseSink) Save(_ context.Context, name string, payload []byte) error {
	h := s.W.Header()
	h.Set("Content-Type", mimetype.Detect(payload).String())
	h.Set("Content-Disposition", attachmentDisposition(name))
	h.Set("Content-Length", strconv.Itoa(len(payload)))
	s.W.WriteHeader(http.StatusOK)
	if _, err := s.W.Write(payload); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
