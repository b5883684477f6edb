package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TransportError is a non-2xx response without a usable error payload.
type TransportError struct {
	Status int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP error, status %d", e.Status)
}

// ServiceError is a non-2xx response whose body carried {"error": "..."}.
// Its message is the server's, verbatim.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// maxErrorBody bounds how much of a failed response is read while looking
// for an error payload.
const maxErrorBody = 64 << 10

// CheckResponse returns nil for 2xx responses. Otherwise it consumes the body
// and returns a *ServiceError or *TransportError.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return &ServiceError{Status: resp.StatusCode, Message: payload.Error}
	}
	return &TransportError{Status: resp.StatusCode}
}

// StatusCode extracts the HTTP status from a classified error, or 0.
func StatusCode(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Status
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}
