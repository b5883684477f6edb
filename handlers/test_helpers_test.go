package handlers

import (
	"net/http"
	"net/http/httptest"

	"github.com/pocketbase/pocketbase/core"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.Request = req
	e.Response = rec
	return e
}

func newToastEvent() (*core.RequestEvent, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return newTestRequestEvent(httptest.NewRequest(http.MethodPost, "/", nil), rec), rec
}
