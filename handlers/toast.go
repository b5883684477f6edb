package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"rabfront/logger"
)

const flashCookie = "flash_toast"

// SetToast adds a showToast event to the HX-Trigger header, merging with any
// events already set, and mirrors it in a short-lived flash cookie for full
// page loads.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	log := logger.FromContext(e.Request.Context())
	toast := map[string]string{"message": message, "type": toastType}

	trigger, err := mergeTrigger(e.Response.Header().Get("HX-Trigger"), "showToast", toast)
	if err != nil {
		log.Warn("toast.trigger_failed", zap.Error(err))
	} else {
		e.Response.Header().Set("HX-Trigger", trigger)
	}

	if cookieVal, err := json.Marshal(toast); err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     flashCookie,
			Value:    url.QueryEscape(string(cookieVal)),
			Path:     "/",
			MaxAge:   10,
			HttpOnly: false,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// mergeTrigger sets event in an HX-Trigger JSON object. An existing value that
// is not a JSON object is replaced.
func mergeTrigger(existing, event string, payload any) (string, error) {
	events := map[string]any{}
	if existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			events = map[string]any{}
		}
	}
	events[event] = payload
	data, err := json.Marshal(events)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ErrorToast sets an error toast and tells HTMX not to swap the response body.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
