package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func parseToast(t *testing.T, trigger string) (map[string]json.RawMessage, map[string]string) {
	t.Helper()
	if trigger == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trigger), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	raw, ok := parsed["showToast"]
	if !ok {
		t.Fatal("expected showToast key in HX-Trigger JSON")
	}
	var toast map[string]string
	if err := json.Unmarshal(raw, &toast); err != nil {
		t.Fatalf("showToast value is not valid JSON: %v", err)
	}
	return parsed, toast
}

func TestSetToast_Types(t *testing.T) {
	tests := []struct {
		name      string
		toastType string
		message   string
	}{
		{"success", "success", "RAB_Gudang.pdf saved"},
		{"error", "error", "render failed"},
		{"quotes", "info", `Item "Special" saved`},
		{"angle brackets", "info", `<script>alert("xss")</script>`},
		{"newline", "warning", "line1\nline2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newToastEvent()

			SetToast(e, tt.toastType, tt.message)

			_, toast := parseToast(t, rec.Header().Get("HX-Trigger"))
			if toast["type"] != tt.toastType {
				t.Errorf("expected type %q, got %q", tt.toastType, toast["type"])
			}
			if toast["message"] != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, toast["message"])
			}
		})
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	e, rec := newToastEvent()
	rec.Header().Set("HX-Trigger", `{"estimationLoaded":{"id":"est_1"}}`)

	SetToast(e, "success", "Merged toast")

	parsed, toast := parseToast(t, rec.Header().Get("HX-Trigger"))
	if _, ok := parsed["estimationLoaded"]; !ok {
		t.Error("expected estimationLoaded key to be preserved after merge")
	}
	if toast["message"] != "Merged toast" {
		t.Errorf("expected message %q, got %q", "Merged toast", toast["message"])
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	e, rec := newToastEvent()
	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, "error", "Overwritten")

	parsed, _ := parseToast(t, rec.Header().Get("HX-Trigger"))
	if len(parsed) != 1 {
		t.Errorf("expected only showToast, got %v", parsed)
	}
}

func TestSetToast_FlashCookie(t *testing.T) {
	e, rec := newToastEvent()

	SetToast(e, "info", "Hello")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != flashCookie {
		t.Fatalf("expected flash cookie, got %v", cookies)
	}
	if !strings.Contains(cookies[0].Value, "Hello") {
		t.Errorf("cookie value %q does not carry the message", cookies[0].Value)
	}
}

func TestErrorToast_StatusCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		msg  string
	}{
		{"bad request", http.StatusBadRequest, "unknown export variant"},
		{"bad gateway", http.StatusBadGateway, "HTTP error, status 503"},
		{"server error", http.StatusInternalServerError, "save RAB.pdf: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newToastEvent()

			if err := ErrorToast(e, tt.code, tt.msg); err != nil {
				t.Fatalf("ErrorToast returned error: %v", err)
			}

			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, rec.Code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap: none")
			}
			if rec.Body.String() != tt.msg {
				t.Errorf("expected body %q, got %q", tt.msg, rec.Body.String())
			}
			_, toast := parseToast(t, rec.Header().Get("HX-Trigger"))
			if toast["type"] != "error" {
				t.Errorf("expected type 'error', got %q", toast["type"])
			}
		})
	}
}
