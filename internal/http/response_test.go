package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"welth/internal/dashboard"
)

func decodeTriggers(t *testing.T, w *httptest.ResponseRecorder) map[string]map[string]any {
	t.Helper()
	var triggers map[string]map[string]any
	if err := json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("invalid HX-Trigger %q: %v", w.Header().Get("HX-Trigger"), err)
	}
	return triggers
}

func TestHTMXResponse_Plain(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusAccepted).
		BodyHTML([]byte("<p>ok</p>")).
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	if w.Body.String() != "<p>ok</p>" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("HX-Trigger should be absent without events")
	}
}

func TestHTMXResponse_Toasts(t *testing.T) {
	tests := []struct {
		name         string
		notification dashboard.Notification
		wantDuration float64
	}{
		{"success", dashboard.Notification{Type: dashboard.NotificationSuccess, Message: dashboard.MsgDefaultUpdated}, 3000},
		{"warning", dashboard.Notification{Type: dashboard.NotificationWarning, Message: dashboard.MsgDefaultRequired}, 4000},
		{"error", dashboard.Notification{Type: dashboard.NotificationError, Message: "boom"}, 5000},
		{"unknown type", dashboard.Notification{Type: "odd", Message: "?"}, 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHTMXResponse().TriggerToast(tt.notification).Write(w)

			toast := decodeTriggers(t, w)[EventShowNotification]
			if toast["type"] != string(tt.notification.Type) || toast["message"] != tt.notification.Message {
				t.Errorf("unexpected toast %v", toast)
			}
			if toast["duration"] != tt.wantDuration {
				t.Errorf("duration = %v, want %v", toast["duration"], tt.wantDuration)
			}
		})
	}
}

func TestHTMXResponse_EmptyToast(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().TriggerToast(dashboard.Notification{}).Write(w)
	if w.Header().Get("HX-Trigger") != "" {
		t.Errorf("empty notification must not set HX-Trigger")
	}
}

func TestHTMXResponse_RefreshAndToast(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerAccountsRefresh("acc-1").
		TriggerToast(dashboard.Notification{Type: dashboard.NotificationSuccess, Message: dashboard.MsgDefaultUpdated}).
		Header("HX-Reswap", "none").
		Write(w)

	triggers := decodeTriggers(t, w)
	if triggers[EventAccountsRefresh]["accountId"] != "acc-1" {
		t.Errorf("unexpected refresh event %v", triggers[EventAccountsRefresh])
	}
	if triggers[EventShowNotification]["type"] != "success" {
		t.Errorf("unexpected toast %v", triggers[EventShowNotification])
	}
	if w.Header().Get("HX-Reswap") != "none" {
		t.Errorf("custom header not written")
	}
}

func TestErrorResponseEscapes(t *testing.T) {
	w := httptest.NewRecorder()
	NotFoundError("<b>account not found</b>").Write(w)

	if w.Code != http.StatusNotFound {
		t.Errorf("Status code = %d, want 404", w.Code)
	}
	if strings.Contains(w.Body.String(), "<b>") {
		t.Errorf("message must be escaped: %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}
