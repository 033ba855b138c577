package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"welth/internal/dashboard"
)

// Client-side events carried in HX-Trigger.
const (
	EventShowNotification = "show-notification"
	EventAccountsRefresh  = "accounts:refresh"
)

// How long each toast stays on screen, in milliseconds.
var toastDurations = map[dashboard.NotificationType]int{
	dashboard.NotificationSuccess: 3000,
	dashboard.NotificationInfo:    3000,
	dashboard.NotificationWarning: 4000,
	dashboard.NotificationError:   5000,
}

// toastEvent is the payload of the show-notification event.
type toastEvent struct {
	Type     dashboard.NotificationType `json:"type"`
	Message  string                     `json:"message"`
	Duration int                        `json:"duration"`
}

type refreshEvent struct {
	AccountID string `json:"accountId"`
}

// HTMXResponse collects the status, HX-Trigger events and body of an htmx
// reply before writing them in one go.
type HTMXResponse struct {
	status int
	events map[string]any
	header http.Header
	body   []byte
}

func NewHTMXResponse() *HTMXResponse {
	return &HTMXResponse{
		status: http.StatusOK,
		events: map[string]any{},
		header: http.Header{},
	}
}

func (b *HTMXResponse) Status(code int) *HTMXResponse {
	b.status = code
	return b
}

// TriggerAccountsRefresh asks the account grid to reload.
func (b *HTMXResponse) TriggerAccountsRefresh(accountID string) *HTMXResponse {
	b.events[EventAccountsRefresh] = refreshEvent{AccountID: accountID}
	return b
}

// TriggerToast queues n as a toast. An empty notification queues nothing.
func (b *HTMXResponse) TriggerToast(n dashboard.Notification) *HTMXResponse {
	if n.Empty() {
		return b
	}
	d, ok := toastDurations[n.Type]
	if !ok {
		d = toastDurations[dashboard.NotificationError]
	}
	b.events[EventShowNotification] = toastEvent{Type: n.Type, Message: n.Message, Duration: d}
	return b
}

func (b *HTMXResponse) TriggerErrorNotification(message string) *HTMXResponse {
	return b.TriggerToast(dashboard.Notification{Type: dashboard.NotificationError, Message: message})
}

func (b *HTMXResponse) Header(name, value string) *HTMXResponse {
	b.header.Set(name, value)
	return b
}

func (b *HTMXResponse) BodyHTML(html []byte) *HTMXResponse {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = html
	return b
}

// Write sends the response. Events that fail to encode are dropped.
func (b *HTMXResponse) Write(w http.ResponseWriter) {
	h := w.Header()
	for name, values := range b.header {
		h[name] = values
	}
	if len(b.events) > 0 {
		if raw, err := json.Marshal(b.events); err == nil {
			h.Set("HX-Trigger", string(raw))
		}
	}

	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse renders message, escaped, as an error block.
func ErrorResponse(status int, message string) *HTMXResponse {
	return NewHTMXResponse().
		Status(status).
		BodyHTML([]byte(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`))
}

func NotFoundError(message string) *HTMXResponse {
	return ErrorResponse(http.StatusNotFound, message)
}

func InternalServerError(message string) *HTMXResponse {
	return ErrorResponse(http.StatusInternalServerError, message)
}
