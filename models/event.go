// api/models/event.go
package models

// Allowed analytics event types. Anything else is dropped at ingestion.
const (
	EventSessionStart = "session_start"
	EventPageView     = "page_view"
	EventPageLeave    = "page_leave"
	EventInteraction  = "interaction"
	EventSessionEnd   = "session_end"
)

var allowedEventTypes = map[string]bool{
	EventSessionStart: true,
	EventPageView:     true,
	EventPageLeave:    true,
	EventInteraction:  true,
	EventSessionEnd:   true,
}

// IsAllowedEventType reports whether t is one of the five recognized types.
func IsAllowedEventType(t string) bool {
	return allowedEventTypes[t]
}

// IncomingEvent is the wire shape of a single client-submitted event.
// Every field except eventType is optional; numeric fields use pointers so
// that "absent" and "zero" stay distinguishable during normalization.
type IncomingEvent struct {
	EventType   string         `json:"eventType"`
	PageKey     string         `json:"pageKey,omitempty"`
	VisitorName string         `json:"visitorName,omitempty"`
	DurationMs  *float64       `json:"durationMs,omitempty"`
	OccurredAt  string         `json:"occurredAt,omitempty"`
	Path        string         `json:"path,omitempty"`
	URL         string         `json:"url,omitempty"`
	Referrer    string         `json:"referrer,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
	DeviceType  string         `json:"deviceType,omitempty"`
	OS          string         `json:"os,omitempty"`
	Browser     string         `json:"browser,omitempty"`
	ViewportW   *float64       `json:"viewportW,omitempty"`
	ViewportH   *float64       `json:"viewportH,omitempty"`
	ScreenW     *float64       `json:"screenW,omitempty"`
	ScreenH     *float64       `json:"screenH,omitempty"`
	TZ          string         `json:"tz,omitempty"`
	Language    string         `json:"language,omitempty"`
	IsMobile    *bool          `json:"isMobile,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// IngestRequest is the body of POST /api/analytics/events.
type IngestRequest struct {
	SessionID string          `json:"sessionId"`
	Events    []IncomingEvent `json:"events"`
}

// EventRow is a fully normalized analytics row, keyed the way the
// analytics_events table stores it. Pointer fields map to nullable columns.
type EventRow struct {
	EventID     string         `json:"event_id"`
	SessionID   string         `json:"session_id"`
	EventType   string         `json:"event_type"`
	PageKey     *string        `json:"page_key"`
	VisitorName *string        `json:"visitor_name"`
	DurationMs  *int64         `json:"duration_ms"`
	OccurredAt  string         `json:"occurred_at"`
	Path        *string        `json:"path"`
	URL         *string        `json:"url"`
	Referrer    *string        `json:"referrer"`
	IP          *string        `json:"ip"`
	UserAgent   *string        `json:"user_agent"`
	DeviceType  *string        `json:"device_type"`
	OS          *string        `json:"os"`
	Browser     *string        `json:"browser"`
	ViewportW   *int64         `json:"viewport_w"`
	ViewportH   *int64         `json:"viewport_h"`
	ScreenW     *int64         `json:"screen_w"`
	ScreenH     *int64         `json:"screen_h"`
	TZ          *string        `json:"tz"`
	Language    *string        `json:"language"`
	IsMobile    *bool          `json:"is_mobile"`
	Meta        map[string]any `json:"meta"`
}

// IsBot reports the is_bot flag stamped into the row's meta at ingestion.
func (r *EventRow) IsBot() bool {
	if r.Meta == nil {
		return false
	}
	flagged, _ := r.Meta["is_bot"].(bool)
	return flagged
}

// DetailRow is the fixed column projection returned to the dashboard.
type DetailRow struct {
	OccurredAt  string  `json:"occurred_at"`
	VisitorName *string `json:"visitor_name"`
	SessionID   string  `json:"session_id"`
	PageKey     *string `json:"page_key"`
	EventType   string  `json:"event_type"`
	DurationMs  *int64  `json:"duration_ms"`
	DeviceType  *string `json:"device_type"`
	OS          *string `json:"os"`
	Browser     *string `json:"browser"`
	IsMobile    *bool   `json:"is_mobile"`
	IP          *string `json:"ip"`
	Path        *string `json:"path"`
	URL         *string `json:"url"`
	ViewportW   *int64  `json:"viewport_w"`
	ViewportH   *int64  `json:"viewport_h"`
	Language    *string `json:"language"`
	TZ          *string `json:"tz"`
}
