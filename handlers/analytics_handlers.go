// api/handlers/analytics_handlers.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"oamour/api/alert"
	"oamour/api/database"
	"oamour/api/metrics"
	"oamour/api/models"
	"oamour/api/store"
	"oamour/api/utils"
)

// MaxEventsPerBatch bounds a single ingest call; the client truncates to the
// same number before sending, the server re-truncates defensively.
const MaxEventsPerBatch = 120

type AnalyticsHandlers struct {
	Store  store.EventStore
	Mailer *alert.Mailer
}

func NewAnalyticsHandlers(s store.EventStore, m *alert.Mailer) *AnalyticsHandlers {
	return &AnalyticsHandlers{Store: s, Mailer: m}
}

// IngestEvents accepts a batch of client events, normalizes them into rows
// and bulk-writes them to the analytics store.
func (h *AnalyticsHandlers) IngestEvents(c *gin.Context) {
	var req models.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("Error binding incoming analytics JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload."})
		return
	}

	sessionID := utils.NullableString(req.SessionID)
	events := req.Events
	if len(events) > MaxEventsPerBatch {
		events = events[:MaxEventsPerBatch]
	}

	if sessionID == nil || len(events) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId and events are required."})
		return
	}

	metrics.EventsReceived.Add(float64(len(events)))
	ip := clientIP(c)

	rows := make([]models.EventRow, 0, len(events))
	for _, event := range events {
		if !models.IsAllowedEventType(event.EventType) {
			metrics.EventsDroppedInvalid.Inc()
			continue
		}
		rows = append(rows, normalizeEvent(*sessionID, ip, event))
	}

	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid events."})
		return
	}

	// A fresh non-bot session triggers the one-shot load alert. Fire and
	// forget; mail failures never surface in the ingest response.
	for i := range rows {
		row := &rows[i]
		if row.EventType == models.EventSessionStart && !row.IsBot() {
			h.Mailer.DispatchVisitorLoad(alert.VisitorLoad{
				OccurredAt:  row.OccurredAt,
				IP:          row.IP,
				DeviceType:  row.DeviceType,
				OS:          row.OS,
				Browser:     row.Browser,
				Path:        row.Path,
				URL:         row.URL,
				VisitorName: row.VisitorName,
			})
			break
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Store.InsertEvents(ctx, rows); err != nil {
		metrics.InsertFailures.Inc()
		log.Printf("Error inserting analytics events: %v", err)
		if errors.Is(err, database.ErrSupabaseNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Server analytics env not configured.",
				"debug": configDebugFlags(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Failed to write analytics.",
			"detail": utils.Truncate(err.Error(), 500),
		})
		return
	}

	metrics.EventsInserted.Add(float64(len(rows)))
	c.JSON(http.StatusOK, gin.H{"ok": true, "inserted": len(rows)})
}

// normalizeEvent coerces one incoming event into a storable row and stamps
// the bot flag into its meta bag.
func normalizeEvent(sessionID string, ip *string, event models.IncomingEvent) models.EventRow {
	path := utils.NullableString(event.Path)
	userAgent := utils.NullableString(event.UserAgent)
	isBot := utils.IsLikelyBot(userAgent, path)
	if isBot {
		metrics.EventsFlaggedBot.Inc()
	}

	occurredAt := strings.TrimSpace(event.OccurredAt)
	if occurredAt == "" {
		occurredAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	meta := make(map[string]any, len(event.Meta)+1)
	for k, v := range event.Meta {
		meta[k] = v
	}
	meta["is_bot"] = isBot

	return models.EventRow{
		EventID:     uuid.New().String(),
		SessionID:   sessionID,
		EventType:   event.EventType,
		PageKey:     utils.NullableString(event.PageKey),
		VisitorName: utils.NullableString(event.VisitorName),
		DurationMs:  utils.NullableInt(event.DurationMs),
		OccurredAt:  occurredAt,
		Path:        path,
		URL:         utils.NullableString(event.URL),
		Referrer:    utils.NullableString(event.Referrer),
		IP:          ip,
		UserAgent:   userAgent,
		DeviceType:  utils.NullableString(event.DeviceType),
		OS:          utils.NullableString(event.OS),
		Browser:     utils.NullableString(event.Browser),
		ViewportW:   utils.NullableInt(event.ViewportW),
		ViewportH:   utils.NullableInt(event.ViewportH),
		ScreenW:     utils.NullableInt(event.ScreenW),
		ScreenH:     utils.NullableInt(event.ScreenH),
		TZ:          utils.NullableString(event.TZ),
		Language:    utils.NullableString(event.Language),
		IsMobile:    event.IsMobile,
		Meta:        meta,
	}
}

// configDebugFlags reports which store env vars are present, never their
// values, so a misconfigured deployment is diagnosable from the response.
func configDebugFlags() gin.H {
	return gin.H{
		"hasSupabaseUrl":    os.Getenv("SUPABASE_URL") != "",
		"hasServiceRoleKey": os.Getenv("SUPABASE_SERVICE_ROLE_KEY") != "" || os.Getenv("SUPABASE_SECRET_KEY") != "",
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP. With
// neither header present the stored ip is null.
func clientIP(c *gin.Context) *string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return &first
		}
	}
	return utils.NullableString(c.GetHeader("X-Real-IP"))
}
