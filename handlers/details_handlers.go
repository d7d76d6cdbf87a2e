// api/handlers/details_handlers.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"oamour/api/database"
	"oamour/api/metrics"
	"oamour/api/store"
	"oamour/api/utils"
)

// DetailsRowLimit is how many recent rows the dashboard works from.
const DetailsRowLimit = 500

type DetailsHandlers struct {
	Store store.EventStore
}

func NewDetailsHandlers(s store.EventStore) *DetailsHandlers {
	return &DetailsHandlers{Store: s}
}

// GetDetailsData returns the summary, per-page dwell table and raw rows for
// the password-gated dashboard. Auth happens in middleware.
func (h *DetailsHandlers) GetDetailsData(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	rows, err := h.Store.RecentDetails(ctx, DetailsRowLimit)
	if err != nil {
		metrics.DashboardReads.WithLabelValues("error").Inc()
		log.Printf("Error loading analytics details: %v", err)
		if errors.Is(err, database.ErrSupabaseNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server analytics env not configured."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Failed to load analytics details.",
			"detail": utils.Truncate(err.Error(), 500),
		})
		return
	}

	metrics.DashboardReads.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, store.BuildDetails(rows))
}
