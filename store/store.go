// api/store/store.go
package store

import (
	"context"

	"oamour/api/models"
)

// EventStore is the persistence contract for analytics rows. The default
// implementation forwards to the hosted Supabase store over REST; the
// ClickHouse and Postgres stores exist for self-hosted deployments.
type EventStore interface {
	// InsertEvents bulk-writes normalized rows. Atomicity across the batch
	// is whatever the backing store provides for a single call.
	InsertEvents(ctx context.Context, rows []models.EventRow) error

	// RecentDetails returns the newest rows (occurred_at descending) in the
	// dashboard's fixed column projection.
	RecentDetails(ctx context.Context, limit int) ([]models.DetailRow, error)
}

// detailsProjection is the column list the dashboard reads, in order.
const detailsProjection = "occurred_at,visitor_name,session_id,page_key,event_type,duration_ms,device_type,os,browser,is_mobile,ip,path,url,viewport_w,viewport_h,language,tz"
