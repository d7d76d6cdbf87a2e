// api/store/clickhouse_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"oamour/api/database"
	"oamour/api/models"
)

// ClickHouseStore persists events in a self-hosted ClickHouse instance.
type ClickHouseStore struct {
	DB *database.ClickHouseClient
}

func NewClickHouseStore(chClient *database.ClickHouseClient) *ClickHouseStore {
	return &ClickHouseStore{DB: chClient}
}

func (s *ClickHouseStore) InsertEvents(ctx context.Context, rows []models.EventRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_id, session_id, event_type, page_key, visitor_name, duration_ms,
			occurred_at, path, url, referrer, ip, user_agent, device_type, os, browser,
			viewport_w, viewport_h, screen_w, screen_h, tz, language, is_mobile, meta
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, row := range rows {
		meta, err := json.Marshal(row.Meta)
		if err != nil {
			meta = []byte("{}")
		}
		err = batch.Append(
			row.EventID,
			row.SessionID,
			row.EventType,
			row.PageKey,
			row.VisitorName,
			row.DurationMs,
			parseOccurredAt(row.OccurredAt),
			row.Path,
			row.URL,
			row.Referrer,
			row.IP,
			row.UserAgent,
			row.DeviceType,
			row.OS,
			row.Browser,
			row.ViewportW,
			row.ViewportH,
			row.ScreenW,
			row.ScreenH,
			row.TZ,
			row.Language,
			row.IsMobile,
			string(meta),
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", row.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) RecentDetails(ctx context.Context, limit int) ([]models.DetailRow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM analytics_events
		ORDER BY occurred_at DESC
		LIMIT ?
	`, detailsProjection)

	rows, err := s.DB.Conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics details: %w", err)
	}
	defer rows.Close()

	var results []models.DetailRow
	for rows.Next() {
		var (
			occurredAt time.Time
			row        models.DetailRow
		)
		if err := rows.Scan(
			&occurredAt,
			&row.VisitorName,
			&row.SessionID,
			&row.PageKey,
			&row.EventType,
			&row.DurationMs,
			&row.DeviceType,
			&row.OS,
			&row.Browser,
			&row.IsMobile,
			&row.IP,
			&row.Path,
			&row.URL,
			&row.ViewportW,
			&row.ViewportH,
			&row.Language,
			&row.TZ,
		); err != nil {
			log.Printf("Error scanning analytics detail row: %v", err)
			continue
		}
		row.OccurredAt = occurredAt.UTC().Format(time.RFC3339Nano)
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during analytics details query: %w", err)
	}
	return results, nil
}

// parseOccurredAt tolerates client-supplied timestamps; anything unparsable
// falls back to the current time so one bad event cannot sink a batch.
func parseOccurredAt(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
