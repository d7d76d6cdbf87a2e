// api/store/postgres_store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"oamour/api/models"
)

// PostgresStore persists events in a plain Postgres database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const postgresInsertColumns = 23

func (s *PostgresStore) InsertEvents(ctx context.Context, rows []models.EventRow) error {
	if len(rows) == 0 {
		return nil
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for i, row := range rows {
		meta, err := json.Marshal(row.Meta)
		if err != nil {
			meta = []byte("{}")
		}
		base := i * postgresInsertColumns
		marks := make([]string, postgresInsertColumns)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
		args = append(args,
			row.EventID, row.SessionID, row.EventType, row.PageKey, row.VisitorName,
			row.DurationMs, parseOccurredAt(row.OccurredAt), row.Path, row.URL,
			row.Referrer, row.IP, row.UserAgent, row.DeviceType, row.OS, row.Browser,
			row.ViewportW, row.ViewportH, row.ScreenW, row.ScreenH, row.TZ,
			row.Language, row.IsMobile, meta,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO analytics_events (
			event_id, session_id, event_type, page_key, visitor_name, duration_ms,
			occurred_at, path, url, referrer, ip, user_agent, device_type, os, browser,
			viewport_w, viewport_h, screen_w, screen_h, tz, language, is_mobile, meta
		) VALUES %s
	`, strings.Join(placeholders, ", "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert analytics rows: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentDetails(ctx context.Context, limit int) ([]models.DetailRow, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM analytics_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`, detailsProjection)

	rows, err := s.db.QueryContext(ctx, query, limit)
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
		return nil, fmt.Errorf("error iterating analytics details: %w", err)
	}
	return results, nil
}
