package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

type DBClient struct {
	DB *sql.DB
}

// NewPostgresDB connects to a plain Postgres instance for self-hosted
// deployments that skip the hosted Supabase store.
func NewPostgresDB() (*DBClient, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	if err := ensurePostgresSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("Successfully connected to PostgreSQL database!")
	return &DBClient{DB: db}, nil
}

func ensurePostgresSchema(db *sql.DB) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS analytics_events (
			event_id     TEXT PRIMARY KEY,
			session_id   TEXT NOT NULL,
			event_type   TEXT NOT NULL,
			page_key     TEXT,
			visitor_name TEXT,
			duration_ms  BIGINT,
			occurred_at  TIMESTAMPTZ NOT NULL,
			path         TEXT,
			url          TEXT,
			referrer     TEXT,
			ip           TEXT,
			user_agent   TEXT,
			device_type  TEXT,
			os           TEXT,
			browser      TEXT,
			viewport_w   BIGINT,
			viewport_h   BIGINT,
			screen_w     BIGINT,
			screen_h     BIGINT,
			tz           TEXT,
			language     TEXT,
			is_mobile    BOOLEAN,
			meta         JSONB NOT NULL DEFAULT '{}'::jsonb
		);
		CREATE INDEX IF NOT EXISTS idx_analytics_events_occurred_at
			ON analytics_events (occurred_at DESC);
	`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to ensure analytics_events table: %w", err)
	}
	return nil
}

func (c *DBClient) Close() {
	if c.DB != nil {
		err := c.DB.Close()
		if err != nil {
			log.Printf("Error closing database connection: %v", err)
		} else {
			log.Println("PostgreSQL database connection closed.")
		}
	}
}
