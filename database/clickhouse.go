package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseClient struct {
	Conn clickhouse.Conn
}

// NewClickHouseDB connects to a self-hosted ClickHouse instance for
// deployments that keep analytics off the hosted Supabase store.
func NewClickHouseDB() (*ClickHouseClient, error) {
	host := os.Getenv("CLICKHOUSE_HOST")
	nativePortStr := os.Getenv("CLICKHOUSE_NATIVE_PORT")
	dbName := os.Getenv("CLICKHOUSE_DB_NAME")
	username := os.Getenv("CLICKHOUSE_USERNAME")
	password := os.Getenv("CLICKHOUSE_PASSWORD")

	if host == "" || nativePortStr == "" || dbName == "" {
		return nil, fmt.Errorf("CLICKHOUSE_HOST, CLICKHOUSE_NATIVE_PORT, or CLICKHOUSE_DB_NAME environment variables are not set")
	}

	nativePort, err := strconv.Atoi(nativePortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CLICKHOUSE_NATIVE_PORT: %w", err)
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, nativePort)},
		Auth: clickhouse.Auth{
			Database: dbName,
			Username: username,
			Password: password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "oamour-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: time.Second * 5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via Native TCP: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := ensureClickHouseSchema(ctx, conn); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to ClickHouse database via Native TCP!")
	return &ClickHouseClient{Conn: conn}, nil
}

func ensureClickHouseSchema(ctx context.Context, conn clickhouse.Conn) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS analytics_events (
			event_id     String,
			session_id   String,
			event_type   LowCardinality(String),
			page_key     Nullable(String),
			visitor_name Nullable(String),
			duration_ms  Nullable(Int64),
			occurred_at  DateTime64(3, 'UTC'),
			path         Nullable(String),
			url          Nullable(String),
			referrer     Nullable(String),
			ip           Nullable(String),
			user_agent   Nullable(String),
			device_type  Nullable(String),
			os           Nullable(String),
			browser      Nullable(String),
			viewport_w   Nullable(Int64),
			viewport_h   Nullable(Int64),
			screen_w     Nullable(Int64),
			screen_h     Nullable(Int64),
			tz           Nullable(String),
			language     Nullable(String),
			is_mobile    Nullable(Bool),
			meta         String
		) ENGINE = MergeTree()
		ORDER BY (occurred_at, session_id)
	`
	if err := conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure analytics_events table: %w", err)
	}
	return nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn != nil {
		c.Conn.Close()
		log.Println("ClickHouse connection closed.")
	}
}
