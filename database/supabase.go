package database

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Default project URL, overridable with SUPABASE_URL for other deployments.
const defaultSupabaseURL = "https://cqwcsspafcgybdzgyrok.supabase.co"

// ErrSupabaseNotConfigured is returned when the service role key is absent.
// The server still boots; ingestion and dashboard requests fail with 500
// until the key is provided.
var ErrSupabaseNotConfigured = fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY (or SUPABASE_SECRET_KEY) is not set")

// SupabaseClient talks to the hosted store through its PostgREST interface.
// The database itself stays opaque; everything goes over plain HTTP.
type SupabaseClient struct {
	BaseURL        string
	ServiceRoleKey string
	HTTPClient     *http.Client
}

// NewSupabaseClient reads the REST endpoint and service role key from the
// environment. A missing key is not fatal here; callers check Ready.
func NewSupabaseClient() *SupabaseClient {
	baseURL := os.Getenv("SUPABASE_URL")
	if baseURL == "" {
		baseURL = defaultSupabaseURL
	}

	key := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")
	if key == "" {
		key = os.Getenv("SUPABASE_SECRET_KEY")
	}
	if key == "" {
		log.Println("Supabase service role key not configured; hosted store calls will fail.")
	}

	return &SupabaseClient{
		BaseURL:        baseURL,
		ServiceRoleKey: key,
		HTTPClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Ready reports whether the client has enough configuration to make calls.
func (c *SupabaseClient) Ready() error {
	if c.BaseURL == "" || c.ServiceRoleKey == "" {
		return ErrSupabaseNotConfigured
	}
	return nil
}

// Insert POSTs a JSON array of rows into table via PostgREST. The response
// body is folded into the error on failure so handlers can surface a
// truncated diagnostic.
func (c *SupabaseClient) Insert(ctx context.Context, table string, body []byte) error {
	if err := c.Ready(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.BaseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build insert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.ServiceRoleKey)
	req.Header.Set("Authorization", "Bearer "+c.ServiceRoleKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase insert failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("supabase insert returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// Select GETs rows from table with raw PostgREST query parameters
// (select/order/limit) and returns the JSON body.
func (c *SupabaseClient) Select(ctx context.Context, table string, params url.Values) ([]byte, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", c.BaseURL, table, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build select request: %w", err)
	}
	req.Header.Set("apikey", c.ServiceRoleKey)
	req.Header.Set("Authorization", "Bearer "+c.ServiceRoleKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase select failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("supabase select returned %d: %s", resp.StatusCode, detail)
	}
	return io.ReadAll(resp.Body)
}
