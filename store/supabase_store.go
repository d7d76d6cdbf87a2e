// api/store/supabase_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"oamour/api/database"
	"oamour/api/models"
)

const analyticsTable = "analytics_events"

// SupabaseStore persists events through the hosted store's REST interface.
type SupabaseStore struct {
	Client *database.SupabaseClient
}

func NewSupabaseStore(client *database.SupabaseClient) *SupabaseStore {
	return &SupabaseStore{Client: client}
}

func (s *SupabaseStore) InsertEvents(ctx context.Context, rows []models.EventRow) error {
	if len(rows) == 0 {
		return nil
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics rows: %w", err)
	}

	if err := s.Client.Insert(ctx, analyticsTable, body); err != nil {
		return fmt.Errorf("failed to write analytics rows: %w", err)
	}
	return nil
}

func (s *SupabaseStore) RecentDetails(ctx context.Context, limit int) ([]models.DetailRow, error) {
	params := url.Values{}
	params.Set("select", detailsProjection)
	params.Set("order", "occurred_at.desc")
	params.Set("limit", strconv.Itoa(limit))

	body, err := s.Client.Select(ctx, analyticsTable, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics details: %w", err)
	}

	var rows []models.DetailRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode analytics details: %w", err)
	}
	return rows, nil
}
