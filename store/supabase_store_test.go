// api/store/supabase_store_test.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"oamour/api/database"
	"oamour/api/models"
)

func newTestSupabaseStore(t *testing.T, handler http.HandlerFunc) *SupabaseStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSupabaseStore(&database.SupabaseClient{
		BaseURL:        srv.URL,
		ServiceRoleKey: "service-key",
		HTTPClient:     srv.Client(),
	})
}

func TestSupabaseInsertEvents(t *testing.T) {
	var gotPath string
	var gotRows []models.EventRow
	st := newTestSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("apikey") != "service-key" {
			t.Errorf("apikey header = %q", r.Header.Get("apikey"))
		}
		if r.Header.Get("Authorization") != "Bearer service-key" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Prefer") != "return=minimal" {
			t.Errorf("Prefer = %q", r.Header.Get("Prefer"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRows); err != nil {
			t.Errorf("decode rows: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	rows := []models.EventRow{{
		EventID:   "ev-1",
		SessionID: "sess-1",
		EventType: models.EventPageView,
		Meta:      map[string]any{"is_bot": false},
	}}
	if err := st.InsertEvents(context.Background(), rows); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if gotPath != "/rest/v1/analytics_events" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotRows) != 1 || gotRows[0].SessionID != "sess-1" {
		t.Errorf("posted rows = %+v", gotRows)
	}
}

func TestSupabaseInsertEventsEmptyBatchIsNoop(t *testing.T) {
	st := newTestSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty batch hit the network")
	})
	if err := st.InsertEvents(context.Background(), nil); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestSupabaseInsertEventsSurfacesAPIError(t *testing.T) {
	st := newTestSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	})
	err := st.InsertEvents(context.Background(), []models.EventRow{{EventID: "ev", SessionID: "s", EventType: "page_view"}})
	if err == nil {
		t.Fatal("expected error from 403 response")
	}
}

func TestSupabaseRecentDetails(t *testing.T) {
	name := "Tomi"
	st := newTestSupabaseStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("select") != detailsProjection {
			t.Errorf("select = %q", q.Get("select"))
		}
		if q.Get("order") != "occurred_at.desc" {
			t.Errorf("order = %q", q.Get("order"))
		}
		if q.Get("limit") != "500" {
			t.Errorf("limit = %q", q.Get("limit"))
		}
		json.NewEncoder(w).Encode([]models.DetailRow{
			{OccurredAt: "2026-02-14T10:00:00Z", SessionID: "s1", EventType: "session_start", VisitorName: &name},
		})
	})

	rows, err := st.RecentDetails(context.Background(), 500)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if len(rows) != 1 || rows[0].SessionID != "s1" || rows[0].VisitorName == nil || *rows[0].VisitorName != "Tomi" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestSupabaseStoreRequiresKey(t *testing.T) {
	st := NewSupabaseStore(&database.SupabaseClient{
		BaseURL:    "https://example.supabase.co",
		HTTPClient: http.DefaultClient,
	})
	err := st.InsertEvents(context.Background(), []models.EventRow{{EventID: "ev", SessionID: "s", EventType: "page_view"}})
	if !errors.Is(err, database.ErrSupabaseNotConfigured) {
		t.Errorf("err = %v, want ErrSupabaseNotConfigured", err)
	}
	if _, err := st.RecentDetails(context.Background(), 10); !errors.Is(err, database.ErrSupabaseNotConfigured) {
		t.Errorf("details err = %v, want ErrSupabaseNotConfigured", err)
	}
}
