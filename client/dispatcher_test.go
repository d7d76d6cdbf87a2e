package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"oamour/api/client"
	"oamour/api/models"
)

func TestFlushRoundTripThroughHTTP(t *testing.T) {
	var (
		mu       sync.Mutex
		received []models.IngestRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var req models.IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		mu.Lock()
		received = append(received, req)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := client.NewSession(client.Options{
		Transport:     client.NewFetchTransport(srv.URL, srv.Client()),
		FlushInterval: time.Hour,
		VisitorName:   "Tomi",
		Env: &client.StaticEnvironment{
			UA:         uaChrome,
			ViewportWH: [2]int{1280, 800},
			ScreenWH:   [2]int{2560, 1440},
			TZ:         "Africa/Lagos",
			Lang:       "en-US",
			PagePath:   "/you-cant-fool-me",
			PageURL:    "https://example.com/you-cant-fool-me",
			Ref:        "https://t.co/abc",
		},
	})
	defer s.Close()

	s.TrackScreenChange("proposal", "")
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	var all []models.IncomingEvent
	var sessionID string
	for _, req := range received {
		sessionID = req.SessionID
		all = append(all, req.Events...)
	}

	if sessionID != s.ID() {
		t.Errorf("sessionId = %q, want %q", sessionID, s.ID())
	}

	var pageView *models.IncomingEvent
	for i := range all {
		if all[i].EventType == models.EventPageView {
			pageView = &all[i]
		}
	}
	if pageView == nil {
		t.Fatal("no page_view delivered")
	}
	if pageView.PageKey != "proposal" {
		t.Errorf("pageKey = %q, want proposal", pageView.PageKey)
	}
	if pageView.VisitorName != "Tomi" {
		t.Errorf("visitorName = %q, want Tomi", pageView.VisitorName)
	}
	if pageView.Path != "/you-cant-fool-me" {
		t.Errorf("path = %q", pageView.Path)
	}
	if pageView.Browser != "Chrome" || pageView.OS != "macOS" || pageView.DeviceType != "desktop" {
		t.Errorf("snapshot = %s/%s/%s", pageView.Browser, pageView.OS, pageView.DeviceType)
	}
	if pageView.ViewportW == nil || *pageView.ViewportW != 1280 {
		t.Errorf("viewportW = %v, want 1280", pageView.ViewportW)
	}
	if pageView.OccurredAt == "" {
		t.Error("occurredAt not defaulted at serialization")
	}
	if pageView.IsMobile == nil || *pageView.IsMobile {
		t.Errorf("isMobile = %v, want false", pageView.IsMobile)
	}
}

func TestFlushEmptyQueueIsNoop(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := client.NewSession(client.Options{
		Transport:     client.NewFetchTransport(srv.URL, srv.Client()),
		FlushInterval: time.Hour,
	})
	defer s.Close()

	// Drain the session_start and wait for delivery to settle.
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for (calls.Load() == 0 || s.QueueLen() > 0) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	before := calls.Load()
	if err := s.Flush(context.Background()); err != nil {
		t.Fatalf("empty flush: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got > before {
		t.Errorf("empty flush hit the network (%d extra calls)", got-before)
	}
}

func TestFetchTransportRejectsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := client.NewFetchTransport(srv.URL, srv.Client())
	if err := tr.Send(context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("Send returned nil for a 500 response")
	}
}

func TestBeaconTransportDeliversAsync(t *testing.T) {
	done := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := client.NewBeaconTransport(srv.URL, srv.Client())
	if err := tr.Send(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("beacon send: %v", err)
	}
	tr.Wait()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("beacon request never reached the server")
	}
}
