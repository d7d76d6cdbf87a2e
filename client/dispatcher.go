// api/client/dispatcher.go
package client

import (
	"context"
	"encoding/json"
	"time"

	"oamour/api/metrics"
	"oamour/api/models"
)

// Flush drains the queue and delivers everything in one batch. A failed
// delivery puts the batch back at the front for the next attempt; there is
// no backoff and no retry cap beyond the queue bound itself.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.queue.Drain()
	visitorName := s.visitorName
	metrics.ClientQueueDepth.Set(float64(s.queue.Len()))
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	body, err := json.Marshal(s.serializeBatch(batch, visitorName))
	if err != nil {
		// Cannot happen with these types; drop rather than wedge the queue.
		return err
	}

	metrics.ClientFlushes.Inc()
	if err := s.transport.Send(ctx, body); err != nil {
		metrics.ClientFlushFailures.Inc()
		s.mu.Lock()
		s.queue.RequeueFront(batch)
		metrics.ClientQueueDepth.Set(float64(s.queue.Len()))
		s.mu.Unlock()
		return err
	}
	return nil
}

// serializeBatch enriches each event with the device snapshot and page
// context read once per flush, so a rapid burst shares one fresh snapshot.
func (s *Session) serializeBatch(batch []Event, visitorName string) models.IngestRequest {
	snapshot := ReadSnapshot(s.env)
	path := s.env.Path()
	url := s.env.URL()
	referrer := s.env.Referrer()
	now := s.clock().UTC().Format(time.RFC3339Nano)

	events := make([]models.IncomingEvent, 0, len(batch))
	for _, ev := range batch {
		name := ev.VisitorName
		if name == "" {
			name = visitorName
		}
		occurredAt := ev.OccurredAt
		if occurredAt == "" {
			occurredAt = now
		}

		events = append(events, models.IncomingEvent{
			EventType:   ev.Type,
			PageKey:     ev.PageKey,
			VisitorName: name,
			DurationMs:  intToFloat(ev.DurationMs),
			OccurredAt:  occurredAt,
			Path:        path,
			URL:         url,
			Referrer:    referrer,
			UserAgent:   snapshot.UserAgent,
			DeviceType:  snapshot.DeviceType,
			OS:          snapshot.OS,
			Browser:     snapshot.Browser,
			ViewportW:   floatPtr(snapshot.ViewportW),
			ViewportH:   floatPtr(snapshot.ViewportH),
			ScreenW:     floatPtr(snapshot.ScreenW),
			ScreenH:     floatPtr(snapshot.ScreenH),
			TZ:          snapshot.TZ,
			Language:    snapshot.Language,
			IsMobile:    &snapshot.IsMobile,
			Meta:        ev.Meta,
		})
	}

	return models.IngestRequest{SessionID: s.id, Events: events}
}

// flushLoop runs the fixed-interval flush until Close.
func (s *Session) flushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flushNow()
		case <-s.done:
			return
		}
	}
}

// flushNow is a bounded blocking flush. Delivery failures are recovered by
// re-queuing; they are never surfaced to the embedding application.
func (s *Session) flushNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = s.Flush(ctx)
}

// flushAsync fires a flush without blocking the caller.
func (s *Session) flushAsync() {
	go s.flushNow()
}

func intToFloat(v *int64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func floatPtr(v int) *float64 {
	f := float64(v)
	return &f
}
