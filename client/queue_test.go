package client

import (
	"fmt"
	"testing"
	"time"

	"oamour/api/models"
)

func TestQueueDropsOldestBeyondCap(t *testing.T) {
	var q eventQueue
	for i := 0; i < 130; i++ {
		q.Push(Event{Type: models.EventInteraction, PageKey: fmt.Sprintf("p%d", i)})
	}

	if q.Len() != MaxQueue {
		t.Fatalf("queue length = %d, want %d", q.Len(), MaxQueue)
	}

	batch := q.Drain()
	if got := batch[0].PageKey; got != "p10" {
		t.Errorf("oldest surviving event = %s, want p10", got)
	}
	if got := batch[len(batch)-1].PageKey; got != "p129" {
		t.Errorf("newest event = %s, want p129", got)
	}
}

func TestQueueDrainEmpties(t *testing.T) {
	var q eventQueue
	q.Push(Event{Type: models.EventPageView, PageKey: "a"})
	q.Push(Event{Type: models.EventPageView, PageKey: "b"})

	batch := q.Drain()
	if len(batch) != 2 {
		t.Fatalf("drained %d events, want 2", len(batch))
	}
	if q.Len() != 0 {
		t.Errorf("queue not empty after drain: %d", q.Len())
	}
	if got := q.Drain(); len(got) != 0 {
		t.Errorf("second drain returned %d events, want 0", len(got))
	}
}

func TestQueueRequeueFrontPreservesOrder(t *testing.T) {
	var q eventQueue
	q.Push(Event{PageKey: "a"})
	q.Push(Event{PageKey: "b"})
	batch := q.Drain()

	q.Push(Event{PageKey: "c"})
	q.RequeueFront(batch)

	got := q.Drain()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("queue has %d events, want %d", len(got), len(want))
	}
	for i, key := range want {
		if got[i].PageKey != key {
			t.Errorf("event %d = %s, want %s", i, got[i].PageKey, key)
		}
	}
}

func TestPageTransition(t *testing.T) {
	base := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	t.Run("opening first page emits only page_view", func(t *testing.T) {
		events, next := pageTransition(pageState{}, "home", base)
		if len(events) != 1 || events[0].Type != models.EventPageView {
			t.Fatalf("events = %+v, want single page_view", events)
		}
		if next.key != "home" || next.openedAt != base {
			t.Errorf("next state = %+v", next)
		}
	})

	t.Run("same key while open is a no-op", func(t *testing.T) {
		cur := pageState{key: "home", openedAt: base}
		events, next := pageTransition(cur, "home", base.Add(time.Second))
		if len(events) != 0 {
			t.Fatalf("events = %+v, want none", events)
		}
		if next != cur {
			t.Errorf("state changed: %+v", next)
		}
	})

	t.Run("new key closes previous page first", func(t *testing.T) {
		cur := pageState{key: "home", openedAt: base}
		events, next := pageTransition(cur, "gift", base.Add(2500*time.Millisecond))
		if len(events) != 2 {
			t.Fatalf("got %d events, want 2", len(events))
		}
		leave := events[0]
		if leave.Type != models.EventPageLeave || leave.PageKey != "home" {
			t.Errorf("first event = %+v, want page_leave for home", leave)
		}
		if leave.DurationMs == nil || *leave.DurationMs != 2500 {
			t.Errorf("durationMs = %v, want 2500", leave.DurationMs)
		}
		if reason := leave.Meta["reason"]; reason != "screen_change" {
			t.Errorf("leave reason = %v, want screen_change", reason)
		}
		if events[1].Type != models.EventPageView || events[1].PageKey != "gift" {
			t.Errorf("second event = %+v, want page_view for gift", events[1])
		}
		if next.key != "gift" {
			t.Errorf("next page = %s, want gift", next.key)
		}
	})

	t.Run("closed page with same key re-opens", func(t *testing.T) {
		cur := pageState{key: "home"} // closed: zero openedAt
		events, next := pageTransition(cur, "home", base)
		if len(events) != 1 || events[0].Type != models.EventPageView {
			t.Fatalf("events = %+v, want single page_view", events)
		}
		if next.openedAt != base {
			t.Errorf("page not re-opened: %+v", next)
		}
	})

	t.Run("clock skew never yields negative duration", func(t *testing.T) {
		cur := pageState{key: "home", openedAt: base.Add(time.Minute)}
		events, _ := pageTransition(cur, "gift", base)
		if events[0].DurationMs == nil || *events[0].DurationMs != 0 {
			t.Errorf("durationMs = %v, want 0", events[0].DurationMs)
		}
	})
}
