package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/store"
)

// seedSession records a session with three events, two of them actions, and one selection.
func seedSession(t *testing.T, s *store.Store) *store.Session {
	t.Helper()

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sess := &store.Session{Source: store.SourceCamera, Policy: "hold", StartedAt: start}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatal(err)
	}

	events := []*store.GestureEvent{
		{Frame: 1, HandPresent: true, Raw: "Open Palm", Label: "Open Palm"},
		{Frame: 5, HandPresent: true, Raw: "Swipe Right", Label: "Swipe Right", Action: "Swipe Right"},
		{Frame: 9, HandPresent: true, Raw: "Thumbs Up", Label: "Thumbs Up", Action: "Thumbs Up"},
	}
	for _, e := range events {
		e.SessionID = sess.ID
		e.At = start.Add(time.Duration(e.Frame) * 33 * time.Millisecond)
		if err := s.Events().Record(e); err != nil {
			t.Fatal(err)
		}
	}

	sel := &store.Selection{SessionID: sess.ID, At: start.Add(time.Second), Row: 0, Col: 1, Item: "Item 2"}
	if err := s.Selections().Record(sel); err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestSessionHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var empty listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&empty); err != nil {
		t.Fatal(err)
	}
	if empty.Sessions == nil || len(empty.Sessions) != 0 {
		t.Errorf("expected an empty list, got %v", empty.Sessions)
	}

	seedSession(t, s)
	seedSession(t, s)

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions?limit=1", nil)
	var list listSessionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Sessions) != 1 {
		t.Errorf("limit=1: expected 1 session, got %d", len(list.Sessions))
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions?limit=-2", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative limit: expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSessionHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := seedSession(t, s)

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/"+sess.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got store.Session
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != sess.ID || got.Policy != "hold" || got.Source != store.SourceCamera {
		t.Errorf("unexpected session: %+v", got)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session: expected %d, got %d", http.StatusNotFound, rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/"+sess.ID+"/frames", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown subresource: expected %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestSessionHandler_Events(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := seedSession(t, s)

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/"+sess.ID+"/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var list listEventsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(list.Events))
	}
	if list.Events[0].Frame != 1 || list.Events[2].Action != "Thumbs Up" {
		t.Errorf("events out of order: %+v", list.Events)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/"+sess.ID+"/events?limit=2", nil)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Events) != 2 {
		t.Errorf("limit=2: expected 2 events, got %d", len(list.Events))
	}
}

func TestSessionHandler_SelectionsAndSummary(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionHandler(s)
	sess := seedSession(t, s)

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions/"+sess.ID+"/selections", nil)
	var sels listSelectionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&sels); err != nil {
		t.Fatal(err)
	}
	if len(sels.Selections) != 1 || sels.Selections[0].Item != "Item 2" {
		t.Errorf("unexpected selections: %+v", sels.Selections)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/"+sess.ID+"/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var sum summaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&sum); err != nil {
		t.Fatal(err)
	}
	if sum.Selections != 1 {
		t.Errorf("expected 1 selection, got %d", sum.Selections)
	}
	if sum.Actions["Swipe Right"] != 1 || sum.Actions["Thumbs Up"] != 1 || len(sum.Actions) != 2 {
		t.Errorf("unexpected action counts: %v", sum.Actions)
	}
}

func TestSessionHandler_ReadOnly(t *testing.T) {
	handler := NewSessionHandler(newTestStore(t))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		if rec := doJSON(t, handler, method, "/api/sessions", nil); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: expected %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
