package store

import (
	"database/sql"
	"fmt"
	"time"
)

// GestureEvent is a recorded change of display label or a fired action.
type GestureEvent struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"sessionId"`
	Frame       int64     `json:"frame"`
	At          time.Time `json:"at"`
	HandPresent bool      `json:"handPresent"`
	Raw         string    `json:"raw"`
	Label       string    `json:"label"`
	Action      string    `json:"action,omitempty"`
}

// EventRepository stores gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e and sets its ID.
func (r *EventRepository) Record(e *GestureEvent) error {
	result, err := r.db.Exec(
		`INSERT INTO gesture_events (session_id, frame, at, hand_present, raw, label, action)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Frame, e.At, e.HandPresent, e.Raw, e.Label, e.Action,
	)
	if err != nil {
		return fmt.Errorf("insert gesture event: %w", err)
	}
	e.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's events in frame order. A limit <= 0 returns all.
func (r *EventRepository) ListBySession(sessionID string, limit int) ([]*GestureEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, session_id, frame, at, hand_present, raw, label, action
		 FROM gesture_events WHERE session_id = ? ORDER BY frame, id LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*GestureEvent
	for rows.Next() {
		e := &GestureEvent{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Frame, &e.At, &e.HandPresent, &e.Raw, &e.Label, &e.Action); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountActions returns how many events of a session fired each action.
func (r *EventRepository) CountActions(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT action, COUNT(*) FROM gesture_events
		 WHERE session_id = ? AND action != '' GROUP BY action`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[action] = n
	}
	return counts, rows.Err()
}
