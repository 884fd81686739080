package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Selection is a recorded menu selection.
type Selection struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"sessionId"`
	At         time.Time `json:"at"`
	Row        int       `json:"row"`
	Col        int       `json:"col"`
	Item       string    `json:"item"`
	PluginName string    `json:"pluginName,omitempty"`
	ActionName string    `json:"actionName,omitempty"`
}

// SelectionRepository stores menu selections.
type SelectionRepository struct {
	db *sql.DB
}

// Selections returns the selection repository for this store.
func (s *Store) Selections() *SelectionRepository {
	return &SelectionRepository{db: s.db}
}

// Record inserts sel and sets its ID.
func (r *SelectionRepository) Record(sel *Selection) error {
	result, err := r.db.Exec(
		`INSERT INTO selections (session_id, at, row_index, col_index, item, plugin_name, action_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sel.SessionID, sel.At, sel.Row, sel.Col, sel.Item, sel.PluginName, sel.ActionName,
	)
	if err != nil {
		return fmt.Errorf("insert selection: %w", err)
	}
	sel.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's selections, oldest first.
func (r *SelectionRepository) ListBySession(sessionID string) ([]*Selection, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, at, row_index, col_index, item, plugin_name, action_name
		 FROM selections WHERE session_id = ? ORDER BY at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Selection
	for rows.Next() {
		s := &Selection{}
		if err := rows.Scan(&s.ID, &s.SessionID, &s.At, &s.Row, &s.Col, &s.Item, &s.PluginName, &s.ActionName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
