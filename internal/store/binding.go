package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Binding runs a plugin action whenever its gesture fires as a stabilized action.
type Binding struct {
	ID         string          `json:"id"`
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"pluginName"`
	ActionName string          `json:"actionName"`
	Config     json.RawMessage `json:"config,omitempty"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, gesture, plugin_name, action_name, config, enabled, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var config string
	if err := row.Scan(&b.ID, &b.Gesture, &b.PluginName, &b.ActionName, &config, &b.Enabled, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Config = json.RawMessage(config)
	return b, nil
}

func configText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

// Create inserts b, assigning an ID when it has none.
func (r *BindingRepository) Create(b *Binding) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Gesture, b.PluginName, b.ActionName, configText(b.Config), b.Enabled, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert binding for %q: %w", b.Gesture, err)
	}
	return nil
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// ForGesture returns the enabled binding for gesture.
// It returns nil, nil when nothing is bound.
func (r *BindingRepository) ForGesture(gesture string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(
		`SELECT `+bindingColumns+` FROM bindings WHERE gesture = ? AND enabled = 1`, gesture))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// List returns all bindings, newest first.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}
	return bindings, rows.Err()
}

// Update replaces every mutable field of b.
func (r *BindingRepository) Update(b *Binding) error {
	result, err := r.db.Exec(
		`UPDATE bindings SET gesture = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		b.Gesture, b.PluginName, b.ActionName, configText(b.Config), b.Enabled, b.ID,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}
