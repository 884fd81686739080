package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per capture or replay run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL CHECK(source IN ('camera', 'replay')),
			policy TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Display-label changes and actions, not every frame
		`CREATE TABLE IF NOT EXISTS gesture_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			at DATETIME NOT NULL,
			hand_present INTEGER NOT NULL,
			raw TEXT NOT NULL,
			label TEXT NOT NULL,
			action TEXT NOT NULL DEFAULT ''
		)`,

		// Menu cells chosen with the select gesture
		`CREATE TABLE IF NOT EXISTS selections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			at DATETIME NOT NULL,
			row_index INTEGER NOT NULL,
			col_index INTEGER NOT NULL,
			item TEXT NOT NULL,
			plugin_name TEXT NOT NULL DEFAULT '',
			action_name TEXT NOT NULL DEFAULT ''
		)`,

		// Gesture-to-plugin bindings fired on stabilized actions
		`CREATE TABLE IF NOT EXISTS bindings (
			id TEXT PRIMARY KEY,
			gesture TEXT NOT NULL UNIQUE,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_gesture_events_session_id ON gesture_events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_selections_session_id ON selections(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
