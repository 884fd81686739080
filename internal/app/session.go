package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// StartSession resets the pipeline state and, when a store is configured,
// opens a new session that subsequent events are recorded under. Any open
// session is ended first.
func (a *App) StartSession(now time.Time) (*store.Session, error) {
	if err := a.EndSession(now); err != nil {
		return nil, err
	}
	a.Reset()

	if a.config.Store == nil {
		return nil, nil
	}

	sess := &store.Session{
		Source:    a.config.Source,
		Policy:    string(a.stabilizer.Config().Policy),
		StartedAt: now,
	}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	a.mu.Lock()
	a.session = sess
	a.mu.Unlock()

	a.log.Info().Str("session", sess.ID).Str("source", sess.Source).Msg("session started")
	return sess, nil
}

// EndSession closes the current session, if any.
func (a *App) EndSession(now time.Time) error {
	a.mu.Lock()
	sess := a.session
	a.session = nil
	a.mu.Unlock()

	if sess == nil || a.config.Store == nil {
		return nil
	}
	if err := a.config.Store.Sessions().End(sess.ID, now); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	a.log.Info().Str("session", sess.ID).Msg("session ended")
	return nil
}

// SessionID returns the open session's ID, or "".
func (a *App) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.ID
}

// record persists label changes, actions and selections. Called with a.mu held.
func (a *App) record(sess *store.Session, prev, ev Event) {
	if sess == nil || a.config.Store == nil {
		return
	}

	if ev.Action != "" || ev.Label != prev.Label || ev.HandPresent != prev.HandPresent {
		err := a.config.Store.Events().Record(&store.GestureEvent{
			SessionID:   sess.ID,
			Frame:       ev.Frame,
			At:          ev.At,
			HandPresent: ev.HandPresent,
			Raw:         string(ev.Raw),
			Label:       string(ev.Label),
			Action:      string(ev.Action),
		})
		if err != nil {
			a.log.Warn().Err(err).Int64("frame", ev.Frame).Msg("failed to record gesture event")
		}
	}

	if ev.Selection != nil {
		err := a.config.Store.Selections().Record(&store.Selection{
			SessionID:  sess.ID,
			At:         ev.At,
			Row:        ev.Selection.Cell.Row,
			Col:        ev.Selection.Cell.Col,
			Item:       ev.Selection.Item.Label,
			PluginName: ev.Selection.Item.Plugin,
			ActionName: ev.Selection.Item.Action,
		})
		if err != nil {
			a.log.Warn().Err(err).Int64("frame", ev.Frame).Msg("failed to record selection")
		}
	}
}

// dispatch runs the plugin actions an event triggers: the selected menu
// item's action and any binding for the fired gesture. Runs never block the
// pipeline and their failures are only logged.
func (a *App) dispatch(sess *store.Session, ev Event) {
	if a.config.Runner == nil || ev.Action == "" {
		return
	}

	var sessionID string
	if sess != nil {
		sessionID = sess.ID
	}

	if sel := ev.Selection; sel != nil && sel.Item.Plugin != "" {
		var params json.RawMessage
		if len(sel.Item.Params) > 0 {
			var err error
			if params, err = json.Marshal(sel.Item.Params); err != nil {
				a.log.Warn().Err(err).Str("item", sel.Item.Label).Msg("invalid menu item params")
				return
			}
		}
		a.run(sel.Item.Plugin, &plugin.Request{
			Action:  sel.Item.Action,
			Gesture: string(ev.Action),
			Trigger: plugin.TriggerMenu,
			Session: sessionID,
			Item:    sel.Item.Label,
			Row:     sel.Cell.Row,
			Col:     sel.Cell.Col,
			Params:  params,
		})
	}

	if a.config.Store == nil {
		return
	}
	a.jobs.Add(1)
	go func() {
		defer a.jobs.Done()

		b, err := a.config.Store.Bindings().ForGesture(string(ev.Action))
		if err != nil {
			a.log.Warn().Err(err).Str("gesture", string(ev.Action)).Msg("failed to look up binding")
			return
		}
		if b == nil {
			return
		}
		a.runNow(b.PluginName, &plugin.Request{
			Action:  b.ActionName,
			Gesture: string(ev.Action),
			Trigger: plugin.TriggerBinding,
			Session: sessionID,
			Row:     ev.Cursor.Row,
			Col:     ev.Cursor.Col,
			Config:  b.Config,
		})
	}()
}

func (a *App) run(name string, req *plugin.Request) {
	a.jobs.Add(1)
	go func() {
		defer a.jobs.Done()
		a.runNow(name, req)
	}()
}

func (a *App) runNow(name string, req *plugin.Request) {
	log := a.log.With().Str("plugin", name).Str("action", req.Action).Str("trigger", req.Trigger).Logger()

	resp, err := a.config.Runner.Run(a.ctx, name, req)
	a.metrics.pluginRun(name, err == nil)
	switch {
	case errors.Is(err, context.Canceled):
		log.Debug().Msg("plugin run cancelled")
	case err != nil:
		log.Warn().Err(err).Msg("plugin run failed")
	default:
		log.Debug().RawJSON("data", orNull(resp.Data)).Msg("plugin run succeeded")
	}
}

func orNull(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
