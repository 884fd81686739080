package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/store"
)

// SessionHandler serves recorded sessions and their events and selections.
// All routes are read-only.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type listEventsResponse struct {
	Events []*store.GestureEvent `json:"events"`
}

type listSelectionsResponse struct {
	Selections []*store.Selection `json:"selections"`
}

type summaryResponse struct {
	Session    *store.Session `json:"session"`
	Actions    map[string]int `json:"actions"`
	Selections int            `json:"selections"`
}

// ServeHTTP routes:
//
//	GET /api/sessions
//	GET /api/sessions/{id}
//	GET /api/sessions/{id}/events
//	GET /api/sessions/{id}/selections
//	GET /api/sessions/{id}/summary
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")
	if path == "" {
		h.list(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	switch sub {
	case "":
		writeJSON(w, http.StatusOK, sess)
	case "events":
		h.events(w, r, sess)
	case "selections":
		h.selections(w, sess)
	case "summary":
		h.summary(w, sess)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// list handles GET /api/sessions, newest first.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (h *SessionHandler) events(w http.ResponseWriter, r *http.Request, sess *store.Session) {
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	events, err := h.store.Events().ListBySession(sess.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	if events == nil {
		events = []*store.GestureEvent{}
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}

func (h *SessionHandler) selections(w http.ResponseWriter, sess *store.Session) {
	selections, err := h.store.Selections().ListBySession(sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list selections")
		return
	}
	if selections == nil {
		selections = []*store.Selection{}
	}
	writeJSON(w, http.StatusOK, listSelectionsResponse{Selections: selections})
}

func (h *SessionHandler) summary(w http.ResponseWriter, sess *store.Session) {
	actions, err := h.store.Events().CountActions(sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count actions")
		return
	}
	selections, err := h.store.Selections().ListBySession(sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list selections")
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Session:    sess,
		Actions:    actions,
		Selections: len(selections),
	})
}
