package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// PluginLookup resolves plugin names. *plugin.Manager satisfies it.
type PluginLookup interface {
	Get(name string) (*plugin.Plugin, error)
}

// BindingHandler handles HTTP requests for gesture bindings.
type BindingHandler struct {
	store   *store.Store
	plugins PluginLookup
}

// NewBindingHandler creates a BindingHandler. When plugins is non-nil,
// bindings must name a discovered plugin and one of its actions.
func NewBindingHandler(s *store.Store, plugins PluginLookup) *BindingHandler {
	return &BindingHandler{store: s, plugins: plugins}
}

// ServeHTTP routes /api/bindings and /api/bindings/{id}.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createBindingRequest struct {
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"pluginName"`
	ActionName string          `json:"actionName"`
	Config     json.RawMessage `json:"config"`
}

type updateBindingRequest struct {
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"pluginName"`
	ActionName string          `json:"actionName"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type bindingResponse struct {
	ID         string          `json:"id"`
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"pluginName"`
	ActionName string          `json:"actionName"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"createdAt"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

func toBindingResponse(b *store.Binding) bindingResponse {
	config := b.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	return bindingResponse{
		ID:         b.ID,
		Gesture:    b.Gesture,
		PluginName: b.PluginName,
		ActionName: b.ActionName,
		Config:     config,
		Enabled:    b.Enabled,
		CreatedAt:  formatTime(b.CreatedAt),
	}
}

// validate checks that the gesture fires actions and the plugin can run the action.
// It returns a client-facing message, or "" when b is acceptable.
func (h *BindingHandler) validate(b *store.Binding) string {
	label, err := gesture.ParseLabel(b.Gesture)
	if err != nil {
		return "Unknown gesture"
	}
	if !label.IsDirectional() {
		return "Only thumbs up and swipes fire actions"
	}
	if h.plugins == nil {
		return ""
	}
	p, err := h.plugins.Get(b.PluginName)
	if err != nil {
		return "Plugin not found"
	}
	if !p.Manifest.Supports(b.ActionName) {
		return "Plugin does not support this action"
	}
	return ""
}

// list handles GET /api/bindings.
func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}

	response := listBindingsResponse{Bindings: make([]bindingResponse, 0, len(bindings))}
	for _, b := range bindings {
		response.Bindings = append(response.Bindings, toBindingResponse(b))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/bindings/{id}.
func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}
	writeJSON(w, http.StatusOK, toBindingResponse(b))
}

// create handles POST /api/bindings.
func (h *BindingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch {
	case req.Gesture == "":
		writeError(w, http.StatusBadRequest, "gesture is required")
		return
	case req.PluginName == "":
		writeError(w, http.StatusBadRequest, "pluginName is required")
		return
	case req.ActionName == "":
		writeError(w, http.StatusBadRequest, "actionName is required")
		return
	}

	b := &store.Binding{
		Gesture:    req.Gesture,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    true,
	}
	if msg := h.validate(b); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := h.store.Bindings().ForGesture(b.Gesture)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check existing binding")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "Gesture is already bound")
		return
	}

	if err := h.store.Bindings().Create(b); err != nil {
		// A disabled binding still holds the gesture.
		writeError(w, http.StatusConflict, "Gesture is already bound")
		return
	}
	writeJSON(w, http.StatusCreated, toBindingResponse(b))
}

// update handles PUT /api/bindings/{id}. Omitted fields keep their values.
func (h *BindingHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}

	var req updateBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Gesture != "" {
		b.Gesture = req.Gesture
	}
	if req.PluginName != "" {
		b.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		b.ActionName = req.ActionName
	}
	if req.Config != nil {
		b.Config = req.Config
	}
	if req.Enabled != nil {
		b.Enabled = *req.Enabled
	}
	if msg := h.validate(b); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Bindings().Update(b); err != nil {
		writeError(w, http.StatusConflict, "Failed to update binding")
		return
	}
	writeJSON(w, http.StatusOK, toBindingResponse(b))
}

// delete handles DELETE /api/bindings/{id}.
func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Bindings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
