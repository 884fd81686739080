package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/plugin"
)

// PluginHandler lists discovered plugins.
type PluginHandler struct {
	manager *plugin.Manager
}

// NewPluginHandler creates a PluginHandler.
func NewPluginHandler(m *plugin.Manager) *PluginHandler {
	return &PluginHandler{manager: m}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
	Skipped []string         `json:"skipped"`
}

// ServeHTTP handles GET /api/plugins.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := listPluginsResponse{Plugins: []pluginResponse{}, Skipped: []string{}}
	if h.manager != nil {
		for _, p := range h.manager.List() {
			actions := p.Manifest.Actions
			if actions == nil {
				actions = []string{}
			}
			response.Plugins = append(response.Plugins, pluginResponse{
				Name:        p.Manifest.Name,
				Version:     p.Manifest.Version,
				Description: p.Manifest.Description,
				Actions:     actions,
			})
		}
		if skipped := h.manager.Skipped(); skipped != nil {
			response.Skipped = skipped
		}
	}
	writeJSON(w, http.StatusOK, response)
}
