package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ManifestName is the file each plugin directory must contain.
const ManifestName = "plugin.json"

var (
	// ErrPluginNotFound is returned when a requested plugin cannot be found.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrUnknownAction is returned when a plugin does not declare the requested action.
	ErrUnknownAction = errors.New("plugin does not support action")
)

// Manager discovers plugins in a directory and keeps them by name.
type Manager struct {
	pluginDir string
	plugins   map[string]*Plugin
	skipped   []string
	mu        sync.RWMutex
}

// NewManager creates a Manager for pluginDir.
func NewManager(pluginDir string) *Manager {
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
	}
}

// Discover rescans the plugin directory. Every subdirectory holding a valid
// plugin.json becomes a plugin; unreadable or invalid manifests are skipped
// and reported by Skipped. A missing directory yields no plugins.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Plugin)
	m.skipped = nil

	info, err := os.Stat(m.pluginDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("plugin path %s is not a directory", m.pluginDir)
	}

	entries, err := os.ReadDir(m.pluginDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(m.pluginDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(pluginPath, ManifestName))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			m.skipped = append(m.skipped, entry.Name())
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil || manifest.Name == "" || manifest.Executable == "" {
			m.skipped = append(m.skipped, entry.Name())
			continue
		}

		m.plugins[manifest.Name] = &Plugin{
			Manifest:   manifest,
			Path:       pluginPath,
			Executable: filepath.Join(pluginPath, manifest.Executable),
		}
	}

	return nil
}

// Get returns a plugin by name.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugin, ok := m.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrPluginNotFound)
	}
	return plugin, nil
}

// List returns all discovered plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(m.plugins))
	for _, plugin := range m.plugins {
		plugins = append(plugins, plugin)
	}
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Manifest.Name < plugins[j].Manifest.Name
	})
	return plugins
}

// Skipped returns the directory names ignored by the last Discover.
func (m *Manager) Skipped() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.skipped...)
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}

// Runner resolves a plugin by name and executes it.
type Runner struct {
	manager  *Manager
	executor *Executor
}

// NewRunner pairs a manager with an executor.
func NewRunner(manager *Manager, executor *Executor) *Runner {
	return &Runner{manager: manager, executor: executor}
}

// Manager returns the plugin registry.
func (r *Runner) Manager() *Manager {
	return r.manager
}

// Run executes req.Action on the named plugin. A plugin that reports
// failure is returned as an error carrying its message.
func (r *Runner) Run(ctx context.Context, name string, req *Request) (*Response, error) {
	p, err := r.manager.Get(name)
	if err != nil {
		return nil, err
	}
	if !p.Manifest.Supports(req.Action) {
		return nil, fmt.Errorf("%s %q: %w", name, req.Action, ErrUnknownAction)
	}

	resp, err := r.executor.Execute(ctx, p, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("%s %q: %s", name, req.Action, resp.Error)
	}
	return resp, nil
}
