package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexisbeaulieu97/otctasks/internal/logger"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

// PluginRegistry maps module names to their implementations.
type PluginRegistry struct {
	mu       sync.RWMutex
	plugins  map[string]Plugin
	metadata map[string]PluginMetadata
	logger   *logger.Logger
}

// NewPluginRegistry returns a new registry instance.
func NewPluginRegistry(log *logger.Logger) *PluginRegistry {
	return &PluginRegistry{
		plugins:  make(map[string]Plugin),
		metadata: make(map[string]PluginMetadata),
		logger:   log,
	}
}

// Register adds a plugin to the registry under its metadata name.
func (r *PluginRegistry) Register(p Plugin) error {
	if p == nil {
		return apperrors.NewPluginError("", fmt.Errorf("plugin is nil"))
	}

	meta := p.PluginMetadata()
	if err := meta.Validate(); err != nil {
		return apperrors.NewPluginError(meta.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[meta.Name]; exists {
		return apperrors.NewPluginError(meta.Name, fmt.Errorf("plugin already registered"))
	}

	r.plugins[meta.Name] = p
	r.metadata[meta.Name] = meta
	if r.logger != nil {
		r.logger.Debugf("registered module %s %s", meta.Name, meta.Version)
	}
	return nil
}

// Get returns the plugin registered under name.
func (r *PluginRegistry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, apperrors.NewPluginError(name, ErrPluginNotFound{Name: name})
	}
	return p, nil
}

// Metadata returns the metadata of the named plugin.
func (r *PluginRegistry) Metadata(name string) (PluginMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.metadata[name]
	return meta, ok
}

// List returns the metadata of every registered plugin sorted by name.
func (r *PluginRegistry) List() []PluginMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PluginMetadata, 0, len(r.metadata))
	for _, meta := range r.metadata {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var (
	defaultMu       sync.RWMutex
	defaultRegistry = NewPluginRegistry(nil)
)

// RegisterPlugin adds p to the process-wide registry. Modules call it from
// their init functions.
func RegisterPlugin(p Plugin) error {
	return DefaultRegistry().Register(p)
}

// MustRegister is RegisterPlugin for init functions; it panics on error.
func MustRegister(p Plugin) {
	if err := RegisterPlugin(p); err != nil {
		panic(err)
	}
}

// GetPlugin retrieves a plugin from the process-wide registry.
func GetPlugin(name string) (Plugin, error) {
	return DefaultRegistry().Get(name)
}

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *PluginRegistry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRegistry
}

// ResetRegistry clears the process-wide registry (for tests).
func ResetRegistry() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = NewPluginRegistry(nil)
}
