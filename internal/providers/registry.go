package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kjun-ai/authgate/internal/domain/types"
)

// Factory creates a provider from its configuration.
type Factory func(cfg Config) (Provider, error)

// Registry holds the configured provider instances.
type Registry struct {
	mu        sync.RWMutex
	providers map[types.Provider]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[types.Provider]Provider)}
}

// Register builds a provider with factory and stores it under its name.
func (r *Registry) Register(factory Factory, cfg Config) error {
	p, err := factory(cfg)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	return nil
}

// Add stores an already built provider.
func (r *Registry) Add(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider for name.
func (r *Registry) Get(name types.Provider) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider not registered: %s", name)
	}
	return p, nil
}

// Available returns the registered provider names, sorted.
func (r *Registry) Available() []types.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Provider, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
