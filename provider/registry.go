package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds one domain's backends, keyed by name. Factories are
// registered once at startup; Build turns configuration into cached
// instances that handlers look up per request with Get.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry creates an empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory makes a backend constructible by name.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Build constructs the named backend from its registered factory and
// caches the instance, replacing any previous one.
func (r *Registry[T]) Build(name string, cfg map[string]any) error {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("provider %q: no factory registered", name)
	}
	instance, err := factory(cfg)
	if err != nil {
		return fmt.Errorf("provider %q: %w", name, err)
	}
	r.Set(name, instance)
	return nil
}

// Get returns a built instance by name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.instances[name]
	return instance, ok
}

// Set caches an instance directly, bypassing the factory. Useful for
// tests and for backends constructed elsewhere.
func (r *Registry[T]) Set(name string, instance T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = instance
}

// List returns the sorted names of all registered factories.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
