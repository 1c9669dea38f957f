package engine

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine backend available under a name. Backends register
// themselves so that embedding applications and the CLI can select one
// without linking every backend.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Lookup returns a registered engine factory.
func Lookup(name string) (Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		registered := make([]string, 0, len(registry))
		for candidate := range registry {
			registered = append(registered, candidate)
		}
		sort.Strings(registered)
		return nil, fmt.Errorf("unknown engine backend %q, registered: %v", name, registered)
	}
	return factory, nil
}

// Names lists the registered backend names.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
