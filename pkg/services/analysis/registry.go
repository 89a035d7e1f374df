package analysis

import (
	"sort"
	"sync"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/config"
)

// Factory builds an analysis from the run configuration
type Factory func(cfg *config.Config) (Analysis, error)

// Registry manages analysis factories
type Registry interface {
	// Register adds a new analysis factory
	Register(name string, factory Factory) error
	// Create instantiates the named analysis with the provided config
	Create(name string, cfg *config.Config) (Analysis, error)
	// List returns the registered analysis names in ascending order
	List() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty analysis registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// DefaultRegistry returns a registry holding the built-in analyses.
func DefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register(SalesTrendName, NewSalesTrend)
	_ = r.Register(SalesSegmentsName, NewSalesSegments)
	return r
}

func (r *registry) Register(name string, factory Factory) error {
	if name == "" {
		return domain.ConfigErr("analysis name cannot be empty", nil)
	}
	if factory == nil {
		return domain.ConfigErr("factory cannot be nil", map[string]any{"analysis": name})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return domain.ConfigErr("analysis is already registered", map[string]any{"analysis": name})
	}

	r.factories[name] = factory
	return nil
}

func (r *registry) Create(name string, cfg *config.Config) (Analysis, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, domain.ConfigErr("analysis is not registered", map[string]any{
			"analysis":  name,
			"available": r.List(),
		})
	}

	return factory(cfg)
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
