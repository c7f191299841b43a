package sources

import (
	"log/slog"
	"slices"
)

// RegistryBuilder collects sources during startup. It is not safe for concurrent
// use; call Build once registration is finished.
type RegistryBuilder struct {
	sources map[string]Source
	order   []string
}

func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		sources: make(map[string]Source),
	}
}

// Register adds src under its ID. The first registration of an id wins; later ones
// are skipped with a warning and reported as false.
func (b *RegistryBuilder) Register(src Source) bool {
	if src == nil || src.ID() == "" {
		slog.Warn("Source without id skipped")
		return false
	}

	id := src.ID()
	if _, exists := b.sources[id]; exists {
		slog.Warn("Duplicate source id skipped", "source", id)
		return false
	}

	b.sources[id] = src
	b.order = append(b.order, id)
	slog.Debug("Source registered", "source", id)
	return true
}

// Build freezes the registered sources into a read-only Registry. Later calls to
// Register on the builder do not affect registries already built.
func (b *RegistryBuilder) Build() *Registry {
	sources := make(map[string]Source, len(b.sources))
	for id, src := range b.sources {
		sources[id] = src
	}

	return &Registry{
		sources: sources,
		ids:     slices.Clone(b.order),
	}
}

// Registry is immutable and safe for concurrent lookups.
type Registry struct {
	sources map[string]Source
	ids     []string
}

func (r *Registry) Get(id string) (Source, bool) {
	src, ok := r.sources[id]
	return src, ok
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.ids)
}

func (r *Registry) Len() int {
	return len(r.ids)
}
