package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foiaworks/foiad/internal/model"
)

// Registry resolves an agency to a portal adapter. Static bindings from the
// agency record win; unbound agencies are probed across registered adapter
// families in registration order and the first claim is cached.
type Registry struct {
	mu          sync.RWMutex
	order       []string                    // registration order, for deterministic probing
	families    map[string]Adapter          // family name -> adapter
	resolved    map[string]string           // agency ID -> family (static bindings + discovery cache)
	descriptors map[string]PortalDescriptor // agency ID -> descriptor from the winning Discover
}

// NewRegistry returns an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		families:    make(map[string]Adapter),
		resolved:    make(map[string]string),
		descriptors: make(map[string]PortalDescriptor),
	}
}

// Register adds an adapter family. Called at startup; re-registering a family
// replaces it.
func (r *Registry) Register(family string, a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.families[family]; !exists {
		r.order = append(r.order, family)
	}
	r.families[family] = a
}

// Resolve returns the adapter for an agency. A static portal binding on the
// agency record is used as-is; otherwise each registered family's Discover is
// probed and the first successful match is cached. Returns ErrAdapterNotFound
// when no family claims the agency.
func (r *Registry) Resolve(ctx context.Context, ag model.Agency) (Adapter, error) {
	r.mu.RLock()
	family, ok := r.resolved[ag.ID]
	if !ok && ag.PortalFamily != "" {
		family, ok = ag.PortalFamily, true
	}
	if ok {
		a, exists := r.families[family]
		r.mu.RUnlock()
		if !exists {
			return nil, fmt.Errorf("agency %s bound to unregistered family %q: %w", ag.ID, family, ErrAdapterNotFound)
		}
		return a, nil
	}
	r.mu.RUnlock()

	family, a, desc, err := r.discover(ctx, ag)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.resolved[ag.ID] = family
	r.descriptors[ag.ID] = desc
	r.mu.Unlock()
	slog.Info("portal discovered", "agency", ag.ID, "family", family)
	return a, nil
}

func (r *Registry) discover(ctx context.Context, ag model.Agency) (string, Adapter, PortalDescriptor, error) {
	hint := AgencyHint{
		AgencyID:     ag.ID,
		Name:         ag.Name,
		Jurisdiction: ag.Jurisdiction,
		PortalURL:    ag.PortalURL,
	}

	r.mu.RLock()
	order := append([]string(nil), r.order...)
	families := make(map[string]Adapter, len(r.families))
	for k, v := range r.families {
		families[k] = v
	}
	r.mu.RUnlock()

	for _, family := range order {
		a := families[family]
		desc, err := a.Discover(ctx, hint)
		if err != nil {
			if errors.Is(err, ErrPortalNotFound) {
				continue
			}
			return "", nil, PortalDescriptor{}, Wrap("discover", err)
		}
		return family, a, desc, nil
	}
	return "", nil, PortalDescriptor{}, fmt.Errorf("agency %s: %w", ag.ID, ErrAdapterNotFound)
}

// Descriptor returns the descriptor for an agency's resolved adapter, used by
// the tracker to learn the adapter's correlation-key preference. The
// descriptor is cached per agency; statically bound agencies pay one Discover
// on first use.
func (r *Registry) Descriptor(ctx context.Context, ag model.Agency) (PortalDescriptor, error) {
	r.mu.RLock()
	desc, ok := r.descriptors[ag.ID]
	r.mu.RUnlock()
	if ok {
		return desc, nil
	}

	a, err := r.Resolve(ctx, ag)
	if err != nil {
		return PortalDescriptor{}, err
	}

	// Resolve caches the descriptor when it runs discovery; a static
	// binding skips discovery, so probe the bound adapter once here.
	r.mu.RLock()
	desc, ok = r.descriptors[ag.ID]
	r.mu.RUnlock()
	if ok {
		return desc, nil
	}

	desc, err = a.Discover(ctx, AgencyHint{
		AgencyID:     ag.ID,
		Name:         ag.Name,
		Jurisdiction: ag.Jurisdiction,
		PortalURL:    ag.PortalURL,
	})
	if err != nil {
		return PortalDescriptor{}, Wrap("discover", err)
	}
	r.mu.Lock()
	r.descriptors[ag.ID] = desc
	r.mu.Unlock()
	return desc, nil
}
