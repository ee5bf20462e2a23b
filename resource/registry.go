// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import "fmt"

type entry struct {
	locator Locator
	refs    int
	deps    []ID
}

// Registry maps Locators to IDs, counts references per ID and
// remembers which IDs each resource depends on.
type Registry struct {
	ids     map[Locator]ID
	entries map[ID]*entry
}

// NewRegistry creates a Registry sized for capacity resources.
func NewRegistry(capacity int) *Registry {
	if capacity < 0 {
		capacity = 0
	}
	return &Registry{
		ids:     make(map[Locator]ID, capacity),
		entries: make(map[ID]*entry, capacity),
	}
}

// Lookup returns the ID registered for loc, or InvalidID.
func (r *Registry) Lookup(loc Locator) ID {
	if id, ok := r.ids[loc]; ok {
		return id
	}
	return InvalidID
}

// Add registers id under loc with a reference count of one. Every entry
// in deps gets its own reference count raised once per occurrence, so a
// shared dependency outlives each resource that depends on it.
func (r *Registry) Add(loc Locator, id ID, deps ...ID) error {
	if !id.IsValid() {
		return fmt.Errorf("register %q: %w", loc, ErrInvalidID)
	}
	if existing, ok := r.ids[loc]; ok {
		return fmt.Errorf("register %q as %s, held by %s: %w", loc, id, existing, ErrDuplicateLocator)
	}
	if e, ok := r.entries[id]; ok {
		return fmt.Errorf("register %q as %s, id held by %q: %w", loc, id, e.locator, ErrDuplicateLocator)
	}
	for _, dep := range deps {
		if _, ok := r.entries[dep]; !ok {
			return fmt.Errorf("register %q depending on %s: %w", loc, dep, ErrUnknownDependency)
		}
	}

	for _, dep := range deps {
		r.entries[dep].refs++
	}
	r.ids[loc] = id
	r.entries[id] = &entry{
		locator: loc,
		refs:    1,
		deps:    append([]ID(nil), deps...),
	}
	return nil
}

// Release drops one reference to id. When the count reaches zero the entry
// is removed, appended to removed, and the same happens to each of its
// dependencies in turn. Releasing an unknown id does nothing.
// The grown slice and the number of IDs appended are returned.
func (r *Registry) Release(id ID, removed []ID) ([]ID, int) {
	start := len(removed)
	visited := make(map[ID]struct{})

	work := []ID{id}
	for len(work) > 0 {
		cur := work[0]
		work = work[1:]

		if _, ok := visited[cur]; ok {
			continue
		}
		e, ok := r.entries[cur]
		if !ok {
			continue
		}
		if e.refs--; e.refs > 0 {
			continue
		}

		visited[cur] = struct{}{}
		delete(r.entries, cur)
		delete(r.ids, e.locator)
		removed = append(removed, cur)
		work = append(work, e.deps...)
	}
	return removed, len(removed) - start
}

// RefCount returns the reference count of id, zero when not registered.
func (r *Registry) RefCount(id ID) int {
	if e, ok := r.entries[id]; ok {
		return e.refs
	}
	return 0
}

// Locator returns the Locator id was registered under.
func (r *Registry) Locator(id ID) (Locator, bool) {
	if e, ok := r.entries[id]; ok {
		return e.locator, true
	}
	return Locator{}, false
}

// Dependencies returns a copy of the dependency list of id.
func (r *Registry) Dependencies(id ID) []ID {
	if e, ok := r.entries[id]; ok {
		return append([]ID(nil), e.deps...)
	}
	return nil
}

// Len returns the number of registered resources.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Each calls fn for every registered resource until fn returns false.
// Order is unspecified.
func (r *Registry) Each(fn func(loc Locator, id ID, refs int) bool) {
	for id, e := range r.entries {
		if !fn(e.locator, id, e.refs) {
			return
		}
	}
}

// Reset forgets every registered resource.
func (r *Registry) Reset() {
	r.ids = make(map[Locator]ID, len(r.ids))
	r.entries = make(map[ID]*entry, len(r.entries))
}
