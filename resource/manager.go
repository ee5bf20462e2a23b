// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	log "github.com/sirupsen/logrus"
)

// Manager routes resource requests through the Registry and
// the pool registered for each resource type.
type Manager struct {
	registry *Registry
	pools    map[Type]Pooler
	order    []Type
	removed  []ID
	valid    bool
}

// NewManager creates a Manager with an empty registry.
// Pools are added afterwards with Register.
func NewManager(cfg Configuration) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		registry: NewRegistry(cfg.RegistryCapacity),
		pools:    make(map[Type]Pooler),
		valid:    true,
	}, nil
}

// IsValid reports whether the Manager is set up.
func (m *Manager) IsValid() bool {
	return m != nil && m.valid
}

// Register makes pool the handler for its resource type. Create finds
// pools by their setup and resource types, so no two pools may share them.
func (m *Manager) Register(pool Pooler) error {
	if !m.IsValid() {
		return ErrNotSetup
	}
	typ := pool.Type()
	if typ == Invalid {
		return fmt.Errorf("register pool that is not set up: %w", ErrBadConfiguration)
	}
	if _, ok := m.pools[typ]; ok {
		return fmt.Errorf("register %s pool: %w", typ, ErrAlreadySetup)
	}
	for other, registered := range m.pools {
		if reflect.TypeOf(registered) == reflect.TypeOf(pool) {
			return fmt.Errorf("register %s pool, %T already serves %s: %w", typ, pool, other, ErrBadConfiguration)
		}
	}
	m.pools[typ] = pool
	m.order = append(m.order, typ)
	return nil
}

// Registry gives read access to the locator registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Create returns the resource registered under the locator of setup,
// or allocates, registers and synchronously builds a new one.
func Create[S Setup, R any](m *Manager, setup S) (ID, error) {
	return create[S, R](m, setup, nil, false)
}

// CreateAsync is like Create but builds a new resource from data.
// A new resource is Pending when CreateAsync returns.
func CreateAsync[S Setup, R any](m *Manager, setup S, data io.Reader) (ID, error) {
	return create[S, R](m, setup, data, true)
}

func create[S Setup, R any](m *Manager, setup S, data io.Reader, async bool) (ID, error) {
	if !m.IsValid() {
		return InvalidID, ErrNotSetup
	}
	pool, err := poolFor[S, R](m)
	if err != nil {
		return InvalidID, m.fault(err)
	}

	loc := setup.Locator()
	if id := m.registry.Lookup(loc); id.IsValid() {
		if id.Type != pool.Type() {
			return InvalidID, m.fault(fmt.Errorf("%q is %s, wanted %s: %w", loc, id, pool.Type(), ErrTypeMismatch))
		}
		return id, nil
	}

	id, err := pool.AllocID()
	if err != nil {
		return InvalidID, m.fault(err)
	}
	if err := m.registry.Add(loc, id, setup.Dependencies()...); err != nil {
		pool.Unassign(id)
		return InvalidID, m.fault(err)
	}

	if async {
		err = pool.AssignAsync(id, setup, data)
	} else {
		err = pool.Assign(id, setup)
	}
	if err != nil {
		m.Discard(id)
		return InvalidID, m.fault(err)
	}

	log.WithFields(log.Fields{
		"id":      id,
		"locator": loc,
	}).Debug("resource created")
	return id, nil
}

func poolFor[S Setup, R any](m *Manager) (*Pool[S, R], error) {
	for _, typ := range m.order {
		if pool, ok := m.pools[typ].(*Pool[S, R]); ok {
			return pool, nil
		}
	}
	var setup S
	return nil, fmt.Errorf("create from %T: %w", setup, ErrUnhandledType)
}

// Lookup returns the ID registered for loc, or InvalidID.
func (m *Manager) Lookup(loc Locator) ID {
	if !m.IsValid() {
		m.fault(fmt.Errorf("lookup %q: %w", loc, ErrNotSetup))
		return InvalidID
	}
	return m.registry.Lookup(loc)
}

// Discard releases one reference to id. Every resource that is no longer
// referenced as a result, id and its dependencies alike, is unassigned
// from its pool.
func (m *Manager) Discard(id ID) error {
	if !m.IsValid() {
		return ErrNotSetup
	}

	var n int
	m.removed, n = m.registry.Release(id, m.removed[:0])
	if n == 0 {
		return nil
	}

	var errs []error
	for _, removed := range m.removed {
		pool, ok := m.pools[removed.Type]
		if !ok {
			errs = append(errs, fmt.Errorf("discard %s: %w", removed, ErrUnhandledType))
			continue
		}
		if err := pool.Unassign(removed); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return m.fault(errors.Join(errs...))
	}
	return nil
}

// QueryState returns the state of the resource behind id.
func (m *Manager) QueryState(id ID) (State, error) {
	if !m.IsValid() {
		return Initial, ErrNotSetup
	}
	pool, ok := m.pools[id.Type]
	if !ok {
		return Initial, m.fault(fmt.Errorf("query %s: %w", id, ErrUnhandledType))
	}
	state, err := pool.QueryState(id)
	if err != nil {
		return Initial, m.fault(err)
	}
	return state, nil
}

// Update drives every pool that loads asynchronously. It is meant to be
// called once per tick from the goroutine that owns the Manager.
func (m *Manager) Update() {
	if !m.IsValid() {
		return
	}
	for _, typ := range m.order {
		if pool := m.pools[typ]; pool.Async() {
			pool.Update()
		}
	}
}

// Close forgets every registered resource and tears down the pools
// in reverse order of registration. The Manager cannot be used afterwards.
func (m *Manager) Close() {
	if !m.IsValid() {
		return
	}
	m.registry.Reset()
	for i := len(m.order) - 1; i >= 0; i-- {
		m.pools[m.order[i]].Discard()
	}
	m.pools = nil
	m.order = nil
	m.valid = false
}

func (m *Manager) fault(err error) error {
	log.WithError(err).Error("resource fault")
	return err
}
