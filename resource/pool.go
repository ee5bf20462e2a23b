// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	log "github.com/sirupsen/logrus"
)

// Pooler is the type independent face of a Pool, which is all
// the Manager needs to route discards, queries and ticks.
type Pooler interface {
	Type() Type

	// Async reports whether the pool loads resources asynchronously
	// and therefore needs Update called every tick.
	Async() bool

	Unassign(id ID) error
	QueryState(id ID) (State, error)
	Update()
	Discard()
}

type slot[S Setup, R any] struct {
	stamp uint32
	state State
	live  bool

	// retired is set when the slot was unassigned while its load was
	// still running. The slot is freed once the load reports done.
	retired bool

	resource R
	setup    S
	data     io.Reader
	loading  Loading[R]
}

// Pool is a fixed-capacity arena of resources of a single type.
type Pool[S Setup, R any] struct {
	factory  Factory[S, R]
	async    AsyncFactory[S, R]
	typ      Type
	throttle int

	slots    []slot[S, R]
	free     *roaring.Bitmap
	queue    []uint32
	inflight []uint32

	valid  bool
	logger *log.Entry
}

// Setup allocates capacity slots. A non-zero throttle enables asynchronous
// loading and caps how many loads Update starts per call, which requires
// the factory to be an AsyncFactory.
func (p *Pool[S, R]) Setup(factory Factory[S, R], capacity, throttle uint32, typ Type) error {
	if p.valid {
		return fmt.Errorf("%s pool: %w", typ, ErrAlreadySetup)
	}
	if factory == nil || capacity == 0 || typ == Invalid {
		return fmt.Errorf("%s pool with capacity %d: %w", typ, capacity, ErrBadConfiguration)
	}

	async, isAsync := factory.(AsyncFactory[S, R])
	if throttle > 0 && !isAsync {
		return fmt.Errorf("%s pool is throttled but %T cannot load asynchronously: %w", typ, factory, ErrBadConfiguration)
	}
	if throttle > 0 {
		p.async = async
	}

	p.factory = factory
	p.typ = typ
	p.throttle = int(throttle)
	p.slots = make([]slot[S, R], capacity)
	p.free = roaring.New()
	p.free.AddRange(0, uint64(capacity))
	p.queue = nil
	p.inflight = nil
	p.logger = log.WithField("pool", typ.String())
	p.valid = true

	p.logger.WithFields(log.Fields{
		"capacity": capacity,
		"throttle": throttle,
	}).Debug("pool set up")
	return nil
}

// IsValid reports whether the pool is set up.
func (p *Pool[S, R]) IsValid() bool {
	return p.valid
}

// Type returns the resource type the pool holds.
func (p *Pool[S, R]) Type() Type {
	return p.typ
}

// Async implements Pooler.
func (p *Pool[S, R]) Async() bool {
	return p.valid && p.async != nil
}

// Capacity returns the number of slots.
func (p *Pool[S, R]) Capacity() int {
	return len(p.slots)
}

// Len returns the number of slots currently handed out.
func (p *Pool[S, R]) Len() int {
	if !p.valid {
		return 0
	}
	return len(p.slots) - int(p.free.GetCardinality())
}

// Pending returns the number of loads queued or running.
func (p *Pool[S, R]) Pending() int {
	return len(p.queue) + len(p.inflight)
}

// AllocID reserves the lowest free slot and returns a fresh ID for it.
func (p *Pool[S, R]) AllocID() (ID, error) {
	if !p.valid {
		return InvalidID, fmt.Errorf("%s pool: %w", p.typ, ErrNotSetup)
	}
	if p.free.IsEmpty() {
		return InvalidID, fmt.Errorf("%s pool, capacity %d: %w", p.typ, len(p.slots), ErrPoolExhausted)
	}

	idx := p.free.Minimum()
	p.free.Remove(idx)

	s := &p.slots[idx]
	s.stamp++
	if s.stamp == 0 {
		s.stamp = 1
	}
	s.live = true
	s.state = Initial
	return ID{Type: p.typ, Slot: idx, Stamp: s.stamp}, nil
}

// Assign builds the resource for id synchronously. The slot ends up
// either Valid or Failed.
func (p *Pool[S, R]) Assign(id ID, setup S) error {
	s, err := p.initialSlot(id)
	if err != nil {
		return err
	}

	s.state = Setup
	res, err := p.factory.Create(setup)
	if err != nil {
		s.state = Failed
		p.logger.WithFields(log.Fields{
			"id":      id,
			"locator": setup.Locator(),
		}).WithError(err).Warn("resource failed to build")
		return nil
	}
	s.resource = res
	s.state = Valid
	return nil
}

// AssignAsync queues id to be built from data. The slot is Pending when
// AssignAsync returns and only Update moves it on.
func (p *Pool[S, R]) AssignAsync(id ID, setup S, data io.Reader) error {
	if p.valid && p.async == nil {
		return fmt.Errorf("%s pool: %w", p.typ, ErrNoAsync)
	}
	s, err := p.initialSlot(id)
	if err != nil {
		return err
	}

	s.state = Setup
	s.setup = setup
	s.data = data
	s.state = Pending
	p.queue = append(p.queue, id.Slot)
	return nil
}

// Unassign destroys the resource behind id and frees its slot. A slot whose
// load is already running is cancelled and only freed once Update sees the
// load finish; the id is stale from this call on either way.
func (p *Pool[S, R]) Unassign(id ID) error {
	s, err := p.slot(id)
	if err != nil {
		return err
	}

	switch s.state {
	case Pending:
		if s.loading != nil {
			s.loading.Cancel()
			s.retired = true
			p.logger.WithField("id", id).Debug("retiring slot with load in flight")
			return nil
		}
		p.dequeue(id.Slot)
	case Valid:
		p.factory.Destroy(s.resource)
	}
	p.release(id.Slot)
	return nil
}

// QueryState returns the state of the slot id refers to.
func (p *Pool[S, R]) QueryState(id ID) (State, error) {
	s, err := p.slot(id)
	if err != nil {
		return Initial, err
	}
	return s.state, nil
}

// Resource returns the object behind id if it is Valid.
func (p *Pool[S, R]) Resource(id ID) (R, bool) {
	var zero R
	s, err := p.slot(id)
	if err != nil || s.state != Valid {
		return zero, false
	}
	return s.resource, true
}

// Update starts queued loads, at most throttle of them, and moves every
// load that has finished to Valid or Failed.
func (p *Pool[S, R]) Update() {
	if !p.valid || p.async == nil {
		return
	}

	for started := 0; len(p.queue) > 0 && started < p.throttle; started++ {
		idx := p.queue[0]
		p.queue = p.queue[1:]

		s := &p.slots[idx]
		s.loading = p.async.Load(s.setup, s.data)
		s.data = nil
		p.inflight = append(p.inflight, idx)
	}

	remaining := p.inflight[:0]
	for _, idx := range p.inflight {
		s := &p.slots[idx]
		res, done, err := s.loading.Poll()
		if !done {
			remaining = append(remaining, idx)
			continue
		}
		s.loading = nil

		entry := p.logger.WithFields(log.Fields{
			"id":      ID{Type: p.typ, Slot: idx, Stamp: s.stamp},
			"locator": s.setup.Locator(),
		})
		switch {
		case s.retired:
			if err == nil {
				p.factory.Destroy(res)
			}
			entry.Debug("retired slot released")
			p.release(idx)
		case err != nil:
			s.state = Failed
			entry.WithError(err).Warn("resource failed to load")
		default:
			s.resource = res
			s.state = Valid
			entry.Debug("resource loaded")
		}
	}
	p.inflight = remaining
}

// Discard destroys every resource in the pool, waiting for running loads,
// and leaves the pool not set up. All IDs it handed out become invalid.
func (p *Pool[S, R]) Discard() {
	if !p.valid {
		return
	}

	for _, idx := range p.inflight {
		s := &p.slots[idx]
		s.loading.Cancel()
		s.loading.Wait()
		if res, done, err := s.loading.Poll(); done && err == nil {
			p.factory.Destroy(res)
		}
		s.loading = nil
	}

	for idx := range p.slots {
		if s := &p.slots[idx]; s.live && s.state == Valid {
			p.factory.Destroy(s.resource)
		}
	}

	p.logger.WithField("live", p.Len()).Debug("pool discarded")
	*p = Pool[S, R]{}
}

func (p *Pool[S, R]) slot(id ID) (*slot[S, R], error) {
	if !p.valid {
		return nil, fmt.Errorf("%s pool: %w", p.typ, ErrNotSetup)
	}
	if id.Type != p.typ || int(id.Slot) >= len(p.slots) {
		return nil, fmt.Errorf("%s pool given %s: %w", p.typ, id, ErrStaleID)
	}
	s := &p.slots[id.Slot]
	if !s.live || s.retired || s.stamp != id.Stamp {
		return nil, fmt.Errorf("%s pool given %s: %w", p.typ, id, ErrStaleID)
	}
	return s, nil
}

func (p *Pool[S, R]) initialSlot(id ID) (*slot[S, R], error) {
	s, err := p.slot(id)
	if err != nil {
		return nil, err
	}
	if s.state != Initial {
		return nil, fmt.Errorf("assign %s in state %s: %w", id, s.state, ErrInvalidState)
	}
	return s, nil
}

func (p *Pool[S, R]) dequeue(idx uint32) {
	for i, queued := range p.queue {
		if queued == idx {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			return
		}
	}
}

func (p *Pool[S, R]) release(idx uint32) {
	s := &p.slots[idx]
	*s = slot[S, R]{stamp: s.stamp}
	p.free.Add(idx)
}
