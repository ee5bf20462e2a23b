// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestPoolSetupFaults(t *testing.T) {
	c := qt.New(t)

	var p testPool
	c.Assert(p.Setup(&testFactory{}, 0, 0, Shader), qt.ErrorIs, ErrBadConfiguration)
	c.Assert(p.Setup(nil, 4, 0, Shader), qt.ErrorIs, ErrBadConfiguration)
	c.Assert(p.Setup(&testFactory{}, 4, 0, Invalid), qt.ErrorIs, ErrBadConfiguration)
	c.Assert(p.Setup(&testFactory{}, 4, 2, Mesh), qt.ErrorIs, ErrBadConfiguration)
	c.Assert(p.IsValid(), qt.IsFalse)

	c.Assert(p.Setup(&testFactory{}, 4, 0, Shader), qt.IsNil)
	c.Assert(p.Setup(&testFactory{}, 4, 0, Shader), qt.ErrorIs, ErrAlreadySetup)
	c.Assert(p.Capacity(), qt.Equals, 4)
	c.Assert(p.Async(), qt.IsFalse)
}

func TestPoolNotSetup(t *testing.T) {
	c := qt.New(t)

	var p testPool
	_, err := p.AllocID()
	c.Assert(err, qt.ErrorIs, ErrNotSetup)
	_, err = p.QueryState(ID{Type: Shader, Stamp: 1})
	c.Assert(err, qt.ErrorIs, ErrNotSetup)
}

func TestAllocIDExhaustion(t *testing.T) {
	c := qt.New(t)
	p, _ := newTestPool(Shader, 2)

	a, err := p.AllocID()
	c.Assert(err, qt.IsNil)
	c.Assert(a, qt.Equals, ID{Type: Shader, Slot: 0, Stamp: 1})
	c.Assert(p.Assign(a, named("a")), qt.IsNil)

	b, err := p.AllocID()
	c.Assert(err, qt.IsNil)
	c.Assert(b, qt.Equals, ID{Type: Shader, Slot: 1, Stamp: 1})

	_, err = p.AllocID()
	c.Assert(err, qt.ErrorIs, ErrPoolExhausted)
	_, err = p.AllocID()
	c.Assert(err, qt.ErrorIs, ErrPoolExhausted)

	state, err := p.QueryState(a)
	c.Assert(err, qt.IsNil)
	c.Assert(state, qt.Equals, Valid)
	state, err = p.QueryState(b)
	c.Assert(err, qt.IsNil)
	c.Assert(state, qt.Equals, Initial)
	c.Assert(p.Len(), qt.Equals, 2)
}

func TestAssignSync(t *testing.T) {
	c := qt.New(t)
	p, f := newTestPool(Shader, 4)

	good, _ := p.AllocID()
	c.Assert(p.Assign(good, named("good")), qt.IsNil)
	state, _ := p.QueryState(good)
	c.Assert(state, qt.Equals, Valid)

	res, ok := p.Resource(good)
	c.Assert(ok, qt.IsTrue)
	c.Assert(res.name, qt.Equals, "good")

	bad, _ := p.AllocID()
	c.Assert(p.Assign(bad, testSetup{loc: NewLocator("bad"), fail: true}), qt.IsNil)
	state, _ = p.QueryState(bad)
	c.Assert(state, qt.Equals, Failed)
	_, ok = p.Resource(bad)
	c.Assert(ok, qt.IsFalse)

	c.Assert(p.Assign(good, named("again")), qt.ErrorIs, ErrInvalidState)
	c.Assert(f.created, qt.DeepEquals, []string{"good"})

	c.Assert(p.Unassign(bad), qt.IsNil)
	c.Assert(f.destroyed, qt.HasLen, 0)
}

func TestStaleIDRejected(t *testing.T) {
	c := qt.New(t)
	p, f := newTestPool(Mesh, 1)

	old, _ := p.AllocID()
	c.Assert(p.Assign(old, named("first")), qt.IsNil)
	c.Assert(p.Unassign(old), qt.IsNil)
	c.Assert(f.destroyed, qt.DeepEquals, []string{"first"})

	fresh, err := p.AllocID()
	c.Assert(err, qt.IsNil)
	c.Assert(fresh.Slot, qt.Equals, old.Slot)
	c.Assert(fresh.Stamp, qt.Not(qt.Equals), old.Stamp)
	c.Assert(p.Assign(fresh, named("second")), qt.IsNil)

	c.Assert(p.Assign(old, named("intruder")), qt.ErrorIs, ErrStaleID)
	c.Assert(p.Unassign(old), qt.ErrorIs, ErrStaleID)
	_, err = p.QueryState(old)
	c.Assert(err, qt.ErrorIs, ErrStaleID)

	state, err := p.QueryState(fresh)
	c.Assert(err, qt.IsNil)
	c.Assert(state, qt.Equals, Valid)
	res, _ := p.Resource(fresh)
	c.Assert(res.name, qt.Equals, "second")
	c.Assert(f.destroyed, qt.DeepEquals, []string{"first"})
}

func TestForeignIDRejected(t *testing.T) {
	c := qt.New(t)
	p, _ := newTestPool(Mesh, 1)

	_, err := p.QueryState(ID{Type: Shader, Slot: 0, Stamp: 1})
	c.Assert(err, qt.ErrorIs, ErrStaleID)
	_, err = p.QueryState(ID{Type: Mesh, Slot: 7, Stamp: 1})
	c.Assert(err, qt.ErrorIs, ErrStaleID)
	_, err = p.QueryState(ID{Type: Mesh, Slot: 0, Stamp: 1})
	c.Assert(err, qt.ErrorIs, ErrStaleID)
}

func TestAssignAsyncNeedsThrottle(t *testing.T) {
	c := qt.New(t)

	p := &testPool{}
	c.Assert(p.Setup(&asyncTestFactory{}, 2, 0, Mesh), qt.IsNil)
	id, _ := p.AllocID()
	c.Assert(p.AssignAsync(id, named("m"), strings.NewReader("x")), qt.ErrorIs, ErrNoAsync)
	c.Assert(p.Async(), qt.IsFalse)
}

func TestAsyncLifecycle(t *testing.T) {
	c := qt.New(t)
	p, f := newAsyncTestPool(Mesh, 4, 1)

	a, _ := p.AllocID()
	b, _ := p.AllocID()
	c.Assert(p.AssignAsync(a, named("a"), strings.NewReader("alpha")), qt.IsNil)
	c.Assert(p.AssignAsync(b, testSetup{loc: NewLocator("b"), fail: true}, strings.NewReader("beta")), qt.IsNil)

	for _, id := range []ID{a, b} {
		state, err := p.QueryState(id)
		c.Assert(err, qt.IsNil)
		c.Assert(state, qt.Equals, Pending)
	}
	c.Assert(f.loads, qt.HasLen, 0)
	c.Assert(p.Pending(), qt.Equals, 2)

	// throttle of one starts a single load per tick
	p.Update()
	c.Assert(f.loads, qt.HasLen, 1)
	p.Update()
	c.Assert(f.loads, qt.HasLen, 2)

	for i := 0; i < 3; i++ {
		p.Update()
		state, _ := p.QueryState(a)
		c.Assert(state, qt.Equals, Pending)
	}

	f.loads[0].finish()
	state, _ := p.QueryState(a)
	c.Assert(state, qt.Equals, Pending)

	p.Update()
	state, _ = p.QueryState(a)
	c.Assert(state, qt.Equals, Valid)
	res, ok := p.Resource(a)
	c.Assert(ok, qt.IsTrue)
	c.Assert(res.payload, qt.Equals, "alpha")

	f.loads[1].finish()
	p.Update()
	state, _ = p.QueryState(b)
	c.Assert(state, qt.Equals, Failed)
	c.Assert(p.Pending(), qt.Equals, 0)
}

func TestUnassignQueuedLoad(t *testing.T) {
	c := qt.New(t)
	p, f := newAsyncTestPool(Mesh, 1, 1)

	id, _ := p.AllocID()
	c.Assert(p.AssignAsync(id, named("queued"), strings.NewReader("")), qt.IsNil)
	c.Assert(p.Unassign(id), qt.IsNil)
	c.Assert(p.Pending(), qt.Equals, 0)
	c.Assert(p.Len(), qt.Equals, 0)

	p.Update()
	c.Assert(f.loads, qt.HasLen, 0)
}

func TestUnassignInFlightDefersFree(t *testing.T) {
	c := qt.New(t)
	p, f := newAsyncTestPool(Mesh, 1, 1)

	id, _ := p.AllocID()
	c.Assert(p.AssignAsync(id, named("inflight"), strings.NewReader("data")), qt.IsNil)
	p.Update()
	c.Assert(f.loads, qt.HasLen, 1)

	c.Assert(p.Unassign(id), qt.IsNil)
	c.Assert(f.loads[0].cancelled, qt.IsTrue)

	_, err := p.QueryState(id)
	c.Assert(err, qt.ErrorIs, ErrStaleID)
	c.Assert(p.Unassign(id), qt.ErrorIs, ErrStaleID)

	// the slot stays reserved while the loader may still write into it
	_, err = p.AllocID()
	c.Assert(err, qt.ErrorIs, ErrPoolExhausted)
	p.Update()
	_, err = p.AllocID()
	c.Assert(err, qt.ErrorIs, ErrPoolExhausted)

	f.loads[0].finish()
	p.Update()
	c.Assert(f.destroyed, qt.DeepEquals, []string{"inflight"})

	fresh, err := p.AllocID()
	c.Assert(err, qt.IsNil)
	c.Assert(fresh, qt.Equals, ID{Type: Mesh, Slot: 0, Stamp: 2})
}

func TestPoolDiscard(t *testing.T) {
	c := qt.New(t)
	p, f := newAsyncTestPool(Mesh, 4, 4)

	a, _ := p.AllocID()
	c.Assert(p.AssignAsync(a, named("loaded"), strings.NewReader("x")), qt.IsNil)
	b, _ := p.AllocID()
	c.Assert(p.AssignAsync(b, named("running"), strings.NewReader("y")), qt.IsNil)
	p.Update()
	f.loads[0].finish()
	p.Update()

	// the second load completes during teardown
	f.loads[1].finish()
	p.Discard()

	c.Assert(f.loads[1].cancelled, qt.IsTrue)
	c.Assert(f.destroyed, qt.DeepEquals, []string{"running", "loaded"})
	c.Assert(p.IsValid(), qt.IsFalse)
	_, err := p.QueryState(a)
	c.Assert(err, qt.ErrorIs, ErrNotSetup)
}
