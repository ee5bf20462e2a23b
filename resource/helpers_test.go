// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import (
	"errors"
	"io"
	"io/ioutil"
)

var errBroken = errors.New("broken content")

type testSetup struct {
	loc  Locator
	deps []ID
	fail bool
}

func (s testSetup) Locator() Locator   { return s.loc }
func (s testSetup) Dependencies() []ID { return s.deps }

func named(name string, deps ...ID) testSetup {
	return testSetup{loc: NewLocator(name), deps: deps}
}

type testResource struct {
	name    string
	payload string
}

type testFactory struct {
	created   []string
	destroyed []string
}

func (f *testFactory) Create(s testSetup) (*testResource, error) {
	if s.fail {
		return nil, errBroken
	}
	f.created = append(f.created, s.loc.Name)
	return &testResource{name: s.loc.Name}, nil
}

func (f *testFactory) Destroy(r *testResource) {
	f.destroyed = append(f.destroyed, r.name)
}

type testLoading struct {
	setup     testSetup
	data      io.Reader
	res       *testResource
	err       error
	done      bool
	cancelled bool
}

func (l *testLoading) Poll() (*testResource, bool, error) {
	return l.res, l.done, l.err
}

func (l *testLoading) Cancel() { l.cancelled = true }
func (l *testLoading) Wait()   {}

// finish completes the load the way a worker would, reading the stream.
func (l *testLoading) finish() {
	l.done = true
	if l.setup.fail {
		l.err = errBroken
		return
	}
	payload, err := ioutil.ReadAll(l.data)
	if err != nil {
		l.err = err
		return
	}
	l.res = &testResource{name: l.setup.loc.Name, payload: string(payload)}
}

type asyncTestFactory struct {
	testFactory
	loads []*testLoading
}

func (f *asyncTestFactory) Load(s testSetup, data io.Reader) Loading[*testResource] {
	l := &testLoading{setup: s, data: data}
	f.loads = append(f.loads, l)
	return l
}

type testPool = Pool[testSetup, *testResource]

func newTestPool(typ Type, capacity uint32) (*testPool, *testFactory) {
	f := &testFactory{}
	p := &testPool{}
	if err := p.Setup(f, capacity, 0, typ); err != nil {
		panic(err)
	}
	return p, f
}

func newAsyncTestPool(typ Type, capacity, throttle uint32) (*testPool, *asyncTestFactory) {
	f := &asyncTestFactory{}
	p := &testPool{}
	if err := p.Setup(f, capacity, throttle, typ); err != nil {
		panic(err)
	}
	return p, f
}
