// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import "io"

// Setup describes a resource to be created. The pool never looks
// inside a setup beyond these accessors.
type Setup interface {
	// Locator identifies the resource for deduplication.
	Locator() Locator

	// Dependencies lists resources that must stay alive for as long
	// as this one does. Most setups return nil.
	Dependencies() []ID
}

// Factory builds and destroys the objects held by a pool.
// Returning an error from Create marks the slot Failed,
// it is not treated as a fault.
type Factory[S Setup, R any] interface {
	Create(setup S) (R, error)
	Destroy(res R)
}

// AsyncFactory is a Factory that can also build a resource from a data
// stream without blocking the caller.
type AsyncFactory[S Setup, R any] interface {
	Factory[S, R]

	// Load starts building the resource from data. It must return
	// immediately, the work is observed through the returned Loading.
	Load(setup S, data io.Reader) Loading[R]
}

// Loading is a resource under construction away from the owner goroutine.
// Poll and Cancel are only called by the owner, the worker behind
// a Loading never touches pool state.
type Loading[R any] interface {
	// Poll reports whether the load has finished. Once done is true the
	// result or the error is final and any backend work is complete.
	Poll() (res R, done bool, err error)

	// Cancel asks the load to stop early. Poll still has to report
	// done before the resource slot may be reused.
	Cancel()

	// Wait blocks until the worker behind the load has stopped.
	Wait()
}
