// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package resource is the lifecycle core for rendering resources.
// Resources live in fixed-capacity pools, one pool per resource type, and are
// referred to only by ID handles that carry the type, the pool slot and a
// generation stamp. A Registry maps Locators to IDs so that identical requests
// share one resource, counts references and remembers dependency edges so that
// releasing a resource cascades into whatever it kept alive. The Manager ties
// the two together and is driven once per tick from a single goroutine.
// Only asynchronous loads run elsewhere, and their results are observed in
// Update, never written into pool state from a worker.
package resource
