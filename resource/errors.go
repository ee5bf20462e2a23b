// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import "errors"

// Faults. All of these point at a bug in the caller and are not meant to be
// retried. Content that fails to load is never reported through an error,
// it shows up as the Failed state instead.
var (
	ErrNotSetup          = errors.New("resource subsystem is not set up")
	ErrAlreadySetup      = errors.New("already set up")
	ErrBadConfiguration  = errors.New("bad resource configuration")
	ErrPoolExhausted     = errors.New("resource pool exhausted")
	ErrStaleID           = errors.New("stale or foreign resource id")
	ErrInvalidID         = errors.New("invalid resource id")
	ErrInvalidState      = errors.New("illegal resource state transition")
	ErrNoAsync           = errors.New("pool does not support asynchronous loading")
	ErrDuplicateLocator  = errors.New("locator already registered")
	ErrUnknownDependency = errors.New("dependency is not registered")
	ErrTypeMismatch      = errors.New("locator registered with another resource type")
	ErrUnhandledType     = errors.New("no pool handles this resource type")
)
