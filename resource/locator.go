// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

import "fmt"

// Locator names a resource for deduplication. Signature tells apart
// resources that share a name but not their content, generated meshes
// being the usual case.
type Locator struct {
	Name      string
	Signature uint32
}

// NewLocator creates a Locator for a plain name.
func NewLocator(name string) Locator {
	return Locator{Name: name}
}

// NewLocatorSig creates a Locator with a content signature.
func NewLocatorSig(name string, sig uint32) Locator {
	return Locator{Name: name, Signature: sig}
}

// HasSignature reports whether a signature was set.
func (l Locator) HasSignature() bool {
	return l.Signature != 0
}

func (l Locator) String() string {
	if l.HasSignature() {
		return fmt.Sprintf("%s#%08x", l.Name, l.Signature)
	}
	return l.Name
}
