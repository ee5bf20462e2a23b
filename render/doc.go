// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package render holds the rendering resource types built on top of
// package resource: setup descriptors, the objects they turn into,
// the factories that build them through a Device, and Resources which
// ties the pools for each type to one Manager.
//
// Everything in Resources is owned by a single goroutine. Only mesh
// decoding runs elsewhere, uploading the result happens when Update
// is called.
package render
