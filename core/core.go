// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core holds what every part of the engine shares: its
// configuration, the time services that pace the main loop and a few
// helpers for handing data to the graphics API.
package core

// Engine identification used when talking to the graphics API.
const (
	EngineName    = "https://github.com/koru3d"
	EngineVersion = "0.2.0"
)
