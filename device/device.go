// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device sets up the graphics API: the instance, the choice of
// physical device and the logical device resources are created on.
package device

import (
	"errors"

	vk "github.com/devblok/vulkan"
)

// package errors
var (
	ErrNoDevices     = errors.New("no rendering devices available")
	ErrDeviceIndex   = errors.New("no rendering device with that index")
	ErrNoQueueFamily = errors.New("device has no graphics queue family")
	ErrNotOpen       = errors.New("logical device is not open")
)

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        vk.DeviceSize
}

// Device describes a non-concrete rendering device
type Device interface {
	PhysicalDevices() []PhysicalDeviceInfo
	Instance() interface{}
	Destroy()
}
