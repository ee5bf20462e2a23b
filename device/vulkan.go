// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"unsafe"

	vk "github.com/devblok/vulkan"
	"github.com/koru3d/korures/core"
	log "github.com/sirupsen/logrus"
)

// DefaultVulkanApplicationInfo identifies the engine to the driver.
var DefaultVulkanApplicationInfo = &vk.ApplicationInfo{
	SType:              vk.StructureTypeApplicationInfo,
	ApiVersion:         vk.MakeVersion(1, 0, 0),
	ApplicationVersion: vk.MakeVersion(1, 0, 0),
	PApplicationName:   core.SafeString("Koru"),
	PEngineName:        core.SafeString(core.EngineName),
}

// NewVulkanDevice creates a Vulkan instance with the given extensions
// enabled. procAddr is the loader entry point, when nil the system
// loader is used.
func NewVulkanDevice(appInfo *vk.ApplicationInfo, procAddr unsafe.Pointer, extensions []string) (*Vulkan, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, err
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, err
	}

	v := &Vulkan{}
	safeExtensions := core.SafeStrings(extensions)
	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(safeExtensions)),
		PpEnabledExtensionNames: safeExtensions,
	}

	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &v.instance)); err != nil {
		return nil, fmt.Errorf("vk.CreateInstance(): %s", err)
	}
	vk.InitInstance(v.instance)

	if err := v.enumerateDevices(); err != nil {
		v.Destroy()
		return nil, err
	}
	return v, nil
}

// Vulkan owns the instance and, once Open is called, a logical device
// with a graphics queue.
type Vulkan struct {
	availableDevices []vk.PhysicalDevice

	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	queueFamily    uint32
	open           bool
}

func (v *Vulkan) enumerateDevices() error {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(v.instance, &deviceCount, nil)); err != nil {
		return fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	v.availableDevices = make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(v.instance, &deviceCount, v.availableDevices)); err != nil {
		return fmt.Errorf("vulkan physical device enumeration failed: %s", err)
	}
	if deviceCount == 0 {
		return ErrNoDevices
	}
	return nil
}

// Instance returns the vk.Instance.
func (v *Vulkan) Instance() interface{} {
	return v.instance
}

// PhysicalDevices implements Device
func (v *Vulkan) PhysicalDevices() []PhysicalDeviceInfo {
	pdi := make([]PhysicalDeviceInfo, len(v.availableDevices))
	for i, phy := range v.availableDevices {
		// Get extension info
		var numDeviceExtensions uint32
		if err := vk.Error(vk.EnumerateDeviceExtensionProperties(phy, "", &numDeviceExtensions, nil)); err != nil {
			pdi[i].Invalid = true
		}
		deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
		if err := vk.Error(vk.EnumerateDeviceExtensionProperties(phy, "", &numDeviceExtensions, deviceExt)); err != nil {
			pdi[i].Invalid = true
		}
		for _, ext := range deviceExt {
			ext.Deref()
			pdi[i].Extensions = append(pdi[i].Extensions, vk.ToString(ext.ExtensionName[:]))
		}

		// Get layers info
		var numDeviceLayers uint32
		if err := vk.Error(vk.EnumerateDeviceLayerProperties(phy, &numDeviceLayers, nil)); err != nil {
			pdi[i].Invalid = true
		}
		deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
		if err := vk.Error(vk.EnumerateDeviceLayerProperties(phy, &numDeviceLayers, deviceLayers)); err != nil {
			pdi[i].Invalid = true
		}
		for _, layer := range deviceLayers {
			layer.Deref()
			pdi[i].Layers = append(pdi[i].Layers, vk.ToString(layer.LayerName[:]))
		}

		// Get memory info
		var memoryProperties vk.PhysicalDeviceMemoryProperties
		vk.GetPhysicalDeviceMemoryProperties(phy, &memoryProperties)
		memoryProperties.Deref()
		for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
			memoryProperties.MemoryHeaps[iMem].Deref()
			pdi[i].Memory += memoryProperties.MemoryHeaps[iMem].Size
		}

		// Get general device info
		var physicalDeviceProperties vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(phy, &physicalDeviceProperties)
		physicalDeviceProperties.Deref()
		pdi[i].ID = int(physicalDeviceProperties.DeviceID)
		pdi[i].VendorID = int(physicalDeviceProperties.VendorID)
		pdi[i].Name = vk.ToString(physicalDeviceProperties.DeviceName[:])
		pdi[i].DriverVersion = int(physicalDeviceProperties.DriverVersion)
	}
	return pdi
}

// Open creates the logical device on the physical device at index,
// with a single queue from the first family that supports graphics.
func (v *Vulkan) Open(index int, extensions []string) error {
	if index < 0 || index >= len(v.availableDevices) {
		return fmt.Errorf("device %d of %d: %w", index, len(v.availableDevices), ErrDeviceIndex)
	}
	phy := v.availableDevices[index]

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(phy, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(phy, &queueFamilyCount, queueFamilies)

	family := -1
	for i := range queueFamilies {
		queueFamilies[i].Deref()
		if queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			family = i
			break
		}
	}
	if family < 0 {
		return ErrNoQueueFamily
	}

	safeExtensions := core.SafeStrings(extensions)
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: uint32(family),
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}}
	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(safeExtensions)),
		PpEnabledExtensionNames: safeExtensions,
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(phy, &dci, nil, &device)); err != nil {
		return fmt.Errorf("vk.CreateDevice(): %s", err)
	}

	var queue vk.Queue
	vk.GetDeviceQueue(device, uint32(family), 0, &queue)

	v.physicalDevice = phy
	v.device = device
	v.queue = queue
	v.queueFamily = uint32(family)
	v.open = true

	log.WithFields(log.Fields{
		"device":      index,
		"queueFamily": family,
	}).Info("logical device opened")
	return nil
}

// PhysicalDevice returns the physical device opened with Open.
func (v *Vulkan) PhysicalDevice() (vk.PhysicalDevice, error) {
	if !v.open {
		return nil, ErrNotOpen
	}
	return v.physicalDevice, nil
}

// LogicalDevice returns the logical device opened with Open.
func (v *Vulkan) LogicalDevice() (vk.Device, error) {
	if !v.open {
		return nil, ErrNotOpen
	}
	return v.device, nil
}

// Queue returns the graphics queue and its family index.
func (v *Vulkan) Queue() (vk.Queue, uint32) {
	return v.queue, v.queueFamily
}

// Destroy implements Device
func (v *Vulkan) Destroy() {
	if v == nil {
		return
	}
	v.availableDevices = nil
	if v.open {
		vk.DeviceWaitIdle(v.device)
		vk.DestroyDevice(v.device, nil)
		v.open = false
	}
	vk.DestroyInstance(v.instance, nil)
}
