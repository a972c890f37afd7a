package vkrs

import (
	"fmt"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

//CoreDevice is the device context: instance, chosen adapter, logical device and the graphics and
//present queues. It is created first and destroyed last.
type CoreDevice struct {
	instance       vk.Instance
	debug_callback vk.DebugReportCallback
	layers         []string
	display        *CoreDisplay
	log            *CoreLogger

	gpu                  vk.PhysicalDevice
	gpu_properties       vk.PhysicalDeviceProperties
	memory_properties    vk.PhysicalDeviceMemoryProperties
	max_anisotropy       float32
	handle               vk.Device
	families             QueueFamilyIndices
	graphics_queue       vk.Queue
	present_queue        vk.Queue
	depth_format         vk.Format
	device_extensions    []string
	selected_device_name string
}

//Everything device selection needs to know about one adapter
type deviceCandidate struct {
	name          string
	device_type   vk.PhysicalDeviceType
	families      QueueFamilyIndices
	missing       []string
	anisotropy    bool
	format_count  int
	present_count int
}

func (c deviceCandidate) suitable() bool {
	return c.families.IsComplete() && len(c.missing) == 0 && c.anisotropy && c.format_count > 0 && c.present_count > 0
}

//rateDevice scores a suitable adapter, unsuitable ones score -1
func rateDevice(c deviceCandidate, prefer_discrete bool) int {
	if !c.suitable() {
		return -1
	}
	score := 1
	switch c.device_type {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		if prefer_discrete {
			score += 1000
		} else {
			score += 10
		}
	case vk.PhysicalDeviceTypeIntegratedGpu:
		score += 100
	case vk.PhysicalDeviceTypeVirtualGpu:
		score += 5
	}
	if c.families.Shared() {
		score += 1
	}
	return score
}

//pickDevice returns the index of the best scoring candidate. Ties keep enumeration order.
func pickDevice(candidates []deviceCandidate, prefer_discrete bool) (int, bool) {
	best, best_score := -1, -1
	for index, c := range candidates {
		if score := rateDevice(c, prefer_discrete); score > best_score {
			best, best_score = index, score
		}
	}
	return best, best != -1
}

func unsuitableReason(c deviceCandidate) string {
	reasons := []string{}
	if !c.families.IsComplete() {
		reasons = append(reasons, "no graphics+present queue families")
	}
	if len(c.missing) > 0 {
		reasons = append(reasons, "missing "+strings.Join(c.missing, ","))
	}
	if !c.anisotropy {
		reasons = append(reasons, "no sampler anisotropy")
	}
	if c.format_count == 0 || c.present_count == 0 {
		reasons = append(reasons, "inadequate swapchain support")
	}
	return strings.Join(reasons, "; ")
}

func requiredDeviceExtensions(cfg *Config) []string {
	return append([]string{swapchainExtension}, cfg.DeviceExtensions...)
}

//NewCoreDevice brings up the instance, surface, adapter, logical device and queues
func NewCoreDevice(cfg *Config, display *CoreDisplay, log *CoreLogger) (*CoreDevice, error) {
	if log == nil {
		log = NopLogger()
	}
	core := &CoreDevice{display: display, log: log, debug_callback: vk.NullDebugReportCallback}

	if err := core.createInstance(cfg); err != nil {
		core.Destroy()
		return nil, err
	}
	if err := display.CreateSurface(core.instance); err != nil {
		core.Destroy()
		return nil, err
	}
	if err := core.pickPhysicalDevice(cfg); err != nil {
		core.Destroy()
		return nil, err
	}
	if err := core.createLogicalDevice(); err != nil {
		core.Destroy()
		return nil, err
	}

	format, ok := pickDepthFormat(depthFormatCandidates, core.optimalTilingFeatures)
	if !ok {
		core.Destroy()
		return nil, configError("no supported depth format on %s", core.selected_device_name)
	}
	core.depth_format = format
	return core, nil
}

func (core *CoreDevice) pickPhysicalDevice(cfg *Config) error {
	var gpu_count uint32
	ret := vk.EnumeratePhysicalDevices(core.instance, &gpu_count, nil)
	if err := checkResult(ret, "enumerate physical devices"); err != nil {
		return err
	}
	if gpu_count == 0 {
		return configError("no vulkan capable GPU found")
	}
	gpus := make([]vk.PhysicalDevice, gpu_count)
	ret = vk.EnumeratePhysicalDevices(core.instance, &gpu_count, gpus)
	if err := checkResult(ret, "enumerate physical devices"); err != nil {
		return err
	}

	required := requiredDeviceExtensions(cfg)
	candidates := make([]deviceCandidate, len(gpus))
	for index, gpu := range gpus {
		candidate, err := core.describe(gpu, required)
		if err != nil {
			return err
		}
		candidates[index] = candidate
		if !candidates[index].suitable() {
			core.log.Infof("skipping GPU %s: %s", candidates[index].name, unsuitableReason(candidates[index]))
		}
	}

	best, ok := pickDevice(candidates, cfg.PreferDiscrete)
	if !ok {
		return configError("no suitable GPU among %d devices", len(gpus))
	}

	core.gpu = gpus[best]
	core.families = candidates[best].families
	core.selected_device_name = candidates[best].name

	vk.GetPhysicalDeviceProperties(core.gpu, &core.gpu_properties)
	core.gpu_properties.Deref()
	core.gpu_properties.Limits.Deref()
	core.max_anisotropy = core.gpu_properties.Limits.MaxSamplerAnisotropy

	vk.GetPhysicalDeviceMemoryProperties(core.gpu, &core.memory_properties)
	core.memory_properties.Deref()
	for i := uint32(0); i < core.memory_properties.MemoryTypeCount; i++ {
		core.memory_properties.MemoryTypes[i].Deref()
	}

	actual, err := DeviceExtensions(core.gpu)
	if err != nil {
		return err
	}
	//portability subset must be enabled whenever the implementation exposes it
	dev_ext := NewCoreExtensions("device extensions", []string{portabilitySubsetExtension}, required, actual)
	if err := dev_ext.Validate(); err != nil {
		return err
	}
	core.device_extensions = dev_ext.GetExtensions()

	core.log.Infof("selected GPU %s (graphics family %d, present family %d)", core.selected_device_name, core.families.Graphics, core.families.Present)
	return nil
}

//describe gathers what selection needs. Failing queries are device errors, not an unsuitable adapter.
func (core *CoreDevice) describe(gpu vk.PhysicalDevice, required []string) (deviceCandidate, error) {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &features)
	features.Deref()

	queue, err := NewCoreQueue(gpu, core.display.Surface())
	if err != nil {
		return deviceCandidate{}, err
	}
	c := deviceCandidate{
		name:        vk.ToString(props.DeviceName[:]),
		device_type: props.DeviceType,
		families:    queue.Families(),
		anisotropy:  features.SamplerAnisotropy == vk.True,
	}

	actual, err := DeviceExtensions(gpu)
	if err != nil {
		return c, err
	}
	_, c.missing = NewCoreExtensions("device extensions", nil, required, actual).HasRequired()

	if len(c.missing) == 0 {
		support, err := querySwapchainSupport(vkSurfaceQuery{gpu, core.display.Surface()})
		if err != nil {
			return c, err
		}
		c.format_count = len(support.Formats)
		c.present_count = len(support.PresentModes)
	}
	return c, nil
}

func (core *CoreDevice) createLogicalDevice() error {
	queue_infos := queueCreateInfos(core.families)
	extensions := safeStrings(core.device_extensions)

	var device vk.Device
	ret := vk.CreateDevice(core.gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queue_infos)),
		PQueueCreateInfos:       queue_infos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(core.layers)),
		PpEnabledLayerNames:     core.layers,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{SamplerAnisotropy: vk.True}},
	}, nil, &device)
	if ret == vk.ErrorFeatureNotPresent || ret == vk.ErrorExtensionNotPresent {
		return configError("create device on %s: %s", core.selected_device_name, vk.Error(ret).Error())
	}
	if err := checkResult(ret, "create device"); err != nil {
		return err
	}
	core.handle = device

	vk.GetDeviceQueue(device, core.families.Graphics, 0, &core.graphics_queue)
	vk.GetDeviceQueue(device, core.families.Present, 0, &core.present_queue)
	return nil
}

func (core *CoreDevice) optimalTilingFeatures(format vk.Format) vk.FormatFeatureFlags {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(core.gpu, format, &props)
	props.Deref()
	return props.OptimalTilingFeatures
}

func (core *CoreDevice) Handle() vk.Device {
	return core.handle
}

func (core *CoreDevice) DepthFormat() vk.Format {
	return core.depth_format
}

func (core *CoreDevice) Name() string {
	return core.selected_device_name
}

//WaitIdle blocks until every queue on the device has drained
func (core *CoreDevice) WaitIdle() error {
	if core.handle == nil {
		return nil
	}
	return checkResult(vk.DeviceWaitIdle(core.handle), "device wait idle")
}

//Destroy tears down device, surface, debug callback and instance in that order. Everything created
//from the device must already be gone.
func (core *CoreDevice) Destroy() {
	if core.handle != nil {
		vk.DeviceWaitIdle(core.handle)
		vk.DestroyDevice(core.handle, nil)
		core.handle = nil
	}
	if core.instance != nil {
		core.display.DestroySurface(core.instance)
		if core.debug_callback != vk.NullDebugReportCallback {
			vk.DestroyDebugReportCallback(core.instance, core.debug_callback, nil)
			core.debug_callback = vk.NullDebugReportCallback
		}
		vk.DestroyInstance(core.instance, nil)
		core.instance = nil
	}
}

func (core *CoreDevice) String() string {
	return fmt.Sprintf("%s depth=%d graphics=%d present=%d", core.selected_device_name, core.depth_format, core.families.Graphics, core.families.Present)
}
