package vkrs

import (
	"strings"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

const (
	swapchainExtension             = "VK_KHR_swapchain"
	portabilitySubsetExtension     = "VK_KHR_portability_subset"
	portabilityEnumerationInstance = "VK_KHR_portability_enumeration"
	debugReportExtension           = "VK_EXT_debug_report"
)

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	if err := checkResult(ret, "enumerate instance extensions"); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	if err := checkResult(ret, "enumerate instance extensions"); err != nil {
		return nil, err
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	if err := checkResult(ret, "enumerate device extensions"); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	if err := checkResult(ret, "enumerate device extensions"); err != nil {
		return nil, err
	}
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	if err := checkResult(ret, "enumerate instance layers"); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	if err := checkResult(ret, "enumerate instance layers"); err != nil {
		return nil, err
	}
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

//CoreExtensions resolves a wanted/required name list against what the platform actually offers.
//Required names that are absent are fatal, wanted names that are absent are dropped.
type CoreExtensions struct {
	kind     string
	wanted   []string
	required []string
	actual   []string
}

func NewCoreExtensions(kind string, wanted []string, required []string, actual []string) *CoreExtensions {
	return &CoreExtensions{kind: kind, wanted: wanted, required: required, actual: actual}
}

func (e *CoreExtensions) has(name string) bool {
	for _, act := range e.actual {
		if act == name {
			return true
		}
	}
	return false
}

func (e *CoreExtensions) missing(names []string) []string {
	missing := []string{}
	for _, name := range names {
		if !e.has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func (e *CoreExtensions) HasRequired() (bool, []string) {
	missing := e.missing(e.required)
	return len(missing) == 0, missing
}

func (e *CoreExtensions) HasWanted() (bool, []string) {
	missing := e.missing(e.wanted)
	return len(missing) == 0, missing
}

//Validate reports every missing required name as one fatal configuration error
func (e *CoreExtensions) Validate() error {
	if ok, missing := e.HasRequired(); !ok {
		return configError("missing required %s: %s", e.kind, strings.Join(missing, ", "))
	}
	return nil
}

//GetExtensions lists required names followed by the available wanted names, without duplicates
func (e *CoreExtensions) GetExtensions() []string {
	seen := make(map[string]bool, len(e.required)+len(e.wanted))
	implement := []string{}

	for _, req := range e.required {
		if !seen[req] {
			seen[req] = true
			implement = append(implement, req)
		}
	}

	for _, want := range e.wanted {
		if !seen[want] && e.has(want) {
			seen[want] = true
			implement = append(implement, want)
		}
	}

	return implement
}

func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

//SPIR-V words are host endian uint32, the byte length must already be a multiple of four
func sliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
