package vkrs

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

//VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
const instanceCreateEnumeratePortability = vk.InstanceCreateFlags(0x00000001)

func isDarwin() bool {
	return runtime.GOOS == "darwin"
}

//Instance extension request for this platform: whatever the window needs plus portability on darwin
//and debug report when validation is on
func instanceExtensionRequest(cfg *Config, window_required []string) (wanted []string, required []string) {
	required = append(required, window_required...)
	if isDarwin() {
		required = append(required, portabilityEnumerationInstance)
	}
	if cfg.Validation {
		wanted = append(wanted, debugReportExtension)
	}
	return wanted, required
}

func (core *CoreDevice) createInstance(cfg *Config) error {
	actual, err := InstanceExtensions()
	if err != nil {
		return err
	}

	wanted, required := instanceExtensionRequest(cfg, core.display.RequiredExtensions())
	inst_ext := NewCoreExtensions("instance extensions", wanted, required, actual)
	if err := inst_ext.Validate(); err != nil {
		return err
	}
	if ok, missing := inst_ext.HasWanted(); !ok {
		core.log.Warnf("instance extensions unavailable: %v", missing)
	}

	var layers []string
	if cfg.Validation {
		available, err := ValidationLayers()
		if err != nil {
			return err
		}
		layer_ext := NewCoreExtensions("validation layers", cfg.Layers, nil, available)
		if ok, missing := layer_ext.HasWanted(); !ok {
			core.log.Warnf("validation layers unavailable: %v", missing)
		}
		layers = layer_ext.GetExtensions()
	}
	core.layers = safeStrings(layers)

	var flags vk.InstanceCreateFlags
	if isDarwin() {
		flags = instanceCreateEnumeratePortability
	}

	extensions := safeStrings(inst_ext.GetExtensions())
	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(cfg.AppName),
			PEngineName:        "vkrs\x00",
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(core.layers)),
		PpEnabledLayerNames:     core.layers,
		Flags:                   flags,
	}, nil, &instance)
	if err := checkResult(ret, "create instance"); err != nil {
		return err
	}
	core.instance = instance
	if err := vk.InitInstance(instance); err != nil {
		return errors.Mark(errors.Wrap(err, "init instance function pointers"), ErrDevice)
	}
	core.log.Infof("instance created with %d extensions and %d layers", len(extensions), len(core.layers))

	if cfg.Validation && inst_ext.has(debugReportExtension) {
		ret := vk.CreateDebugReportCallback(instance, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: core.debugReport,
		}, nil, &core.debug_callback)
		if err := checkResult(ret, "create debug report callback"); err != nil {
			return err
		}
		core.log.Infof("debug report callback enabled")
	}
	return nil
}

//Routes validation layer messages into the renderer logs
func (core *CoreDevice) debugReport(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.log.Errorf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.log.Warnf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.log.Warnf("PERFORMANCE [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.log.Infof("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
