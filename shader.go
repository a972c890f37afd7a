package vkrs

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

//CoreShader holds the vertex and fragment modules. They outlive single pipelines because every
//swapchain generation builds its pipeline from them again.
type CoreShader struct {
	device   vk.Device
	vertex   vk.ShaderModule
	fragment vk.ShaderModule
}

//readSPIRV loads a compiled shader and checks it looks like SPIR-V. Every failure is fatal at startup.
func readSPIRV(path string) ([]byte, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read shader %s", path), ErrFatalConfig)
	}
	if len(buffer) < 4 || len(buffer)%4 != 0 {
		return nil, configError("shader %s has invalid size %d", path, len(buffer))
	}
	if binary.LittleEndian.Uint32(buffer) != spirvMagic {
		return nil, configError("shader %s is not SPIR-V", path)
	}
	return buffer, nil
}

func LoadShaderModule(device vk.Device, path string) (vk.ShaderModule, error) {
	buffer, err := readSPIRV(path)
	if err != nil {
		return vk.NullShaderModule, err
	}

	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(buffer)),
		PCode:    sliceUint32(buffer),
	}, nil, &module)
	if err := checkResult(ret, "create shader module "+path); err != nil {
		return vk.NullShaderModule, err
	}
	return module, nil
}

func NewCoreShader(device vk.Device, cfg *Config) (*CoreShader, error) {
	core := CoreShader{device: device, vertex: vk.NullShaderModule, fragment: vk.NullShaderModule}
	var err error

	core.vertex, err = LoadShaderModule(device, filepath.Join(cfg.ShaderDir, cfg.VertexShader))
	if err != nil {
		return nil, err
	}
	core.fragment, err = LoadShaderModule(device, filepath.Join(cfg.ShaderDir, cfg.FragmentShader))
	if err != nil {
		core.Destroy()
		return nil, err
	}
	return &core, nil
}

func (core *CoreShader) stages() []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: core.vertex,
			PName:  safeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: core.fragment,
			PName:  safeString("main"),
		},
	}
}

func (core *CoreShader) Destroy() {
	if core.vertex != vk.NullShaderModule {
		vk.DestroyShaderModule(core.device, core.vertex, nil)
		core.vertex = vk.NullShaderModule
	}
	if core.fragment != vk.NullShaderModule {
		vk.DestroyShaderModule(core.device, core.fragment, nil)
		core.fragment = vk.NullShaderModule
	}
}
