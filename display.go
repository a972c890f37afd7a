package vkrs

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

//Window is the part of a native window the renderer needs. *glfw.Window satisfies it.
type Window interface {
	GetRequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
	GetFramebufferSize() (int, int)
}

var _ Window = (*glfw.Window)(nil)

//InitLoader points the vulkan binding at the loader glfw found. glfw.Init must have succeeded.
func InitLoader() error {
	if !glfw.VulkanSupported() {
		return configError("glfw reports no vulkan loader")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return errors.Mark(errors.Wrap(err, "vulkan init"), ErrFatalConfig)
	}
	return nil
}

type CoreDisplay struct {
	window  Window
	surface vk.Surface
}

func NewCoreDisplay(window Window) *CoreDisplay {
	return &CoreDisplay{window: window, surface: vk.NullSurface}
}

//Creates the presentation surface once per instance
func (core *CoreDisplay) CreateSurface(instance vk.Instance) error {
	ptr, err := core.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "create window surface"), ErrFatalConfig)
	}
	core.surface = vk.SurfaceFromPointer(ptr)
	return nil
}

func (core *CoreDisplay) DestroySurface(instance vk.Instance) {
	if core.surface != vk.NullSurface {
		vk.DestroySurface(instance, core.surface, nil)
		core.surface = vk.NullSurface
	}
}

func (core *CoreDisplay) Surface() vk.Surface {
	return core.surface
}

//Framebuffer size in pixels, which is what the swapchain extent is clamped against
func (core *CoreDisplay) Size() (uint32, uint32) {
	w, h := core.window.GetFramebufferSize()
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return uint32(w), uint32(h)
}

func (core *CoreDisplay) RequiredExtensions() []string {
	return core.window.GetRequiredInstanceExtensions()
}
