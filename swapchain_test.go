package vkrs

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	assert.Equal(t, srgb, ChooseSurfaceFormat([]vk.SurfaceFormat{unorm, srgb}))
	assert.Equal(t, unorm, ChooseSurfaceFormat([]vk.SurfaceFormat{unorm}))
}

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}
	assert.Equal(t, vk.PresentModeMailbox, ChoosePresentMode(modes, true))
	assert.Equal(t, vk.PresentModeFifo, ChoosePresentMode(modes, false))
	assert.Equal(t, vk.PresentModeFifo, ChoosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}, true))
}

func TestChooseExtentUsesSurfaceExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, ChooseExtent(caps, 1920, 1080))
}

func TestChooseExtentClampsWhenUndefined(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
		MaxImageExtent: vk.Extent2D{Width: 2048, Height: 1024},
	}
	requests := []vk.Extent2D{{Width: 1, Height: 1}, {Width: 800, Height: 600}, {Width: 5000, Height: 5000}, {Width: 0, Height: 3000}}
	for _, req := range requests {
		got := ChooseExtent(caps, req.Width, req.Height)
		assert.GreaterOrEqual(t, got.Width, caps.MinImageExtent.Width)
		assert.LessOrEqual(t, got.Width, caps.MaxImageExtent.Width)
		assert.GreaterOrEqual(t, got.Height, caps.MinImageExtent.Height)
		assert.LessOrEqual(t, got.Height, caps.MaxImageExtent.Height)
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, ChooseExtent(caps, 800, 600))
	assert.Equal(t, vk.Extent2D{Width: 2048, Height: 1024}, ChooseExtent(caps, 5000, 5000))
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), ChooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}))
	assert.Equal(t, uint32(3), ChooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), ChooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}

func TestChooseCompositeAlpha(t *testing.T) {
	assert.Equal(t, vk.CompositeAlphaOpaqueBit, chooseCompositeAlpha(vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit|vk.CompositeAlphaInheritBit)))
	assert.Equal(t, vk.CompositeAlphaInheritBit, chooseCompositeAlpha(vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit)))
}

func TestSwapchainConsistency(t *testing.T) {
	sc := &CoreSwapchain{
		images:       make([]vk.Image, 3),
		image_views:  make([]vk.ImageView, 3),
		framebuffers: make([]vk.Framebuffer, 3),
	}
	assert.NoError(t, sc.consistent())
	assert.Equal(t, 3, sc.ImageCount())
	sc.framebuffers = sc.framebuffers[:2]
	err := sc.consistent()
	assert.True(t, errors.Is(err, ErrDevice))
	images, views, framebuffers := sc.Counts()
	assert.Equal(t, []int{3, 3, 2}, []int{images, views, framebuffers})
}

//fakeSurface answers surface queries from fixed data. fail makes the named query return lost.
type fakeSurface struct {
	caps    vk.SurfaceCapabilities
	surfaceFormats []vk.SurfaceFormat
	modes   []vk.PresentMode
	present []bool
	fail    string
}

func (f *fakeSurface) result(query string) vk.Result {
	if f.fail == query {
		return vk.ErrorSurfaceLost
	}
	return vk.Success
}

func (f *fakeSurface) capabilities(caps *vk.SurfaceCapabilities) vk.Result {
	if ret := f.result("capabilities"); ret != vk.Success {
		return ret
	}
	*caps = f.caps
	return vk.Success
}

func (f *fakeSurface) formats(count *uint32, formats []vk.SurfaceFormat) vk.Result {
	if ret := f.result("formats"); ret != vk.Success {
		return ret
	}
	*count = uint32(copy(formats, f.surfaceFormats))
	if formats == nil {
		*count = uint32(len(f.surfaceFormats))
	}
	return vk.Success
}

func (f *fakeSurface) presentModes(count *uint32, modes []vk.PresentMode) vk.Result {
	if ret := f.result("modes"); ret != vk.Success {
		return ret
	}
	*count = uint32(copy(modes, f.modes))
	if modes == nil {
		*count = uint32(len(f.modes))
	}
	return vk.Success
}

func (f *fakeSurface) supported(family uint32, supported *vk.Bool32) vk.Result {
	if ret := f.result("supported"); ret != vk.Success {
		return ret
	}
	*supported = vk.Bool32(vk.False)
	if f.present[family] {
		*supported = vk.Bool32(vk.True)
	}
	return vk.Success
}

func healthySurface() *fakeSurface {
	return &fakeSurface{
		caps: vk.SurfaceCapabilities{
			MinImageCount:  2,
			CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
			MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
		},
		surfaceFormats: []vk.SurfaceFormat{{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}},
		modes:   []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		present: []bool{false, true},
	}
}

func TestQuerySwapchainSupport(t *testing.T) {
	support, err := querySwapchainSupport(healthySurface())
	require.NoError(t, err)
	assert.Equal(t, uint32(800), support.Capabilities.CurrentExtent.Width)
	assert.Len(t, support.Formats, 1)
	assert.Equal(t, []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, support.PresentModes)
}

func TestLostSurfaceIsDeviceError(t *testing.T) {
	for _, query := range []string{"capabilities", "formats", "modes"} {
		t.Run(query, func(t *testing.T) {
			surface := healthySurface()
			surface.fail = query
			support, err := querySwapchainSupport(surface)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDevice))
			assert.False(t, errors.Is(err, ErrFatalConfig))
			assert.Empty(t, support.Formats)
		})
	}
}

func TestPresentSupport(t *testing.T) {
	surface := healthySurface()
	present, err := presentSupport(surface, 2)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, present)

	surface.fail = "supported"
	_, err = presentSupport(surface, 2)
	assert.True(t, errors.Is(err, ErrDevice))
}
