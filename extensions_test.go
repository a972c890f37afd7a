package vkrs

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestCoreExtensionsOrderAndDedupe(t *testing.T) {
	ext := NewCoreExtensions("instance extensions",
		[]string{"VK_EXT_debug_report", "VK_KHR_surface", "VK_KHR_portability_enumeration"},
		[]string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
		[]string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_EXT_debug_report"})

	assert.NoError(t, ext.Validate())
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface", "VK_EXT_debug_report"}, ext.GetExtensions())

	ok, missing := ext.HasWanted()
	assert.False(t, ok)
	assert.Equal(t, []string{"VK_KHR_portability_enumeration"}, missing)
}

func TestCoreExtensionsMissingRequired(t *testing.T) {
	ext := NewCoreExtensions("device extensions", nil, []string{swapchainExtension}, []string{"VK_KHR_maintenance1"})
	ok, missing := ext.HasRequired()
	assert.False(t, ok)
	assert.Equal(t, []string{swapchainExtension}, missing)

	err := ext.Validate()
	assert.True(t, errors.Is(err, ErrFatalConfig))
	assert.Contains(t, err.Error(), swapchainExtension)
}

func TestSafeStrings(t *testing.T) {
	assert.Equal(t, "main\x00", safeString("main"))
	assert.Equal(t, "main\x00", safeString("main\x00"))
	assert.Equal(t, []string{"a\x00", "b\x00"}, safeStrings([]string{"a", "b\x00"}))
}

func TestSliceUint32(t *testing.T) {
	assert.Nil(t, sliceUint32([]byte{1, 2}))
	words := sliceUint32(make([]byte, 12))
	assert.Len(t, words, 3)
}
