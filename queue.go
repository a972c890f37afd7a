package vkrs

import (
	vk "github.com/vulkan-go/vulkan"
)

//QueueFamilyIndices names the families used for graphics and presentation, which may be the same
type QueueFamilyIndices struct {
	Graphics    uint32
	Present     uint32
	HasGraphics bool
	HasPresent  bool
}

func (q QueueFamilyIndices) IsComplete() bool {
	return q.HasGraphics && q.HasPresent
}

func (q QueueFamilyIndices) Shared() bool {
	return q.Graphics == q.Present
}

//Unique lists each family once, graphics first
func (q QueueFamilyIndices) Unique() []uint32 {
	if q.Shared() {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

//Device Queue properties is per device and constructed from the device
type CoreQueue struct {
	flags   []vk.QueueFlags
	present []bool
}

//List queue family properties of a physical device along with surface support for each family
func NewCoreQueue(gpu vk.PhysicalDevice, surface vk.Surface) (*CoreQueue, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	properties := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, properties)

	flags := make([]vk.QueueFlags, count)
	for index := range properties {
		properties[index].Deref()
		flags[index] = properties[index].QueueFlags
	}
	present, err := presentSupport(vkSurfaceQuery{gpu, surface}, len(flags))
	if err != nil {
		return nil, err
	}
	return &CoreQueue{flags: flags, present: present}, nil
}

func (q *CoreQueue) Families() QueueFamilyIndices {
	return selectQueueFamilies(q.flags, q.present)
}

//A family that does both graphics and present wins. Otherwise the first graphics family and the first
//present family are paired.
func selectQueueFamilies(flags []vk.QueueFlags, present []bool) QueueFamilyIndices {
	var indices QueueFamilyIndices
	graphics := vk.QueueFlags(vk.QueueGraphicsBit)

	for index := range flags {
		if flags[index]&graphics == graphics && index < len(present) && present[index] {
			return QueueFamilyIndices{Graphics: uint32(index), Present: uint32(index), HasGraphics: true, HasPresent: true}
		}
	}

	for index := range flags {
		if !indices.HasGraphics && flags[index]&graphics == graphics {
			indices.Graphics = uint32(index)
			indices.HasGraphics = true
		}
		if !indices.HasPresent && index < len(present) && present[index] {
			indices.Present = uint32(index)
			indices.HasPresent = true
		}
	}
	return indices
}

//One queue per unique family
func queueCreateInfos(indices QueueFamilyIndices) []vk.DeviceQueueCreateInfo {
	families := indices.Unique()
	infos := make([]vk.DeviceQueueCreateInfo, len(families))
	for index, family := range families {
		infos[index] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos
}
