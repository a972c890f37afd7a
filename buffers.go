package vkrs

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
)

const hostCoherent = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

const deviceLocal = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

//CoreBuffer is a buffer together with its bound memory. Host visible buffers may stay mapped for
//their whole lifetime.
type CoreBuffer struct {
	buffer vk.Buffer
	memory vk.DeviceMemory
	size   vk.DeviceSize
	mapped unsafe.Pointer
}

func (b *CoreBuffer) Handle() vk.Buffer {
	return b.buffer
}

func (b *CoreBuffer) Size() vk.DeviceSize {
	return b.size
}

func (b *CoreBuffer) Destroy(device vk.Device) {
	if b.mapped != nil {
		vk.UnmapMemory(device, b.memory)
		b.mapped = nil
	}
	vk.DestroyBuffer(device, b.buffer, nil)
	vk.FreeMemory(device, b.memory, nil)
}

//FindMemoryType returns the first memory type allowed by filter whose flags include every requested
//property. props must already be dereferenced.
func FindMemoryType(props vk.PhysicalDeviceMemoryProperties, filter uint32, flags vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < props.MemoryTypeCount && i < vk.MaxMemoryTypes; i++ {
		if filter&(1<<i) != 0 && props.MemoryTypes[i].PropertyFlags&flags == flags {
			return i, nil
		}
	}
	return 0, configError("no memory type matches filter %#x with properties %#x", filter, flags)
}

//CoreAllocator creates buffers and images on one device and moves bytes into them through
//staging buffers.
type CoreAllocator struct {
	device *CoreDevice
	pool   *CorePool
}

func NewCoreAllocator(device *CoreDevice, pool *CorePool) *CoreAllocator {
	return &CoreAllocator{device: device, pool: pool}
}

func (a *CoreAllocator) allocate(reqs vk.MemoryRequirements, props vk.MemoryPropertyFlags) (vk.DeviceMemory, error) {
	mem_type, err := FindMemoryType(a.device.memory_properties, reqs.MemoryTypeBits, props)
	if err != nil {
		return nil, err
	}
	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(a.device.handle, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: mem_type,
	}, nil, &memory)
	if err := checkResult(ret, "allocate memory"); err != nil {
		return nil, err
	}
	return memory, nil
}

func (a *CoreAllocator) CreateBuffer(size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (*CoreBuffer, error) {
	device := a.device.handle
	core := CoreBuffer{size: size}

	ret := vk.CreateBuffer(device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &core.buffer)
	if err := checkResult(ret, "create buffer"); err != nil {
		return nil, err
	}

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, core.buffer, &reqs)
	reqs.Deref()

	memory, err := a.allocate(reqs, props)
	if err != nil {
		vk.DestroyBuffer(device, core.buffer, nil)
		return nil, err
	}
	core.memory = memory

	if err := checkResult(vk.BindBufferMemory(device, core.buffer, core.memory, 0), "bind buffer memory"); err != nil {
		core.Destroy(device)
		return nil, err
	}
	return &core, nil
}

//CreateMappedBuffer creates a host coherent buffer that stays mapped until Destroy
func (a *CoreAllocator) CreateMappedBuffer(size vk.DeviceSize, usage vk.BufferUsageFlags) (*CoreBuffer, error) {
	buf, err := a.CreateBuffer(size, usage, hostCoherent)
	if err != nil {
		return nil, err
	}
	ret := vk.MapMemory(a.device.handle, buf.memory, 0, size, 0, &buf.mapped)
	if err := checkResult(ret, "map memory"); err != nil {
		buf.Destroy(a.device.handle)
		return nil, err
	}
	return buf, nil
}

//Read copies the contents of a mapped buffer
func (b *CoreBuffer) Read() ([]byte, error) {
	if b.mapped == nil {
		return nil, errors.Mark(errors.New("read of unmapped buffer"), ErrDevice)
	}
	out := make([]byte, b.size)
	copy(out, unsafe.Slice((*byte)(b.mapped), b.size))
	return out, nil
}

//Write copies data into a mapped buffer
func (b *CoreBuffer) Write(data []byte) error {
	if b.mapped == nil {
		return errors.Mark(errors.New("write to unmapped buffer"), ErrDevice)
	}
	if vk.DeviceSize(len(data)) > b.size {
		return errors.Mark(errors.Newf("write of %d bytes overflows buffer of %d", len(data), b.size), ErrDevice)
	}
	vk.Memcopy(b.mapped, data)
	return nil
}

func (a *CoreAllocator) staging(data []byte) (*CoreBuffer, error) {
	stage, err := a.CreateMappedBuffer(vk.DeviceSize(len(data)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
	if err != nil {
		return nil, err
	}
	if err := stage.Write(data); err != nil {
		stage.Destroy(a.device.handle)
		return nil, err
	}
	return stage, nil
}

//CreateDeviceBuffer creates a device local buffer and fills it with data through a staging copy
func (a *CoreAllocator) CreateDeviceBuffer(data []byte, usage vk.BufferUsageFlags) (*CoreBuffer, error) {
	buf, err := a.CreateBuffer(vk.DeviceSize(len(data)), usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit|vk.BufferUsageTransferSrcBit), deviceLocal)
	if err != nil {
		return nil, err
	}
	if err := a.Upload(buf, data); err != nil {
		buf.Destroy(a.device.handle)
		return nil, err
	}
	return buf, nil
}

//Upload stages data in host visible memory, copies it into dst with a one shot command buffer and
//frees the staging buffer once the queue is idle
func (a *CoreAllocator) Upload(dst *CoreBuffer, data []byte) error {
	stage, err := a.staging(data)
	if err != nil {
		return err
	}
	defer stage.Destroy(a.device.handle)

	return a.pool.OneShot(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, stage.buffer, dst.buffer, 1, []vk.BufferCopy{{Size: vk.DeviceSize(len(data))}})
	})
}

//ReadBuffer copies size bytes of a buffer back to the host. Mapped buffers are read directly, device
//local ones through a staging copy. Used to verify uploads.
func (a *CoreAllocator) ReadBuffer(src *CoreBuffer, size vk.DeviceSize) ([]byte, error) {
	if src.mapped != nil {
		data, err := src.Read()
		if err != nil {
			return nil, err
		}
		return data[:size], nil
	}
	stage, err := a.CreateMappedBuffer(size, vk.BufferUsageFlags(vk.BufferUsageTransferDstBit))
	if err != nil {
		return nil, err
	}
	defer stage.Destroy(a.device.handle)

	err = a.pool.OneShot(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, src.buffer, stage.buffer, 1, []vk.BufferCopy{{Size: size}})
	})
	if err != nil {
		return nil, err
	}

	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(stage.mapped), size))
	return out, nil
}
