package vulkan

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

func TestFormatVersion(t *testing.T) {
	type spec struct {
		in  uint32
		exp string
	}

	specs := []spec{
		{uint32(vk.MakeVersion(1, 0, 0)), "1.0.0"},
		{uint32(vk.MakeVersion(1, 3, 250)), "1.3.250"},
		{0, "0.0.0"},
	}

	for index, s := range specs {
		if got := formatVersion(s.in); got != s.exp {
			t.Fatalf("[spec %d] expected version %q; got %q", index, s.exp, got)
		}
	}
}

func TestQueueFamilySuitable(t *testing.T) {
	type spec struct {
		flags vk.QueueFlags
		exp   bool
	}

	specs := []spec{
		{vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit), true},
		{vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit), true},
		{vk.QueueFlags(vk.QueueComputeBit | vk.QueueTransferBit), false},
		{vk.QueueFlags(vk.QueueTransferBit), false},
	}

	for index, s := range specs {
		if got := queueFamilySuitable(s.flags); got != s.exp {
			t.Fatalf("[spec %d] expected suitable to be %t; got %t", index, s.exp, got)
		}
	}
}

func TestSelectAdapter(t *testing.T) {
	adapter := func(name, kind string, suitable bool) Adapter {
		return Adapter{Info: gpu.AdapterInfo{Name: name, Type: kind, SuitableQueue: suitable}}
	}
	adapters := []Adapter{
		adapter("llvmpipe (LLVM 15.0.7)", "CPU", true),
		adapter("Intel(R) UHD Graphics 620", "integrated GPU", true),
		adapter("AMD Radeon RX 6600", "discrete GPU", true),
		adapter("Broken Display Adapter", "discrete GPU", false),
	}

	type spec struct {
		blacklist []string
		primary   string
		exp       string
		expErr    bool
	}

	specs := []spec{
		{nil, "", "AMD Radeon RX 6600", false},
		{[]string{"AMD"}, "", "Intel(R) UHD Graphics 620", false},
		{[]string{"AMD", "Intel"}, "", "llvmpipe (LLVM 15.0.7)", false},
		{nil, "llvmpipe", "llvmpipe (LLVM 15.0.7)", false},
		{[]string{"llvm"}, "llvmpipe", "", true},
		{nil, "Broken", "", true},
		{[]string{"AMD", "Intel", "llvm"}, "", "", true},
	}

	for index, s := range specs {
		got, err := SelectAdapter(adapters, s.blacklist, s.primary)
		if s.expErr {
			if !errors.Is(err, ErrNoSuitableDevice) {
				t.Fatalf("[spec %d] expected ErrNoSuitableDevice; got %v", index, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
		if got.Info.Name != s.exp {
			t.Fatalf("[spec %d] expected adapter %q; got %q", index, s.exp, got.Info.Name)
		}
	}
}

func TestErrorMapping(t *testing.T) {
	type spec struct {
		result vk.Result
		exp    error
	}

	specs := []spec{
		{vk.ErrorDeviceLost, gpu.ErrDeviceLost},
		{vk.ErrorOutOfDate, gpu.ErrSwapchainLost},
		{vk.ErrorSurfaceLost, gpu.ErrSwapchainLost},
		{vk.Timeout, gpu.ErrTimeout},
	}

	for index, s := range specs {
		err := check("test device", "do something", s.result)
		if !errors.Is(err, s.exp) {
			t.Fatalf("[spec %d] expected error to wrap %v; got %v", index, s.exp, err)
		}
		if !strings.HasPrefix(err.Error(), "vulkan device (test device): could not do something (error: ") {
			t.Fatalf("[spec %d] unexpected error message %q", index, err.Error())
		}
	}

	if err := check("test device", "do something", vk.Success); err != nil {
		t.Fatalf("expected no error for a successful result; got %v", err)
	}

	err := check("test device", "allocate", vk.ErrorOutOfDeviceMemory)
	if errors.Is(err, gpu.ErrDeviceLost) || errors.Is(err, gpu.ErrSwapchainLost) {
		t.Fatalf("expected out-of-memory errors not to map to a gpu sentinel; got %v", err)
	}
}

func TestFormatConversion(t *testing.T) {
	for _, f := range []gpu.Format{gpu.FormatRGBA8Unorm, gpu.FormatBGRA8Unorm, gpu.FormatRGBA8SRGB, gpu.FormatBGRA8SRGB} {
		vkFormat, ok := toVkFormat(f)
		if !ok {
			t.Fatalf("expected format %s to have a vulkan equivalent", f)
		}
		if back := fromVkFormat(vkFormat); back != f {
			t.Fatalf("expected format %s to convert back to itself; got %s", f, back)
		}
	}

	if _, ok := toVkFormat(gpu.FormatUndefined); ok {
		t.Fatal("expected the undefined format to have no vulkan equivalent")
	}
	if got := fromVkFormat(vk.FormatR32g32b32a32Sfloat); got != gpu.FormatUndefined {
		t.Fatalf("expected unknown vulkan formats to map to undefined; got %s", got)
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	if _, err := chooseSurfaceFormat(nil); err != ErrNoSurfaceFormat {
		t.Fatalf("expected ErrNoSurfaceFormat; got %v", err)
	}

	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR32g32b32a32Sfloat, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	got, err := chooseSurfaceFormat(formats)
	if err != nil {
		t.Fatal(err)
	}
	if got.Format != vk.FormatB8g8r8a8Unorm {
		t.Fatalf("expected a known 8-bit format to be preferred; got %d", got.Format)
	}

	got, _ = chooseSurfaceFormat(formats[:1])
	if got.Format != vk.FormatR32g32b32a32Sfloat {
		t.Fatalf("expected a fallback to the first reported format; got %d", got.Format)
	}
}

func TestChooseExtentAndImageCount(t *testing.T) {
	lo := vk.Extent2D{Width: 1, Height: 1}
	hi := vk.Extent2D{Width: 4096, Height: 2048}

	fixed := vk.Extent2D{Width: 640, Height: 480}
	if got := chooseExtent(fixed, lo, hi, 800, 600); got != fixed {
		t.Fatalf("expected the surface extent %v to win; got %v", fixed, got)
	}

	free := vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	if got := chooseExtent(free, lo, hi, 800, 600); got.Width != 800 || got.Height != 600 {
		t.Fatalf("expected the requested extent; got %v", got)
	}
	if got := chooseExtent(free, lo, hi, 8000, 6000); got.Width != 4096 || got.Height != 2048 {
		t.Fatalf("expected the extent to be clamped; got %v", got)
	}

	type spec struct {
		minCount, maxCount, exp uint32
	}
	specs := []spec{
		{2, 0, 3},
		{2, 8, 3},
		{3, 3, 3},
	}
	for index, s := range specs {
		if got := chooseImageCount(s.minCount, s.maxCount); got != s.exp {
			t.Fatalf("[spec %d] expected %d images; got %d", index, s.exp, got)
		}
	}
}

func TestFindMemoryType(t *testing.T) {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 3
	props.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	props.MemoryTypes[2].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	hostCoherent := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	type spec struct {
		typeBits uint32
		required vk.MemoryPropertyFlags
		exp      uint32
		expOk    bool
	}

	specs := []spec{
		{0x7, hostCoherent, 2, true},
		{0x3, hostCoherent, 0, false},
		{0x7, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit), 0, true},
		{0x6, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit), 1, true},
	}

	for index, s := range specs {
		got, ok := findMemoryType(props, s.typeBits, s.required)
		if ok != s.expOk || (ok && got != s.exp) {
			t.Fatalf("[spec %d] expected (%d, %t); got (%d, %t)", index, s.exp, s.expOk, got, ok)
		}
	}
}

func TestLayoutBarrier(t *testing.T) {
	type spec struct {
		from, to    vk.ImageLayout
		expSrcStage vk.PipelineStageFlagBits
		expDstStage vk.PipelineStageFlagBits
		expDstWrite bool
	}

	specs := []spec{
		{vk.ImageLayoutUndefined, vk.ImageLayoutGeneral, vk.PipelineStageTransferBit, vk.PipelineStageComputeShaderBit, true},
		{vk.ImageLayoutGeneral, vk.ImageLayoutTransferSrcOptimal, vk.PipelineStageComputeShaderBit, vk.PipelineStageTransferBit, false},
		{vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutGeneral, vk.PipelineStageTransferBit, vk.PipelineStageComputeShaderBit, true},
		{vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal, vk.PipelineStageTransferBit, vk.PipelineStageTransferBit, true},
		{vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutPresentSrc, vk.PipelineStageTransferBit, vk.PipelineStageBottomOfPipeBit, false},
	}

	writes := vk.AccessFlags(vk.AccessShaderWriteBit | vk.AccessTransferWriteBit)
	for index, s := range specs {
		b := layoutBarrier(s.from, s.to)
		if b.srcStage != vk.PipelineStageFlags(s.expSrcStage) || b.dstStage != vk.PipelineStageFlags(s.expDstStage) {
			t.Fatalf("[spec %d] unexpected stages %#x -> %#x", index, b.srcStage, b.dstStage)
		}
		if hasWrite := b.dstAccess&writes != 0; hasWrite != s.expDstWrite {
			t.Fatalf("[spec %d] expected destination write access to be %t; got access %#x", index, s.expDstWrite, b.dstAccess)
		}
	}
}

func TestTimeoutNanos(t *testing.T) {
	if got := timeoutNanos(gpu.NoTimeout); got != vk.MaxUint64 {
		t.Fatalf("expected an infinite timeout; got %d", got)
	}
	if got := timeoutNanos(2 * time.Millisecond); got != 2000000 {
		t.Fatalf("expected 2000000ns; got %d", got)
	}
}

func TestCString(t *testing.T) {
	if got := cstr("main"); got != "main\x00" {
		t.Fatalf("expected a null terminator to be appended; got %q", got)
	}
	if got := cstr("VK_KHR_swapchain\x00"); got != "VK_KHR_swapchain\x00" {
		t.Fatalf("expected terminated strings to be left alone; got %q", got)
	}
}
