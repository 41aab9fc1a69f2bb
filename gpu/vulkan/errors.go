package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/ktnlvr/wreckage-deprecated/gpu"
)

var (
	ErrUnsupported       = errors.New("vulkan: the vulkan loader is not available")
	ErrNoSuitableDevice  = errors.New("vulkan: no suitable physical device")
	ErrNoPresentSupport  = errors.New("vulkan: no queue family can present to the surface")
	ErrNoSurfaceFormat   = errors.New("vulkan: surface does not report any formats")
	ErrNoMemoryType      = errors.New("vulkan: no compatible memory type")
	ErrForeignResource   = errors.New("vulkan: resource belongs to a different backend")
	ErrMissingDescriptor = errors.New("vulkan: descriptor set binding was not written")
)

// A failed Vulkan call.
type Error struct {
	Device string
	Op     string
	Result vk.Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("vulkan device (%s): could not %s (error: %s; code %d)", e.Device, e.Op, resultName(e.Result), int32(e.Result))
}

// Results with a backend-independent meaning unwrap to the gpu sentinels.
func (e *Error) Unwrap() error {
	switch e.Result {
	case vk.ErrorDeviceLost:
		return gpu.ErrDeviceLost
	case vk.ErrorOutOfDate, vk.ErrorSurfaceLost:
		return gpu.ErrSwapchainLost
	case vk.Timeout:
		return gpu.ErrTimeout
	}
	return nil
}

func check(device, op string, ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return &Error{Device: device, Op: op, Result: ret}
}

func resultName(ret vk.Result) string {
	switch ret {
	case vk.Success:
		return "success"
	case vk.Timeout:
		return "timeout"
	case vk.NotReady:
		return "not ready"
	case vk.Suboptimal:
		return "suboptimal"
	}
	if err := vk.Error(ret); err != nil {
		return err.Error()
	}
	return "unknown"
}
