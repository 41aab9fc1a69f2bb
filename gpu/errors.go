package gpu

import "errors"

var (
	ErrSwapchainLost    = errors.New("gpu: swapchain is out of date")
	ErrDeviceLost       = errors.New("gpu: device lost")
	ErrTimeout          = errors.New("gpu: operation timed out")
	ErrNotRecording     = errors.New("gpu: command buffer is not recording")
	ErrNotSignaled      = errors.New("gpu: waited on a semaphore with no pending signal")
	ErrAlreadySignaled  = errors.New("gpu: semaphore already has a pending signal")
	ErrIndexOutOfRange  = errors.New("gpu: swapchain image index out of range")
	ErrUnsupportedUsage = errors.New("gpu: unsupported resource usage")
)
