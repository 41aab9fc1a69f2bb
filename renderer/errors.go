package renderer

import "errors"

var (
	ErrFrameDropped   = errors.New("renderer: frame dropped")
	ErrSwapchainLost  = errors.New("renderer: swapchain lost")
	ErrUnknownVariant = errors.New("renderer: unknown renderer variant")
	ErrImageIndex     = errors.New("renderer: acquired swapchain image index out of range")
	ErrClosed         = errors.New("renderer: renderer is closed")
)
