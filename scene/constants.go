package scene

import (
	"encoding/binary"
	"fmt"
	"math"
)

// The encoded size of the frame constant block.
const FrameConstantsSize = 20

// Default frame parameters.
const (
	DefaultWidth    uint32  = 800
	DefaultHeight   uint32  = 600
	DefaultMinDepth float32 = 0
	DefaultMaxDepth float32 = 12
)

// Per-frame scalar parameters consumed by the compute kernel.
type FrameConstants struct {
	AspectRatio float32
	Width       uint32
	Height      uint32

	// Hits are accepted when MinDepth <= t <= MaxDepth.
	MinDepth float32
	MaxDepth float32
}

// Create frame constants for a viewport of the given size.
func NewFrameConstants(width, height uint32, minDepth, maxDepth float32) (FrameConstants, error) {
	if width == 0 || height == 0 {
		return FrameConstants{}, fmt.Errorf("%w (got %dx%d)", ErrInvalidViewport, width, height)
	}
	if !(minDepth < maxDepth) {
		return FrameConstants{}, fmt.Errorf("%w (got [%f, %f])", ErrInvalidDepthRange, minDepth, maxDepth)
	}

	return FrameConstants{
		AspectRatio: float32(width) / float32(height),
		Width:       width,
		Height:      height,
		MinDepth:    minDepth,
		MaxDepth:    maxDepth,
	}, nil
}

// Encode the constants in declaration order.
func (fc FrameConstants) Bytes() []byte {
	buf := make([]byte, FrameConstantsSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(fc.AspectRatio))
	binary.LittleEndian.PutUint32(buf[4:], fc.Width)
	binary.LittleEndian.PutUint32(buf[8:], fc.Height)
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(fc.MinDepth))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(fc.MaxDepth))
	return buf
}

// Decode frame constants from their GPU encoding.
func DecodeFrameConstants(buf []byte) (FrameConstants, error) {
	if len(buf) < FrameConstantsSize {
		return FrameConstants{}, ErrShortBuffer
	}

	return FrameConstants{
		AspectRatio: math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])),
		Width:       binary.LittleEndian.Uint32(buf[4:]),
		Height:      binary.LittleEndian.Uint32(buf[8:]),
		MinDepth:    math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])),
		MaxDepth:    math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])),
	}, nil
}
