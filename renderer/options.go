package renderer

import "github.com/ktnlvr/wreckage-deprecated/scene"

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Hits closer than MinDepth or further than MaxDepth are ignored.
	MinDepth float32
	MaxDepth float32

	// The renderer variant to use.
	Variant Variant

	// Camera controls.
	MoveSpeed       float32
	LookSensitivity float32

	// Device selection.
	BlackListedDevices []string
	ForcePrimaryDevice string
}

// Get the default renderer options.
func DefaultOptions() Options {
	return Options{
		FrameW:          scene.DefaultWidth,
		FrameH:          scene.DefaultHeight,
		MinDepth:        scene.DefaultMinDepth,
		MaxDepth:        scene.DefaultMaxDepth,
		Variant:         VariantNaive,
		MoveSpeed:       scene.DefaultMoveSpeed,
		LookSensitivity: scene.DefaultLookSensitivity,
	}
}
