package scene

import "errors"

var (
	ErrEmptyScene        = errors.New("scene: no spheres defined")
	ErrNegativeRadius    = errors.New("scene: sphere radius must not be negative")
	ErrSceneTooLarge     = errors.New("scene: sphere count exceeds buffer capacity")
	ErrInvalidViewport   = errors.New("scene: viewport dimensions must be non-zero")
	ErrInvalidDepthRange = errors.New("scene: min depth must be less than max depth")
	ErrShortBuffer       = errors.New("scene: encoded buffer is too short")
)
