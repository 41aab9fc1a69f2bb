package scene

import "github.com/ktnlvr/wreckage-deprecated/types"

// A movement key.
type Key uint8

// Supported movement keys.
const (
	KeyForward Key = iota
	KeyBackward
	KeyStrafeLeft
	KeyStrafeRight
	numKeys
)

func (k Key) String() string {
	switch k {
	case KeyForward:
		return "forward"
	case KeyBackward:
		return "backward"
	case KeyStrafeLeft:
		return "strafe-left"
	case KeyStrafeRight:
		return "strafe-right"
	}
	return "unknown"
}

// The type of an input event.
type EventType uint8

// Supported input events.
const (
	KeyDown EventType = iota
	KeyUp
	PointerMoved
	CloseRequested
)

// An input event delivered by the windowing layer.
type Event struct {
	Type EventType

	// Set for KeyDown/KeyUp events.
	Key Key

	// Set for PointerMoved events.
	Delta types.Vec2
}

// The input state accumulated between two frames.
type InputState struct {
	// Movement keys currently held down.
	Pressed [numKeys]bool

	// Pointer movement accumulated since the last integration.
	Pointer types.Vec2

	// Set once a close request is received.
	Close bool
}

// Update state with an input event.
func (s *InputState) Apply(ev Event) {
	switch ev.Type {
	case KeyDown, KeyUp:
		if ev.Key < numKeys {
			s.Pressed[ev.Key] = ev.Type == KeyDown
		}
	case PointerMoved:
		s.Pointer = s.Pointer.Add(ev.Delta)
	case CloseRequested:
		s.Close = true
	}
}

// Get the camera-local movement direction for the held keys. Forward and
// backward move along the local Z axis; strafing moves along the local X axis.
func (s *InputState) Direction() types.Vec3 {
	var dir types.Vec3
	if s.Pressed[KeyForward] {
		dir[2] += 1
	}
	if s.Pressed[KeyBackward] {
		dir[2] -= 1
	}
	if s.Pressed[KeyStrafeRight] {
		dir[0] += 1
	}
	if s.Pressed[KeyStrafeLeft] {
		dir[0] -= 1
	}
	return dir
}
