package scene

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

const (
	// Camera movement speed in world units per second.
	DefaultMoveSpeed float32 = 1.5

	// Coefficient for converting pointer deltas to yaw/pitch angles (radians
	// per pointer unit per second).
	DefaultLookSensitivity float32 = 0.3

	// The field of view matching the kernel's image plane (height 2 at focal length 1).
	DefaultFOV float32 = math32.Pi / 2

	// Pitch is kept inside (-maxPitch, maxPitch) so the Euler decomposition stays unique.
	maxPitch = math32.Pi/2 - 0.01
)

// The encoded size of a RawCamera block.
const RawCameraSize = 80

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	Pitch    float32
	Yaw      float32
	Roll     float32

	// Camera FOV in radians.
	FOV float32

	MoveSpeed       float32
	LookSensitivity float32
}

// Create a new camera at the given position looking down the -Z axis.
func NewCamera(position types.Vec3) *Camera {
	return &Camera{
		Position:        position,
		FOV:             DefaultFOV,
		MoveSpeed:       DefaultMoveSpeed,
		LookSensitivity: DefaultLookSensitivity,
	}
}

func (c *Camera) String() string {
	return fmt.Sprintf("camera(position: (%3.3f, %3.3f, %3.3f), pitch: %3.3f, yaw: %3.3f, roll: %3.3f)",
		c.Position[0], c.Position[1], c.Position[2], c.Pitch, c.Yaw, c.Roll)
}

// Advance the camera using the input accumulated during the last dt seconds.
// Movement is resolved in camera-local space and rotated by the current yaw
// so strafing is always relative to the facing direction. The accumulated
// pointer delta is consumed.
func (c *Camera) Integrate(in *InputState, dt float32) {
	// Cursor deltas grow right and down; turning right lowers yaw and
	// moving down lowers pitch.
	look := in.Pointer.Mul(-c.LookSensitivity * dt)
	in.Pointer = types.Vec2{}

	c.Yaw += look[0]
	c.Pitch += look[1]
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	} else if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}

	dir := in.Direction()
	if dir == (types.Vec3{}) {
		return
	}
	velocity := types.RotateY(dir, c.Yaw).Mul(c.MoveSpeed * dt)
	c.Position = c.Position.Add(velocity)
}

// Get the camera orientation as a rotation matrix.
func (c *Camera) Rotation() types.Mat4 {
	return types.EulerMat4(c.Pitch, c.Yaw, c.Roll)
}

// Encode the camera into the block pushed to the compute kernel.
func (c *Camera) Encode() RawCamera {
	return RawCamera{
		Position: c.Position.Vec4(0),
		Rotation: c.Rotation(),
	}
}

// The GPU encoding of a camera: a position (w = 0) followed by a column-major
// rotation matrix.
type RawCamera struct {
	Position types.Vec4
	Rotation types.Mat4
}

// Serialize the block; the output is exactly RawCameraSize bytes.
func (rc RawCamera) Bytes() []byte {
	buf := make([]byte, RawCameraSize)
	for i, v := range rc.Position {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range rc.Rotation {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(v))
	}
	return buf
}

// Parse a serialized RawCamera block.
func ParseRawCamera(buf []byte) (RawCamera, error) {
	var rc RawCamera
	if len(buf) < RawCameraSize {
		return rc, ErrShortBuffer
	}

	for i := range rc.Position {
		rc.Position[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	for i := range rc.Rotation {
		rc.Rotation[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[16+i*4:]))
	}
	return rc, nil
}

// Recover the camera position and Euler angles from an encoded block.
func DecodeCamera(rc RawCamera) (position types.Vec3, pitch, yaw, roll float32) {
	pitch, yaw, roll = rc.Rotation.Euler()
	return rc.Position.Vec3(), pitch, yaw, roll
}
