package scene

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ktnlvr/wreckage-deprecated/types"
)

// The encoded size of a single sphere: a position triplet followed by the radius.
const SphereStride = 16

// A sphere primitive.
type Sphere struct {
	Center types.Vec3
	Radius float32
}

// Get the sphere's axis-aligned bounds.
func (s Sphere) Bounds() (max, min types.Vec3) {
	return s.Center.AddScalar(s.Radius), s.Center.AddScalar(-s.Radius)
}

func (s Sphere) String() string {
	return fmt.Sprintf("sphere(center: (%3.3f, %3.3f, %3.3f), radius: %3.3f)", s.Center[0], s.Center[1], s.Center[2], s.Radius)
}

// Write the GPU encoding of the sphere into buf which must hold at least
// SphereStride bytes.
func (s Sphere) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(s.Center[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(s.Center[1]))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(s.Center[2]))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(s.Radius))
}

// Decode a sphere from its GPU encoding.
func DecodeSphere(buf []byte) (Sphere, error) {
	if len(buf) < SphereStride {
		return Sphere{}, ErrShortBuffer
	}

	return Sphere{
		Center: types.XYZ(
			math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])),
		),
		Radius: math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])),
	}, nil
}

// The sphere written after the last scene element when the scene is padded
// to a fixed capacity. Kernels stop scanning when they see a negative radius.
var terminator = Sphere{Radius: -1}

// An immutable, ordered list of spheres.
type Scene struct {
	spheres []Sphere
}

// Create a new scene from a list of spheres. The list is copied.
func New(spheres []Sphere) (*Scene, error) {
	if len(spheres) == 0 {
		return nil, ErrEmptyScene
	}

	for index, s := range spheres {
		if s.Radius < 0 || math.IsNaN(float64(s.Radius)) {
			return nil, fmt.Errorf("%w (sphere %d: %s)", ErrNegativeRadius, index, s)
		}
	}

	return &Scene{
		spheres: append([]Sphere(nil), spheres...),
	}, nil
}

// Create the demo scene: a small sphere next to a larger one, both in front
// of a camera placed at the origin.
func Default() *Scene {
	sc, _ := New([]Sphere{
		{Center: types.XYZ(1, 0, -1), Radius: 0.2},
		{Center: types.XYZ(0, 0, -1), Radius: 0.5},
	})
	return sc
}

// Get the number of spheres in the scene.
func (s *Scene) Len() int {
	return len(s.spheres)
}

// Get a copy of the scene spheres.
func (s *Scene) Spheres() []Sphere {
	return append([]Sphere(nil), s.spheres...)
}

// Get the bounds enclosing all scene spheres.
func (s *Scene) Bounds() (max, min types.Vec3) {
	max, min = s.spheres[0].Bounds()
	for _, sphere := range s.spheres[1:] {
		sMax, sMin := sphere.Bounds()
		max = types.MaxVec3(max, sMax)
		min = types.MinVec3(min, sMin)
	}
	return max, min
}

// Encode the scene as a tightly packed array of SphereStride-sized elements.
func (s *Scene) Encode() []byte {
	buf := make([]byte, len(s.spheres)*SphereStride)
	for index, sphere := range s.spheres {
		sphere.put(buf[index*SphereStride:])
	}
	return buf
}

// Encode the scene into a fixed-capacity array. Slots past the last sphere
// are filled with a terminator element (negative radius).
func (s *Scene) EncodeFixed(capacity int) ([]byte, error) {
	if len(s.spheres) > capacity {
		return nil, fmt.Errorf("%w (%d spheres; capacity %d)", ErrSceneTooLarge, len(s.spheres), capacity)
	}

	buf := make([]byte, capacity*SphereStride)
	copy(buf, s.Encode())
	for index := len(s.spheres); index < capacity; index++ {
		terminator.put(buf[index*SphereStride:])
	}
	return buf, nil
}
