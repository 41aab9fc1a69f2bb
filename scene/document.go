package scene

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/ktnlvr/wreckage-deprecated/types"
)

// The on-disk representation of a scene and the initial camera placement.
// Angles are expressed in degrees.
type Document struct {
	Camera  CameraDocument   `yaml:"camera" toml:"camera"`
	Spheres []SphereDocument `yaml:"spheres" toml:"spheres"`
}

type CameraDocument struct {
	Position [3]float32 `yaml:"position" toml:"position"`
	Pitch    float32    `yaml:"pitch" toml:"pitch"`
	Yaw      float32    `yaml:"yaw" toml:"yaw"`
}

type SphereDocument struct {
	Center [3]float32 `yaml:"center" toml:"center"`
	Radius float32    `yaml:"radius" toml:"radius"`
}

// Build the scene and camera described by the document.
func (d *Document) Build() (*Scene, *Camera, error) {
	spheres := make([]Sphere, len(d.Spheres))
	for index, s := range d.Spheres {
		spheres[index] = Sphere{
			Center: types.Vec3(s.Center),
			Radius: s.Radius,
		}
	}

	sc, err := New(spheres)
	if err != nil {
		return nil, nil, fmt.Errorf("scene document: %w", err)
	}

	cam := NewCamera(types.Vec3(d.Camera.Position))
	cam.Pitch = d.Camera.Pitch * math32.Pi / 180
	cam.Yaw = d.Camera.Yaw * math32.Pi / 180

	return sc, cam, nil
}

// Create a document describing a scene and a camera.
func NewDocument(sc *Scene, cam *Camera) *Document {
	doc := &Document{
		Spheres: make([]SphereDocument, sc.Len()),
	}
	for index, s := range sc.spheres {
		doc.Spheres[index] = SphereDocument{
			Center: [3]float32(s.Center),
			Radius: s.Radius,
		}
	}
	if cam != nil {
		doc.Camera = CameraDocument{
			Position: [3]float32(cam.Position),
			Pitch:    cam.Pitch * 180 / math32.Pi,
			Yaw:      cam.Yaw * 180 / math32.Pi,
		}
	}
	return doc
}
